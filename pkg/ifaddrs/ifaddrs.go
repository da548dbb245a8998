// Package ifaddrs enumerates the host's network interfaces and their
// addresses directly from the kernel's interface tables.
//
// Acquire performs the enumeration once and returns a Handle that owns the
// kernel-provided snapshot until Close. Records walks the snapshot lazily
// and may be called any number of times; each call starts a fresh traversal.
// On Linux the snapshot is a pair of NETLINK_ROUTE dumps, on BSD-family
// systems an interface RIB fetched via sysctl; see the platform sources.
package ifaddrs

import (
	"iter"
	"net"
	"net/netip"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/jkoelker/ifwatch/pkg/sockaddr"
)

// Record is one kernel-reported entry: an interface paired with one of its
// address-family-specific address sets. Enumeration yields a link-level
// record per interface plus one record per assigned address.
type Record struct {
	// Name is the interface name (e.g. "eth0").
	Name string

	// Index is the kernel interface index.
	Index int

	// Flags holds the interface flags.
	Flags net.Flags

	// Addr is the primary address in its raw, family-tagged form.
	// Link-level records carry the hardware address under the platform's
	// link family; conversion of IP families is sockaddr.ToIP's job.
	Addr sockaddr.Raw

	// PrefixLen is the CIDR prefix length of Addr for IP records.
	PrefixLen int

	// alt is the secondary address slot. The kernel field feeding it is
	// chosen at build time per platform family: the destination of a
	// point-to-point link or the broadcast address share this slot.
	alt sockaddr.Raw
}

// IP converts the record's primary address. It reports false for link-level
// records and records without an address.
func (r Record) IP() (netip.Addr, bool) {
	return sockaddr.ToIP(r.Addr)
}

// BroadcastOrDestination extracts the broadcast or point-to-point
// destination address of rec, whichever the platform stores in the shared
// secondary slot. It reports false when the slot is absent or the address
// family is not convertible.
func BroadcastOrDestination(rec Record) (netip.Addr, bool) {
	return sockaddr.ToIP(rec.alt)
}

// Handle owns one kernel-provided snapshot of the interface tables. It is
// the sole owner: the snapshot is released exactly once, no later than
// Close, and must not be traversed afterwards.
type Handle struct {
	raw      rawTables
	released atomic.Bool
}

// Acquire fetches the kernel interface tables. The returned Handle must be
// closed to release the snapshot. Enumeration failure carries the OS error
// and produces no handle.
func Acquire() (*Handle, error) {
	raw, err := fetchTables()
	if err != nil {
		return nil, err
	}

	return &Handle{raw: raw}, nil
}

// Records returns a fresh traversal over the snapshot, yielding each record
// by value. The sequence is finite; an empty table yields nothing. After
// Close the sequence is empty.
func (h *Handle) Records() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		if h.released.Load() {
			return
		}

		h.raw.walk(yield)
	}
}

// Close releases the snapshot. Only the first call releases; subsequent
// calls are no-ops.
func (h *Handle) Close() {
	if h.released.CompareAndSwap(false, true) {
		h.raw = rawTables{}
	}
}

func linkFlags(raw uint32) net.Flags {
	var flags net.Flags

	if raw&unix.IFF_UP != 0 {
		flags |= net.FlagUp
	}

	if raw&unix.IFF_BROADCAST != 0 {
		flags |= net.FlagBroadcast
	}

	if raw&unix.IFF_LOOPBACK != 0 {
		flags |= net.FlagLoopback
	}

	if raw&unix.IFF_POINTOPOINT != 0 {
		flags |= net.FlagPointToPoint
	}

	if raw&unix.IFF_MULTICAST != 0 {
		flags |= net.FlagMulticast
	}

	if raw&unix.IFF_RUNNING != 0 {
		flags |= net.FlagRunning
	}

	return flags
}
