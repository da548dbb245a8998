// Package iflist provides a structured, filterable view over the raw
// interface enumeration in pkg/ifaddrs.
package iflist

import (
	"fmt"
	"net"
	"net/netip"

	"github.com/jkoelker/ifwatch/pkg/ifaddrs"
)

// Interface is one interface/address pair in structured form.
type Interface struct {
	Name  string
	Index int
	Flags net.Flags

	// Addr is the assigned address with its prefix length.
	Addr netip.Prefix

	// Broadcast is the broadcast address, when the interface has one.
	Broadcast netip.Addr

	// Peer is the destination address of a point-to-point link.
	Peer netip.Addr
}

// IsLoopback reports whether the entry belongs to a loopback interface or
// carries a loopback address.
func (i Interface) IsLoopback() bool {
	return i.Flags&net.FlagLoopback != 0 || i.Addr.Addr().IsLoopback()
}

// IsIPv4 reports whether the entry's address is IPv4.
func (i Interface) IsIPv4() bool {
	return i.Addr.Addr().Is4()
}

// IsIPv6 reports whether the entry's address is IPv6.
func (i Interface) IsIPv6() bool {
	addr := i.Addr.Addr()

	return addr.Is6() && !addr.Is4In6()
}

// Interfaces enumerates the host interfaces once and returns every entry
// carrying an IP address, in kernel table order.
func Interfaces() ([]Interface, error) {
	handle, err := ifaddrs.Acquire()
	if err != nil {
		return nil, fmt.Errorf("enumerate interfaces: %w", err)
	}
	defer handle.Close()

	var entries []Interface

	for rec := range handle.Records() {
		iface, ok := fromRecord(rec)
		if !ok {
			continue
		}

		entries = append(entries, iface)
	}

	return entries, nil
}

// Filter returns the entries keep reports true for.
func Filter(entries []Interface, keep func(Interface) bool) []Interface {
	var kept []Interface

	for _, entry := range entries {
		if keep(entry) {
			kept = append(kept, entry)
		}
	}

	return kept
}

func fromRecord(rec ifaddrs.Record) (Interface, bool) {
	addr, ok := rec.IP()
	if !ok {
		return Interface{}, false
	}

	prefixLen := rec.PrefixLen
	if prefixLen > addr.BitLen() {
		prefixLen = addr.BitLen()
	}

	iface := Interface{
		Name:  rec.Name,
		Index: rec.Index,
		Flags: rec.Flags,
		Addr:  netip.PrefixFrom(addr, prefixLen),
	}

	if alt, ok := ifaddrs.BroadcastOrDestination(rec); ok {
		if rec.Flags&net.FlagPointToPoint != 0 {
			iface.Peer = alt
		} else {
			iface.Broadcast = alt
		}
	}

	return iface, true
}
