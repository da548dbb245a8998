//go:build darwin || dragonfly || freebsd || netbsd || openbsd

package ifaddrs

import (
	"fmt"
	"math/bits"
	"net"

	"golang.org/x/net/route"
	"golang.org/x/sys/unix"

	"github.com/jkoelker/ifwatch/pkg/sockaddr"
)

// rawTables is the BSD snapshot: the interface RIB fetched via sysctl. The
// kernel reuses the RTAX_BRD slot of an address message for both the
// broadcast address and the point-to-point destination, so the secondary
// slot resolution here is the kernel's own.
type rawTables struct {
	rib []byte
}

type linkMeta struct {
	name  string
	flags net.Flags
}

func fetchTables() (rawTables, error) {
	rib, err := route.FetchRIB(unix.AF_UNSPEC, route.RIBTypeInterface, 0)
	if err != nil {
		return rawTables{}, fmt.Errorf("interface rib fetch: %w", err)
	}

	return rawTables{rib: rib}, nil
}

// walk re-parses the owned RIB bytes on every traversal. The RIB orders each
// interface message ahead of its address messages, so the name table fills
// in as the walk advances.
func (t rawTables) walk(yield func(Record) bool) {
	msgs, err := route.ParseRIB(route.RIBTypeInterface, t.rib)
	if err != nil {
		return
	}

	names := make(map[int]linkMeta)

	for _, raw := range msgs {
		switch msg := raw.(type) {
		case *route.InterfaceMessage:
			meta := linkMeta{name: msg.Name, flags: linkFlags(uint32(msg.Flags))}
			names[msg.Index] = meta

			rec := Record{
				Name:  msg.Name,
				Index: msg.Index,
				Flags: meta.flags,
				Addr:  linkAddrRaw(msg.Addrs),
			}

			if !yield(rec) {
				return
			}

		case *route.InterfaceAddrMessage:
			rec, ok := addrRecord(msg, names)
			if !ok {
				continue
			}

			if !yield(rec) {
				return
			}
		}
	}
}

func addrRecord(msg *route.InterfaceAddrMessage, names map[int]linkMeta) (Record, bool) {
	primary := addrRaw(addrAt(msg.Addrs, unix.RTAX_IFA))
	if primary.IsZero() {
		return Record{}, false
	}

	rec := Record{
		Index:     msg.Index,
		Addr:      primary,
		PrefixLen: maskBits(addrAt(msg.Addrs, unix.RTAX_NETMASK)),
		alt:       addrRaw(addrAt(msg.Addrs, unix.RTAX_BRD)),
	}

	if meta, ok := names[msg.Index]; ok {
		rec.Name = meta.name
		rec.Flags = meta.flags
	}

	return rec, true
}

func addrAt(addrs []route.Addr, idx int) route.Addr {
	if idx < len(addrs) {
		return addrs[idx]
	}

	return nil
}

func linkAddrRaw(addrs []route.Addr) sockaddr.Raw {
	if link, ok := addrAt(addrs, unix.RTAX_IFP).(*route.LinkAddr); ok && len(link.Addr) > 0 {
		return sockaddr.Raw{Family: unix.AF_LINK, Data: link.Addr}
	}

	return sockaddr.Raw{Family: unix.AF_LINK}
}

func addrRaw(addr route.Addr) sockaddr.Raw {
	switch addr := addr.(type) {
	case *route.Inet4Addr:
		return sockaddr.Raw{Family: unix.AF_INET, Data: addr.IP[:]}
	case *route.Inet6Addr:
		return sockaddr.Raw{Family: unix.AF_INET6, Data: addr.IP[:]}
	case *route.LinkAddr:
		return sockaddr.Raw{Family: unix.AF_LINK, Data: addr.Addr}
	default:
		return sockaddr.Raw{}
	}
}

func maskBits(addr route.Addr) int {
	var mask []byte

	switch addr := addr.(type) {
	case *route.Inet4Addr:
		mask = addr.IP[:]
	case *route.Inet6Addr:
		mask = addr.IP[:]
	default:
		return 0
	}

	// Count leading ones only: bits past the first zero are not part of a
	// prefix length, whatever a malformed mask carries there.
	ones := 0

	for _, octet := range mask {
		if octet == 0xff {
			ones += 8

			continue
		}

		ones += bits.LeadingZeros8(^octet)

		break
	}

	return ones
}
