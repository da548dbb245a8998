// Package sockaddr converts raw, family-tagged socket address structures
// into structured IP addresses.
package sockaddr

import (
	"net/netip"

	"golang.org/x/sys/unix"
)

const (
	ipv4Len = 4
	ipv6Len = 16
)

// Raw is an opaque socket address as reported by the kernel: an address
// family tag plus the family-specific address bytes. The layout of Data is
// only meaningful for families this package understands; other families
// (link-layer addresses and the like) are carried through untouched.
type Raw struct {
	Family uint16
	Data   []byte
}

// IsZero reports whether r carries no address at all.
func (r Raw) IsZero() bool {
	return r.Family == unix.AF_UNSPEC && len(r.Data) == 0
}

// ToIP maps a raw address to a netip.Addr. It reports false for a nil or
// truncated address and for any family other than AF_INET or AF_INET6.
func ToIP(raw Raw) (netip.Addr, bool) {
	switch raw.Family {
	case unix.AF_INET:
		if len(raw.Data) < ipv4Len {
			return netip.Addr{}, false
		}

		return netip.AddrFrom4([ipv4Len]byte(raw.Data[:ipv4Len])), true

	case unix.AF_INET6:
		if len(raw.Data) < ipv6Len {
			return netip.Addr{}, false
		}

		return netip.AddrFrom16([ipv6Len]byte(raw.Data[:ipv6Len])), true

	default:
		return netip.Addr{}, false
	}
}
