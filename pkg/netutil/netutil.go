package netutil

import (
	"net"
	"net/netip"
	"path"
)

// PrefixFromIPNet converts a net.IPNet into a netip.Prefix. It reports
// false for invalid addresses or masks. Four-in-six mapped addresses are
// unmapped so IPv4 prefixes come out with IPv4 bit lengths.
func PrefixFromIPNet(ipnet net.IPNet) (netip.Prefix, bool) {
	addr, ok := netip.AddrFromSlice(ipnet.IP)
	if !ok {
		return netip.Prefix{}, false
	}

	addr = addr.Unmap()

	ones, bits := ipnet.Mask.Size()
	if bits == 0 {
		return netip.Prefix{}, false
	}

	if bits > addr.BitLen() {
		ones -= bits - addr.BitLen()
	}

	if ones < 0 || ones > addr.BitLen() {
		return netip.Prefix{}, false
	}

	return netip.PrefixFrom(addr, ones), true
}

// MatchAny reports whether name matches any of the glob patterns (path.Match
// syntax). Invalid patterns match nothing.
func MatchAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if ok, err := path.Match(pattern, name); err == nil && ok {
			return true
		}
	}

	return false
}
