package netutil_test

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkoelker/ifwatch/pkg/netutil"
)

func TestPrefixFromIPNet(t *testing.T) {
	t.Parallel()

	t.Run("ipv4", func(t *testing.T) {
		t.Parallel()

		prefix, ok := netutil.PrefixFromIPNet(net.IPNet{
			IP:   net.IPv4(192, 0, 2, 1),
			Mask: net.CIDRMask(24, 32),
		})
		require.True(t, ok)
		assert.Equal(t, "192.0.2.1/24", prefix.String())
	})

	t.Run("ipv4 in ipv6 representation", func(t *testing.T) {
		t.Parallel()

		prefix, ok := netutil.PrefixFromIPNet(net.IPNet{
			IP:   net.IPv4(10, 0, 0, 1).To16(),
			Mask: net.CIDRMask(120, 128),
		})
		require.True(t, ok)
		assert.Equal(t, "10.0.0.1/24", prefix.String(), "mapped address unmaps to v4 bit length")
	})

	t.Run("ipv6", func(t *testing.T) {
		t.Parallel()

		prefix, ok := netutil.PrefixFromIPNet(net.IPNet{
			IP:   net.ParseIP("2001:db8::1"),
			Mask: net.CIDRMask(64, 128),
		})
		require.True(t, ok)
		assert.Equal(t, "2001:db8::1/64", prefix.String())
	})

	t.Run("nil ip", func(t *testing.T) {
		t.Parallel()

		_, ok := netutil.PrefixFromIPNet(net.IPNet{Mask: net.CIDRMask(24, 32)})
		assert.False(t, ok)
	})

	t.Run("nil mask", func(t *testing.T) {
		t.Parallel()

		_, ok := netutil.PrefixFromIPNet(net.IPNet{IP: net.IPv4(192, 0, 2, 1)})
		assert.False(t, ok)
	})
}

func TestMatchAny(t *testing.T) {
	t.Parallel()

	patterns := []string{"lo", "docker*", "veth*"}

	assert.True(t, netutil.MatchAny(patterns, "lo"))
	assert.True(t, netutil.MatchAny(patterns, "docker0"))
	assert.True(t, netutil.MatchAny(patterns, "veth42ab"))
	assert.False(t, netutil.MatchAny(patterns, "eth0"))
	assert.False(t, netutil.MatchAny(nil, "eth0"))
	assert.False(t, netutil.MatchAny([]string{"[invalid"}, "eth0"), "invalid pattern matches nothing")
}
