package iflist_test

import (
	"net"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkoelker/ifwatch/pkg/iflist"
)

func TestInterfacesLive(t *testing.T) {
	t.Parallel()

	entries, err := iflist.Interfaces()
	require.NoError(t, err)

	for _, entry := range entries {
		assert.True(t, entry.Addr.IsValid(), "every entry carries an address")
		assert.NotZero(t, entry.Index)
	}
}

func TestInterfaceClassifiers(t *testing.T) {
	t.Parallel()

	loopback := iflist.Interface{
		Name:  "lo",
		Flags: net.FlagUp | net.FlagLoopback,
		Addr:  netip.MustParsePrefix("127.0.0.1/8"),
	}
	assert.True(t, loopback.IsLoopback())
	assert.True(t, loopback.IsIPv4())
	assert.False(t, loopback.IsIPv6())

	global := iflist.Interface{
		Name:  "eth0",
		Flags: net.FlagUp | net.FlagBroadcast,
		Addr:  netip.MustParsePrefix("2001:db8::1/64"),
	}
	assert.False(t, global.IsLoopback())
	assert.False(t, global.IsIPv4())
	assert.True(t, global.IsIPv6())
}

func TestFilter(t *testing.T) {
	t.Parallel()

	entries := []iflist.Interface{
		{Name: "lo", Flags: net.FlagLoopback, Addr: netip.MustParsePrefix("127.0.0.1/8")},
		{Name: "eth0", Addr: netip.MustParsePrefix("192.0.2.1/24")},
		{Name: "eth0", Addr: netip.MustParsePrefix("2001:db8::1/64")},
	}

	kept := iflist.Filter(entries, func(entry iflist.Interface) bool {
		return !entry.IsLoopback()
	})
	require.Len(t, kept, 2)
	assert.Equal(t, "eth0", kept[0].Name)

	v4 := iflist.Filter(entries, iflist.Interface.IsIPv4)
	require.Len(t, v4, 2)

	assert.Nil(t, iflist.Filter(nil, func(iflist.Interface) bool { return true }))
}
