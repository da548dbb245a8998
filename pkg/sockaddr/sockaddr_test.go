package sockaddr_test

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/jkoelker/ifwatch/pkg/sockaddr"
)

func TestToIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  sockaddr.Raw
		want netip.Addr
		ok   bool
	}{
		{
			name: "ipv4",
			raw:  sockaddr.Raw{Family: unix.AF_INET, Data: []byte{192, 0, 2, 1}},
			want: netip.MustParseAddr("192.0.2.1"),
			ok:   true,
		},
		{
			name: "ipv4 broadcast bytes in network order",
			raw:  sockaddr.Raw{Family: unix.AF_INET, Data: []byte{192, 0, 2, 255}},
			want: netip.MustParseAddr("192.0.2.255"),
			ok:   true,
		},
		{
			name: "ipv6",
			raw: sockaddr.Raw{
				Family: unix.AF_INET6,
				Data: []byte{
					0x20, 0x01, 0x0d, 0xb8, 0, 0, 0, 0,
					0, 0, 0, 0, 0, 0, 0, 0x01,
				},
			},
			want: netip.MustParseAddr("2001:db8::1"),
			ok:   true,
		},
		{
			name: "nil data",
			raw:  sockaddr.Raw{Family: unix.AF_INET},
		},
		{
			name: "truncated ipv4",
			raw:  sockaddr.Raw{Family: unix.AF_INET, Data: []byte{192, 0}},
		},
		{
			name: "truncated ipv6",
			raw:  sockaddr.Raw{Family: unix.AF_INET6, Data: []byte{0x20, 0x01}},
		},
		{
			name: "unrecognized family",
			raw:  sockaddr.Raw{Family: 0xff, Data: []byte{1, 2, 3, 4, 5, 6}},
		},
		{
			name: "zero value",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			got, ok := sockaddr.ToIP(test.raw)
			require.Equal(t, test.ok, ok)

			if test.ok {
				assert.Equal(t, test.want, got)
			} else {
				assert.False(t, got.IsValid(), "failed conversion must not yield an address")
			}
		})
	}
}

func TestRawIsZero(t *testing.T) {
	t.Parallel()

	assert.True(t, sockaddr.Raw{}.IsZero())
	assert.False(t, sockaddr.Raw{Family: unix.AF_INET}.IsZero())
	assert.False(t, sockaddr.Raw{Data: []byte{0}}.IsZero())
}
