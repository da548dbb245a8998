//go:build linux

package integration_test

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vishvananda/netlink"
	"golang.org/x/sync/errgroup"

	"github.com/jkoelker/ifwatch/integration/internal/testutil"
	"github.com/jkoelker/ifwatch/pkg/iflist"
	"github.com/jkoelker/ifwatch/pkg/ifmon"
	pkgtestutil "github.com/jkoelker/ifwatch/pkg/testutil"
)

const churnInterval = 200 * time.Millisecond

func TestWaitForChangeSeesLinkChurn(t *testing.T) {
	t.Parallel()
	testutil.RequireRoot(t)
	testutil.RequireLinux(t)

	ctx, cancel := context.WithTimeout(t.Context(), 15*time.Second)
	defer cancel()

	host := testutil.ScratchHost(t)

	done := make(chan struct{})

	var group errgroup.Group

	group.Go(func() error {
		defer close(done)

		return testutil.WithNetNS(host.NetNSHandle(), func() error {
			return ifmon.WaitForChange(ctx)
		})
	})

	group.Go(func() error {
		handle, err := netlink.NewHandleAt(host.NetNSHandle())
		if err != nil {
			return fmt.Errorf("open netlink handle: %w", err)
		}
		defer handle.Close()

		attrs := netlink.NewLinkAttrs()
		attrs.Name = "churn0"
		dummy := &netlink.Dummy{LinkAttrs: attrs}

		if err := handle.LinkAdd(dummy); err != nil {
			return fmt.Errorf("add dummy link: %w", err)
		}

		// Keep generating link events until the waiter wakes up; its
		// socket may not be armed when the first one fires.
		up := true

		for {
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(churnInterval):
			}

			if up {
				err = handle.LinkSetUp(dummy)
			} else {
				err = handle.LinkSetDown(dummy)
			}

			if err != nil {
				return fmt.Errorf("toggle dummy link: %w", err)
			}

			up = !up
		}
	})

	require.NoError(t, group.Wait(), "waiter should observe link churn before the deadline")
}

func TestInterfacesInsideScratchNamespace(t *testing.T) {
	t.Parallel()
	testutil.RequireRoot(t)
	testutil.RequireLinux(t)

	host := testutil.ScratchHost(t)

	handle, err := netlink.NewHandleAt(host.NetNSHandle())
	require.NoError(t, err, "open netlink handle")

	defer handle.Close()

	attrs := netlink.NewLinkAttrs()
	attrs.Name = "ifw0"
	dummy := &netlink.Dummy{LinkAttrs: attrs}

	require.NoError(t, handle.LinkAdd(dummy), "add dummy link")
	require.NoError(t, handle.LinkSetUp(dummy), "set dummy link up")

	addr, err := netlink.ParseAddr("192.0.2.1/24")
	require.NoError(t, err)

	addr.Broadcast = net.IPv4(192, 0, 2, 255)
	require.NoError(t, handle.AddrAdd(dummy, addr), "assign address")

	var entries []iflist.Interface

	require.NoError(t, testutil.WithNetNS(host.NetNSHandle(), func() error {
		var listErr error

		entries, listErr = iflist.Interfaces()

		return listErr
	}))

	var matched *iflist.Interface

	for idx := range entries {
		entry := &entries[idx]
		if entry.Name == "ifw0" && entry.Addr.IsValid() {
			matched = entry

			break
		}
	}

	require.NotNil(t, matched, "dummy link with address should be enumerated")
	require.Equal(t, netip.MustParsePrefix("192.0.2.1/24"), matched.Addr)
	require.Equal(t, netip.MustParseAddr("192.0.2.255"), matched.Broadcast)
	require.True(t, matched.IsIPv4())
}

func TestMonitorSeesAddressAssignment(t *testing.T) {
	t.Parallel()
	testutil.RequireRoot(t)
	testutil.RequireLinux(t)

	ctx, cancel := context.WithTimeout(t.Context(), 15*time.Second)
	defer cancel()

	host := testutil.ScratchHost(t)

	handle, err := netlink.NewHandleAt(host.NetNSHandle())
	require.NoError(t, err, "open netlink handle")

	defer handle.Close()

	attrs := netlink.NewLinkAttrs()
	attrs.Name = "mon0"
	dummy := &netlink.Dummy{LinkAttrs: attrs}

	require.NoError(t, handle.LinkAdd(dummy), "add dummy link")
	require.NoError(t, handle.LinkSetUp(dummy), "set dummy link up")

	monitor := ifmon.New(ifmon.WithLogger(pkgtestutil.Logger(t)))

	var sub *ifmon.Subscription

	// Run must execute inside the namespace so the netlink subscription
	// sockets bind there.
	require.NoError(t, testutil.WithNetNS(host.NetNSHandle(), func() error {
		if err := monitor.Run(ctx); err != nil {
			return fmt.Errorf("run monitor: %w", err)
		}

		subscribed, err := monitor.Subscribe(ctx)
		if err != nil {
			return fmt.Errorf("subscribe: %w", err)
		}

		sub = subscribed

		return nil
	}))

	defer sub.Close()

	addr, err := netlink.ParseAddr("192.0.2.7/24")
	require.NoError(t, err)
	require.NoError(t, handle.AddrAdd(dummy, addr), "assign address")

	want := netip.MustParsePrefix("192.0.2.7/24")

	for {
		select {
		case <-ctx.Done():
			require.FailNow(t, "timed out waiting for address event")
		case event, ok := <-sub.Events:
			require.True(t, ok, "subscription closed before the address event")

			if event.Op == ifmon.AddrAdded && event.Addr == want {
				return
			}
		}
	}
}
