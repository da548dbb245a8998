//go:build linux

package ifmon

import (
	"context"
	"fmt"

	"golang.org/x/sys/unix"
)

// WaitForChange blocks until the kernel reports that the interface list may
// have changed, the context deadline passes (ErrTimeout), or ctx is
// canceled (context.Canceled). Each call opens, uses, and closes its own
// NETLINK_ROUTE socket subscribed to the link multicast group, so
// concurrent waiters never interfere; continuous monitors call it in a
// loop or use Monitor instead.
func WaitForChange(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}

	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_RAW|unix.SOCK_CLOEXEC, unix.NETLINK_ROUTE)
	if err != nil {
		return fmt.Errorf("open notification socket: %w", err)
	}

	addr := &unix.SockaddrNetlink{
		Family: unix.AF_NETLINK,
		Groups: unix.RTMGRP_LINK,
	}

	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)

		return fmt.Errorf("bind to link notification group: %w", err)
	}

	return waitReadable(ctx, fd)
}
