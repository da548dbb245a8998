//go:build darwin || dragonfly || freebsd || netbsd || openbsd

package ifmon

import (
	"context"
	"fmt"

	"golang.org/x/sys/unix"
)

// WaitForChange blocks until the kernel reports that the interface list may
// have changed, the context deadline passes (ErrTimeout), or ctx is
// canceled (context.Canceled). Each call opens, uses, and closes its own
// routing socket; route sockets receive all routing messages without a
// bind, which includes interface and address changes.
func WaitForChange(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}

	fd, err := unix.Socket(unix.AF_ROUTE, unix.SOCK_RAW, unix.AF_UNSPEC)
	if err != nil {
		return fmt.Errorf("open notification socket: %w", err)
	}

	return waitReadable(ctx, fd)
}
