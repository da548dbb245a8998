// Package ifmon reports kernel network interface changes. WaitForChange is
// a one-shot blocking wait for poll-style consumers; on Linux the package
// also provides a subscription Monitor that fans out normalized change
// events to any number of consumers.
package ifmon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

var (
	// ErrNilContext indicates that a nil context was passed.
	ErrNilContext = errors.New("context must not be nil")

	// ErrTimeout reports that no interface change arrived before the
	// context deadline. It wraps os.ErrDeadlineExceeded so callers can
	// also treat it as the usual deadline/would-block condition.
	ErrTimeout = fmt.Errorf("wait for interface change: %w", os.ErrDeadlineExceeded)
)

// notifyBufferSize is ample headroom for one notification datagram. The
// payload is never parsed; arrival alone is the signal.
const notifyBufferSize = 64 * 1024

// waitReadable takes ownership of a bound notification socket, re-wraps it
// as a pollable file, and performs exactly one receive. After the wrap the
// file is the single close path for the descriptor on every return.
func waitReadable(ctx context.Context, fd int) error {
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)

		return fmt.Errorf("set notification socket non-blocking: %w", err)
	}

	conn := os.NewFile(uintptr(fd), "ifchange")
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetReadDeadline(deadline); err != nil {
			return fmt.Errorf("apply wait deadline: %w", err)
		}
	}

	// Unblock the receive when ctx is canceled; an already-expired
	// deadline above covers the timeout path.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Unix(0, 0))
	})
	defer stop()

	buf := make([]byte, notifyBufferSize)

	if _, err := conn.Read(buf); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return ctx.Err()
		}

		if errors.Is(err, os.ErrDeadlineExceeded) {
			return ErrTimeout
		}

		return fmt.Errorf("receive change notification: %w", err)
	}

	return nil
}
