//go:build linux

package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/jkoelker/ifwatch/pkg/ifmon"
)

const eventBuffer = 16

// watchChanges subscribes to the netlink monitor and logs decoded events,
// honoring the configured ignore patterns and debounce window.
func watchChanges(ctx context.Context, opts watchOptions) error {
	events := make(chan ifmon.Event, eventBuffer)

	watcher := ifmon.NewWatcher(ifmon.New(ifmon.WithLogger(opts.log)))

	err := watcher.Start(ctx, func(_ context.Context, event ifmon.Event) {
		select {
		case events <- event:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return fmt.Errorf("start interface watcher: %w", err)
	}

	var last time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-events:
			if event.IfName != "" && opts.cfg.Ignored(event.IfName) {
				continue
			}

			if !last.IsZero() && time.Since(last) < opts.cfg.Watch.Debounce {
				continue
			}

			last = time.Now()

			logEvent(opts.log, event)

			if opts.oneshot {
				return nil
			}
		}
	}
}
