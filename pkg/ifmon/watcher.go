//go:build linux

package ifmon

import (
	"context"
	"fmt"
)

// EventHandler consumes change events forwarded by the shared monitor.
type EventHandler func(context.Context, Event)

// Watcher coordinates a subscription to the shared interface monitor and
// dispatches change events to the provided handler.
type Watcher struct {
	monitor *Monitor
}

// NewWatcher builds a Watcher bound to the provided Monitor.
func NewWatcher(m *Monitor) *Watcher {
	return &Watcher{monitor: m}
}

// Start ensures the underlying monitor is running, subscribes to change
// events, and dispatches them to handler until ctx is canceled. A nil
// handler discards events.
func (w *Watcher) Start(ctx context.Context, handler EventHandler) error {
	if ctx == nil {
		return ErrNilContext
	}

	if w == nil || w.monitor == nil {
		return ErrNotConfigured
	}

	if err := w.monitor.Run(ctx); err != nil {
		return fmt.Errorf("run interface monitor: %w", err)
	}

	sub, err := w.monitor.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe interface monitor: %w", err)
	}

	go w.consume(ctx, sub, handler)

	return nil
}

func (w *Watcher) consume(ctx context.Context, sub *Subscription, handler EventHandler) {
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-sub.Events:
			if !ok {
				return
			}

			if handler != nil {
				handler(ctx, event)
			}
		}
	}
}
