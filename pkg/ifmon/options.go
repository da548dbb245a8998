//go:build linux

package ifmon

import "log/slog"

// WithLogger routes the monitor's diagnostics to logger instead of
// discarding them.
func WithLogger(logger *slog.Logger) func(*Monitor) {
	return func(m *Monitor) {
		m.log = logger
	}
}

// WithQueueSize sizes the channels the kernel subscriptions deliver into.
// Values below one keep the default.
func WithQueueSize(size int) func(*Monitor) {
	return func(m *Monitor) {
		if size < 1 {
			return
		}

		m.queueSize = size
	}
}

// WithSubscriberQueue sizes each subscriber's event buffer. A subscriber
// that falls this far behind starts losing events rather than stalling the
// forwarding loop.
func WithSubscriberQueue(size int) func(*Monitor) {
	return func(m *Monitor) {
		if size < 1 {
			return
		}

		m.subscriberQueueLen = size
	}
}

// WithLinkSubscribe replaces the kernel link subscription. Tests inject
// stubs here.
func WithLinkSubscribe(fn linkSubscribeFunc) func(*Monitor) {
	return func(m *Monitor) {
		if fn == nil {
			return
		}

		m.linkSubscribe = fn
	}
}

// WithAddrSubscribe replaces the kernel address subscription. Tests inject
// stubs here.
func WithAddrSubscribe(fn addrSubscribeFunc) func(*Monitor) {
	return func(m *Monitor) {
		if fn == nil {
			return
		}

		m.addrSubscribe = fn
	}
}
