//go:build linux

package ifmon

import "sync"

// Subscription delivers change events to one consumer. Events closes when
// the subscription ends.
type Subscription struct {
	Events <-chan Event

	cancel    func()
	closeOnce sync.Once
}

type subscriber struct {
	id        uint64
	events    chan Event
	closeOnce sync.Once
}

// Close terminates the subscription and releases its resources.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}
