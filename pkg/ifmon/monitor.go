//go:build linux

package ifmon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"

	"github.com/jkoelker/ifwatch/pkg/netutil"
)

// ErrNotConfigured signals that the monitor dependency was not injected.
var ErrNotConfigured = errors.New("interface monitor not configured")

const (
	defaultQueueSize       = 16
	defaultSubscriberQueue = 16
)

type linkSubscribeFunc func(chan<- netlink.LinkUpdate, <-chan struct{}) error
type addrSubscribeFunc func(chan<- netlink.AddrUpdate, <-chan struct{}) error

// Monitor subscribes to kernel link and address updates once and fans the
// normalized events out to any number of subscribers. Slow subscribers drop
// events rather than stall the kernel socket.
type Monitor struct {
	linkSubscribe linkSubscribeFunc
	addrSubscribe addrSubscribeFunc

	queueSize          int
	subscriberQueueLen int

	log *slog.Logger

	startMu sync.Mutex
	started bool

	subscribersMu sync.RWMutex
	subscribers   map[uint64]*subscriber
	nextID        uint64
}

// New builds a Monitor with the provided options.
func New(opts ...func(*Monitor)) *Monitor {
	monitor := &Monitor{
		linkSubscribe:      netlink.LinkSubscribe,
		addrSubscribe:      netlink.AddrSubscribe,
		queueSize:          defaultQueueSize,
		subscriberQueueLen: defaultSubscriberQueue,
		subscribers:        make(map[uint64]*subscriber),
	}

	for _, opt := range opts {
		opt(monitor)
	}

	if monitor.log == nil {
		monitor.log = slog.New(slog.DiscardHandler)
	}

	return monitor
}

// Run starts the underlying netlink subscriptions if they are not already
// running. The subscriptions end and all subscriber channels close when ctx
// is canceled.
func (m *Monitor) Run(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}

	m.startMu.Lock()
	defer m.startMu.Unlock()

	if m.started {
		return nil
	}

	linkCh := make(chan netlink.LinkUpdate, m.queueSize)
	addrCh := make(chan netlink.AddrUpdate, m.queueSize)
	done := make(chan struct{})

	if err := m.linkSubscribe(linkCh, done); err != nil {
		close(done)

		return fmt.Errorf("subscribe link updates: %w", err)
	}

	if err := m.addrSubscribe(addrCh, done); err != nil {
		close(done)

		return fmt.Errorf("subscribe address updates: %w", err)
	}

	go func() {
		<-ctx.Done()
		close(done)
		m.shutdownSubscribers()
	}()

	go m.forwardLinks(ctx, linkCh)
	go m.forwardAddresses(ctx, addrCh)

	m.started = true

	return nil
}

// Subscribe registers a listener for change events. The returned
// Subscription must be closed by the caller to avoid leaks; it also ends
// when ctx is canceled.
func (m *Monitor) Subscribe(ctx context.Context) (*Subscription, error) {
	if m == nil {
		return nil, ErrNotConfigured
	}

	if ctx == nil {
		return nil, ErrNilContext
	}

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("subscribe context closed: %w", ctx.Err())
	default:
	}

	sub := &subscriber{
		events: make(chan Event, m.subscriberQueueLen),
	}

	m.subscribersMu.Lock()
	sub.id = m.nextID
	m.nextID++
	m.subscribers[sub.id] = sub
	m.subscribersMu.Unlock()

	go func() {
		<-ctx.Done()
		m.removeSubscriber(sub.id)
	}()

	return &Subscription{
		Events: sub.events,
		cancel: func() {
			m.removeSubscriber(sub.id)
		},
	}, nil
}

func (m *Monitor) forwardLinks(ctx context.Context, updates <-chan netlink.LinkUpdate) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}

			m.broadcast(eventFromLink(update))
		}
	}
}

func (m *Monitor) forwardAddresses(ctx context.Context, updates <-chan netlink.AddrUpdate) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}

			m.broadcast(eventFromAddr(update))
		}
	}
}

func (m *Monitor) broadcast(event Event) {
	m.subscribersMu.RLock()
	defer m.subscribersMu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub.events <- event:
		default:
			m.log.Debug(
				"dropping change event due to subscriber backlog",
				"subscriber", sub.id,
				"op", event.Op.String(),
			)
		}
	}
}

func (m *Monitor) removeSubscriber(id uint64) {
	m.subscribersMu.Lock()
	sub, ok := m.subscribers[id]
	if ok {
		delete(m.subscribers, id)
	}
	m.subscribersMu.Unlock()

	if !ok {
		return
	}

	sub.closeOnce.Do(func() {
		close(sub.events)
	})
}

func (m *Monitor) shutdownSubscribers() {
	m.subscribersMu.Lock()
	subs := make([]*subscriber, 0, len(m.subscribers))
	for _, sub := range m.subscribers {
		subs = append(subs, sub)
	}
	m.subscribers = make(map[uint64]*subscriber)
	m.subscribersMu.Unlock()

	for _, sub := range subs {
		sub.closeOnce.Do(func() {
			close(sub.events)
		})
	}
}

func eventFromLink(update netlink.LinkUpdate) Event {
	op := LinkUpdated
	if update.Header.Type == unix.RTM_DELLINK {
		op = LinkRemoved
	}

	event := Event{
		Op:      op,
		IfIndex: int(update.Index),
		Up:      update.Flags&unix.IFF_UP != 0,
	}

	if update.Link != nil {
		if attrs := update.Link.Attrs(); attrs != nil {
			event.IfName = attrs.Name
		}
	}

	return event
}

func eventFromAddr(update netlink.AddrUpdate) Event {
	op := AddrAdded
	if !update.NewAddr {
		op = AddrRemoved
	}

	event := Event{
		Op:      op,
		IfIndex: update.LinkIndex,
	}

	if prefix, ok := netutil.PrefixFromIPNet(update.LinkAddress); ok {
		event.Addr = prefix
	}

	return event
}
