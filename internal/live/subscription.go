package live

import (
	"context"
	"sync"
	"time"
)

// Snapshot is one delivery of a live query. Err is set when the refetch
// failed; Items is then nil.
type Snapshot[T any] struct {
	Items []T
	Err   error
	At    time.Time
}

// FetchFunc loads the current result set of a query.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// Subscription streams snapshots of one query until cancelled.
type Subscription[T any] struct {
	ch     chan Snapshot[T]
	cancel context.CancelFunc
	done   chan struct{}
}

// Subscribe runs fetch once immediately and again after every publish of
// topic. The channel returned by C is closed after Cancel or when ctx ends.
func Subscribe[T any](ctx context.Context, hub *Hub, topic string, fetch FetchFunc[T]) *Subscription[T] {
	ctx, cancel := context.WithCancel(ctx)
	s := &Subscription[T]{
		ch:     make(chan Snapshot[T], 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	changed, unwatch := hub.watch(topic)

	go func() {
		defer close(s.done)
		defer close(s.ch)
		defer unwatch()

		for {
			items, err := fetch(ctx)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				hub.log.Warn("live query failed", "topic", topic, "error", err)
				items = nil
			}
			s.deliver(Snapshot[T]{Items: items, Err: err, At: time.Now()})

			select {
			case <-ctx.Done():
				return
			case <-changed:
			}
		}
	}()
	return s
}

// C returns the snapshot channel.
func (s *Subscription[T]) C() <-chan Snapshot[T] { return s.ch }

// Cancel stops the subscription and waits for its goroutine to exit. It is
// safe to call more than once.
func (s *Subscription[T]) Cancel() {
	s.cancel()
	<-s.done
}

// deliver replaces any undelivered snapshot with snap. Only the subscription
// goroutine sends, so the drain-then-send loop terminates.
func (s *Subscription[T]) deliver(snap Snapshot[T]) {
	for {
		select {
		case s.ch <- snap:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

// Mirror holds the latest successful snapshot of a query. Failed snapshots
// record their error but keep the previous items.
type Mirror[T any] struct {
	mu    sync.RWMutex
	items []T
	at    time.Time
	err   error
}

// Apply folds snap into the mirror and reports whether the items changed.
func (m *Mirror[T]) Apply(snap Snapshot[T]) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if snap.Err != nil {
		m.err = snap.Err
		return false
	}
	m.items = snap.Items
	m.at = snap.At
	m.err = nil
	return true
}

// Items returns a copy of the mirrored items.
func (m *Mirror[T]) Items() []T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]T, len(m.items))
	copy(out, m.items)
	return out
}

// Err returns the error of the most recent snapshot, nil after a success.
func (m *Mirror[T]) Err() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.err
}

// UpdatedAt is when the mirrored items were fetched.
func (m *Mirror[T]) UpdatedAt() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.at
}
