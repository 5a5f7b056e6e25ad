package live

import (
	"context"
	"sync"
)

// Feed keeps at most one subscription alive and mirrors its results. Calling
// Listen again cancels the previous subscription first.
type Feed[T any] struct {
	hub    *Hub
	mirror Mirror[T]

	mu  sync.Mutex
	sub *Subscription[T]
	gen uint64
}

func NewFeed[T any](hub *Hub) *Feed[T] {
	return &Feed[T]{hub: hub}
}

// Listen subscribes to topic. onUpdate, if set, runs after every snapshot
// has been applied to the mirror. It runs on the feed's goroutine and may
// call Listen or Stop; snapshots of a replaced subscription are dropped.
func (f *Feed[T]) Listen(ctx context.Context, topic string, fetch FetchFunc[T], onUpdate func(Snapshot[T])) {
	f.mu.Lock()
	old := f.sub
	f.gen++
	gen := f.gen
	sub := Subscribe(ctx, f.hub, topic, fetch)
	f.sub = sub
	f.mu.Unlock()

	if old != nil {
		old.Cancel()
	}

	go func() {
		for snap := range sub.C() {
			if !f.apply(gen, snap) {
				continue
			}
			if onUpdate != nil {
				onUpdate(snap)
			}
		}
	}()
}

// apply mirrors snap if gen is still the active subscription.
func (f *Feed[T]) apply(gen uint64, snap Snapshot[T]) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		return false
	}
	f.mirror.Apply(snap)
	return true
}

// Stop cancels the active subscription, if any. No snapshot is mirrored
// after Stop returns; a callback already running is not waited for.
func (f *Feed[T]) Stop() {
	f.mu.Lock()
	sub := f.sub
	f.sub = nil
	f.gen++
	f.mu.Unlock()

	if sub != nil {
		sub.Cancel()
	}
}

func (f *Feed[T]) Items() []T { return f.mirror.Items() }

func (f *Feed[T]) Err() error { return f.mirror.Err() }
