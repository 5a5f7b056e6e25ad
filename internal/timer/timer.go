// Package timer measures elapsed seconds of one active session.
//
// Elapsed time is derived from a wall-clock anchor rather than counted tick
// by tick, so delayed or skipped refreshes never lose time. The periodic
// refresh only caches the value for display and notifies tick listeners.
package timer

import (
	"sync"
	"time"
)

// DefaultInterval is how often a running timer refreshes its cached duration.
const DefaultInterval = time.Second

// Clock supplies the current wall-clock time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// State is the persisted form of a timer. Anchor is zero when the timer has
// never been started or was reset.
type State struct {
	Anchor   time.Time `json:"anchor"`
	Duration int64     `json:"duration"`
	Running  bool      `json:"running"`
}

type Option func(*Timer)

func WithClock(c Clock) Option {
	return func(t *Timer) { t.clock = c }
}

// WithInterval sets the refresh interval. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(t *Timer) {
		if d > 0 {
			t.interval = d
		}
	}
}

// Timer is safe for concurrent use. Tick listeners run on the refresh
// goroutine and must not block.
type Timer struct {
	clock    Clock
	interval time.Duration

	mu       sync.Mutex
	running  bool
	anchor   time.Time
	duration int64
	gen      uint64
	stop     chan struct{}
	closed   bool

	listeners map[int]func(int64)
	nextID    int

	wg sync.WaitGroup
}

func New(opts ...Option) *Timer {
	t := &Timer{
		clock:     systemClock{},
		interval:  DefaultInterval,
		listeners: make(map[int]func(int64)),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start resumes counting from the accumulated duration. It is a no-op while
// running, so calling it twice never double-counts.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running || t.closed {
		return
	}
	t.anchor = t.clock.Now().Add(-time.Duration(t.duration) * time.Second)
	t.running = true
	t.armLocked()
}

// Pause freezes the duration at its current value.
func (t *Timer) Pause() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.duration = t.elapsedLocked()
	t.running = false
	t.disarmLocked()
	d := t.duration
	t.mu.Unlock()
	t.notify(d)
}

// Reset pauses and clears the duration and anchor.
func (t *Timer) Reset() {
	t.mu.Lock()
	t.running = false
	t.disarmLocked()
	t.duration = 0
	t.anchor = time.Time{}
	t.mu.Unlock()
	t.notify(0)
}

// Duration returns elapsed whole seconds. While running it is computed from
// the anchor, so it is exact even if refreshes were missed.
func (t *Timer) Duration() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return t.elapsedLocked()
	}
	return t.duration
}

func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Anchor returns the instant the timer would have started had it never
// paused. It is zero before the first Start and after Reset.
func (t *Timer) Anchor() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.anchor
}

func (t *Timer) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	d := t.duration
	if t.running {
		d = t.elapsedLocked()
	}
	return State{Anchor: t.anchor, Duration: d, Running: t.running}
}

// Restore replaces the timer state. A running state re-arms the refresh and
// keeps counting from the saved anchor, so time spent while the process was
// gone is included.
func (t *Timer) Restore(s State) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.disarmLocked()
	t.anchor = s.Anchor
	t.duration = max(s.Duration, 0)
	t.running = s.Running && !s.Anchor.IsZero()
	if t.running {
		t.duration = t.elapsedLocked()
		t.armLocked()
	}
	d := t.duration
	t.mu.Unlock()
	t.notify(d)
}

// OnTick registers fn to receive the duration on every refresh, pause and
// reset. The returned func unregisters it.
func (t *Timer) OnTick(fn func(seconds int64)) (cancel func()) {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.listeners[id] = fn
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.listeners, id)
			t.mu.Unlock()
		})
	}
}

// Close stops the refresh goroutine and waits for it to exit. The timer keeps
// its last state but can no longer be started.
func (t *Timer) Close() {
	t.mu.Lock()
	if t.running {
		t.duration = t.elapsedLocked()
		t.running = false
	}
	t.closed = true
	t.disarmLocked()
	t.mu.Unlock()
	t.wg.Wait()
}

func (t *Timer) elapsedLocked() int64 {
	if t.anchor.IsZero() {
		return t.duration
	}
	secs := int64(t.clock.Now().Sub(t.anchor) / time.Second)
	if secs < 0 {
		return 0
	}
	return secs
}

func (t *Timer) armLocked() {
	t.gen++
	gen := t.gen
	stop := make(chan struct{})
	t.stop = stop
	t.wg.Add(1)
	go t.loop(gen, stop)
}

func (t *Timer) disarmLocked() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}

func (t *Timer) loop(gen uint64, stop <-chan struct{}) {
	defer t.wg.Done()
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.refresh(gen)
		}
	}
}

func (t *Timer) refresh(gen uint64) {
	t.mu.Lock()
	if !t.running || gen != t.gen {
		t.mu.Unlock()
		return
	}
	t.duration = t.elapsedLocked()
	d := t.duration
	t.mu.Unlock()
	t.notify(d)
}

func (t *Timer) notify(d int64) {
	t.mu.Lock()
	fns := make([]func(int64), 0, len(t.listeners))
	for _, fn := range t.listeners {
		fns = append(fns, fn)
	}
	t.mu.Unlock()
	for _, fn := range fns {
		fn(d)
	}
}
