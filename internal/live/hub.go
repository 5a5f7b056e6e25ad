// Package live provides cancellable live queries over the document store.
//
// Writers publish a topic after they commit; every subscription on that topic
// refetches and delivers a fresh snapshot. Delivery is last-write-wins: a
// slow reader only ever sees the latest snapshot.
package live

import (
	"io"
	"log/slog"
	"sync"
)

// ProjectsTopic is published whenever a user's projects change.
func ProjectsTopic(userID string) string { return "projects/" + userID }

// SessionsTopic is published whenever a user's sessions change.
func SessionsTopic(userID string) string { return "sessions/" + userID }

// Hub fans change notifications out to subscribers.
type Hub struct {
	log *slog.Logger

	mu     sync.Mutex
	topics map[string]map[int]chan struct{}
	next   int
}

// NewHub creates a Hub. A nil logger discards listener errors.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Hub{log: logger, topics: make(map[string]map[int]chan struct{})}
}

// Publish signals the subscribers of each topic. It never blocks; pending
// signals coalesce.
func (h *Hub) Publish(topics ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, t := range topics {
		for _, ch := range h.topics[t] {
			signal(ch)
		}
	}
}

// PublishAll signals every subscriber regardless of topic.
func (h *Hub) PublishAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, subs := range h.topics {
		for _, ch := range subs {
			signal(ch)
		}
	}
}

// Subscribers returns the number of live subscriptions on topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.topics[topic])
}

func (h *Hub) watch(topic string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	h.mu.Lock()
	id := h.next
	h.next++
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[int]chan struct{})
	}
	h.topics[topic][id] = ch
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		delete(h.topics[topic], id)
		if len(h.topics[topic]) == 0 {
			delete(h.topics, topic)
		}
		h.mu.Unlock()
	}
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
