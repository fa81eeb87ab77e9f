package identity

import "sync"

// Event describes an identity transition. A sign-in carries the new
// identity; a sign-out carries the identity that signed out, so
// listeners can tell whose state to tear down.
type Event struct {
	Identity Identity
	SignedIn bool
}

// Hub fans identity transitions out to subscribers. Session managers
// subscribe so a sign-out can tear down per-user state promptly.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan Event)}
}

// Subscribe registers a listener. The returned cancel func must be called
// when the listener stops draining, or Publish will drop its events.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan Event, 8)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers the event to every live subscriber without blocking.
// A subscriber with a full buffer misses the event.
func (h *Hub) Publish(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
