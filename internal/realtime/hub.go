package realtime

import (
	"sync"
	"time"
)

// Event types published on studio changes.
const (
	StudioCreated = "studio.created"
	StudioUpdated = "studio.updated"
	StudioDeleted = "studio.deleted"
)

// subscriberBuffer bounds how far a subscriber may lag before it is dropped.
const subscriberBuffer = 16

type Event struct {
	Type     string    `json:"type"`
	StudioID string    `json:"id"`
	At       time.Time `json:"at"`
}

// Subscription receives events until it is closed or dropped by the hub.
type Subscription struct {
	C   <-chan Event
	hub *Hub
	id  uint64
}

func (s *Subscription) Close() {
	s.hub.unsubscribe(s.id)
}

type Hub struct {
	subscribers map[uint64]chan Event
	nextID      uint64
	closed      bool
	mutex       sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[uint64]chan Event),
	}
}

func (h *Hub) Subscribe() *Subscription {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if h.closed {
		close(ch)
		return &Subscription{C: ch, hub: h}
	}

	h.nextID++
	h.subscribers[h.nextID] = ch
	return &Subscription{C: ch, hub: h, id: h.nextID}
}

func (h *Hub) unsubscribe(id uint64) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if ch, exists := h.subscribers[id]; exists {
		close(ch)
		delete(h.subscribers, id)
	}
}

// Publish never blocks: a subscriber whose buffer is full is dropped and its
// channel closed, so the reader sees the end of the stream and can reconnect.
func (h *Hub) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for id, ch := range h.subscribers {
		select {
		case ch <- ev:
		default:
			close(ch)
			delete(h.subscribers, id)
		}
	}
}

func (h *Hub) Count() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.subscribers)
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for id, ch := range h.subscribers {
		close(ch)
		delete(h.subscribers, id)
	}
	h.closed = true
}
