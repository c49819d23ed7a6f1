// Package sse delivers engine events to connected clients over
// server-sent-event streams. The hub is the live implementation of the
// engine's event sink; emission is non-blocking so a slow subscriber can
// never stall a check-in.
package sse

import (
	"sync"
)

// Event is one message pushed to a subscriber.
type Event struct {
	Name   string
	UserID string
	Data   any
}

// Hub fans events out to per-user subscriber channels.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a listener for a user and returns the event channel
// plus a cleanup function the caller must invoke when the stream closes.
func (h *Hub) Subscribe(userID string) (chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 10)
	if h.subscribers[userID] == nil {
		h.subscribers[userID] = make(map[chan Event]struct{})
	}
	h.subscribers[userID][ch] = struct{}{}

	cleanup := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subscribers[userID], ch)
		close(ch)
		if len(h.subscribers[userID]) == 0 {
			delete(h.subscribers, userID)
		}
	}
	return ch, cleanup
}

// Emit implements the engine's event sink. Events to users with no open
// stream are dropped; full channels are skipped rather than blocked on.
func (h *Hub) Emit(event string, userID string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[userID] {
		select {
		case ch <- Event{Name: event, UserID: userID, Data: payload}:
		default:
		}
	}
}

// SubscriberCount returns the number of open streams for a user.
func (h *Hub) SubscriberCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[userID])
}
