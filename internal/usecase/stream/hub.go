package stream

import "sync"

// Subscription is one receiver of broadcast messages. Slow subscribers drop
// messages rather than stalling the broadcaster.
type Subscription struct {
	ch chan []byte
}

// C returns the subscription's receive channel. It is closed on unsubscribe.
func (s *Subscription) C() <-chan []byte {
	return s.ch
}

// Hub fans broadcast messages out to all current subscriptions.
type Hub struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{})}
}

// Subscribe registers a new subscription with the given channel buffer.
func (h *Hub) Subscribe(buffer int) *Subscription {
	sub := &Subscription{ch: make(chan []byte, buffer)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Unsubscribe removes the subscription and closes its channel.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.ch)
	}
	h.mu.Unlock()
}

// Broadcast delivers the message to every subscription that has room.
func (h *Hub) Broadcast(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		select {
		case sub.ch <- message:
		default:
		}
	}
}

// Subscribers returns the current subscription count.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
