// Package sse fans chat events out to connected clients over
// server-sent events. Each connected client holds one buffered channel;
// a slow client drops events rather than blocking the sender.
package sse

import (
	"sync"

	"github.com/albarakah/umrah-backoffice/internal/domain"
	"github.com/albarakah/umrah-backoffice/internal/infra/observability"
	"github.com/albarakah/umrah-backoffice/internal/port"
)

const clientBuffer = 16

// Hub tracks connected clients by user ID.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[chan *domain.ChatEvent]struct{}
	metrics *observability.Metrics
}

var _ port.ChatPublisher = (*Hub)(nil)

// NewHub creates an empty hub.
func NewHub(metrics *observability.Metrics) *Hub {
	return &Hub{
		clients: make(map[string]map[chan *domain.ChatEvent]struct{}),
		metrics: metrics,
	}
}

// Subscribe registers a client for a user and returns its event channel
// plus an unsubscribe function. A user may hold several connections
// (multiple tabs); each gets every event.
func (h *Hub) Subscribe(userID string) (<-chan *domain.ChatEvent, func()) {
	ch := make(chan *domain.ChatEvent, clientBuffer)

	h.mu.Lock()
	set, ok := h.clients[userID]
	if !ok {
		set = make(map[chan *domain.ChatEvent]struct{})
		h.clients[userID] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.SSEClientConnected()
	}

	unsubscribe := func() {
		h.mu.Lock()
		if set, ok := h.clients[userID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.clients, userID)
			}
		}
		h.mu.Unlock()

		if h.metrics != nil {
			h.metrics.SSEClientDisconnected()
		}
	}
	return ch, unsubscribe
}

// Publish delivers an event to every connection of one user.
// Events to full channels are dropped; chat history lives in the store,
// the stream is only a nudge.
func (h *Hub) Publish(userID string, ev *domain.ChatEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.clients[userID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// ClientCount returns the number of open connections, for readiness
// checks and tests.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}
