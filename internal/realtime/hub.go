package realtime

import (
	"sync"

	"cache-viewer/internal/models"
)

// Client is a single snapshot subscriber (a terminal view, a websocket connection).
type Client interface {
	Send(snap models.Snapshot) bool
	Close()
}

// Hub maintains active subscribers and broadcasts snapshots to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[Client]struct{}
	closed  bool
}

// NewHub returns an empty hub. Each viewer owns its own hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[Client]struct{}),
	}
}

// Register adds a client. Registering on a closed hub closes the client immediately.
func (h *Hub) Register(client Client) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		client.Close()
		return
	}
	h.clients[client] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client without closing it.
func (h *Hub) Unregister(client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, client)
}

// Broadcast sends a snapshot to every client and drops the ones whose send failed.
func (h *Hub) Broadcast(snap models.Snapshot) {
	h.mu.RLock()
	var failed []Client
	for c := range h.clients {
		if ok := c.Send(snap); !ok {
			failed = append(failed, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range failed {
		h.Unregister(c)
	}
}

// Len returns the number of registered clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close closes and forgets every client; later registrations are refused.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[Client]struct{})
	h.closed = true
	h.mu.Unlock()

	for c := range clients {
		c.Close()
	}
}
