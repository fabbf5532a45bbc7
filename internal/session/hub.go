// Package session implements the per-connection coordinator: it tracks a
// connection's identity and room binding, translates wire operations into
// registry and engine calls, and delivers broadcasts.
package session

import (
	"sync"
)

// Sender is the outbound half of a client connection. server.Conn satisfies
// it; tests substitute an in-memory implementation.
type Sender interface {
	WriteFrame(data []byte) error
}

// Hub maps connection handles to their senders so room broadcasts can reach
// both seats. All methods are safe for concurrent use.
type Hub struct {
	mu      sync.RWMutex
	senders map[string]Sender
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{senders: make(map[string]Sender)}
}

// Register binds a handle to its sender.
//
// Precondition: handle must be non-empty.
func (h *Hub) Register(handle string, s Sender) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.senders[handle] = s
}

// Unregister removes a handle. Safe to call for unknown handles.
func (h *Hub) Unregister(handle string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.senders, handle)
}

// Send delivers one encoded frame to the given handle. Delivery to a
// departed or stalled peer is best-effort; the peer's own read loop surfaces
// its transport failure.
func (h *Hub) Send(handle string, frame []byte) {
	h.mu.RLock()
	s, ok := h.senders[handle]
	h.mu.RUnlock()
	if !ok {
		return
	}
	_ = s.WriteFrame(frame)
}

// SendAll delivers one encoded frame to every given handle except the
// excluded one (empty string excludes nobody).
//
// Precondition: The caller must not hold any room lock; sends may block on
// slow peers.
func (h *Hub) SendAll(handles []string, frame []byte, exclude string) {
	for _, handle := range handles {
		if handle == "" || handle == exclude {
			continue
		}
		h.Send(handle, frame)
	}
}
