// Package websocket pushes consultation changes to open admin dashboards.
package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
)

const EntityConsultation = "consultation"

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Message is the JSON frame sent to dashboards.
type Message struct {
	Type   string `json:"type"`
	Entity string `json:"entity"`
	Action string `json:"action"`
	ID     int64  `json:"id,omitempty"`
	Status string `json:"status,omitempty"`
}

// ConsultationEvent builds a message such as consultation_created.
func ConsultationEvent(action string, id int64) Message {
	return Message{
		Type:   EntityConsultation + "_" + action,
		Entity: EntityConsultation,
		Action: action,
		ID:     id,
	}
}

// Hub fans messages out to every connected client.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	dropped atomic.Int64
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("client connected", "email", c.email, "session_id", c.sessionID)
}

// Unregister removes c and closes its send channel. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Broadcast queues msg for every client. A client whose buffer is full
// misses the message; the send never blocks.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.dropped.Add(1)
			h.logger.Debug("client buffer full, message dropped", "type", msg.Type, "email", c.email)
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped is the number of messages discarded on full buffers.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// DisconnectSession closes every client opened under sessionID and returns
// how many there were.
func (h *Hub) DisconnectSession(sessionID int64) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for c := range h.clients {
		if c.sessionID != sessionID {
			continue
		}
		c.reason = closeSignedOut
		delete(h.clients, c)
		close(c.send)
		n++
	}
	if n > 0 {
		h.logger.Debug("session clients disconnected", "session_id", sessionID, "count", n)
	}
	return n
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
