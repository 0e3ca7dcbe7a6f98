package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/dukerupert/larder/internal/model"
)

// Message notifies connected clients that an item changed, so other
// open tabs can refresh without polling.
type Message struct {
	Type string      `json:"type"`
	ID   int64       `json:"id"`
	Item *model.Item `json:"item,omitempty"`
}

// ItemCreated, ItemUpdated and ItemDeleted build the three broadcast
// message kinds. Deletions carry no payload since the row is gone.
func ItemCreated(item *model.Item) Message {
	return Message{Type: "item_created", ID: item.ID, Item: item}
}

func ItemUpdated(item *model.Item) Message {
	return Message{Type: "item_updated", ID: item.ID, Item: item}
}

func ItemDeleted(id int64) Message {
	return Message{Type: "item_deleted", ID: id}
}

// Hub maintains the set of active WebSocket clients and broadcasts
// messages to all of them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends a message to all connected clients.
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
			// Client buffer full — drop message to avoid blocking
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
