package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ipex/docregistro/internal/services/records"
	"go.uber.org/zap"
)

const broadcastBuffer = 64

// Hub maintains the set of active clients and broadcasts record events
type Hub struct {
	// Registered clients map: ClientID -> Client
	clients map[string]*Client

	// Register requests
	register chan *Client

	// Unregister requests
	unregister chan *Client

	// Outbound events for every client
	broadcast chan []byte

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex

	logger *zap.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, broadcastBuffer),
		clients:    make(map[string]*Client),
		logger:     logger,
	}
}

// Run starts the hub's main loop; it returns when ctx is done
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				close(client.send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			// If a client connects again with the same id, close the old connection
			if old, ok := h.clients[client.ClientID]; ok {
				close(old.send)
			}
			h.clients[client.ClientID] = client
			h.mu.Unlock()
			h.logger.Debug("Websocket client connected",
				zap.String("client_id", client.ClientID), zap.String("user_id", client.UserID))

		case client := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clients[client.ClientID]; ok && current == client {
				delete(h.clients, client.ClientID)
				close(client.send)
				h.logger.Debug("Websocket client disconnected", zap.String("client_id", client.ClientID))
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for id, client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer: drop it
					close(client.send)
					delete(h.clients, id)
					h.logger.Warn("Dropping slow websocket client", zap.String("client_id", id))
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish implements records.Publisher. It never blocks: events are dropped
// when the broadcast buffer is full.
func (h *Hub) Publish(event records.Event) {
	msg, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Error marshaling event", zap.Error(err))
		return
	}

	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("Broadcast buffer full, event dropped",
			zap.String("type", event.Type), zap.Uint("id", event.ID))
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
