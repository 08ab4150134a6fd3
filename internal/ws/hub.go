package ws

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"bx-pool/internal/event"
)

type Hub struct {
	clients map[*websocket.Conn]bool
	mu      sync.Mutex
	log     *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]bool),
		log:     log.Named("ws"),
	}
}

func (h *Hub) Broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.Debug("drop client", zap.Error(err))
			delete(h.clients, c)
			c.Close()
		}
	}
}

func (h *Hub) BroadcastJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		h.log.Warn("encode broadcast", zap.Error(err))
		return
	}
	h.Broadcast(data)
}

// Subscribe forwards every pool event to connected clients.
func (h *Hub) Subscribe(bus *event.Bus) {
	bus.SubscribeAll(h.BroadcastJSON)
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) Handler(c *websocket.Conn) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		if h.clients[c] {
			delete(h.clients, c)
			c.Close()
		}
		h.mu.Unlock()
	}()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}
