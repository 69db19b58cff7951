package eventhub

import (
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
)

// Event is one batch-completion notification pushed to dashboard clients.
type Event struct {
	Kind           string    `json:"kind"`
	TargetFormat   string    `json:"targetFormat"`
	Converted      int       `json:"converted"`
	Failed         int       `json:"failed"`
	OriginalBytes  int64     `json:"originalBytes"`
	ConvertedBytes int64     `json:"convertedBytes"`
	At             time.Time `json:"at"`
}

// Hub holds WebSocket connections and broadcasts conversion events to all clients.
type Hub struct {
	mu    sync.RWMutex
	conns map[*websocket.Conn]struct{}
}

// New creates a new event hub.
func New() *Hub {
	return &Hub{
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// Register adds a WebSocket connection to the hub.
func (h *Hub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}
}

// Unregister removes a WebSocket connection from the hub.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
}

// Broadcast sends the event as JSON to all registered connections.
func (h *Hub) Broadcast(event Event) {
	payload, err := sonic.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		_ = conn.WriteMessage(websocket.TextMessage, payload)
	}
}
