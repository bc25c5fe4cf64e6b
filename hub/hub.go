// Package hub broadcasts order events to connected admin dashboard clients
// over websocket. Delivery is best effort: a dead client is logged and
// skipped, never blocking the rest of the fan-out.
package hub

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/karaokehub/songbot/models"
	"github.com/karaokehub/songbot/utils"
)

// Event types pushed to dashboard clients.
const (
	EventOrderCreated   = "order_created"
	EventOrderCompleted = "order_completed"
	EventOrderCancelled = "order_cancelled"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub tracks connected dashboard clients.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]struct{})}
}

// Register adds a connection to the broadcast set.
func (h *Hub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = struct{}{}
}

// Unregister removes and closes a connection.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
	conn.Close()
}

// BroadcastOrderCreated pushes a new pending order to all clients.
func (h *Hub) BroadcastOrderCreated(order models.Order) {
	h.broadcast(Message{Event: EventOrderCreated, Data: order})
}

// BroadcastOrderResolved pushes a completed or cancelled order to all
// clients.
func (h *Hub) BroadcastOrderResolved(order models.Order) {
	event := EventOrderCompleted
	if order.Status == models.OrderStatusCancelled {
		event = EventOrderCancelled
	}
	h.broadcast(Message{Event: event, Data: order})
}

func (h *Hub) broadcast(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("hub: marshal message: %v", err)
		return
	}

	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("hub: write to client failed: %v", err)
			continue
		}
	}
}
