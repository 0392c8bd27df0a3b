package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"social-service/internal/logger"
	"social-service/internal/models"
	"social-service/internal/observability"
)

const writeWait = 10 * time.Second

const (
	EventConnect    = "ws.connect"
	EventDisconnect = "ws.disconnect"
	EventError      = "ws.error"
)

type EventEmitter interface {
	Emit(ctx context.Context, eventName string, payload any)
}

type client struct {
	conn *websocket.Conn
	info ConnInfo
	mu   sync.Mutex
}

func (c *client) write(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

func (c *client) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// Hub tracks the open websocket connections of each user.
type Hub struct {
	clients map[uuid.UUID]map[*client]struct{}
	events  EventEmitter
	mu      sync.RWMutex
}

// NewHub creates an empty hub. events may be nil.
func NewHub(events EventEmitter) *Hub {
	return &Hub{
		clients: make(map[uuid.UUID]map[*client]struct{}),
		events:  events,
	}
}

func (h *Hub) add(conn *websocket.Conn, info ConnInfo) *client {
	c := &client{conn: conn, info: info}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[info.UserID]; !ok {
		h.clients[info.UserID] = make(map[*client]struct{})
	}
	h.clients[info.UserID][c] = struct{}{}
	return c
}

func (h *Hub) remove(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.clients[c.info.UserID]
	if !ok {
		return false
	}
	if _, ok := conns[c]; !ok {
		return false
	}
	delete(conns, c)
	if len(conns) == 0 {
		delete(h.clients, c.info.UserID)
	}
	return true
}

// Connections reports how many sockets userID has open.
func (h *Hub) Connections(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// NotifyUser pushes event to every connection of userID. Users without an
// open connection are skipped; delivery is best effort.
func (h *Hub) NotifyUser(userID uuid.UUID, event models.Event) {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()
	if len(targets) == 0 {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("websocket event encode failed", "type", event.Type, "error", err)
		return
	}
	for _, c := range targets {
		if err := c.write(payload); err != nil {
			logger.Warn("websocket write error", "user_id", userID, "conn_id", c.info.ConnID, "error", err)
			_ = c.conn.Close()
			if h.remove(c) {
				observability.DecWSActive()
			}
			h.publish(EventError, c.info, err.Error())
			continue
		}
		observability.IncWSEvent(event.Type)
	}
}

func (h *Hub) publish(event string, info ConnInfo, reason string) {
	observability.IncWSEvent(event)
	if h.events == nil {
		return
	}
	ctx := observability.WithRequestID(context.Background(), info.RequestID)
	h.events.Emit(ctx, event, info.payload(event, reason))
}
