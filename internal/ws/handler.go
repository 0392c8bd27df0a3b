package ws

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"social-service/internal/observability"
)

// TokenParser verifies an access token and returns its user id.
type TokenParser interface {
	Parse(token string) (uuid.UUID, error)
}

const (
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Handler upgrades authenticated requests into notification streams.
type Handler struct {
	hub        *Hub
	tokens     TokenParser
	pongWait   time.Duration
	pingPeriod time.Duration
}

func NewHandler(hub *Hub, tokens TokenParser) *Handler {
	return &Handler{hub: hub, tokens: tokens, pongWait: pongWait, pingPeriod: pingPeriod}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle authenticates from the Authorization header or the token query
// parameter, then keeps the socket registered until the client goes away.
func (h *Handler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("social-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := c.Query("token")
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			token = strings.TrimSpace(parts[1])
		}
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	userID, err := h.tokens.Parse(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	info := ConnInfo{
		ConnID:      uuid.NewString(),
		UserID:      userID,
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	client := h.hub.add(conn, info)
	observability.IncWSActive()
	h.hub.publish(EventConnect, info, "")

	done := make(chan struct{})
	go h.keepAlive(client, done)

	go func() {
		var closeReason string
		defer func() {
			close(done)
			if h.hub.remove(client) {
				observability.DecWSActive()
			}
			h.hub.publish(EventDisconnect, info, closeReason)
			_ = conn.Close()
		}()
		conn.SetReadLimit(maxMessageSize)
		_ = conn.SetReadDeadline(time.Now().Add(h.pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(h.pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					h.hub.publish(EventError, info, closeReason)
				}
				return
			}
		}
	}()
}

// keepAlive pings the client until done is closed. A peer that stops
// answering hits the read deadline and is dropped by the read loop.
func (h *Handler) keepAlive(c *client, done <-chan struct{}) {
	ticker := time.NewTicker(h.pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := c.ping(); err != nil {
				return
			}
		}
	}
}
