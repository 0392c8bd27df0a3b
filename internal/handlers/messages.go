package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"social-service/internal/models"
)

type MessageService interface {
	Send(ctx context.Context, senderID, receiverID uuid.UUID, content string) (models.MessageView, error)
	List(ctx context.Context, callerID uuid.UUID) ([]models.MessageView, error)
	MarkSeen(ctx context.Context, callerID, messageID uuid.UUID) (models.MessageView, error)
}

// MessagesHandler serves direct message endpoints.
type MessagesHandler struct {
	service MessageService
}

func NewMessagesHandler(service MessageService) *MessagesHandler {
	return &MessagesHandler{service: service}
}

func (h *MessagesHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/messages", h.ListMessages)
	rg.POST("/messages", h.SendMessage)
	rg.PUT("/messages/:id/seen", h.MarkSeen)
}

func (h *MessagesHandler) ListMessages(c *gin.Context) {
	msgs, err := h.service.List(c.Request.Context(), userIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (h *MessagesHandler) SendMessage(c *gin.Context) {
	var req struct {
		ReceiverID string `json:"receiver_id" binding:"required"`
		Content    string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	receiverID, err := uuid.Parse(req.ReceiverID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid receiver_id"})
		return
	}

	msg, err := h.service.Send(c.Request.Context(), userIDFromContext(c), receiverID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *MessagesHandler) MarkSeen(c *gin.Context) {
	messageID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	msg, err := h.service.MarkSeen(c.Request.Context(), userIDFromContext(c), messageID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}
