package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"social-service/internal/friendship"
	"social-service/internal/models"
)

// FriendshipService is the friendship state machine and query side.
type FriendshipService interface {
	CreateRequest(ctx context.Context, callerID, recipientID uuid.UUID) (models.FriendshipView, error)
	Respond(ctx context.Context, callerID, requestID uuid.UUID, action friendship.Action) (models.FriendshipView, error)
	ListFriends(ctx context.Context, callerID uuid.UUID) ([]models.PublicProfile, error)
	ListIncomingRequests(ctx context.Context, callerID uuid.UUID) ([]models.FriendshipView, error)
	ListOutgoingRequests(ctx context.Context, callerID uuid.UUID) ([]models.FriendshipView, error)
	AuditLog(ctx context.Context, callerID uuid.UUID) ([]models.FriendshipView, error)
}

// FriendsHandler serves the /friends endpoints.
type FriendsHandler struct {
	service FriendshipService
}

func NewFriendsHandler(service FriendshipService) *FriendsHandler {
	return &FriendsHandler{service: service}
}

func (h *FriendsHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/friends", h.ListFriends)
	rg.GET("/friends/requests", h.ListRequests)
	rg.GET("/friends/requests/sent", h.ListSentRequests)
	rg.POST("/friends/requests", h.CreateRequest)
	rg.PUT("/friends/requests/:id", h.RespondRequest)
	rg.GET("/friends/log", h.AuditLog)
}

// ListFriends returns the caller's friends.
func (h *FriendsHandler) ListFriends(c *gin.Context) {
	friends, err := h.service.ListFriends(c.Request.Context(), userIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"friends": friends})
}

// ListRequests returns pending requests addressed to the caller.
func (h *FriendsHandler) ListRequests(c *gin.Context) {
	requests, err := h.service.ListIncomingRequests(c.Request.Context(), userIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// ListSentRequests returns pending requests the caller has sent.
func (h *FriendsHandler) ListSentRequests(c *gin.Context) {
	requests, err := h.service.ListOutgoingRequests(c.Request.Context(), userIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// CreateRequest sends a friend request. The recipient comes from the JSON
// body or, failing that, the receiver_id query parameter.
func (h *FriendsHandler) CreateRequest(c *gin.Context) {
	var req struct {
		ReceiverID string `json:"receiver_id"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}
	if req.ReceiverID == "" {
		req.ReceiverID = c.Query("receiver_id")
	}
	if req.ReceiverID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "receiver_id is required"})
		return
	}
	receiverID, err := uuid.Parse(req.ReceiverID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid receiver_id"})
		return
	}

	view, err := h.service.CreateRequest(c.Request.Context(), userIDFromContext(c), receiverID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// RespondRequest accepts, rejects or marks a request as seen.
func (h *FriendsHandler) RespondRequest(c *gin.Context) {
	requestID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	raw := c.Query("action")
	if raw == "" && c.Request.ContentLength > 0 {
		var body struct {
			Action string `json:"action"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		raw = body.Action
	}
	action, err := friendship.ParseAction(raw)
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := h.service.Respond(c.Request.Context(), userIDFromContext(c), requestID, action)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// AuditLog returns every friendship record to staff.
func (h *FriendsHandler) AuditLog(c *gin.Context) {
	log, err := h.service.AuditLog(c.Request.Context(), userIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"log": log})
}
