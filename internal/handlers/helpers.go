package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"social-service/internal/apperrors"
	"social-service/internal/middleware"
	"social-service/internal/observability"
)

// userIDFromContext returns the caller set by the auth middleware, or uuid.Nil.
func userIDFromContext(c *gin.Context) uuid.UUID {
	if val, ok := c.Get(middleware.UserIDKey); ok {
		if id, ok := val.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

func requestIDFromContext(c *gin.Context) string {
	if id := observability.RequestIDFromContext(c.Request.Context()); id != "" {
		return id
	}
	return observability.RequestIDFromRequest(c.Request)
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// respondError writes err as {"error": message} with the status of its kind.
func respondError(c *gin.Context, err error) {
	c.JSON(apperrors.HTTPStatus(err), gin.H{"error": apperrors.PublicMessage(err)})
}
