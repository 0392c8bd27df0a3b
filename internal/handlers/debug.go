package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"social-service/internal/logger"
)

// TokenIssuer signs access tokens for the debug routes.
type TokenIssuer interface {
	Issue(userID uuid.UUID) (string, error)
}

// RegisterDebugRoutes wires debug-only endpoints.
func RegisterDebugRoutes(router *gin.Engine, tokens TokenIssuer, enabled bool) {
	if !enabled {
		return
	}

	router.GET("/debug/token/:user_id", func(c *gin.Context) {
		userID, ok := uuidParam(c, "user_id")
		if !ok {
			return
		}
		token, err := tokens.Issue(userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
			return
		}
		logger.Warn("debug token issued", "user_id", userID, "request_id", requestIDFromContext(c))
		c.JSON(http.StatusOK, gin.H{"token": token})
	})
}

// RegisterHealthRoutes wires the liveness check.
func RegisterHealthRoutes(router *gin.Engine) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
