package delivery

import (
	"net/http"

	"vida-backend/internal/auth/repository"

	"github.com/gin-gonic/gin"
)

// TokenHandler handles push token registration
type TokenHandler struct {
	tokenRepo repository.PushTokenRepository
}

// NewTokenHandler creates a new TokenHandler
func NewTokenHandler(tokenRepo repository.PushTokenRepository) *TokenHandler {
	return &TokenHandler{
		tokenRepo: tokenRepo,
	}
}

// RegisterTokenRequest represents the request body for registering a push token
type RegisterTokenRequest struct {
	Token    string `json:"token" binding:"required"`
	Platform string `json:"platform"`
}

// RegisterToken saves a push token for the authenticated user
// POST /api/push-tokens
func (h *TokenHandler) RegisterToken(c *gin.Context) {
	userID := c.GetString("userID")

	var req RegisterTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	if err := h.tokenRepo.SaveToken(userID, req.Token, req.Platform); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UnregisterToken removes a push token
// DELETE /api/push-tokens/:token
func (h *TokenHandler) UnregisterToken(c *gin.Context) {
	token := c.Param("token")

	if err := h.tokenRepo.DeleteToken(token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to unregister token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
