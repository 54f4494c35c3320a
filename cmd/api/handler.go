package api

import (
	authDelivery "vida-backend/internal/auth/delivery"
	chatDelivery "vida-backend/internal/chat/delivery"
	inboundDelivery "vida-backend/internal/inbound/delivery"
	"vida-backend/pkg/config"
	"vida-backend/pkg/sse"

	"github.com/gin-gonic/gin"
)

// Handler owns the HTTP surface
type Handler struct {
	config         *config.Config
	sseManager     *sse.Manager
	chatHandler    *chatDelivery.ChatHandler
	tokenHandler   *authDelivery.TokenHandler
	webhookHandler *inboundDelivery.WebhookHandler
}

// NewHandler creates the HTTP handler
func NewHandler(
	cfg *config.Config,
	sseManager *sse.Manager,
	chatHandler *chatDelivery.ChatHandler,
	tokenHandler *authDelivery.TokenHandler,
	webhookHandler *inboundDelivery.WebhookHandler,
) *Handler {
	return &Handler{
		config:         cfg,
		sseManager:     sseManager,
		chatHandler:    chatHandler,
		tokenHandler:   tokenHandler,
		webhookHandler: webhookHandler,
	}
}

// Start runs the HTTP server
func (h *Handler) Start(addr string) error {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.config, h.sseManager, h.chatHandler, h.tokenHandler, h.webhookHandler)

	return r.Run(addr)
}
