package api

import (
	"net/http"

	authDelivery "vida-backend/internal/auth/delivery"
	chatDelivery "vida-backend/internal/chat/delivery"
	inboundDelivery "vida-backend/internal/inbound/delivery"
	"vida-backend/pkg/config"
	"vida-backend/pkg/sse"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	r *gin.Engine,
	cfg *config.Config,
	sseManager *sse.Manager,
	chatHandler *chatDelivery.ChatHandler,
	tokenHandler *authDelivery.TokenHandler,
	webhookHandler *inboundDelivery.WebhookHandler,
) {
	auth := authDelivery.AuthMiddleware(cfg.JWTSecret)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// SSE endpoint for in-app realtime notifications
		api.GET("/events", auth, func(c *gin.Context) {
			userID := c.GetString("userID")
			sseManager.ServeHTTP(c, userID)
		})

		// Chat routes (protected)
		chat := api.Group("/chat")
		chat.Use(auth)
		{
			chat.POST("", chatHandler.SendMessage)
			chat.GET("/history", chatHandler.GetHistory)
		}

		// Push token routes (protected)
		tokens := api.Group("/push-tokens")
		tokens.Use(auth)
		{
			tokens.POST("", tokenHandler.RegisterToken)
			tokens.DELETE("/:token", tokenHandler.UnregisterToken)
		}
	}

	// Provider webhooks (no auth; providers sign requests upstream)
	webhooks := r.Group("/webhooks")
	{
		webhooks.POST("/sms", webhookHandler.HandleSMS)
		webhooks.POST("/whatsapp", webhookHandler.HandleWhatsApp)
	}
}
