package delivery

import (
	"context"
	"net/http"

	chatrepo "vida-backend/internal/chat/repository"
	"vida-backend/internal/chat/usecase"

	"github.com/gin-gonic/gin"
)

// MessageProcessor is the pipeline contract the web channel forwards into
type MessageProcessor interface {
	ProcessMessage(ctx context.Context, userID, text string, channel usecase.Channel) (string, error)
}

// ChatHandler handles the web chat surface
type ChatHandler struct {
	pipeline MessageProcessor
	convRepo chatrepo.ConversationRepository
	msgRepo  chatrepo.MessageRepository
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(pipeline MessageProcessor, convRepo chatrepo.ConversationRepository, msgRepo chatrepo.MessageRepository) *ChatHandler {
	return &ChatHandler{
		pipeline: pipeline,
		convRepo: convRepo,
		msgRepo:  msgRepo,
	}
}

// SendMessageRequest represents one web chat turn
type SendMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

// SendMessage runs the pipeline for the authenticated user
// POST /api/chat
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID := c.GetString("userID")

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	reply, err := h.pipeline.ProcessMessage(c.Request.Context(), userID, req.Message, usecase.ChannelWeb)
	if err != nil {
		// Inference detail stays server-side
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

// GetHistory returns the recent messages of the canonical conversation
// GET /api/chat/history?limit=50
func (h *ChatHandler) GetHistory(c *gin.Context) {
	userID := c.GetString("userID")

	conv, err := h.convRepo.FindCanonicalByUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversation"})
		return
	}
	if conv == nil {
		c.JSON(http.StatusOK, gin.H{"messages": []interface{}{}})
		return
	}

	messages, err := h.msgRepo.FindRecentByConversation(conv.ID, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation_id": conv.ID,
		"messages":        messages,
	})
}
