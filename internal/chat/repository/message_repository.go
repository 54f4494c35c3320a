package repository

import (
	"time"

	chatdomain "vida-backend/internal/chat/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageRepository defines the interface for chat message data access
type MessageRepository interface {
	Create(msg *chatdomain.ChatMessage) error
	// FindRecentByConversation returns up to limit messages of the
	// conversation in chronological order, newest window first.
	FindRecentByConversation(conversationID string, limit int) ([]chatdomain.ChatMessage, error)
	// CountByUserSince counts messages authored by the user across all
	// their conversations since the given time.
	CountByUserSince(userID string, since time.Time) (int64, error)
}

// messageRepository implements MessageRepository using GORM
type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new GORM-based MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(msg *chatdomain.ChatMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	return r.db.Create(msg).Error
}

func (r *messageRepository) FindRecentByConversation(conversationID string, limit int) ([]chatdomain.ChatMessage, error) {
	var messages []chatdomain.ChatMessage
	err := r.db.Where("conversation_id = ?", conversationID).
		Order("created_at DESC").Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// Reverse into chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *messageRepository) CountByUserSince(userID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&chatdomain.ChatMessage{}).
		Joins("JOIN conversations ON conversations.id = chat_messages.conversation_id").
		Where("conversations.user_id = ? AND chat_messages.sender = ? AND chat_messages.created_at >= ?",
			userID, chatdomain.SenderUser, since).
		Count(&count).Error
	return count, err
}
