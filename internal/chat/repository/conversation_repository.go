package repository

import (
	"errors"
	"time"

	chatdomain "vida-backend/internal/chat/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConversationRepository defines the interface for conversation data access
type ConversationRepository interface {
	Create(conv *chatdomain.Conversation) error
	FindByID(id string) (*chatdomain.Conversation, error)
	// FindCanonicalByUser returns the most recently created conversation
	// for the user, or nil when the user has none.
	FindCanonicalByUser(userID string) (*chatdomain.Conversation, error)
}

// conversationRepository implements ConversationRepository using GORM
type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository creates a new GORM-based ConversationRepository
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) Create(conv *chatdomain.Conversation) error {
	if conv.ID == "" {
		conv.ID = uuid.New().String()
	}
	conv.CreatedAt = time.Now()
	conv.UpdatedAt = time.Now()
	return r.db.Create(conv).Error
}

func (r *conversationRepository) FindByID(id string) (*chatdomain.Conversation, error) {
	var conv chatdomain.Conversation
	err := r.db.Where("id = ?", id).First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepository) FindCanonicalByUser(userID string) (*chatdomain.Conversation, error) {
	var conv chatdomain.Conversation
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}
