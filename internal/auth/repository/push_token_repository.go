package repository

import (
	"time"

	authdomain "vida-backend/internal/auth/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PushTokenRepository defines the interface for push token operations
type PushTokenRepository interface {
	SaveToken(userID, token, platform string) error
	GetTokensByUserID(userID string) ([]authdomain.PushToken, error)
	DeleteToken(token string) error
	DeleteTokensByUserID(userID string) error
}

// pushTokenRepository implements PushTokenRepository interface
type pushTokenRepository struct {
	db *gorm.DB
}

// NewPushTokenRepository creates a new instance of pushTokenRepository
func NewPushTokenRepository(db *gorm.DB) PushTokenRepository {
	return &pushTokenRepository{
		db: db,
	}
}

// SaveToken saves or updates a push token (atomic upsert).
// When a token moves to a new user the old association is overwritten.
func (r *pushTokenRepository) SaveToken(userID, token, platform string) error {
	pushToken := &authdomain.PushToken{
		ID:        uuid.New().String(),
		UserID:    userID,
		Token:     token,
		Platform:  platform,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	// Atomic upsert: INSERT ... ON CONFLICT (token) DO UPDATE
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "platform", "updated_at"}),
	}).Create(pushToken).Error
}

// GetTokensByUserID returns all push tokens for a user
func (r *pushTokenRepository) GetTokensByUserID(userID string) ([]authdomain.PushToken, error) {
	var tokens []authdomain.PushToken
	err := r.db.Where("user_id = ?", userID).Find(&tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

// DeleteToken removes a specific push token
func (r *pushTokenRepository) DeleteToken(token string) error {
	return r.db.Where("token = ?", token).Delete(&authdomain.PushToken{}).Error
}

// DeleteTokensByUserID removes all push tokens for a user
func (r *pushTokenRepository) DeleteTokensByUserID(userID string) error {
	return r.db.Where("user_id = ?", userID).Delete(&authdomain.PushToken{}).Error
}
