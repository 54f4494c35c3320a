package domain

import "time"

// PushToken represents a device token for push notifications
type PushToken struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index;not null"`
	Token     string    `json:"-" gorm:"uniqueIndex;not null"` // Don't expose token in JSON
	Platform  string    `json:"platform"`                      // web, android, ios
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
