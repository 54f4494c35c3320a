package domain

import "time"

// Sender identifies who authored a chat message
type Sender string

const (
	SenderUser Sender = "USER"
	SenderBot  Sender = "BOT"
)

// Conversation owns an ordered list of chat messages. The most
// recently created conversation of a user is the canonical one used by
// all automated channels (SMS, WhatsApp, scheduler notifications).
type Conversation struct {
	ID        string        `json:"id" gorm:"primaryKey"`
	UserID    string        `json:"user_id" gorm:"index;not null"`
	Title     string        `json:"title"`
	Messages  []ChatMessage `json:"messages,omitempty" gorm:"foreignKey:ConversationID"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// ChatMessage is immutable once created and belongs to exactly one
// conversation.
type ChatMessage struct {
	ID             string    `json:"id" gorm:"primaryKey"`
	ConversationID string    `json:"conversation_id" gorm:"index;not null"`
	Sender         Sender    `json:"sender" gorm:"not null"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at" gorm:"index"`
}
