package domain

import "time"

// Goal is a user objective, creatable directly or as a pipeline side
// effect. IsEmailSent flips once when the due notice has been attempted.
type Goal struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	UserID      string     `json:"user_id" gorm:"index;not null"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty" gorm:"index"`
	IsEmailSent bool       `json:"is_email_sent" gorm:"default:false"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Journal is a free-form diary entry
type Journal struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index;not null"`
	Title     string    `json:"title,omitempty"`
	Content   string    `json:"content" gorm:"not null"`
	Mood      string    `json:"mood,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CalendarEvent is a scheduled appointment. EndTime defaults to
// StartTime + 1h at creation when the model omits it.
type CalendarEvent struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	UserID      string    `json:"user_id" gorm:"index;not null"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description,omitempty"`
	StartTime   time.Time `json:"start_time" gorm:"index;not null"`
	EndTime     time.Time `json:"end_time"`
	IsEmailSent bool      `json:"is_email_sent" gorm:"default:false"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LifeArea scores one dimension of the user's life (health, career...)
type LifeArea struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index;not null"`
	Name      string    `json:"name" gorm:"not null"`
	Score     *int      `json:"score,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
