package domain

import "time"

// Reminder is scheduled free text with a target time. The two flags
// track two distinct notification concerns: IsSent covers the
// lead-time (anticipatory) notice, IsEmailSent covers the plain
// due-time notice. Each transitions false→true exactly once, only
// after an attempted dispatch, and is never reset.
type Reminder struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	UserID      string    `json:"user_id" gorm:"index;not null"`
	Message     string    `json:"message" gorm:"not null"`
	RemindAt    time.Time `json:"remind_at" gorm:"index;not null"`
	IsSent      bool      `json:"is_sent" gorm:"default:false"`
	IsEmailSent bool      `json:"is_email_sent" gorm:"default:false"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
