package domain

import "time"

// User is the profile record consumed by the pipeline and the
// notification engine. PhoneNumber is stored in canonical form
// (digits only, country-code prefixed, e.g. 5511999999999).
type User struct {
	ID               string     `json:"id" gorm:"primaryKey"`
	Name             string     `json:"name"`
	Email            string     `json:"email" gorm:"index"`
	PhoneNumber      string     `json:"phone_number" gorm:"index"`
	PushNotification bool       `json:"push_notification" gorm:"default:true"`
	IsNotification   bool       `json:"is_notification" gorm:"default:true"`
	LastWakeUpAt     *time.Time `json:"last_wake_up_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
