package repository

import (
	"time"

	"vida-backend/internal/reminder/domain"
)

// ReminderRepository defines the interface for reminder data access
type ReminderRepository interface {
	Create(reminder *domain.Reminder) error
	FindByID(id string) (*domain.Reminder, error)

	// FindDueUnnotified returns reminders past their target time whose
	// due-time notice has not been attempted (is_email_sent = false)
	FindDueUnnotified(now time.Time) ([]*domain.Reminder, error)

	// FindUpcomingUnsent returns reminders not yet dispatched through
	// the lead-time path (is_sent = false) with a target up to the
	// given horizon, so the scan can infer lead times for them
	FindUpcomingUnsent(until time.Time) ([]*domain.Reminder, error)

	// MarkSent flips is_sent after a lead-time dispatch attempt
	MarkSent(id string) error

	// MarkEmailSent flips is_email_sent after a due-time dispatch attempt
	MarkEmailSent(id string) error
}
