package repository

import (
	"time"

	"vida-backend/internal/records/domain"
)

// GoalRepository defines the interface for goal data access
type GoalRepository interface {
	Create(goal *domain.Goal) error
	// FindDueUnnotified returns goals whose due date has passed and
	// whose email notice has not been attempted yet
	FindDueUnnotified(now time.Time) ([]*domain.Goal, error)
	MarkEmailSent(id string) error
}

// JournalRepository defines the interface for journal data access
type JournalRepository interface {
	Create(journal *domain.Journal) error
}

// CalendarEventRepository defines the interface for calendar event data access
type CalendarEventRepository interface {
	Create(event *domain.CalendarEvent) error
	// FindDueUnnotified returns events whose start time has passed and
	// whose email notice has not been attempted yet
	FindDueUnnotified(now time.Time) ([]*domain.CalendarEvent, error)
	MarkEmailSent(id string) error
}

// LifeAreaRepository defines the interface for life area data access
type LifeAreaRepository interface {
	Create(area *domain.LifeArea) error
}
