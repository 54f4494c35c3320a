package repository

import (
	"time"

	"vida-backend/internal/records/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormGoalRepository implements GoalRepository using GORM
type gormGoalRepository struct {
	db *gorm.DB
}

// NewGormGoalRepository creates a new GORM-based GoalRepository
func NewGormGoalRepository(db *gorm.DB) GoalRepository {
	return &gormGoalRepository{db: db}
}

func (r *gormGoalRepository) Create(goal *domain.Goal) error {
	if goal.ID == "" {
		goal.ID = uuid.New().String()
	}
	goal.CreatedAt = time.Now()
	goal.UpdatedAt = time.Now()
	return r.db.Create(goal).Error
}

func (r *gormGoalRepository) FindDueUnnotified(now time.Time) ([]*domain.Goal, error) {
	var goals []*domain.Goal
	err := r.db.Where("due_date IS NOT NULL AND due_date <= ? AND is_email_sent = ?", now, false).
		Find(&goals).Error
	return goals, err
}

func (r *gormGoalRepository) MarkEmailSent(id string) error {
	return r.db.Model(&domain.Goal{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_email_sent": true,
			"updated_at":    time.Now(),
		}).Error
}

// gormJournalRepository implements JournalRepository using GORM
type gormJournalRepository struct {
	db *gorm.DB
}

// NewGormJournalRepository creates a new GORM-based JournalRepository
func NewGormJournalRepository(db *gorm.DB) JournalRepository {
	return &gormJournalRepository{db: db}
}

func (r *gormJournalRepository) Create(journal *domain.Journal) error {
	if journal.ID == "" {
		journal.ID = uuid.New().String()
	}
	journal.CreatedAt = time.Now()
	journal.UpdatedAt = time.Now()
	return r.db.Create(journal).Error
}

// gormCalendarEventRepository implements CalendarEventRepository using GORM
type gormCalendarEventRepository struct {
	db *gorm.DB
}

// NewGormCalendarEventRepository creates a new GORM-based CalendarEventRepository
func NewGormCalendarEventRepository(db *gorm.DB) CalendarEventRepository {
	return &gormCalendarEventRepository{db: db}
}

func (r *gormCalendarEventRepository) Create(event *domain.CalendarEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.EndTime.IsZero() {
		event.EndTime = event.StartTime.Add(time.Hour)
	}
	event.CreatedAt = time.Now()
	event.UpdatedAt = time.Now()
	return r.db.Create(event).Error
}

func (r *gormCalendarEventRepository) FindDueUnnotified(now time.Time) ([]*domain.CalendarEvent, error) {
	var events []*domain.CalendarEvent
	err := r.db.Where("start_time <= ? AND is_email_sent = ?", now, false).
		Find(&events).Error
	return events, err
}

func (r *gormCalendarEventRepository) MarkEmailSent(id string) error {
	return r.db.Model(&domain.CalendarEvent{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_email_sent": true,
			"updated_at":    time.Now(),
		}).Error
}

// gormLifeAreaRepository implements LifeAreaRepository using GORM
type gormLifeAreaRepository struct {
	db *gorm.DB
}

// NewGormLifeAreaRepository creates a new GORM-based LifeAreaRepository
func NewGormLifeAreaRepository(db *gorm.DB) LifeAreaRepository {
	return &gormLifeAreaRepository{db: db}
}

func (r *gormLifeAreaRepository) Create(area *domain.LifeArea) error {
	if area.ID == "" {
		area.ID = uuid.New().String()
	}
	area.CreatedAt = time.Now()
	area.UpdatedAt = time.Now()
	return r.db.Create(area).Error
}
