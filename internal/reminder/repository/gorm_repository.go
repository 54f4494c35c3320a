package repository

import (
	"errors"
	"time"

	"vida-backend/internal/reminder/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormReminderRepository implements ReminderRepository using GORM
type gormReminderRepository struct {
	db *gorm.DB
}

// NewGormReminderRepository creates a new GORM-based ReminderRepository
func NewGormReminderRepository(db *gorm.DB) ReminderRepository {
	return &gormReminderRepository{db: db}
}

func (r *gormReminderRepository) Create(reminder *domain.Reminder) error {
	if reminder.ID == "" {
		reminder.ID = uuid.New().String()
	}
	reminder.CreatedAt = time.Now()
	reminder.UpdatedAt = time.Now()
	return r.db.Create(reminder).Error
}

func (r *gormReminderRepository) FindByID(id string) (*domain.Reminder, error) {
	var reminder domain.Reminder
	err := r.db.Where("id = ?", id).First(&reminder).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reminder, nil
}

func (r *gormReminderRepository) FindDueUnnotified(now time.Time) ([]*domain.Reminder, error) {
	var reminders []*domain.Reminder
	err := r.db.Where("remind_at <= ? AND is_email_sent = ?", now, false).
		Order("remind_at ASC").Find(&reminders).Error
	return reminders, err
}

func (r *gormReminderRepository) FindUpcomingUnsent(until time.Time) ([]*domain.Reminder, error) {
	var reminders []*domain.Reminder
	err := r.db.Where("remind_at <= ? AND is_sent = ?", until, false).
		Order("remind_at ASC").Find(&reminders).Error
	return reminders, err
}

func (r *gormReminderRepository) MarkSent(id string) error {
	return r.db.Model(&domain.Reminder{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_sent":    true,
			"updated_at": time.Now(),
		}).Error
}

func (r *gormReminderRepository) MarkEmailSent(id string) error {
	return r.db.Model(&domain.Reminder{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_email_sent": true,
			"updated_at":    time.Now(),
		}).Error
}
