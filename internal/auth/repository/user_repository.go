package repository

import (
	"errors"
	"time"

	authdomain "vida-backend/internal/auth/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(user *authdomain.User) error
	FindByID(id string) (*authdomain.User, error)
	FindByEmail(email string) (*authdomain.User, error)
	FindByPhone(phone string) (*authdomain.User, error)
	Update(user *authdomain.User) error
	// FindNotifiable returns users with notifications enabled
	FindNotifiable() ([]*authdomain.User, error)
	// MarkWakeUpSent stamps the last wake-up notification time
	MarkWakeUpSent(id string, at time.Time) error
}

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of userRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) Create(user *authdomain.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	return r.db.Create(user).Error
}

func (r *userRepository) FindByID(id string) (*authdomain.User, error) {
	var user authdomain.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*authdomain.User, error) {
	var user authdomain.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByPhone(phone string) (*authdomain.User, error) {
	var user authdomain.User
	err := r.db.Where("phone_number = ?", phone).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(user *authdomain.User) error {
	user.UpdatedAt = time.Now()
	return r.db.Save(user).Error
}

func (r *userRepository) FindNotifiable() ([]*authdomain.User, error) {
	var users []*authdomain.User
	err := r.db.Where("is_notification = ?", true).Find(&users).Error
	return users, err
}

func (r *userRepository) MarkWakeUpSent(id string, at time.Time) error {
	return r.db.Model(&authdomain.User{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_wake_up_at": at,
			"updated_at":      time.Now(),
		}).Error
}
