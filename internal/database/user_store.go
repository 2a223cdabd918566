package database

import (
	"context"
	"errors"
	"time"

	"github.com/ipex/docregistro/internal/models"
	"gorm.io/gorm"
)

// ErrUserNotFound is returned when no user matches
var ErrUserNotFound = errors.New("user not found")

// UserStore reads and writes user accounts
type UserStore struct {
	db *gorm.DB
}

// NewUserStore creates a user store on top of an open connection
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts a new user
func (s *UserStore) Create(ctx context.Context, user *models.UserAuth) error {
	return s.db.WithContext(ctx).Create(user).Error
}

// FindByEmail returns the active user with the given email
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.UserAuth, error) {
	return s.first(ctx, "email = ? AND is_active = ?", email, true)
}

// FindByID returns the user with the given id
func (s *UserStore) FindByID(ctx context.Context, id string) (*models.UserAuth, error) {
	return s.first(ctx, "id = ?", id)
}

// TouchLastLogin records a successful login
func (s *UserStore) TouchLastLogin(ctx context.Context, user *models.UserAuth, at time.Time) error {
	user.LastLogin = &at
	return s.db.WithContext(ctx).Model(user).Update("last_login", at).Error
}

func (s *UserStore) first(ctx context.Context, query string, args ...interface{}) (*models.UserAuth, error) {
	var user models.UserAuth
	err := s.db.WithContext(ctx).Where(query, args...).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
