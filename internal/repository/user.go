// Package repository contains the data access layer built on GORM with a
// Redis read-through cache for hot lookups.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shadospace/internal/cache"
	"shadospace/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// UserRepository handles user persistence.
type UserRepository struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewUserRepository returns a repository bound to the given database and
// cache. The cache client may be nil.
func NewUserRepository(db *gorm.DB, rdb *redis.Client) *UserRepository {
	return &UserRepository{db: db, rdb: rdb}
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

// Create inserts a new user. Duplicate usernames or emails come back as
// a validation error rather than a raw database error.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("username or email already taken")
		}
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// GetByID fetches a user by ID through the cache.
func (r *UserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return cache.Aside(ctx, r.rdb, cache.UserKey(id), cache.UserTTL, func() (*models.User, error) {
		var user models.User
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.NewNotFoundError("user", id)
			}
			return nil, fmt.Errorf("fetching user %d: %w", id, err)
		}
		return &user, nil
	})
}

// GetByEmail fetches a user by email. Returns (nil, nil) when no user
// exists so callers can distinguish "unknown email" from a failure
// without comparing error values.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching user by email: %w", err)
	}
	return &user, nil
}

// GetByUsername fetches a user by username. Returns (nil, nil) on miss.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching user by username: %w", err)
	}
	return &user, nil
}

// Update saves changed user fields and invalidates the cache entry.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("updating user %d: %w", user.ID, err)
	}
	cache.InvalidateUser(ctx, r.rdb, user.ID)
	return nil
}

// Delete soft-deletes a user and invalidates the cache entry.
func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return fmt.Errorf("deleting user %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("user", id)
	}
	cache.InvalidateUser(ctx, r.rdb, id)
	return nil
}
