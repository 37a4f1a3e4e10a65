package repositories

import (
	"errors"
	"fmt"

	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMAdminUserRepository is a GORM implementation of AdminUserRepository.
type GORMAdminUserRepository struct {
	db *gorm.DB
}

// NewGORMAdminUserRepository creates a new instance of GORMAdminUserRepository.
func NewGORMAdminUserRepository(db *gorm.DB) *GORMAdminUserRepository {
	return &GORMAdminUserRepository{
		db: db,
	}
}

// Create creates a new admin user in the database.
func (r *GORMAdminUserRepository) Create(user *models.AdminUser) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	return nil
}

// GetByUsername retrieves an admin user by username.
func (r *GORMAdminUserRepository) GetByUsername(username string) (*models.AdminUser, error) {
	return r.first("username = ?", username, "username "+username)
}

// GetByEmail retrieves an admin user by e-mail.
func (r *GORMAdminUserRepository) GetByEmail(email string) (*models.AdminUser, error) {
	return r.first("email = ?", email, "email "+email)
}

// GetByID retrieves an admin user by ID.
func (r *GORMAdminUserRepository) GetByID(id string) (*models.AdminUser, error) {
	return r.first("id = ?", id, "ID "+id)
}

// Count returns the number of admin users.
func (r *GORMAdminUserRepository) Count() (int64, error) {
	var n int64
	if err := r.db.Model(&models.AdminUser{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count admin users: %w", err)
	}
	return n, nil
}

func (r *GORMAdminUserRepository) first(query, arg, desc string) (*models.AdminUser, error) {
	var user models.AdminUser
	if err := r.db.First(&user, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("admin user with %s: %w", desc, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get admin user by %s: %w", desc, err)
	}
	return &user, nil
}
