package repositories

import "storefront/internal/models"

// AdminUserRepository defines the interface for back-office account access.
type AdminUserRepository interface {
	Create(user *models.AdminUser) error
	GetByUsername(username string) (*models.AdminUser, error)
	GetByEmail(email string) (*models.AdminUser, error)
	GetByID(id string) (*models.AdminUser, error)
	Count() (int64, error)
}
