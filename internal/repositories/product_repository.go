package repositories

import "storefront/internal/models"

// ProductCatalog is the read side of the product store used by the shop.
type ProductCatalog interface {
	// GetAll returns every product, oldest first.
	GetAll() ([]models.Product, error)
	// GetByID wraps ErrNotFound when no product has the ID.
	GetByID(id string) (*models.Product, error)
}

// ProductRepository adds the admin write operations to ProductCatalog.
// Update and Delete wrap ErrNotFound for unknown IDs. Create assigns a UUID
// when the product has no ID.
type ProductRepository interface {
	ProductCatalog
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
}

var (
	_ ProductRepository = (*GORMProductRepository)(nil)
	_ ProductRepository = (*MemoryProductRepository)(nil)
)
