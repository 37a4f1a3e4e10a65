package repositories

import "storefront/internal/models"

// TestimonialRepository defines the interface for testimonial data access.
type TestimonialRepository interface {
	// GetAll returns testimonials newest first.
	GetAll() ([]models.Testimonial, error)
	GetByID(id string) (*models.Testimonial, error)
	Create(testimonial *models.Testimonial) error
	Update(testimonial *models.Testimonial) error
	Delete(id string) error
}
