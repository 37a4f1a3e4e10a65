package repositories

import (
	"errors"
	"fmt"

	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMTestimonialRepository is a GORM implementation of TestimonialRepository.
type GORMTestimonialRepository struct {
	db *gorm.DB
}

// NewGORMTestimonialRepository creates a new instance of GORMTestimonialRepository.
func NewGORMTestimonialRepository(db *gorm.DB) *GORMTestimonialRepository {
	return &GORMTestimonialRepository{db: db}
}

func (r *GORMTestimonialRepository) GetAll() ([]models.Testimonial, error) {
	var testimonials []models.Testimonial
	if err := r.db.Order("created_at desc").Find(&testimonials).Error; err != nil {
		return nil, fmt.Errorf("failed to get testimonials: %w", err)
	}
	return testimonials, nil
}

func (r *GORMTestimonialRepository) GetByID(id string) (*models.Testimonial, error) {
	var testimonial models.Testimonial
	if err := r.db.First(&testimonial, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("testimonial with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get testimonial by ID %s: %w", id, err)
	}
	return &testimonial, nil
}

func (r *GORMTestimonialRepository) Create(testimonial *models.Testimonial) error {
	if testimonial.ID == "" {
		testimonial.ID = uuid.New().String()
	}
	if err := r.db.Create(testimonial).Error; err != nil {
		return fmt.Errorf("failed to create testimonial: %w", err)
	}
	return nil
}

func (r *GORMTestimonialRepository) Update(testimonial *models.Testimonial) error {
	res := r.db.Model(&models.Testimonial{}).Where("id = ?", testimonial.ID).Select("name", "role", "content", "image_url").Updates(testimonial)
	if res.Error != nil {
		return fmt.Errorf("failed to update testimonial: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("testimonial with ID %s: %w", testimonial.ID, ErrNotFound)
	}
	return nil
}

func (r *GORMTestimonialRepository) Delete(id string) error {
	res := r.db.Delete(&models.Testimonial{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete testimonial: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("testimonial with ID %s: %w", id, ErrNotFound)
	}
	return nil
}
