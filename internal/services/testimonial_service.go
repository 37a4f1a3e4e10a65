package services

import (
	"context"
	"fmt"
	"io"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/google/uuid"
)

const testimonialImageFolder = "testimonial-images"

// TestimonialService manages customer testimonials.
type TestimonialService struct {
	repo   repositories.TestimonialRepository
	images repositories.ImageStore
}

// NewTestimonialService creates a new TestimonialService.
func NewTestimonialService(repo repositories.TestimonialRepository, images repositories.ImageStore) *TestimonialService {
	return &TestimonialService{repo: repo, images: images}
}

// List returns testimonials newest first.
func (s *TestimonialService) List() ([]models.Testimonial, error) {
	items, err := s.repo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list testimonials: %w", err)
	}
	return items, nil
}

func (s *TestimonialService) Create(t *models.Testimonial) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if err := s.repo.Create(t); err != nil {
		return fmt.Errorf("failed to create testimonial: %w", err)
	}
	return nil
}

func (s *TestimonialService) Update(t *models.Testimonial) error {
	if err := s.repo.Update(t); err != nil {
		return fmt.Errorf("failed to update testimonial: %w", err)
	}
	return nil
}

func (s *TestimonialService) Delete(id string) error {
	if err := s.repo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete testimonial: %w", err)
	}
	return nil
}

// UploadImage stores a testimonial photo and returns its public URL.
func (s *TestimonialService) UploadImage(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	return uploadImage(ctx, s.images, testimonialImageFolder, filename, contentType, body)
}
