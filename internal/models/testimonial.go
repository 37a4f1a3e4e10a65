package models

import "time"

// Testimonial is a customer quote shown on the storefront.
type Testimonial struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" validate:"required,max=100"`
	Role      string    `json:"role" validate:"max=100"`
	Content   string    `json:"content" validate:"required,max=2000"`
	ImageURL  string    `json:"image_url,omitempty" validate:"omitempty,uri"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}
