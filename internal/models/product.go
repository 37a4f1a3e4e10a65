package models

import (
	"time"

	"gorm.io/gorm"
)

// Product represents a product in the store.
type Product struct {
	ID           string         `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Name         string         `json:"name" validate:"required,min=2,max=100"`
	Description  string         `json:"description" validate:"omitempty,max=2000"`
	Price        float64        `json:"price" validate:"gte=0"`
	Image        string         `json:"image" validate:"omitempty,uri"`
	Category     string         `json:"category" gorm:"index"`
	Stock        int            `json:"stock" validate:"gte=0"`
	Featured     bool           `json:"featured"`
	BestSeller   bool           `json:"best_seller"`
	Tag          string         `json:"tag"`
	BodyBenefits StringList     `json:"body_benefits" gorm:"type:text"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// ProductFilter narrows and orders a product listing.
type ProductFilter struct {
	Search     string
	Categories []string
	Benefits   []string
	Sort       string
}

// Sort options understood by ProductFilter.
const (
	SortFeatured    = "featured"
	SortBestSelling = "bestSelling"
	SortPriceLow    = "priceLow"
	SortPriceHigh   = "priceHigh"
)
