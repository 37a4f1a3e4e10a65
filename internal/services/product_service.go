package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/google/uuid"
)

const (
	productImageFolder = "products"
	recommendedLimit   = 3
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo   repositories.ProductRepository
	images repositories.ImageStore
}

// NewProductService creates a new ProductService. images may be nil, in which
// case uploads return ErrImageStoreDisabled.
func NewProductService(repo repositories.ProductRepository, images repositories.ImageStore) *ProductService {
	return &ProductService{
		repo:   repo,
		images: images,
	}
}

// List returns the products matching filter in the requested order.
func (s *ProductService) List(filter models.ProductFilter) ([]models.Product, error) {
	products, err := s.repo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		if len(filter.Categories) > 0 && !containsString(filter.Categories, p.Category) {
			continue
		}
		if len(filter.Benefits) > 0 && !anyShared(filter.Benefits, p.BodyBenefits) {
			continue
		}
		out = append(out, p)
	}

	sortProducts(out, filter.Sort)
	return out, nil
}

// sortProducts orders in place; ties keep the repository order.
func sortProducts(products []models.Product, by string) {
	var less func(a, b models.Product) bool
	switch by {
	case models.SortBestSelling:
		less = func(a, b models.Product) bool { return a.BestSeller && !b.BestSeller }
	case models.SortPriceLow:
		less = func(a, b models.Product) bool { return a.Price < b.Price }
	case models.SortPriceHigh:
		less = func(a, b models.Product) bool { return a.Price > b.Price }
	default:
		less = func(a, b models.Product) bool { return a.Featured && !b.Featured }
	}
	sort.SliceStable(products, func(i, j int) bool { return less(products[i], products[j]) })
}

// Get retrieves a single product by its ID.
func (s *ProductService) Get(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// Featured returns the products flagged as featured.
func (s *ProductService) Featured() ([]models.Product, error) {
	products, err := s.repo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	out := make([]models.Product, 0)
	for _, p := range products {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out, nil
}

// Recommended returns up to three other products from the same category.
func (s *ProductService) Recommended(id string) ([]models.Product, error) {
	current, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	products, err := s.repo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	out := make([]models.Product, 0, recommendedLimit)
	for _, p := range products {
		if p.ID == current.ID || p.Category != current.Category {
			continue
		}
		out = append(out, p)
		if len(out) == recommendedLimit {
			break
		}
	}
	return out, nil
}

// Categories returns the distinct categories in first-seen order.
func (s *ProductService) Categories() ([]string, error) {
	products, err := s.repo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	var values []string
	for _, p := range products {
		if p.Category != "" {
			values = append(values, p.Category)
		}
	}
	return distinct(values), nil
}

// BodyBenefits returns the distinct body benefits in first-seen order.
func (s *ProductService) BodyBenefits() ([]string, error) {
	products, err := s.repo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	var values []string
	for _, p := range products {
		values = append(values, p.BodyBenefits...)
	}
	return distinct(values), nil
}

// Create stores a new product, deriving category and benefits from its tags.
func (s *ProductService) Create(product *models.Product) error {
	applyTags(product)
	if err := s.repo.Create(product); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update replaces an existing product, deriving category and benefits from its tags.
func (s *ProductService) Update(product *models.Product) error {
	applyTags(product)
	if err := s.repo.Update(product); err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

// Delete deletes a product by its ID.
func (s *ProductService) Delete(id string) error {
	if err := s.repo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// UploadImage stores a product image and returns its public URL.
func (s *ProductService) UploadImage(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	return uploadImage(ctx, s.images, productImageFolder, filename, contentType, body)
}

// applyTags fills category and benefits from the tag mappings. Explicit values
// are kept when no tag maps.
func applyTags(product *models.Product) {
	if strings.TrimSpace(product.Tag) == "" {
		return
	}
	category, benefits := ResolveTags(product.Tag)
	if category != "" {
		product.Category = category
	}
	if len(benefits) > 0 {
		product.BodyBenefits = benefits
	}
}

// uploadImage names the object <folder>/<uuid><ext>.
func uploadImage(ctx context.Context, store repositories.ImageStore, folder, filename, contentType string, body io.Reader) (string, error) {
	if store == nil {
		return "", ErrImageStoreDisabled
	}
	ext := strings.ToLower(filepath.Ext(filename))
	key := fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), ext)
	url, err := store.Upload(ctx, key, contentType, body)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return url, nil
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func anyShared(want, have []string) bool {
	for _, h := range have {
		if containsString(want, h) {
			return true
		}
	}
	return false
}

func distinct(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
