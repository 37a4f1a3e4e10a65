package handlers

import (
	"errors"
	"fmt"
	"strings"

	"storefront/internal/logger"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for the public catalog.
type ProductHandler struct {
	service *services.ProductService
	log     *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
		log:     logger.Named("products"),
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/featured", h.HandleFeatured)
	productRoutes.Get("/categories", h.HandleCategories)
	productRoutes.Get("/benefits", h.HandleBenefits)
	productRoutes.Get("/:id", h.HandleGetProduct)
	productRoutes.Get("/:id/recommended", h.HandleRecommended)
}

// splitQuery turns "a,b" into [a b], ignoring blanks.
func splitQuery(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (h *ProductHandler) serverError(c *fiber.Ctx, message string, err error) error {
	h.log.Error(message, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": message,
	})
}

// HandleListProducts lists products filtered by q, category, benefit and sort.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	filter := models.ProductFilter{
		Search:     c.Query("q"),
		Categories: splitQuery(c.Query("category")),
		Benefits:   splitQuery(c.Query("benefit")),
		Sort:       c.Query("sort", models.SortFeatured),
	}
	products, err := h.service.List(filter)
	if err != nil {
		return h.serverError(c, "Could not retrieve products", err)
	}
	return c.JSON(products)
}

// HandleFeatured lists featured products.
func (h *ProductHandler) HandleFeatured(c *fiber.Ctx) error {
	products, err := h.service.Featured()
	if err != nil {
		return h.serverError(c, "Could not retrieve products", err)
	}
	return c.JSON(products)
}

// HandleCategories lists the distinct categories.
func (h *ProductHandler) HandleCategories(c *fiber.Ctx) error {
	categories, err := h.service.Categories()
	if err != nil {
		return h.serverError(c, "Could not retrieve categories", err)
	}
	return c.JSON(categories)
}

// HandleBenefits lists the distinct body benefits.
func (h *ProductHandler) HandleBenefits(c *fiber.Ctx) error {
	benefits, err := h.service.BodyBenefits()
	if err != nil {
		return h.serverError(c, "Could not retrieve benefits", err)
	}
	return c.JSON(benefits)
}

// HandleGetProduct retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	product, err := h.service.Get(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Product with ID %s not found", id),
			})
		}
		return h.serverError(c, "Could not retrieve product", err)
	}
	return c.JSON(product)
}

// HandleRecommended lists up to three products from the same category.
func (h *ProductHandler) HandleRecommended(c *fiber.Ctx) error {
	id := c.Params("id")
	products, err := h.service.Recommended(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Product with ID %s not found", id),
			})
		}
		return h.serverError(c, "Could not retrieve recommendations", err)
	}
	return c.JSON(products)
}
