package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"storefront/internal/logger"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Upload folders accepted by POST /admin/uploads/:folder.
const (
	UploadFolderProducts     = "products"
	UploadFolderTestimonials = "testimonial-images"
)

// AdminHandler handles the back-office catalog and testimonial management.
type AdminHandler struct {
	products     *services.ProductService
	testimonials *services.TestimonialService
	emailConfig  services.EmailJSConfig
	validate     *validator.Validate
	log          *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(products *services.ProductService, testimonials *services.TestimonialService, emailConfig services.EmailJSConfig) *AdminHandler {
	return &AdminHandler{
		products:     products,
		testimonials: testimonials,
		emailConfig:  emailConfig,
		validate:     validator.New(),
		log:          logger.Named("admin"),
	}
}

// RegisterRoutes registers the admin routes behind the given auth middleware.
func (h *AdminHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	admin := router.Group("/admin", auth)

	admin.Post("/products", h.HandleCreateProduct)
	admin.Put("/products/:id", h.HandleUpdateProduct)
	admin.Delete("/products/:id", h.HandleDeleteProduct)

	admin.Post("/testimonials", h.HandleCreateTestimonial)
	admin.Put("/testimonials/:id", h.HandleUpdateTestimonial)
	admin.Delete("/testimonials/:id", h.HandleDeleteTestimonial)

	admin.Post("/uploads/:folder", h.HandleUpload)
	admin.Get("/email-config", h.HandleEmailConfig)
}

func (h *AdminHandler) failed(c *fiber.Ctx, message string, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": message,
			"error":   err.Error(),
		})
	}
	h.log.Error(message, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": message,
	})
}

// HandleCreateProduct creates a product.
func (h *AdminHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return invalidBody(c, err)
	}
	if err := h.validate.Struct(product); err != nil {
		return validationFailed(c, err)
	}
	if err := h.products.Create(&product); err != nil {
		return h.failed(c, "Could not create product", err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct replaces a product.
func (h *AdminHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return invalidBody(c, err)
	}
	product.ID = c.Params("id")
	if err := h.validate.Struct(product); err != nil {
		return validationFailed(c, err)
	}
	if err := h.products.Update(&product); err != nil {
		return h.failed(c, "Could not update product", err)
	}
	return c.JSON(product)
}

// HandleDeleteProduct deletes a product.
func (h *AdminHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.products.Delete(id); err != nil {
		return h.failed(c, "Could not delete product", err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Product %s deleted", id),
	})
}

// HandleCreateTestimonial creates a testimonial.
func (h *AdminHandler) HandleCreateTestimonial(c *fiber.Ctx) error {
	var t models.Testimonial
	if err := c.BodyParser(&t); err != nil {
		return invalidBody(c, err)
	}
	if err := h.validate.Struct(t); err != nil {
		return validationFailed(c, err)
	}
	if err := h.testimonials.Create(&t); err != nil {
		return h.failed(c, "Could not create testimonial", err)
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

// HandleUpdateTestimonial replaces a testimonial's text and photo.
func (h *AdminHandler) HandleUpdateTestimonial(c *fiber.Ctx) error {
	var t models.Testimonial
	if err := c.BodyParser(&t); err != nil {
		return invalidBody(c, err)
	}
	t.ID = c.Params("id")
	if err := h.validate.Struct(t); err != nil {
		return validationFailed(c, err)
	}
	if err := h.testimonials.Update(&t); err != nil {
		return h.failed(c, "Could not update testimonial", err)
	}
	return c.JSON(t)
}

// HandleDeleteTestimonial deletes a testimonial.
func (h *AdminHandler) HandleDeleteTestimonial(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.testimonials.Delete(id); err != nil {
		return h.failed(c, "Could not delete testimonial", err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Testimonial %s deleted", id),
	})
}

// HandleUpload stores the multipart "file" image and returns its URL.
func (h *AdminHandler) HandleUpload(c *fiber.Ctx) error {
	var upload func(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
	switch c.Params("folder") {
	case UploadFolderProducts:
		upload = h.products.UploadImage
	case UploadFolderTestimonials:
		upload = h.testimonials.UploadImage
	default:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Unknown upload folder",
		})
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "File is required",
			"error":   err.Error(),
		})
	}
	contentType := fh.Header.Get(fiber.HeaderContentType)
	if !strings.HasPrefix(contentType, "image/") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Only image uploads are allowed",
		})
	}

	f, err := fh.Open()
	if err != nil {
		return h.failed(c, "Could not read upload", err)
	}
	defer f.Close()

	url, err := upload(c.UserContext(), fh.Filename, contentType, f)
	if err != nil {
		if errors.Is(err, services.ErrImageStoreDisabled) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"message": "Image uploads are not configured",
			})
		}
		return h.failed(c, "Could not upload image", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"url": url})
}

// HandleEmailConfig reports which e-mail credentials are configured.
func (h *AdminHandler) HandleEmailConfig(c *fiber.Ctx) error {
	return c.JSON(h.emailConfig.ConfigStatus())
}
