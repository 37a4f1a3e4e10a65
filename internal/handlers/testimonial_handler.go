package handlers

import (
	"storefront/internal/logger"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TestimonialHandler serves the public testimonials list.
type TestimonialHandler struct {
	service *services.TestimonialService
	log     *zap.Logger
}

// NewTestimonialHandler creates a new TestimonialHandler.
func NewTestimonialHandler(service *services.TestimonialService) *TestimonialHandler {
	return &TestimonialHandler{service: service, log: logger.Named("testimonials")}
}

// RegisterRoutes registers the testimonial routes with the Fiber app.
func (h *TestimonialHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/testimonials", h.HandleList)
}

// HandleList returns testimonials newest first.
func (h *TestimonialHandler) HandleList(c *fiber.Ctx) error {
	items, err := h.service.List()
	if err != nil {
		h.log.Error("failed to list testimonials", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve testimonials",
		})
	}
	return c.JSON(items)
}
