package handlers

import (
	"errors"

	"storefront/internal/logger"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ContactHandler handles the general contact form.
type ContactHandler struct {
	mailer   services.Mailer
	validate *validator.Validate
	log      *zap.Logger
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(mailer services.Mailer) *ContactHandler {
	return &ContactHandler{
		mailer:   mailer,
		validate: validator.New(),
		log:      logger.Named("contact"),
	}
}

// RegisterRoutes registers the contact route with the Fiber app.
func (h *ContactHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/contact", h.HandleContact)
}

// HandleContact e-mails a contact-form message to the store.
func (h *ContactHandler) HandleContact(c *fiber.Ctx) error {
	var msg models.ContactMessage
	if err := c.BodyParser(&msg); err != nil {
		return invalidBody(c, err)
	}
	if err := h.validate.Struct(msg); err != nil {
		return validationFailed(c, err)
	}

	if err := h.mailer.SendContact(c.UserContext(), msg); err != nil {
		h.log.Error("contact email failed", zap.Error(err))
		status, message := fiber.StatusBadGateway, "Failed to send email. Please try again."
		switch {
		case errors.Is(err, services.ErrEmailConfig):
			status, message = fiber.StatusInternalServerError, err.Error()
		case errors.Is(err, services.ErrEmailProvider):
			message = err.Error()
		}
		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"message": message,
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Email sent successfully",
	})
}
