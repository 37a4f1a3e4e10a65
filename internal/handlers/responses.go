package handlers

import (
	"errors"
	"fmt"

	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// validationFailed renders validator errors as {"message", "errors"}.
func validationFailed(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}
	errorMessages := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

func invalidBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}

// orderErrorStatus maps a pipeline rejection to its HTTP status.
func orderErrorStatus(kind services.OrderErrorKind) int {
	switch kind {
	case services.KindValidation, services.KindBotDetected:
		return fiber.StatusBadRequest
	case services.KindRateLimited:
		return fiber.StatusTooManyRequests
	case services.KindUpstream:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func orderFailed(c *fiber.Ctx, oe *services.OrderError) error {
	body := fiber.Map{
		"message": oe.Message,
		"error":   oe.Kind.String(),
	}
	if len(oe.Fields) > 0 {
		body["errors"] = oe.Fields
	}
	return c.Status(orderErrorStatus(oe.Kind)).JSON(body)
}
