package handlers

import (
	"strings"

	"storefront/internal/logger"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests for checkout.
type OrderHandler struct {
	service *services.OrderService
	carts   *services.CartService
	log     *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, carts *services.CartService) *OrderHandler {
	return &OrderHandler{
		service: service,
		carts:   carts,
		log:     logger.Named("orders"),
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Post("/check-limit", h.HandleCheckLimit)
	orderRoutes.Post("/checkout", h.HandleCheckout)
}

// CheckLimitRequest is the body of POST /orders/check-limit.
type CheckLimitRequest struct {
	Email string `json:"email"`
}

// HandleCheckLimit consumes one submission attempt for the caller.
func (h *OrderHandler) HandleCheckLimit(c *fiber.Ctx) error {
	var req CheckLimitRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email is required"})
	}

	decision, err := h.service.CheckLimit(c.UserContext(), req.Email, middleware.ClientIP(c))
	if err != nil {
		h.log.Error("rate limit check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check rate limit"})
	}
	if !decision.Allowed {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": decision.Message})
	}
	return c.JSON(fiber.Map{"allowed": true})
}

// HandleCheckout places an order for the session cart.
func (h *OrderHandler) HandleCheckout(c *fiber.Ctx) error {
	var req models.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}

	var receipt *models.OrderReceipt
	err := h.carts.WithCart(c.UserContext(), middleware.SessionID(c), nil, func(cart *services.CartStore) error {
		var submitErr error
		receipt, submitErr = h.service.Submit(c.UserContext(), cart, req, middleware.ClientIP(c))
		return submitErr
	})
	if err != nil {
		if oe, ok := services.AsOrderError(err); ok {
			return orderFailed(c, oe)
		}
		h.log.Error("checkout failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to process order. Please try again.",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(receipt)
}
