package handlers

import (
	"errors"

	"storefront/internal/logger"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CartHandler handles HTTP requests for the session cart.
type CartHandler struct {
	carts    *services.CartService
	pricer   *services.Pricer
	validate *validator.Validate
	log      *zap.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(carts *services.CartService, pricer *services.Pricer) *CartHandler {
	return &CartHandler{
		carts:    carts,
		pricer:   pricer,
		validate: validator.New(),
		log:      logger.Named("cart"),
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Delete("/", h.HandleClearCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Patch("/items/:id", h.HandleUpdateItem)
	cartRoutes.Delete("/items/:id", h.HandleRemoveItem)
}

// AddItemRequest is the body of POST /cart/items.
type AddItemRequest struct {
	models.CartItemInput
	Quantity int `json:"quantity"`
}

// UpdateItemRequest is the body of PATCH /cart/items/:id.
type UpdateItemRequest struct {
	Quantity *int `json:"quantity"`
}

// CartResponse is the cart as returned to the storefront.
type CartResponse struct {
	Items         []models.CartLine     `json:"items"`
	ItemCount     int                   `json:"item_count"`
	TotalQuantity int                   `json:"total_quantity"`
	Totals        models.PriceBreakdown `json:"totals"`
	Notifications []models.Notification `json:"notifications,omitempty"`
}

func (h *CartHandler) render(cart *services.CartStore, rec *services.NotificationRecorder) CartResponse {
	items := cart.Items()
	resp := CartResponse{
		Items:         items,
		ItemCount:     len(items),
		TotalQuantity: cart.TotalQuantity(),
		Totals:        h.pricer.Quote(items),
	}
	if rec != nil {
		resp.Notifications = rec.Notifications()
	}
	return resp
}

// mutate runs fn on the session cart and answers with the updated cart.
func (h *CartHandler) mutate(c *fiber.Ctx, fn func(*services.CartStore) error) error {
	rec := &services.NotificationRecorder{}
	var resp CartResponse
	err := h.carts.WithCart(c.UserContext(), middleware.SessionID(c), rec, func(cart *services.CartStore) error {
		if err := fn(cart); err != nil {
			return err
		}
		resp = h.render(cart, rec)
		return nil
	})
	if errors.Is(err, services.ErrQuantityLimit) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  map[string]string{"Quantity": err.Error()},
		})
	}
	if err != nil {
		h.log.Error("cart update failed", zap.String("session", middleware.SessionID(c)), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update cart",
			"notifications": []models.Notification{{
				Level:   models.NotificationError,
				Message: "Could not save your cart. Please try again.",
			}},
		})
	}
	return c.JSON(resp)
}

// HandleGetCart returns the session cart with its totals.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	var resp CartResponse
	_ = h.carts.WithCart(c.UserContext(), middleware.SessionID(c), nil, func(cart *services.CartStore) error {
		resp = h.render(cart, nil)
		return nil
	})
	return c.JSON(resp)
}

// HandleAddItem adds a product to the cart or increases its quantity.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := h.validate.Struct(req.CartItemInput); err != nil {
		return validationFailed(c, err)
	}
	return h.mutate(c, func(cart *services.CartStore) error {
		return cart.AddItem(c.UserContext(), req.CartItemInput, req.Quantity)
	})
}

// HandleUpdateItem sets a line's quantity; zero or less removes the line.
func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req UpdateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if req.Quantity == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Quantity is required",
		})
	}
	id := c.Params("id")
	return h.mutate(c, func(cart *services.CartStore) error {
		return cart.UpdateQuantity(c.UserContext(), id, *req.Quantity)
	})
}

// HandleRemoveItem deletes a line from the cart.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	id := c.Params("id")
	return h.mutate(c, func(cart *services.CartStore) error {
		return cart.RemoveItem(c.UserContext(), id)
	})
}

// HandleClearCart empties the cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	return h.mutate(c, func(cart *services.CartStore) error {
		return cart.Clear(c.UserContext())
	})
}
