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

// AuthHandler handles HTTP requests for admin authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
	log         *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
		log:         logger.Named("auth"),
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
// Handlers in register run before HandleRegister, e.g. to require an admin token.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, register ...fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", append(register, h.HandleRegister)...)
	authRoutes.Post("/login", h.HandleLogin)
}

// HandleRegister creates a new admin account.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var user models.AdminUser
	if err := c.BodyParser(&user); err != nil {
		return invalidBody(c, err)
	}
	if err := h.validate.Struct(user); err != nil {
		return validationFailed(c, err)
	}

	register := h.authService.Register
	if middleware.IsBootstrap(c) {
		register = h.authService.Bootstrap
	}
	if err := register(&user); err != nil {
		if errors.Is(err, services.ErrBootstrapClosed) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
				"error":   err.Error(),
			})
		}
		if errors.Is(err, services.ErrAccountExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Registration failed",
				"error":   err.Error(),
			})
		}
		h.log.Error("register failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not register user",
		})
	}

	user.Password = ""
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin authenticates an admin and issues a JWT.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	token, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		h.log.Info("login failed", zap.String("username", req.Username))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication failed",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
	})
}
