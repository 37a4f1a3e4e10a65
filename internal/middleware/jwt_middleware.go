package middleware

import (
	"strings"

	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		c.Locals("user_id", claims["user_id"])
		c.Locals("username", claims["username"])
		return c.Next()
	}
}

// BootstrapLocal is set on requests that BootstrapOrAuth let through without a
// token. The handler must create the account with AuthService.Bootstrap.
const BootstrapLocal = "bootstrap"

// BootstrapOrAuth lets requests through while no admin account exists and
// requires a valid token afterwards.
func BootstrapOrAuth(users repositories.AdminUserRepository, authService *services.AuthService) fiber.Handler {
	auth := AuthRequired(authService)
	return func(c *fiber.Ctx) error {
		n, err := users.Count()
		if err == nil && n == 0 {
			c.Locals(BootstrapLocal, true)
			return c.Next()
		}
		return auth(c)
	}
}

// IsBootstrap reports whether BootstrapOrAuth skipped authentication.
func IsBootstrap(c *fiber.Ctx) bool {
	v, _ := c.Locals(BootstrapLocal).(bool)
	return v
}
