package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SessionCookie names the cookie that identifies a shopper's cart.
const SessionCookie = "cart_session"

const sessionLocal = "cart_session"

// CartSession makes sure every request carries a cart session id, issuing a
// fresh one when the cookie is missing or malformed.
func CartSession(ttl time.Duration, secure bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Cookies(SessionCookie)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}

		c.Cookie(&fiber.Cookie{
			Name:     SessionCookie,
			Value:    id,
			Path:     "/",
			MaxAge:   int(ttl.Seconds()),
			HTTPOnly: true,
			Secure:   secure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		c.Locals(sessionLocal, id)
		return c.Next()
	}
}

// SessionID returns the cart session id set by CartSession.
func SessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(sessionLocal).(string)
	return id
}
