package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"sitesync-media/internal/auth"
	"sitesync-media/internal/utils"
)

// SessionCookie is the cookie that carries the admin token.
const SessionCookie = "adminToken"

// LocalsKey is where the authenticated identity is attached for handlers.
const LocalsKey = "admin"

// Identity is the authenticated admin attached to the request context.
type Identity struct {
	Email string
}

// Session verifies the admin cookie on every protected route. Both identities
// can log in, but only the primary admin email is authorized here; a valid
// token for anyone else is rejected with 403.
func Session(tokens *auth.TokenManager, primaryEmail string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(SessionCookie)
		if token == "" {
			return utils.JSONError(c, fiber.StatusUnauthorized, "Authentication required")
		}
		claims, err := tokens.Verify(token)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				return utils.JSONError(c, fiber.StatusUnauthorized, "Token expired")
			}
			return utils.JSONError(c, fiber.StatusUnauthorized, "Authentication failed")
		}
		if claims.Email != primaryEmail {
			return utils.JSONError(c, fiber.StatusForbidden, "Not authorized")
		}
		c.Locals(LocalsKey, Identity{Email: claims.Email})
		return c.Next()
	}
}

// IdentityFrom returns the identity attached by Session.
func IdentityFrom(c *fiber.Ctx) (Identity, bool) {
	id, ok := c.Locals(LocalsKey).(Identity)
	return id, ok
}
