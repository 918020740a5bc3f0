package middleware

import (
	"github.com/gofiber/fiber/v2"

	"sitesync-media/internal/utils"
)

// JSONBodyLimit caps JSON/form bodies well below the multipart upload limit.
// The app-wide BodyLimit has to leave room for ten 100 MB files, so plain
// JSON routes get their own bound.
func JSONBodyLimit(maxBytes int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(c.Body()) > maxBytes {
			return utils.JSONError(c, fiber.StatusBadRequest, "Request body too large. Maximum size is 10MB")
		}
		return c.Next()
	}
}
