package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"sitesync-media/internal/apperr"
	"sitesync-media/internal/utils"
)

// ErrorHandler maps handler errors to the response envelope. Server-side
// failures are logged with their cause; the client only sees raw error text
// outside production.
func ErrorHandler(log *zap.SugaredLogger, production bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			status := ae.Kind.Status()
			msg := ae.Message
			if status >= fiber.StatusInternalServerError {
				log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
				if !production && ae.Err != nil {
					msg = fmt.Sprintf("%s: %v", ae.Message, ae.Err)
				}
			}
			return utils.JSONError(c, status, msg)
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return utils.JSONError(c, fe.Code, fe.Message)
		}

		log.Errorf("unhandled error on %s %s: %v", c.Method(), c.Path(), err)
		if production {
			return utils.JSONError(c, fiber.StatusInternalServerError, "Internal server error")
		}
		return utils.JSONError(c, fiber.StatusInternalServerError, err.Error())
	}
}
