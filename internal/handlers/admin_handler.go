package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"sitesync-media/internal/auth"
	"sitesync-media/internal/middleware"
)

type AdminHandler struct {
	gate       *auth.Gate
	tokens     *auth.TokenManager
	production bool
}

func NewAdminHandler(gate *auth.Gate, tokens *auth.TokenManager, production bool) *AdminHandler {
	return &AdminHandler{gate: gate, tokens: tokens, production: production}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /login
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	_ = c.BodyParser(&req)

	matched, err := h.gate.Authenticate(req.Email, req.Password)
	if err != nil {
		return err
	}
	token, exp, err := h.tokens.Issue(matched)
	if err != nil {
		return err
	}
	c.Cookie(h.sessionCookie(token, exp))

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Logged in successfully",
		"user": fiber.Map{
			"email": h.gate.AccountEmail(),
			"role":  "admin",
		},
	})
}

// GET /is-auth
func (h *AdminHandler) IsAuth(c *fiber.Ctx) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Authentication required")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"user": fiber.Map{
			"email": id.Email,
			"role":  "admin",
		},
	})
}

// POST /logout
func (h *AdminHandler) Logout(c *fiber.Ctx) error {
	expired := h.sessionCookie("", time.Now().Add(-time.Hour))
	expired.MaxAge = -1
	c.Cookie(expired)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Logged out successfully",
	})
}

// Production fronts the site over HTTPS from another origin, so the cookie
// needs SameSite=None there; local development keeps Lax over plain HTTP.
func (h *AdminHandler) sessionCookie(token string, exp time.Time) *fiber.Cookie {
	sameSite := "Lax"
	if h.production {
		sameSite = "None"
	}
	return &fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HTTPOnly: true,
		Secure:   h.production,
		SameSite: sameSite,
	}
}
