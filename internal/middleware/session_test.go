package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitesync-media/internal/auth"
)

func sessionApp(t *testing.T, tokens *auth.TokenManager) *fiber.App {
	t.Helper()
	app := fiber.New()
	app.Get("/protected", Session(tokens, "primary@example.com"), func(c *fiber.Ctx) error {
		id, ok := IdentityFrom(c)
		require.True(t, ok)
		return c.JSON(fiber.Map{"email": id.Email})
	})
	return app
}

func TestSession(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	expiredTokens := auth.NewTokenManager("test-secret", -time.Minute)

	primary, _, err := tokens.Issue("primary@example.com")
	require.NoError(t, err)
	secondary, _, err := tokens.Issue("second@example.com")
	require.NoError(t, err)
	expired, _, err := expiredTokens.Issue("primary@example.com")
	require.NoError(t, err)

	tests := []struct {
		name        string
		cookie      string
		wantStatus  int
		wantMessage string
	}{
		{name: "no cookie", wantStatus: http.StatusUnauthorized, wantMessage: "Authentication required"},
		{name: "garbage token", cookie: "garbage", wantStatus: http.StatusUnauthorized, wantMessage: "Authentication failed"},
		{name: "expired token", cookie: expired, wantStatus: http.StatusUnauthorized, wantMessage: "Token expired"},
		{name: "secondary identity rejected", cookie: secondary, wantStatus: http.StatusForbidden, wantMessage: "Not authorized"},
		{name: "primary identity", cookie: primary, wantStatus: http.StatusOK},
	}

	app := sessionApp(t, tokens)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.cookie})
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var body map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, body["message"])
				assert.Equal(t, false, body["success"])
			} else {
				assert.Equal(t, "primary@example.com", body["email"])
			}
		})
	}
}
