package auth

import (
	"crypto/subtle"

	"sitesync-media/internal/apperr"
)

// Credentials is one configured admin identity.
type Credentials struct {
	Email    string
	Password string
}

func (c Credentials) configured() bool {
	return c.Email != "" && c.Password != ""
}

// Gate validates logins against the two configured admin identities.
// A submitted pair must match one identity in full; the email of one paired
// with the password of the other is rejected.
type Gate struct {
	primary   Credentials
	secondary Credentials
}

func NewGate(primary, secondary Credentials) *Gate {
	return &Gate{primary: primary, secondary: secondary}
}

// PrimaryEmail is the only identity authorized by the session middleware
// after login.
func (g *Gate) PrimaryEmail() string { return g.primary.Email }

// AccountEmail is the address reported back to the client on login.
func (g *Gate) AccountEmail() string {
	if g.primary.Email != "" {
		return g.primary.Email
	}
	return g.secondary.Email
}

// Authenticate returns the matched identity's email, or Unauthorized without
// revealing which field was wrong.
func (g *Gate) Authenticate(email, password string) (string, error) {
	if email == "" || password == "" {
		return "", apperr.BadRequest("Email and password are required")
	}
	if g.primary.configured() && equal(email, g.primary.Email) && equal(password, g.primary.Password) {
		return g.primary.Email, nil
	}
	if g.secondary.configured() && equal(email, g.secondary.Email) && equal(password, g.secondary.Password) {
		return g.secondary.Email, nil
	}
	return "", apperr.Unauthenticated("Invalid credentials")
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
