package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitesync-media/internal/apperr"
)

func testGate() *Gate {
	return NewGate(
		Credentials{Email: "primary@example.com", Password: "pw-one"},
		Credentials{Email: "second@example.com", Password: "pw-two"},
	)
}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		want     string
		wantKind apperr.Kind
	}{
		{name: "primary pair", email: "primary@example.com", password: "pw-one", want: "primary@example.com"},
		{name: "secondary pair", email: "second@example.com", password: "pw-two", want: "second@example.com"},
		{name: "cross pair one", email: "primary@example.com", password: "pw-two", wantKind: apperr.KindUnauthenticated},
		{name: "cross pair two", email: "second@example.com", password: "pw-one", wantKind: apperr.KindUnauthenticated},
		{name: "unknown identity", email: "nobody@example.com", password: "pw-one", wantKind: apperr.KindUnauthenticated},
		{name: "wrong password", email: "primary@example.com", password: "nope", wantKind: apperr.KindUnauthenticated},
		{name: "missing email", email: "", password: "pw-one", wantKind: apperr.KindBadRequest},
		{name: "missing password", email: "primary@example.com", password: "", wantKind: apperr.KindBadRequest},
	}

	g := testGate()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.Authenticate(tt.email, tt.password)
			if tt.want != "" {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
		})
	}
}

func TestUnconfiguredSecondaryNeverMatches(t *testing.T) {
	g := NewGate(Credentials{Email: "primary@example.com", Password: "pw-one"}, Credentials{})

	_, err := g.Authenticate("", "")
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))

	// an empty secondary pair must not let empty-ish input through
	_, err = g.Authenticate("x", "y")
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
}

func TestAccountEmailPrefersPrimary(t *testing.T) {
	assert.Equal(t, "primary@example.com", testGate().AccountEmail())

	g := NewGate(Credentials{}, Credentials{Email: "second@example.com", Password: "pw-two"})
	assert.Equal(t, "second@example.com", g.AccountEmail())
}
