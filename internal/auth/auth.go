// Package auth turns a presented admin secret into a Capability that admin
// operations require as an argument.
package auth

import (
	"crypto/subtle"
	"strings"

	apperrors "salonbook/internal/errors"
)

// HeaderAdminToken carries the shared admin secret
const HeaderAdminToken = "X-Admin-Token"

// Capability proves the holder passed the admin check. The zero value is invalid.
type Capability struct {
	granted bool
}

// Valid reports whether the capability was minted by a Guard
func (c Capability) Valid() bool {
	return c.granted
}

// Check returns ErrUnauthorized for an invalid capability
func (c Capability) Check() error {
	if !c.granted {
		return apperrors.ErrUnauthorized
	}
	return nil
}

type Guard struct {
	secret []byte
}

// NewGuard creates a guard for the configured secret. An empty secret rejects everyone.
func NewGuard(secret string) *Guard {
	return &Guard{secret: []byte(strings.TrimSpace(secret))}
}

// Authorize mints a Capability when presented matches the secret
func (g *Guard) Authorize(presented string) (Capability, error) {
	if len(g.secret) == 0 || presented == "" {
		return Capability{}, apperrors.ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(presented), g.secret) != 1 {
		return Capability{}, apperrors.ErrUnauthorized
	}
	return Capability{granted: true}, nil
}
