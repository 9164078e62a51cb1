package domain

import (
	"strings"
	"time"

	"github.com/samber/lo"
)

// TokenSettings holds the immutable token configuration read at startup.
type TokenSettings struct {
	Secret          string
	Issuer          string
	Audience        string
	LifetimeMinutes int
}

// Validate returns ErrConfiguration when a required setting is missing or blank.
func (s TokenSettings) Validate() error {
	switch {
	case strings.TrimSpace(s.Secret) == "":
		return ErrMissingSecret
	case strings.TrimSpace(s.Issuer) == "":
		return ErrMissingIssuer
	case strings.TrimSpace(s.Audience) == "":
		return ErrMissingAudience
	case s.LifetimeMinutes <= 0:
		return ErrInvalidLifetime
	}
	return nil
}

// Lifetime returns the token lifetime as a duration.
func (s TokenSettings) Lifetime() time.Duration {
	return time.Duration(s.LifetimeMinutes) * time.Minute
}

// Principal is the identity a token is issued for.
type Principal struct {
	ID       string
	UserName string
	Email    string
	Roles    []string
}

// ClaimsPrincipal is the identity recovered from a signed token.
type ClaimsPrincipal struct {
	Principal
	TokenID   string
	Issuer    string
	Audience  []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IsInRole reports whether the principal holds any of the given roles (case-insensitive).
func (p *ClaimsPrincipal) IsInRole(roles ...string) bool {
	return lo.SomeBy(p.Roles, func(held string) bool {
		return lo.ContainsBy(roles, func(role string) bool {
			return strings.EqualFold(held, role)
		})
	})
}

// IssuedToken is a signed access token.
type IssuedToken struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
}
