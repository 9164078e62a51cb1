package service

import (
	"github.com/golang-jwt/jwt/v5"

	authDomain "github.com/allisson/identity/internal/auth/domain"
)

// hmacMethods are the only algorithms accepted when parsing.
var hmacMethods = []string{
	jwt.SigningMethodHS256.Alg(),
	jwt.SigningMethodHS384.Alg(),
	jwt.SigningMethodHS512.Alg(),
}

type accessClaims struct {
	jwt.RegisteredClaims
	NameIdentifier string           `json:"nameid,omitempty"`
	UniqueName     string           `json:"unique_name,omitempty"`
	Roles          jwt.ClaimStrings `json:"role,omitempty"`
}

func (c *accessClaims) principal() *authDomain.ClaimsPrincipal {
	p := &authDomain.ClaimsPrincipal{
		Principal: authDomain.Principal{
			ID:       c.NameIdentifier,
			UserName: c.Subject,
			Roles:    []string(c.Roles),
		},
		TokenID:  c.ID,
		Issuer:   c.Issuer,
		Audience: []string(c.Audience),
	}
	if c.IssuedAt != nil {
		p.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		p.ExpiresAt = c.ExpiresAt.Time
	}
	return p
}
