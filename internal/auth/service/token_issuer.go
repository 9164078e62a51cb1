package service

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/samber/lo"

	authDomain "github.com/allisson/identity/internal/auth/domain"
)

type tokenIssuer struct {
	settings authDomain.TokenSettings
	method   jwt.SigningMethod
	now      func() time.Time
}

// NewTokenIssuer creates a TokenIssuer signing with HS256.
func NewTokenIssuer(settings authDomain.TokenSettings) TokenIssuer {
	return &tokenIssuer{
		settings: settings,
		method:   jwt.SigningMethodHS256,
		now:      time.Now,
	}
}

// Issue signs an access token carrying sub, jti, nameid, iss, aud, iat, exp and role claims.
func (i *tokenIssuer) Issue(principal authDomain.Principal) (*authDomain.IssuedToken, error) {
	if err := i.settings.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(principal.ID) == "" || strings.TrimSpace(principal.UserName) == "" {
		return nil, authDomain.ErrInvalidPrincipal
	}

	claims := accessClaims{
		RegisteredClaims: i.registeredClaims(principal.UserName),
		NameIdentifier:   principal.ID,
	}
	if roles := lo.Uniq(lo.Compact(principal.Roles)); len(roles) > 0 {
		claims.Roles = roles
	}

	return i.sign(claims)
}

// IssueRoleToken signs a token for a role name.
func (i *tokenIssuer) IssueRoleToken(roleName string) (*authDomain.IssuedToken, error) {
	if err := i.settings.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(roleName) == "" {
		return nil, authDomain.ErrInvalidPrincipal
	}

	return i.sign(accessClaims{
		RegisteredClaims: i.registeredClaims(roleName),
		UniqueName:       roleName,
	})
}

func (i *tokenIssuer) registeredClaims(subject string) jwt.RegisteredClaims {
	now := i.now().UTC()
	return jwt.RegisteredClaims{
		Subject:   subject,
		ID:        uuid.NewString(),
		Issuer:    i.settings.Issuer,
		Audience:  jwt.ClaimStrings{i.settings.Audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.settings.Lifetime())),
	}
}

func (i *tokenIssuer) sign(claims accessClaims) (*authDomain.IssuedToken, error) {
	token := jwt.NewWithClaims(i.method, claims)

	signed, err := token.SignedString([]byte(i.settings.Secret))
	if err != nil {
		return nil, authDomain.NewTokenGenerationError(err)
	}

	return &authDomain.IssuedToken{
		Token:     signed,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
