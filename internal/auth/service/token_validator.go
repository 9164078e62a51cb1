package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	authDomain "github.com/allisson/identity/internal/auth/domain"
)

type tokenValidator struct {
	settings authDomain.TokenSettings
	leeway   time.Duration
	now      func() time.Time
}

// NewTokenValidator creates a TokenValidator. The leeway only applies to Validate.
func NewTokenValidator(settings authDomain.TokenSettings, leeway time.Duration) TokenValidator {
	return &tokenValidator{
		settings: settings,
		leeway:   leeway,
		now:      time.Now,
	}
}

// PrincipalFromExpiredToken never returns an error and never panics.
func (v *tokenValidator) PrincipalFromExpiredToken(tokenString string) (principal *authDomain.ClaimsPrincipal) {
	defer func() {
		if recover() != nil {
			principal = nil
		}
	}()

	claims := &accessClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		v.keyFunc,
		jwt.WithValidMethods(hmacMethods),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil
	}

	return claims.principal()
}

func (v *tokenValidator) Validate(tokenString string) (*authDomain.ClaimsPrincipal, error) {
	if err := v.settings.Validate(); err != nil {
		return nil, err
	}

	claims := &accessClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		v.keyFunc,
		jwt.WithValidMethods(hmacMethods),
		jwt.WithIssuer(v.settings.Issuer),
		jwt.WithAudience(v.settings.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", authDomain.ErrInvalidToken, err)
	}
	if claims.NameIdentifier == "" || claims.Subject == "" {
		return nil, authDomain.ErrInvalidToken
	}

	return claims.principal(), nil
}

func (v *tokenValidator) keyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	if strings.TrimSpace(v.settings.Secret) == "" {
		return nil, authDomain.ErrMissingSecret
	}
	return []byte(v.settings.Secret), nil
}
