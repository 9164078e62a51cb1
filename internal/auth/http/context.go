// Package http provides the authentication HTTP handlers and the bearer,
// role and rate limiting middleware shared by the other HTTP packages.
package http

import (
	"context"

	authDomain "github.com/allisson/identity/internal/auth/domain"
)

// principalKey is a context key type for storing the authenticated principal.
type principalKey struct{}

// WithPrincipal stores the authenticated principal in the context.
func WithPrincipal(ctx context.Context, principal *authDomain.ClaimsPrincipal) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

// GetPrincipal retrieves the authenticated principal from the context.
func GetPrincipal(ctx context.Context) (*authDomain.ClaimsPrincipal, bool) {
	principal, ok := ctx.Value(principalKey{}).(*authDomain.ClaimsPrincipal)
	return principal, ok && principal != nil
}
