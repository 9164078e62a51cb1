// Package service implements access token issuance and validation.
//
// Tokens are compact HS256 JWTs signed with the UTF-8 bytes of the configured
// secret. The issuer and validator receive an immutable TokenSettings value at
// construction and hold no other state.
package service

import (
	"context"

	authDomain "github.com/allisson/identity/internal/auth/domain"
)

// TokenIssuer produces signed access tokens.
type TokenIssuer interface {
	// Issue signs a token for the principal. Returns ErrConfiguration when the
	// settings are incomplete, before anything is signed.
	Issue(principal authDomain.Principal) (*authDomain.IssuedToken, error)

	// IssueRoleToken signs a token whose subject is a role name. It is used as
	// the integrity stamp of seeded roles.
	IssueRoleToken(roleName string) (*authDomain.IssuedToken, error)
}

// TokenValidator recovers principals from signed tokens.
type TokenValidator interface {
	// PrincipalFromExpiredToken checks the signature only. Issuer, audience
	// and expiry are ignored so expired tokens can be refreshed. Returns nil
	// for anything that does not verify.
	PrincipalFromExpiredToken(token string) *authDomain.ClaimsPrincipal

	// Validate enforces signature, issuer, audience and expiry.
	Validate(token string) (*authDomain.ClaimsPrincipal, error)
}

// SecretResolver turns the configured signing secret into its plaintext.
type SecretResolver interface {
	Resolve(ctx context.Context, secret string) (string, error)
}
