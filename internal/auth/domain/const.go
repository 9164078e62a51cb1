// Package domain defines the authentication domain: principals, token settings,
// claim names and authentication errors.
package domain

// Claim names written into access tokens.
const (
	ClaimSubject        = "sub"
	ClaimTokenID        = "jti"
	ClaimNameIdentifier = "nameid"
	ClaimUniqueName     = "unique_name"
	ClaimRole           = "role"
	ClaimIssuer         = "iss"
	ClaimAudience       = "aud"
	ClaimExpiresAt      = "exp"
	ClaimIssuedAt       = "iat"
)

// TokenTypeBearer is the token type reported to clients.
const TokenTypeBearer = "Bearer"
