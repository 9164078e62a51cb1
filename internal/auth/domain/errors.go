package domain

import (
	"errors"
	"fmt"

	apperrors "github.com/allisson/identity/internal/errors"
)

// Token configuration and generation errors. Neither maps to a client error,
// so both surface as 500 responses.
var (
	// ErrConfiguration indicates the token settings are missing or blank.
	ErrConfiguration = errors.New("invalid token configuration")

	// ErrTokenGeneration indicates signing or serialization failed.
	ErrTokenGeneration = errors.New("an error occurred while generating the JWT token")

	ErrMissingSecret   = apperrors.Wrap(ErrConfiguration, "secret is missing")
	ErrMissingIssuer   = apperrors.Wrap(ErrConfiguration, "issuer is missing")
	ErrMissingAudience = apperrors.Wrap(ErrConfiguration, "audience is missing")
	ErrInvalidLifetime = apperrors.Wrap(ErrConfiguration, "token lifetime must be positive")
)

// Authentication errors.
var (
	// ErrInvalidCredentials is returned for both unknown users and wrong passwords.
	ErrInvalidCredentials = apperrors.Wrap(apperrors.ErrUnauthorized, "invalid credentials")

	// ErrInvalidToken indicates a bearer or refresh token could not be trusted.
	ErrInvalidToken = apperrors.Wrap(apperrors.ErrUnauthorized, "invalid token")

	// ErrRefreshWindowExceeded indicates the token expired too long ago to be refreshed.
	ErrRefreshWindowExceeded = apperrors.Wrap(apperrors.ErrUnauthorized, "token can no longer be refreshed")

	// ErrUserLocked indicates the account is locked after repeated failed logins.
	ErrUserLocked = apperrors.Wrap(apperrors.ErrLocked, "user is locked")

	// ErrInvalidPrincipal indicates a principal without id or username.
	ErrInvalidPrincipal = apperrors.Wrap(apperrors.ErrInvalidInput, "principal requires id and username")

	// ErrUserNotFound is returned by flows that reveal user existence.
	ErrUserNotFound = apperrors.Wrap(apperrors.ErrNotFound, "user not found")
)

// NewTokenGenerationError wraps a signing failure.
func NewTokenGenerationError(cause error) error {
	return fmt.Errorf("%w: %w", ErrTokenGeneration, cause)
}

// ErrChangePasswordForbidden is returned when a non-admin changes another user's password.
var ErrChangePasswordForbidden = apperrors.Wrap(apperrors.ErrForbidden, "cannot change another user's password")
