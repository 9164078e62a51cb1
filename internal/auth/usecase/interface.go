// Package usecase implements the authentication flows: registration, login,
// token refresh, email confirmation and password recovery.
package usecase

import (
	"context"

	authDomain "github.com/allisson/identity/internal/auth/domain"
	identityDomain "github.com/allisson/identity/internal/identity/domain"
	outboxDomain "github.com/allisson/identity/internal/outbox/domain"
)

// OutboxEventRepository stores events in the caller's transaction.
type OutboxEventRepository interface {
	Create(ctx context.Context, event *outboxDomain.OutboxEvent) error
}

// AuthUseCase defines the authentication flows exposed over HTTP.
type AuthUseCase interface {
	// Register creates the user and enqueues the email confirmation message in
	// the same transaction.
	Register(ctx context.Context, input *authDomain.RegisterInput) (*identityDomain.User, error)

	// Login verifies credentials and issues an access token carrying the
	// user's roles.
	//
	// Unknown users and wrong passwords both return ErrInvalidCredentials.
	// Failed attempts count toward lockout; a locked account returns
	// ErrUserLocked.
	Login(ctx context.Context, input *authDomain.LoginInput) (*authDomain.AuthOutput, error)

	// Refresh exchanges a token whose signature is valid, even if it has
	// expired, for a new one. Roles are reloaded so the new token reflects the
	// current memberships.
	Refresh(ctx context.Context, token string) (*authDomain.AuthOutput, error)

	ConfirmEmail(ctx context.Context, input *authDomain.ConfirmEmailInput) error

	// SendResetLink enqueues a password reset message for the user owning email.
	SendResetLink(ctx context.Context, email string) error

	ResetPassword(ctx context.Context, input *authDomain.ResetPasswordInput) error

	// ChangePassword is allowed for the user themselves or an Admin.
	ChangePassword(
		ctx context.Context,
		caller *authDomain.ClaimsPrincipal,
		input *authDomain.ChangePasswordInput,
	) error
}
