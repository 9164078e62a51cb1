package domain

import (
	"github.com/google/uuid"
)

// RegisterInput contains the data for a self-service registration.
type RegisterInput struct {
	UserName string
	Email    string
	Password string
}

// LoginInput contains user credentials.
type LoginInput struct {
	UserName string
	Password string
}

// AuthOutput is returned by login and refresh.
type AuthOutput struct {
	Token *IssuedToken
	User  Principal
}

// ConfirmEmailInput identifies the user confirming an email address.
type ConfirmEmailInput struct {
	UserID uuid.UUID
	Token  string
}

// ResetPasswordInput contains a reset token and the new password.
type ResetPasswordInput struct {
	UserName    string
	Token       string
	NewPassword string
}

// ChangePasswordInput contains the current and new passwords of a user.
type ChangePasswordInput struct {
	UserName    string
	OldPassword string
	NewPassword string
}
