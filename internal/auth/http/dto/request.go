// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/identity/internal/validation"
)

const minPasswordLength = 6

// RegisterRequest contains the data for a self-service registration.
type RegisterRequest struct {
	UserName string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks if the register request is valid.
func (r *RegisterRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserName, validation.Required, customValidation.NotBlank, validation.Length(1, 256)),
		validation.Field(&r.Email, validation.Required, customValidation.Email, validation.Length(1, 256)),
		validation.Field(&r.Password, validation.Required, validation.RuneLength(minPasswordLength, 0)),
	)
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	UserName string `json:"username"`
	Password string `json:"password"`
}

// Validate checks if the login request is valid.
func (r *LoginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserName, validation.Required.Error("Username is required.")),
		validation.Field(&r.Password, validation.Required.Error("Password is required.")),
	)
}

// RefreshRequest carries a previously issued token, possibly expired.
type RefreshRequest struct {
	Token string `json:"token"`
}

// Validate checks if the refresh request is valid.
func (r *RefreshRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Token, validation.Required, customValidation.NoWhitespace),
	)
}

// ConfirmEmailRequest identifies the user and the confirmation token.
type ConfirmEmailRequest struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

// Validate checks if the confirm email request is valid.
func (r *ConfirmEmailRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID, validation.Required, customValidation.NoWhitespace),
		validation.Field(&r.Token, validation.Required.Error("Token is required.")),
	)
}

// SendResetLinkRequest contains the email of the account to recover.
type SendResetLinkRequest struct {
	Email string `json:"email"`
}

// Validate checks if the send reset link request is valid.
func (r *SendResetLinkRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required.Error("Email is required."), customValidation.Email),
	)
}

// ResetPasswordRequest contains a reset token and the new password.
type ResetPasswordRequest struct {
	UserName    string `json:"username"`
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// Validate checks if the reset password request is valid.
func (r *ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserName, validation.Required.Error("Username is required.")),
		validation.Field(&r.Token, validation.Required.Error("Token is required.")),
		validation.Field(&r.NewPassword,
			validation.Required.Error("New password is required."),
			validation.RuneLength(minPasswordLength, 0).Error("New password must be at least 6 characters long."),
		),
	)
}

// ChangePasswordRequest contains the current and new passwords.
type ChangePasswordRequest struct {
	UserName    string `json:"username"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Validate checks if the change password request is valid.
func (r *ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserName, validation.Required.Error("Username is required.")),
		validation.Field(&r.OldPassword, validation.Required.Error("Current password is required.")),
		validation.Field(&r.NewPassword,
			validation.Required.Error("New password is required."),
			validation.RuneLength(minPasswordLength, 0).Error("New password must be at least 6 characters long."),
		),
	)
}
