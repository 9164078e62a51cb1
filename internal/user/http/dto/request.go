// Package dto provides data transfer objects for the user HTTP layer.
package dto

import (
	validation "github.com/jellydator/validation"

	appValidation "github.com/allisson/identity/internal/validation"
)

// CreateUserRequest contains the data of a user created by an administrator.
type CreateUserRequest struct {
	UserName string `json:"user_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks if the create user request is valid. Password is optional
// but, when present, is checked by the password policy on creation.
func (r *CreateUserRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserName,
			validation.Required.Error("Username is required."),
			appValidation.NotBlank,
			validation.Length(1, 256),
		),
		validation.Field(&r.Email,
			validation.Required.Error("Email is required."),
			appValidation.Email,
			validation.Length(1, 256),
		),
	)
}

// UpdateUserRequest contains the editable fields of a user.
type UpdateUserRequest struct {
	ID               *string `json:"id"`
	UserName         string  `json:"user_name"`
	Email            string  `json:"email"`
	ConcurrencyStamp string  `json:"concurrency_stamp"`
}

// Validate checks if the update user request is valid.
func (r *UpdateUserRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserName,
			validation.Required.Error("Username is required."),
			appValidation.NotBlank,
			validation.Length(1, 256),
		),
		validation.Field(&r.Email,
			validation.Required.Error("Email is required."),
			appValidation.Email,
			validation.Length(1, 256),
		),
	)
}

// RolesRequest lists role names to assign to or remove from a user.
type RolesRequest struct {
	Roles []string `json:"roles"`
}

// Validate checks if the roles request is valid.
func (r *RolesRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Roles,
			validation.Required.Error("At least one role is required."),
			validation.Each(validation.Required, appValidation.NotBlank),
		),
	)
}
