// Package dto provides data transfer objects for the role HTTP layer.
package dto

import (
	validation "github.com/jellydator/validation"

	appValidation "github.com/allisson/identity/internal/validation"
)

// CreateRoleRequest names a new role.
type CreateRoleRequest struct {
	Name string `json:"name"`
}

// Validate checks if the create role request is valid.
func (r *CreateRoleRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, appValidation.RoleName...),
	)
}

// UpdateRoleRequest renames a role.
type UpdateRoleRequest struct {
	Name             string `json:"name"`
	ConcurrencyStamp string `json:"concurrency_stamp"`
}

// Validate checks if the update role request is valid.
func (r *UpdateRoleRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, appValidation.RoleName...),
	)
}
