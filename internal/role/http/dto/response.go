package dto

import (
	"time"

	"github.com/samber/lo"

	identityDomain "github.com/allisson/identity/internal/identity/domain"
)

// RoleResponse represents a role in API responses.
type RoleResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	ConcurrencyStamp string    `json:"concurrency_stamp"`
	CreatedAt        time.Time `json:"created_at"`
}

// MapRoleToResponse converts a domain role to an API response.
func MapRoleToResponse(role *identityDomain.Role) RoleResponse {
	return RoleResponse{
		ID:               role.ID.String(),
		Name:             role.Name,
		ConcurrencyStamp: role.ConcurrencyStamp,
		CreatedAt:        role.CreatedAt,
	}
}

// ListRolesResponse represents a page of roles.
type ListRolesResponse struct {
	Data []RoleResponse `json:"data"`
}

// MapRolesToListResponse converts a slice of domain roles to a list API response.
func MapRolesToListResponse(roles []*identityDomain.Role) ListRolesResponse {
	return ListRolesResponse{
		Data: lo.Map(roles, func(role *identityDomain.Role, _ int) RoleResponse {
			return MapRoleToResponse(role)
		}),
	}
}
