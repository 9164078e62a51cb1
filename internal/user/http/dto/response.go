package dto

import (
	"time"

	"github.com/samber/lo"

	identityDomain "github.com/allisson/identity/internal/identity/domain"
	"github.com/allisson/identity/internal/user/usecase"
)

// UserResponse represents a user in API responses. Credentials never leave the service.
type UserResponse struct {
	ID               string     `json:"id"`
	UserName         string     `json:"user_name"`
	Email            string     `json:"email"`
	EmailConfirmed   bool       `json:"email_confirmed"`
	LockoutEnd       *time.Time `json:"lockout_end,omitempty"`
	ConcurrencyStamp string     `json:"concurrency_stamp"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// MapUserToResponse converts a domain user to an API response.
func MapUserToResponse(user *identityDomain.User) UserResponse {
	return UserResponse{
		ID:               user.ID.String(),
		UserName:         user.UserName,
		Email:            user.Email,
		EmailConfirmed:   user.EmailConfirmed,
		LockoutEnd:       user.LockoutEnd,
		ConcurrencyStamp: user.ConcurrencyStamp,
		CreatedAt:        user.CreatedAt,
		UpdatedAt:        user.UpdatedAt,
	}
}

// ListUsersResponse represents a page of users.
type ListUsersResponse struct {
	Data  []UserResponse `json:"data"`
	Total int64          `json:"total"`
}

// MapUsersToListResponse converts a page of users to a list API response.
func MapUsersToListResponse(output *usecase.ListUsersOutput) ListUsersResponse {
	return ListUsersResponse{
		Data: lo.Map(output.Users, func(user *identityDomain.User, _ int) UserResponse {
			return MapUserToResponse(user)
		}),
		Total: output.Total,
	}
}

// UserRolesResponse lists the roles held by a user.
type UserRolesResponse struct {
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles"`
}
