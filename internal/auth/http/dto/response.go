package dto

import (
	"time"

	authDomain "github.com/allisson/identity/internal/auth/domain"
)

// UserResponse describes the authenticated user.
type UserResponse struct {
	ID       string   `json:"id"`
	UserName string   `json:"user_name"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// AuthResponse is returned by login and refresh.
type AuthResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// MapAuthOutputToResponse converts a login or refresh result to an API response.
func MapAuthOutputToResponse(output *authDomain.AuthOutput) AuthResponse {
	roles := output.User.Roles
	if roles == nil {
		roles = []string{}
	}

	return AuthResponse{
		Token:     output.Token.Token,
		TokenType: authDomain.TokenTypeBearer,
		ExpiresAt: output.Token.ExpiresAt,
		User: UserResponse{
			ID:       output.User.ID,
			UserName: output.User.UserName,
			Email:    output.User.Email,
			Roles:    roles,
		},
	}
}

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}
