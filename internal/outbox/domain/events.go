package domain

import (
	"github.com/google/uuid"
)

// Event types produced by the authentication flows.
const (
	EventUserRegistered         = "user.registered"
	EventPasswordResetRequested = "user.password_reset_requested"
)

// UserTokenPayload is the payload of events that deliver a one-time token to a user.
type UserTokenPayload struct {
	UserID   uuid.UUID `json:"user_id"`
	UserName string    `json:"user_name"`
	Email    string    `json:"email"`
	Token    string    `json:"token"`
}
