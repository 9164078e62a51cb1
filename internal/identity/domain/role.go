package domain

import (
	"time"

	"github.com/google/uuid"
)

// Built-in roles created by the seed command.
const (
	RoleAdmin     = "Admin"
	RoleDeveloper = "Developer"
	RoleUser      = "User"
)

// DefaultRoles returns the built-in roles in seed order.
func DefaultRoles() []string {
	return []string{RoleAdmin, RoleDeveloper, RoleUser}
}

// Role is a named group of users.
type Role struct {
	ID             uuid.UUID
	Name           string
	NormalizedName string
	// ConcurrencyStamp changes on every update. Seeded roles carry a signed role token.
	ConcurrencyStamp string
	CreatedAt        time.Time
}

// Normalize refreshes the normalized name.
func (r *Role) Normalize() {
	r.NormalizedName = NormalizeName(r.Name)
}
