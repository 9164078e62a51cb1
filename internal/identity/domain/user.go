// Package domain defines the identity entities (users and roles), name
// normalization and the structured failures of identity operations.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account.
type User struct {
	ID                 uuid.UUID
	UserName           string
	NormalizedUserName string
	Email              string
	NormalizedEmail    string
	EmailConfirmed     bool
	// PasswordHash is empty for accounts created without a password.
	PasswordHash string
	// SecurityStamp changes whenever credentials change. Email confirmation and
	// password reset tokens are bound to it.
	SecurityStamp     string
	ConcurrencyStamp  string
	AccessFailedCount int
	LockoutEnd        *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Normalize refreshes the normalized username and email.
func (u *User) Normalize() {
	u.NormalizedUserName = NormalizeName(u.UserName)
	u.NormalizedEmail = NormalizeName(u.Email)
}

// IsLockedOut reports whether the lockout end is still in the future.
func (u *User) IsLockedOut(now time.Time) bool {
	return u.LockoutEnd != nil && u.LockoutEnd.After(now)
}

// HasPassword reports whether a password was ever set.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
