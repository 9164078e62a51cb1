// Package service implements the identity provider: user lookup, password
// verification, role membership and the one-time tokens behind email
// confirmation and password reset.
//
// Expected failures (duplicate username, invalid token, wrong password) are
// returned as *errors.OperationError carrying every description, never as
// infrastructure errors.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/identity/internal/identity/domain"
)

// Provider is the identity capability consumed by the authentication and
// management use cases.
type Provider interface {
	// FindByUserName returns nil, nil when no user matches.
	FindByUserName(ctx context.Context, userName string) (*domain.User, error)
	// FindByEmail returns nil, nil when no user matches.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByID returns nil, nil when no user matches.
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	CheckPassword(ctx context.Context, user *domain.User, password string) (bool, error)

	// CreateUser stores a new user. An empty password creates an account that
	// cannot log in until a password is reset.
	CreateUser(ctx context.Context, user *domain.User, password string) error
	UpdateUser(ctx context.Context, user *domain.User) error
	DeleteUser(ctx context.Context, user *domain.User) error
	ChangePassword(ctx context.Context, user *domain.User, currentPassword, newPassword string) error

	GenerateEmailConfirmationToken(ctx context.Context, user *domain.User) (string, error)
	ConfirmEmail(ctx context.Context, user *domain.User, token string) error
	GeneratePasswordResetToken(ctx context.Context, user *domain.User) (string, error)
	ResetPassword(ctx context.Context, user *domain.User, token, newPassword string) error

	GetRoles(ctx context.Context, user *domain.User) ([]string, error)
	// AddToRoles fails without any change when a role does not exist. Roles
	// already held are skipped.
	AddToRoles(ctx context.Context, user *domain.User, roles []string) error
	// RemoveFromRoles fails without any change when a role does not exist.
	// Roles not held are skipped.
	RemoveFromRoles(ctx context.Context, user *domain.User, roles []string) error
	RoleExists(ctx context.Context, roleName string) (bool, error)
	CreateRole(ctx context.Context, role *domain.Role) error
	// FindRoleByID returns nil, nil when no role matches.
	FindRoleByID(ctx context.Context, id uuid.UUID) (*domain.Role, error)
	// UpdateRole renames a role and rotates its concurrency stamp.
	UpdateRole(ctx context.Context, role *domain.Role) error
	DeleteRole(ctx context.Context, role *domain.Role) error

	IsLockedOut(user *domain.User) bool
	AccessFailed(ctx context.Context, user *domain.User) error
	ResetAccessFailedCount(ctx context.Context, user *domain.User) error
}

// UserRepository persists users and their role memberships.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	// RecordAccessFailure atomically increments the failed login counter and
	// applies the lockout once maxAttempts is reached, returning the stored row.
	RecordAccessFailure(
		ctx context.Context,
		id uuid.UUID,
		maxAttempts int,
		lockoutEnd, updatedAt time.Time,
	) (*domain.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByNormalizedUserName(ctx context.Context, normalizedUserName string) (*domain.User, error)
	GetByNormalizedEmail(ctx context.Context, normalizedEmail string) (*domain.User, error)
	List(ctx context.Context, offset, limit int) ([]*domain.User, error)
	Count(ctx context.Context) (int64, error)
	GetRoleNames(ctx context.Context, userID uuid.UUID) ([]string, error)
	AddToRole(ctx context.Context, userID, roleID uuid.UUID) error
	RemoveFromRole(ctx context.Context, userID, roleID uuid.UUID) error
}

// RoleRepository persists roles.
type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) error
	Update(ctx context.Context, role *domain.Role) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Role, error)
	GetByNormalizedName(ctx context.Context, normalizedName string) (*domain.Role, error)
	GetByNormalizedNames(ctx context.Context, normalizedNames []string) ([]*domain.Role, error)
	List(ctx context.Context, offset, limit int) ([]*domain.Role, error)
}

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenPurpose binds an identity token to a single flow.
type TokenPurpose string

const (
	PurposeEmailConfirmation TokenPurpose = "EmailConfirmation"
	PurposeResetPassword     TokenPurpose = "ResetPassword"
)

// IdentityTokenProvider issues one-time tokens bound to a user, a purpose and
// the user's security stamp.
type IdentityTokenProvider interface {
	Generate(purpose TokenPurpose, user *domain.User) (string, error)
	Validate(purpose TokenPurpose, user *domain.User, token string) bool
}
