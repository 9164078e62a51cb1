// Package usecase implements user management: listing, CRUD and role assignment.
package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/allisson/identity/internal/errors"
	identityDomain "github.com/allisson/identity/internal/identity/domain"
	identityService "github.com/allisson/identity/internal/identity/service"
)

// CreateUserInput contains the data of a user created by an administrator.
// Password is optional.
type CreateUserInput struct {
	UserName string
	Email    string
	Password string
}

// UpdateUserInput contains the editable fields of a user. A non-nil ID must
// match the path id. A non-empty ConcurrencyStamp must match the stored one.
type UpdateUserInput struct {
	ID               *uuid.UUID
	UserName         string
	Email            string
	ConcurrencyStamp string
}

// ListUsersOutput is a page of users plus the total count.
type ListUsersOutput struct {
	Users []*identityDomain.User
	Total int64
}

// UseCase defines user management operations.
type UseCase interface {
	List(ctx context.Context, offset, limit int) (*ListUsersOutput, error)
	Get(ctx context.Context, id uuid.UUID) (*identityDomain.User, error)
	Create(ctx context.Context, input CreateUserInput) (*identityDomain.User, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*identityDomain.User, error)
	Delete(ctx context.Context, id uuid.UUID) error

	GetRoles(ctx context.Context, id uuid.UUID) ([]string, error)
	// AddRoles fails without any change when a role does not exist.
	AddRoles(ctx context.Context, id uuid.UUID, roles []string) error
	RemoveRoles(ctx context.Context, id uuid.UUID, roles []string) error
}

// UserLister pages through stored users.
type UserLister interface {
	List(ctx context.Context, offset, limit int) ([]*identityDomain.User, error)
	Count(ctx context.Context) (int64, error)
}

// CodeIDMismatch reports a body id that differs from the path id.
const CodeIDMismatch = "IdMismatch"

// UserUseCase implements UseCase on top of the identity provider.
type UserUseCase struct {
	provider identityService.Provider
	lister   UserLister
}

// NewUserUseCase creates a new UserUseCase
func NewUserUseCase(provider identityService.Provider, lister UserLister) UseCase {
	return &UserUseCase{
		provider: provider,
		lister:   lister,
	}
}

// List returns a page of users ordered by normalized username.
func (uc *UserUseCase) List(ctx context.Context, offset, limit int) (*ListUsersOutput, error) {
	users, err := uc.lister.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	total, err := uc.lister.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &ListUsersOutput{Users: users, Total: total}, nil
}

// Get retrieves a user by ID
func (uc *UserUseCase) Get(ctx context.Context, id uuid.UUID) (*identityDomain.User, error) {
	user, err := uc.provider.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, identityDomain.ErrUserNotFound
	}
	return user, nil
}

// Create stores a new user. The email of an administrator-created user is not confirmed.
func (uc *UserUseCase) Create(ctx context.Context, input CreateUserInput) (*identityDomain.User, error) {
	user := &identityDomain.User{
		UserName: strings.TrimSpace(input.UserName),
		Email:    strings.TrimSpace(input.Email),
	}

	if err := uc.provider.CreateUser(ctx, user, input.Password); err != nil {
		return nil, err
	}
	return user, nil
}

// Update changes the username and email of a user.
func (uc *UserUseCase) Update(
	ctx context.Context,
	id uuid.UUID,
	input UpdateUserInput,
) (*identityDomain.User, error) {
	if input.ID != nil && *input.ID != id {
		return nil, apperrors.NewOperationError(apperrors.Detail{
			Code:        CodeIDMismatch,
			Description: "The id in the body does not match the id in the path.",
		})
	}

	user, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.ConcurrencyStamp != "" && input.ConcurrencyStamp != user.ConcurrencyStamp {
		return nil, identityDomain.ErrConcurrencyFailure
	}

	user.UserName = strings.TrimSpace(input.UserName)
	user.Email = strings.TrimSpace(input.Email)

	if err := uc.provider.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes a user and its role memberships.
func (uc *UserUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	user, err := uc.Get(ctx, id)
	if err != nil {
		return err
	}
	return uc.provider.DeleteUser(ctx, user)
}

func (uc *UserUseCase) GetRoles(ctx context.Context, id uuid.UUID) ([]string, error) {
	user, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.provider.GetRoles(ctx, user)
}

func (uc *UserUseCase) AddRoles(ctx context.Context, id uuid.UUID, roles []string) error {
	user, err := uc.Get(ctx, id)
	if err != nil {
		return err
	}
	return uc.provider.AddToRoles(ctx, user, roles)
}

func (uc *UserUseCase) RemoveRoles(ctx context.Context, id uuid.UUID, roles []string) error {
	user, err := uc.Get(ctx, id)
	if err != nil {
		return err
	}
	return uc.provider.RemoveFromRoles(ctx, user, roles)
}
