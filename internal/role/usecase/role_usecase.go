// Package usecase implements role management.
package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"

	identityDomain "github.com/allisson/identity/internal/identity/domain"
	identityService "github.com/allisson/identity/internal/identity/service"
)

// UpdateRoleInput renames a role. A non-empty ConcurrencyStamp must match the stored one.
type UpdateRoleInput struct {
	Name             string
	ConcurrencyStamp string
}

// UseCase defines role management operations.
type UseCase interface {
	List(ctx context.Context, offset, limit int) ([]*identityDomain.Role, error)
	Get(ctx context.Context, id uuid.UUID) (*identityDomain.Role, error)
	Create(ctx context.Context, name string) (*identityDomain.Role, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateRoleInput) (*identityDomain.Role, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// RoleLister pages through stored roles.
type RoleLister interface {
	List(ctx context.Context, offset, limit int) ([]*identityDomain.Role, error)
}

// RoleUseCase implements UseCase on top of the identity provider.
type RoleUseCase struct {
	provider identityService.Provider
	lister   RoleLister
}

// NewRoleUseCase creates a new RoleUseCase
func NewRoleUseCase(provider identityService.Provider, lister RoleLister) UseCase {
	return &RoleUseCase{
		provider: provider,
		lister:   lister,
	}
}

func (uc *RoleUseCase) List(ctx context.Context, offset, limit int) ([]*identityDomain.Role, error) {
	return uc.lister.List(ctx, offset, limit)
}

func (uc *RoleUseCase) Get(ctx context.Context, id uuid.UUID) (*identityDomain.Role, error) {
	role, err := uc.provider.FindRoleByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, identityDomain.ErrRoleNotFound
	}
	return role, nil
}

func (uc *RoleUseCase) Create(ctx context.Context, name string) (*identityDomain.Role, error) {
	role := &identityDomain.Role{Name: strings.TrimSpace(name)}
	if err := uc.provider.CreateRole(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// Update renames a role, failing with ErrConcurrencyFailure on a stale stamp.
func (uc *RoleUseCase) Update(
	ctx context.Context,
	id uuid.UUID,
	input UpdateRoleInput,
) (*identityDomain.Role, error) {
	role, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.ConcurrencyStamp != "" && input.ConcurrencyStamp != role.ConcurrencyStamp {
		return nil, identityDomain.ErrConcurrencyFailure
	}

	role.Name = strings.TrimSpace(input.Name)
	if err := uc.provider.UpdateRole(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

func (uc *RoleUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	role, err := uc.Get(ctx, id)
	if err != nil {
		return err
	}
	return uc.provider.DeleteRole(ctx, role)
}
