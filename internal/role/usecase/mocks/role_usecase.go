// Package mocks provides mock implementations of the role management use case.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	identityDomain "github.com/allisson/identity/internal/identity/domain"
	"github.com/allisson/identity/internal/role/usecase"
)

// MockRoleUseCase is a mock implementation of usecase.UseCase.
type MockRoleUseCase struct {
	mock.Mock
}

func (m *MockRoleUseCase) role(args mock.Arguments) (*identityDomain.Role, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.Role), args.Error(1)
}

func (m *MockRoleUseCase) List(ctx context.Context, offset, limit int) ([]*identityDomain.Role, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identityDomain.Role), args.Error(1)
}

func (m *MockRoleUseCase) Get(ctx context.Context, id uuid.UUID) (*identityDomain.Role, error) {
	return m.role(m.Called(ctx, id))
}

func (m *MockRoleUseCase) Create(ctx context.Context, name string) (*identityDomain.Role, error) {
	return m.role(m.Called(ctx, name))
}

func (m *MockRoleUseCase) Update(
	ctx context.Context,
	id uuid.UUID,
	input usecase.UpdateRoleInput,
) (*identityDomain.Role, error) {
	return m.role(m.Called(ctx, id, input))
}

func (m *MockRoleUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}
