// Package mocks provides mock implementations of the user management use case.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	identityDomain "github.com/allisson/identity/internal/identity/domain"
	"github.com/allisson/identity/internal/user/usecase"
)

// MockUserUseCase is a mock implementation of usecase.UseCase.
type MockUserUseCase struct {
	mock.Mock
}

func (m *MockUserUseCase) user(args mock.Arguments) (*identityDomain.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.User), args.Error(1)
}

func (m *MockUserUseCase) List(ctx context.Context, offset, limit int) (*usecase.ListUsersOutput, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ListUsersOutput), args.Error(1)
}

func (m *MockUserUseCase) Get(ctx context.Context, id uuid.UUID) (*identityDomain.User, error) {
	return m.user(m.Called(ctx, id))
}

func (m *MockUserUseCase) Create(
	ctx context.Context,
	input usecase.CreateUserInput,
) (*identityDomain.User, error) {
	return m.user(m.Called(ctx, input))
}

func (m *MockUserUseCase) Update(
	ctx context.Context,
	id uuid.UUID,
	input usecase.UpdateUserInput,
) (*identityDomain.User, error) {
	return m.user(m.Called(ctx, id, input))
}

func (m *MockUserUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserUseCase) GetRoles(ctx context.Context, id uuid.UUID) ([]string, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockUserUseCase) AddRoles(ctx context.Context, id uuid.UUID, roles []string) error {
	return m.Called(ctx, id, roles).Error(0)
}

func (m *MockUserUseCase) RemoveRoles(ctx context.Context, id uuid.UUID, roles []string) error {
	return m.Called(ctx, id, roles).Error(0)
}
