package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/identity/internal/identity/domain"
)

// MockProvider is a mock implementation of service.Provider.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) findUser(args mock.Arguments) (*domain.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockProvider) FindByUserName(ctx context.Context, userName string) (*domain.User, error) {
	return m.findUser(m.Called(ctx, userName))
}

func (m *MockProvider) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.findUser(m.Called(ctx, email))
}

func (m *MockProvider) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return m.findUser(m.Called(ctx, id))
}

func (m *MockProvider) CheckPassword(ctx context.Context, user *domain.User, password string) (bool, error) {
	args := m.Called(ctx, user, password)
	return args.Bool(0), args.Error(1)
}

func (m *MockProvider) CreateUser(ctx context.Context, user *domain.User, password string) error {
	return m.Called(ctx, user, password).Error(0)
}

func (m *MockProvider) UpdateUser(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockProvider) DeleteUser(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockProvider) ChangePassword(
	ctx context.Context,
	user *domain.User,
	currentPassword, newPassword string,
) error {
	return m.Called(ctx, user, currentPassword, newPassword).Error(0)
}

func (m *MockProvider) GenerateEmailConfirmationToken(ctx context.Context, user *domain.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *MockProvider) ConfirmEmail(ctx context.Context, user *domain.User, token string) error {
	return m.Called(ctx, user, token).Error(0)
}

func (m *MockProvider) GeneratePasswordResetToken(ctx context.Context, user *domain.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *MockProvider) ResetPassword(ctx context.Context, user *domain.User, token, newPassword string) error {
	return m.Called(ctx, user, token, newPassword).Error(0)
}

func (m *MockProvider) GetRoles(ctx context.Context, user *domain.User) ([]string, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProvider) AddToRoles(ctx context.Context, user *domain.User, roles []string) error {
	return m.Called(ctx, user, roles).Error(0)
}

func (m *MockProvider) RemoveFromRoles(ctx context.Context, user *domain.User, roles []string) error {
	return m.Called(ctx, user, roles).Error(0)
}

func (m *MockProvider) RoleExists(ctx context.Context, roleName string) (bool, error) {
	args := m.Called(ctx, roleName)
	return args.Bool(0), args.Error(1)
}

func (m *MockProvider) CreateRole(ctx context.Context, role *domain.Role) error {
	return m.Called(ctx, role).Error(0)
}

func (m *MockProvider) IsLockedOut(user *domain.User) bool {
	return m.Called(user).Bool(0)
}

func (m *MockProvider) AccessFailed(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockProvider) ResetAccessFailedCount(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockProvider) FindRoleByID(ctx context.Context, id uuid.UUID) (*domain.Role, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Role), args.Error(1)
}

func (m *MockProvider) UpdateRole(ctx context.Context, role *domain.Role) error {
	return m.Called(ctx, role).Error(0)
}

func (m *MockProvider) DeleteRole(ctx context.Context, role *domain.Role) error {
	return m.Called(ctx, role).Error(0)
}
