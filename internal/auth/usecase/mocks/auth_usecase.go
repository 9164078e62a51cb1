// Package mocks provides mock implementations of the authentication use cases.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/identity/internal/auth/domain"
	identityDomain "github.com/allisson/identity/internal/identity/domain"
)

// MockAuthUseCase is a mock implementation of usecase.AuthUseCase.
type MockAuthUseCase struct {
	mock.Mock
}

func (m *MockAuthUseCase) Register(
	ctx context.Context,
	input *authDomain.RegisterInput,
) (*identityDomain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.User), args.Error(1)
}

func (m *MockAuthUseCase) Login(ctx context.Context, input *authDomain.LoginInput) (*authDomain.AuthOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.AuthOutput), args.Error(1)
}

func (m *MockAuthUseCase) Refresh(ctx context.Context, token string) (*authDomain.AuthOutput, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.AuthOutput), args.Error(1)
}

func (m *MockAuthUseCase) ConfirmEmail(ctx context.Context, input *authDomain.ConfirmEmailInput) error {
	return m.Called(ctx, input).Error(0)
}

func (m *MockAuthUseCase) SendResetLink(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *MockAuthUseCase) ResetPassword(ctx context.Context, input *authDomain.ResetPasswordInput) error {
	return m.Called(ctx, input).Error(0)
}

func (m *MockAuthUseCase) ChangePassword(
	ctx context.Context,
	caller *authDomain.ClaimsPrincipal,
	input *authDomain.ChangePasswordInput,
) error {
	return m.Called(ctx, caller, input).Error(0)
}
