package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/identity/internal/auth/domain"
	authService "github.com/allisson/identity/internal/auth/service"
	apperrors "github.com/allisson/identity/internal/errors"
	identityDomain "github.com/allisson/identity/internal/identity/domain"
	identityMocks "github.com/allisson/identity/internal/identity/mocks"
	outboxDomain "github.com/allisson/identity/internal/outbox/domain"
)

// MockOutboxEventRepository is a mock implementation of OutboxEventRepository
type MockOutboxEventRepository struct {
	mock.Mock
}

func (m *MockOutboxEventRepository) Create(ctx context.Context, event *outboxDomain.OutboxEvent) error {
	return m.Called(ctx, event).Error(0)
}

var testSettings = authDomain.TokenSettings{
	Secret:          "a-test-secret-that-is-long-enough-for-hs256",
	Issuer:          "identity",
	Audience:        "identity-clients",
	LifetimeMinutes: 60,
}

type authFixture struct {
	txManager  *identityMocks.MockTxManager
	provider   *identityMocks.MockProvider
	outboxRepo *MockOutboxEventRepository
	validator  authService.TokenValidator
	useCase    *authUseCase
}

func newAuthFixture(refreshWindow time.Duration) *authFixture {
	f := &authFixture{
		txManager:  &identityMocks.MockTxManager{},
		provider:   &identityMocks.MockProvider{},
		outboxRepo: &MockOutboxEventRepository{},
		validator:  authService.NewTokenValidator(testSettings, 0),
	}
	f.useCase = NewAuthUseCase(
		f.txManager,
		f.provider,
		f.outboxRepo,
		authService.NewTokenIssuer(testSettings),
		f.validator,
		refreshWindow,
	).(*authUseCase)
	return f
}

func (f *authFixture) assertExpectations(t *testing.T) {
	f.txManager.AssertExpectations(t)
	f.provider.AssertExpectations(t)
	f.outboxRepo.AssertExpectations(t)
}

func testUser() *identityDomain.User {
	return &identityDomain.User{
		ID:       uuid.Must(uuid.NewV7()),
		UserName: "alice",
		Email:    "alice@example.com",
	}
}

// signExpired signs a token for user that expired an hour ago.
func signExpired(t *testing.T, user *identityDomain.User) string {
	t.Helper()
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		authDomain.ClaimSubject:        user.UserName,
		authDomain.ClaimTokenID:        uuid.NewString(),
		authDomain.ClaimNameIdentifier: user.ID.String(),
		authDomain.ClaimRole:           []string{"Old"},
		authDomain.ClaimIssuer:         testSettings.Issuer,
		authDomain.ClaimAudience:       testSettings.Audience,
		authDomain.ClaimIssuedAt:       now.Add(-2 * time.Hour).Unix(),
		authDomain.ClaimExpiresAt:      now.Add(-time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSettings.Secret))
	require.NoError(t, err)
	return signed
}

func TestAuthUseCase_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("success enqueues confirmation", func(t *testing.T) {
		f := newAuthFixture(0)
		f.txManager.On("WithTx", ctx, mock.Anything).Return(nil)
		f.provider.On("CreateUser", ctx, mock.AnythingOfType("*domain.User"), "Secret1!").
			Run(func(args mock.Arguments) {
				args.Get(1).(*identityDomain.User).ID = uuid.Must(uuid.NewV7())
			}).
			Return(nil)
		f.provider.On("GenerateEmailConfirmationToken", ctx, mock.AnythingOfType("*domain.User")).
			Return("confirm-token", nil)

		var event *outboxDomain.OutboxEvent
		f.outboxRepo.On("Create", ctx, mock.AnythingOfType("*domain.OutboxEvent")).
			Run(func(args mock.Arguments) { event = args.Get(1).(*outboxDomain.OutboxEvent) }).
			Return(nil)

		user, err := f.useCase.Register(ctx, &authDomain.RegisterInput{
			UserName: " alice ",
			Email:    "alice@example.com",
			Password: "Secret1!",
		})

		require.NoError(t, err)
		assert.Equal(t, "alice", user.UserName)
		require.NotNil(t, event)
		assert.Equal(t, outboxDomain.EventUserRegistered, event.EventType)
		assert.Equal(t, outboxDomain.OutboxEventStatusPending, event.Status)

		var payload outboxDomain.UserTokenPayload
		require.NoError(t, json.Unmarshal([]byte(event.Payload), &payload))
		assert.Equal(t, user.ID, payload.UserID)
		assert.Equal(t, "confirm-token", payload.Token)
		f.assertExpectations(t)
	})

	t.Run("operation error skips outbox", func(t *testing.T) {
		f := newAuthFixture(0)
		opErr := apperrors.NewOperationError(identityDomain.DuplicateUserName("alice"))
		f.txManager.On("WithTx", ctx, mock.Anything).Return(nil)
		f.provider.On("CreateUser", ctx, mock.Anything, "Secret1!").Return(opErr)

		user, err := f.useCase.Register(ctx, &authDomain.RegisterInput{
			UserName: "alice",
			Email:    "alice@example.com",
			Password: "Secret1!",
		})

		assert.Nil(t, user)
		assert.Equal(t, opErr, err)
		f.outboxRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestAuthUseCase_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("success issues token with roles", func(t *testing.T) {
		f := newAuthFixture(0)
		user := testUser()
		f.provider.On("FindByUserName", ctx, "alice").Return(user, nil)
		f.provider.On("IsLockedOut", user).Return(false)
		f.provider.On("CheckPassword", ctx, user, "Secret1!").Return(true, nil)
		f.provider.On("ResetAccessFailedCount", ctx, user).Return(nil)
		f.provider.On("GetRoles", ctx, user).Return([]string{"Admin", "User"}, nil)

		output, err := f.useCase.Login(ctx, &authDomain.LoginInput{UserName: "alice", Password: "Secret1!"})

		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), output.User.ID)
		assert.Equal(t, []string{"Admin", "User"}, output.User.Roles)

		principal, err := f.validator.Validate(output.Token.Token)
		require.NoError(t, err)
		assert.Equal(t, "alice", principal.UserName)
		assert.True(t, principal.IsInRole("admin"))
		f.assertExpectations(t)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newAuthFixture(0)
		f.provider.On("FindByUserName", ctx, "ghost").Return(nil, nil)

		output, err := f.useCase.Login(ctx, &authDomain.LoginInput{UserName: "ghost", Password: "x"})

		assert.Nil(t, output)
		assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
	})

	t.Run("wrong password counts failure", func(t *testing.T) {
		f := newAuthFixture(0)
		user := testUser()
		f.provider.On("FindByUserName", ctx, "alice").Return(user, nil)
		f.provider.On("IsLockedOut", user).Return(false)
		f.provider.On("CheckPassword", ctx, user, "wrong").Return(false, nil)
		f.provider.On("AccessFailed", ctx, user).Return(nil)

		_, err := f.useCase.Login(ctx, &authDomain.LoginInput{UserName: "alice", Password: "wrong"})

		assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
		f.provider.AssertCalled(t, "AccessFailed", ctx, user)
	})

	t.Run("failure that locks the account stays generic", func(t *testing.T) {
		f := newAuthFixture(0)
		user := testUser()
		f.provider.On("FindByUserName", ctx, "alice").Return(user, nil)
		f.provider.On("CheckPassword", ctx, user, "wrong").Return(false, nil)
		f.provider.On("IsLockedOut", user).Return(false)
		f.provider.On("AccessFailed", ctx, user).Return(nil)

		_, err := f.useCase.Login(ctx, &authDomain.LoginInput{UserName: "alice", Password: "wrong"})

		assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
		assert.NotErrorIs(t, err, authDomain.ErrUserLocked)
	})

	t.Run("locked account with wrong password looks like unknown user", func(t *testing.T) {
		f := newAuthFixture(0)
		user := testUser()
		f.provider.On("FindByUserName", ctx, "alice").Return(user, nil)
		f.provider.On("CheckPassword", ctx, user, "wrong").Return(false, nil)
		f.provider.On("IsLockedOut", user).Return(true)

		_, lockedErr := f.useCase.Login(ctx, &authDomain.LoginInput{UserName: "alice", Password: "wrong"})

		f.provider.On("FindByUserName", ctx, "ghost").Return(nil, nil)
		_, unknownErr := f.useCase.Login(ctx, &authDomain.LoginInput{UserName: "ghost", Password: "wrong"})

		assert.ErrorIs(t, lockedErr, authDomain.ErrInvalidCredentials)
		assert.Equal(t, unknownErr, lockedErr)
		f.provider.AssertNotCalled(t, "AccessFailed", mock.Anything, mock.Anything)
	})

	t.Run("locked account with correct password", func(t *testing.T) {
		f := newAuthFixture(0)
		user := testUser()
		f.provider.On("FindByUserName", ctx, "alice").Return(user, nil)
		f.provider.On("CheckPassword", ctx, user, "Secret1!").Return(true, nil)
		f.provider.On("IsLockedOut", user).Return(true)

		_, err := f.useCase.Login(ctx, &authDomain.LoginInput{UserName: "alice", Password: "Secret1!"})

		assert.ErrorIs(t, err, authDomain.ErrUserLocked)
		assert.True(t, apperrors.Is(err, apperrors.ErrLocked))
		f.provider.AssertNotCalled(t, "ResetAccessFailedCount", mock.Anything, mock.Anything)
	})

	t.Run("lookup error", func(t *testing.T) {
		f := newAuthFixture(0)
		f.provider.On("FindByUserName", ctx, "alice").Return(nil, errors.New("db down"))

		_, err := f.useCase.Login(ctx, &authDomain.LoginInput{UserName: "alice", Password: "x"})

		assert.EqualError(t, err, "db down")
	})
}

func TestAuthUseCase_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("expired token is refreshed with current roles", func(t *testing.T) {
		f := newAuthFixture(0)
		user := testUser()
		token := signExpired(t, user)
		f.provider.On("FindByID", ctx, user.ID).Return(user, nil)
		f.provider.On("IsLockedOut", user).Return(false)
		f.provider.On("GetRoles", ctx, user).Return([]string{"Developer"}, nil)

		output, err := f.useCase.Refresh(ctx, token)

		require.NoError(t, err)
		principal, err := f.validator.Validate(output.Token.Token)
		require.NoError(t, err)
		assert.Equal(t, []string{"Developer"}, principal.Roles)
		assert.NotEqual(t, token, output.Token.Token)
	})

	t.Run("invalid signature", func(t *testing.T) {
		f := newAuthFixture(0)

		_, err := f.useCase.Refresh(ctx, "not.a.token")

		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
		f.provider.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("deleted user", func(t *testing.T) {
		f := newAuthFixture(0)
		user := testUser()
		f.provider.On("FindByID", ctx, user.ID).Return(nil, nil)

		_, err := f.useCase.Refresh(ctx, signExpired(t, user))

		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
	})

	t.Run("locked user", func(t *testing.T) {
		f := newAuthFixture(0)
		user := testUser()
		f.provider.On("FindByID", ctx, user.ID).Return(user, nil)
		f.provider.On("IsLockedOut", user).Return(true)

		_, err := f.useCase.Refresh(ctx, signExpired(t, user))

		assert.ErrorIs(t, err, authDomain.ErrUserLocked)
	})

	t.Run("refresh window exceeded", func(t *testing.T) {
		f := newAuthFixture(30 * time.Minute)
		user := testUser()

		_, err := f.useCase.Refresh(ctx, signExpired(t, user))

		assert.ErrorIs(t, err, authDomain.ErrRefreshWindowExceeded)
		f.provider.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("subject that is not a user id", func(t *testing.T) {
		f := newAuthFixture(0)
		issued, err := authService.NewTokenIssuer(testSettings).Issue(authDomain.Principal{ID: "u1", UserName: "alice"})
		require.NoError(t, err)

		_, err = f.useCase.Refresh(ctx, issued.Token)

		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
	})
}

func TestAuthUseCase_ConfirmEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := newAuthFixture(0)
		user := testUser()
		f.provider.On("FindByID", ctx, user.ID).Return(user, nil)
		f.provider.On("ConfirmEmail", ctx, user, "tok").Return(nil)

		err := f.useCase.ConfirmEmail(ctx, &authDomain.ConfirmEmailInput{UserID: user.ID, Token: "tok"})

		assert.NoError(t, err)
		f.assertExpectations(t)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newAuthFixture(0)
		id := uuid.Must(uuid.NewV7())
		f.provider.On("FindByID", ctx, id).Return(nil, nil)

		err := f.useCase.ConfirmEmail(ctx, &authDomain.ConfirmEmailInput{UserID: id, Token: "tok"})

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestAuthUseCase_SendResetLink(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := newAuthFixture(0)
		user := testUser()
		f.provider.On("FindByEmail", ctx, "alice@example.com").Return(user, nil)
		f.provider.On("GeneratePasswordResetToken", ctx, user).Return("reset-token", nil)
		f.outboxRepo.On("Create", ctx, mock.MatchedBy(func(e *outboxDomain.OutboxEvent) bool {
			return e.EventType == outboxDomain.EventPasswordResetRequested
		})).Return(nil)

		require.NoError(t, f.useCase.SendResetLink(ctx, "alice@example.com"))
		f.assertExpectations(t)
	})

	t.Run("unknown email", func(t *testing.T) {
		f := newAuthFixture(0)
		f.provider.On("FindByEmail", ctx, "ghost@example.com").Return(nil, nil)

		err := f.useCase.SendResetLink(ctx, "ghost@example.com")

		assert.ErrorIs(t, err, authDomain.ErrUserNotFound)
	})
}

func TestAuthUseCase_ResetPassword(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(0)
	user := testUser()
	f.provider.On("FindByUserName", ctx, "alice").Return(user, nil)
	f.provider.On("FindByUserName", ctx, "ghost").Return(nil, nil)
	f.provider.On("ResetPassword", ctx, user, "tok", "Newer2@").Return(nil)

	assert.NoError(t, f.useCase.ResetPassword(ctx, &authDomain.ResetPasswordInput{
		UserName: "alice", Token: "tok", NewPassword: "Newer2@",
	}))
	assert.ErrorIs(t, f.useCase.ResetPassword(ctx, &authDomain.ResetPasswordInput{
		UserName: "ghost", Token: "tok", NewPassword: "Newer2@",
	}), authDomain.ErrUserNotFound)
}

func TestAuthUseCase_ChangePassword(t *testing.T) {
	ctx := context.Background()
	self := &authDomain.ClaimsPrincipal{Principal: authDomain.Principal{UserName: "alice"}}
	admin := &authDomain.ClaimsPrincipal{Principal: authDomain.Principal{UserName: "root", Roles: []string{"Admin"}}}
	other := &authDomain.ClaimsPrincipal{Principal: authDomain.Principal{UserName: "bob", Roles: []string{"User"}}}
	input := &authDomain.ChangePasswordInput{UserName: "alice", OldPassword: "Secret1!", NewPassword: "Newer2@"}

	t.Run("self", func(t *testing.T) {
		f := newAuthFixture(0)
		user := testUser()
		f.provider.On("FindByUserName", ctx, "alice").Return(user, nil)
		f.provider.On("ChangePassword", ctx, user, "Secret1!", "Newer2@").Return(nil)

		assert.NoError(t, f.useCase.ChangePassword(ctx, self, input))
	})

	t.Run("admin", func(t *testing.T) {
		f := newAuthFixture(0)
		user := testUser()
		f.provider.On("FindByUserName", ctx, "alice").Return(user, nil)
		f.provider.On("ChangePassword", ctx, user, "Secret1!", "Newer2@").Return(nil)

		assert.NoError(t, f.useCase.ChangePassword(ctx, admin, input))
	})

	t.Run("another user is forbidden", func(t *testing.T) {
		f := newAuthFixture(0)

		err := f.useCase.ChangePassword(ctx, other, input)

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		f.provider.AssertNotCalled(t, "FindByUserName", mock.Anything, mock.Anything)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newAuthFixture(0)
		f.provider.On("FindByUserName", ctx, "alice").Return(nil, nil)

		err := f.useCase.ChangePassword(ctx, admin, input)

		var opErr *apperrors.OperationError
		require.ErrorAs(t, err, &opErr)
		assert.Equal(t, "User not found.", opErr.Error())
	})

	t.Run("wrong old password", func(t *testing.T) {
		f := newAuthFixture(0)
		user := testUser()
		mismatch := apperrors.NewOperationError(identityDomain.PasswordMismatch())
		f.provider.On("FindByUserName", ctx, "alice").Return(user, nil)
		f.provider.On("ChangePassword", ctx, user, "Secret1!", "Newer2@").Return(mismatch)

		err := f.useCase.ChangePassword(ctx, self, input)

		assert.Equal(t, mismatch, err)
	})
}
