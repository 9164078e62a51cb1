package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/identity/internal/errors"
	identityDomain "github.com/allisson/identity/internal/identity/domain"
	"github.com/allisson/identity/internal/identity/mocks"
)

func newUserUseCase() (UseCase, *mocks.MockProvider, *mocks.MockUserRepository) {
	provider := &mocks.MockProvider{}
	repo := &mocks.MockUserRepository{}
	return NewUserUseCase(provider, repo), provider, repo
}

func storedUser() *identityDomain.User {
	return &identityDomain.User{
		ID:               uuid.Must(uuid.NewV7()),
		UserName:         "alice",
		Email:            "alice@example.com",
		ConcurrencyStamp: "STAMP",
	}
}

func TestUserUseCase_List(t *testing.T) {
	ctx := context.Background()

	t.Run("returns page and total", func(t *testing.T) {
		uc, _, repo := newUserUseCase()
		users := []*identityDomain.User{storedUser(), storedUser()}
		repo.On("List", ctx, 10, 2).Return(users, nil).Once()
		repo.On("Count", ctx).Return(int64(12), nil).Once()

		out, err := uc.List(ctx, 10, 2)

		require.NoError(t, err)
		assert.Equal(t, users, out.Users)
		assert.Equal(t, int64(12), out.Total)
		repo.AssertExpectations(t)
	})

	t.Run("list error", func(t *testing.T) {
		uc, _, repo := newUserUseCase()
		repo.On("List", ctx, 0, 50).Return(nil, errors.New("db down")).Once()

		out, err := uc.List(ctx, 0, 50)

		assert.Nil(t, out)
		assert.EqualError(t, err, "db down")
		repo.AssertNotCalled(t, "Count", mock.Anything)
	})
}

func TestUserUseCase_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		uc, provider, _ := newUserUseCase()
		user := storedUser()
		provider.On("FindByID", ctx, user.ID).Return(user, nil).Once()

		got, err := uc.Get(ctx, user.ID)

		require.NoError(t, err)
		assert.Same(t, user, got)
	})

	t.Run("missing user is not found", func(t *testing.T) {
		uc, provider, _ := newUserUseCase()
		id := uuid.Must(uuid.NewV7())
		provider.On("FindByID", ctx, id).Return(nil, nil).Once()

		got, err := uc.Get(ctx, id)

		assert.Nil(t, got)
		assert.ErrorIs(t, err, identityDomain.ErrUserNotFound)
		assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	})
}

func TestUserUseCase_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("trims and delegates to provider", func(t *testing.T) {
		uc, provider, _ := newUserUseCase()
		provider.On("CreateUser", ctx, mock.MatchedBy(func(u *identityDomain.User) bool {
			return u.UserName == "bob" && u.Email == "bob@example.com"
		}), "").Return(nil).Once()

		user, err := uc.Create(ctx, CreateUserInput{UserName: " bob ", Email: "bob@example.com "})

		require.NoError(t, err)
		assert.Equal(t, "bob", user.UserName)
		provider.AssertExpectations(t)
	})

	t.Run("provider failure", func(t *testing.T) {
		uc, provider, _ := newUserUseCase()
		opErr := apperrors.NewOperationError(identityDomain.DuplicateUserName("bob"))
		provider.On("CreateUser", ctx, mock.Anything, "Secret1!").Return(opErr).Once()

		user, err := uc.Create(ctx, CreateUserInput{UserName: "bob", Email: "b@x.io", Password: "Secret1!"})

		assert.Nil(t, user)
		assert.Equal(t, opErr, err)
	})
}

func TestUserUseCase_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("body id mismatch", func(t *testing.T) {
		uc, provider, _ := newUserUseCase()
		other := uuid.Must(uuid.NewV7())

		user, err := uc.Update(ctx, uuid.Must(uuid.NewV7()), UpdateUserInput{ID: &other, UserName: "alice"})

		assert.Nil(t, user)
		var opErr *apperrors.OperationError
		require.True(t, apperrors.As(err, &opErr))
		assert.True(t, opErr.HasCode(CodeIDMismatch))
		provider.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("stale concurrency stamp", func(t *testing.T) {
		uc, provider, _ := newUserUseCase()
		stored := storedUser()
		provider.On("FindByID", ctx, stored.ID).Return(stored, nil).Once()

		_, err := uc.Update(ctx, stored.ID, UpdateUserInput{UserName: "alice2", ConcurrencyStamp: "OLD"})

		assert.ErrorIs(t, err, identityDomain.ErrConcurrencyFailure)
		provider.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything)
	})

	t.Run("success with matching body id", func(t *testing.T) {
		uc, provider, _ := newUserUseCase()
		stored := storedUser()
		id := stored.ID
		provider.On("FindByID", ctx, id).Return(stored, nil).Once()
		provider.On("UpdateUser", ctx, stored).Return(nil).Once()

		user, err := uc.Update(ctx, id, UpdateUserInput{
			ID:               &id,
			UserName:         "alice2",
			Email:            "alice2@example.com",
			ConcurrencyStamp: "STAMP",
		})

		require.NoError(t, err)
		assert.Equal(t, "alice2", user.UserName)
		assert.Equal(t, "alice2@example.com", user.Email)
		provider.AssertExpectations(t)
	})

	t.Run("unknown user", func(t *testing.T) {
		uc, provider, _ := newUserUseCase()
		id := uuid.Must(uuid.NewV7())
		provider.On("FindByID", ctx, id).Return(nil, nil).Once()

		_, err := uc.Update(ctx, id, UpdateUserInput{UserName: "x"})

		assert.ErrorIs(t, err, identityDomain.ErrUserNotFound)
	})
}

func TestUserUseCase_Delete(t *testing.T) {
	ctx := context.Background()
	uc, provider, _ := newUserUseCase()
	user := storedUser()
	provider.On("FindByID", ctx, user.ID).Return(user, nil).Once()
	provider.On("DeleteUser", ctx, user).Return(nil).Once()

	assert.NoError(t, uc.Delete(ctx, user.ID))
	provider.AssertExpectations(t)
}

func TestUserUseCase_Roles(t *testing.T) {
	ctx := context.Background()

	t.Run("get roles", func(t *testing.T) {
		uc, provider, _ := newUserUseCase()
		user := storedUser()
		provider.On("FindByID", ctx, user.ID).Return(user, nil).Once()
		provider.On("GetRoles", ctx, user).Return([]string{"Admin"}, nil).Once()

		roles, err := uc.GetRoles(ctx, user.ID)

		require.NoError(t, err)
		assert.Equal(t, []string{"Admin"}, roles)
	})

	t.Run("add unknown role surfaces operation error", func(t *testing.T) {
		uc, provider, _ := newUserUseCase()
		user := storedUser()
		opErr := apperrors.NewOperationError(identityDomain.RolesNotFound())
		provider.On("FindByID", ctx, user.ID).Return(user, nil).Once()
		provider.On("AddToRoles", ctx, user, []string{"Ghost"}).Return(opErr).Once()

		err := uc.AddRoles(ctx, user.ID, []string{"Ghost"})

		assert.Equal(t, opErr, err)
	})

	t.Run("remove roles", func(t *testing.T) {
		uc, provider, _ := newUserUseCase()
		user := storedUser()
		provider.On("FindByID", ctx, user.ID).Return(user, nil).Once()
		provider.On("RemoveFromRoles", ctx, user, []string{"Developer"}).Return(nil).Once()

		assert.NoError(t, uc.RemoveRoles(ctx, user.ID, []string{"Developer"}))
		provider.AssertExpectations(t)
	})

	t.Run("unknown user never touches roles", func(t *testing.T) {
		uc, provider, _ := newUserUseCase()
		id := uuid.Must(uuid.NewV7())
		provider.On("FindByID", ctx, id).Return(nil, nil).Once()

		err := uc.AddRoles(ctx, id, []string{"Admin"})

		assert.ErrorIs(t, err, identityDomain.ErrUserNotFound)
		provider.AssertNotCalled(t, "AddToRoles", mock.Anything, mock.Anything, mock.Anything)
	})
}
