package commands

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/identity/internal/auth/domain"
	authService "github.com/allisson/identity/internal/auth/service"
	"github.com/allisson/identity/internal/database"
	identityDomain "github.com/allisson/identity/internal/identity/domain"
	identityMocks "github.com/allisson/identity/internal/identity/mocks"
)

var commandSettings = authDomain.TokenSettings{
	Secret:          "command-test-secret-with-32-bytes!",
	Issuer:          "identity",
	Audience:        "identity-clients",
	LifetimeMinutes: 5,
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// inlineTx runs fn with the caller's context.
type inlineTx struct{}

func (inlineTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func seedPasswords() SeedPasswords {
	return SeedPasswords{Admin: "Admin123*", Developer: "Developer123*"}
}

func TestRunSeed(t *testing.T) {
	ctx := context.Background()
	issuer := authService.NewTokenIssuer(commandSettings)
	validator := authService.NewTokenValidator(commandSettings, 0)

	t.Run("empty-database", func(t *testing.T) {
		provider := &identityMocks.MockProvider{}
		created := map[string]*identityDomain.Role{}

		provider.On("RoleExists", ctx, mock.Anything).Return(false, nil)
		provider.On("CreateRole", ctx, mock.AnythingOfType("*domain.Role")).
			Run(func(args mock.Arguments) {
				role := args.Get(1).(*identityDomain.Role)
				created[role.Name] = role
			}).
			Return(nil)
		provider.On("FindByUserName", ctx, mock.Anything).Return(nil, nil)
		provider.On("CreateUser", ctx, mock.MatchedBy(func(u *identityDomain.User) bool {
			return u.UserName == "admin" && u.Email == "admin@admin.com" && u.EmailConfirmed
		}), "Admin123*").Return(nil).Once()
		provider.On("CreateUser", ctx, mock.MatchedBy(func(u *identityDomain.User) bool {
			return u.UserName == "developer" && u.Email == "developer@admin.com" && u.EmailConfirmed
		}), "Developer123*").Return(nil).Once()
		provider.On("AddToRoles", ctx, mock.MatchedBy(func(u *identityDomain.User) bool {
			return u.UserName == "admin"
		}), []string{identityDomain.RoleAdmin}).Return(nil).Once()
		provider.On("AddToRoles", ctx, mock.MatchedBy(func(u *identityDomain.User) bool {
			return u.UserName == "developer"
		}), []string{identityDomain.RoleDeveloper}).Return(nil).Once()

		var out bytes.Buffer
		err := RunSeed(ctx, inlineTx{}, provider, issuer, discardLogger(), &out, seedPasswords())

		require.NoError(t, err)
		require.Len(t, created, 3)
		assert.Empty(t, created[identityDomain.RoleUser].ConcurrencyStamp)

		for _, name := range []string{identityDomain.RoleAdmin, identityDomain.RoleDeveloper} {
			principal := validator.PrincipalFromExpiredToken(created[name].ConcurrencyStamp)
			require.NotNil(t, principal, name)
			assert.Equal(t, name, principal.UserName)
		}

		assert.Contains(t, out.String(), "User admin created with role Admin")
		assert.Contains(t, out.String(), "Seed completed")
		provider.AssertExpectations(t)
	})

	t.Run("already-seeded", func(t *testing.T) {
		provider := &identityMocks.MockProvider{}
		provider.On("RoleExists", ctx, mock.Anything).Return(true, nil)
		provider.On("FindByUserName", ctx, mock.Anything).
			Return(&identityDomain.User{UserName: "existing"}, nil)
		provider.On("GetRoles", ctx, mock.Anything).
			Return([]string{identityDomain.RoleAdmin, identityDomain.RoleDeveloper}, nil)

		var out bytes.Buffer
		err := RunSeed(ctx, inlineTx{}, provider, issuer, discardLogger(), &out, seedPasswords())

		require.NoError(t, err)
		assert.Equal(t, "Seed completed\n", out.String())
		provider.AssertNotCalled(t, "CreateRole", mock.Anything, mock.Anything)
		provider.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything, mock.Anything)
		provider.AssertNotCalled(t, "AddToRoles", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("role-lookup-error", func(t *testing.T) {
		provider := &identityMocks.MockProvider{}
		provider.On("RoleExists", ctx, identityDomain.RoleAdmin).Return(false, errors.New("db down"))

		err := RunSeed(ctx, inlineTx{}, provider, issuer, discardLogger(), io.Discard, seedPasswords())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to check role Admin")
	})

	t.Run("create-user-error", func(t *testing.T) {
		provider := &identityMocks.MockProvider{}
		provider.On("RoleExists", ctx, mock.Anything).Return(true, nil)
		provider.On("FindByUserName", ctx, "admin").Return(nil, nil)
		provider.On("CreateUser", ctx, mock.Anything, "Admin123*").Return(errors.New("duplicate"))

		err := RunSeed(ctx, inlineTx{}, provider, issuer, discardLogger(), io.Discard, seedPasswords())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create user admin")
		provider.AssertNotCalled(t, "AddToRoles", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("failed-role-assignment-rolls-back-user", func(t *testing.T) {
		db, sqlMock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		provider := &identityMocks.MockProvider{}
		provider.On("RoleExists", mock.Anything, mock.Anything).Return(true, nil)
		provider.On("FindByUserName", mock.Anything, "admin").Return(nil, nil)
		provider.On("CreateUser", mock.Anything, mock.Anything, "Admin123*").Return(nil)
		provider.On("AddToRoles", mock.Anything, mock.Anything, []string{identityDomain.RoleAdmin}).
			Return(errors.New("db down"))

		sqlMock.ExpectBegin()
		sqlMock.ExpectRollback()

		err = RunSeed(ctx, database.NewTxManager(db), provider, issuer, discardLogger(), io.Discard, seedPasswords())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to assign role Admin to admin")
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("rerun-restores-missing-role", func(t *testing.T) {
		admin := &identityDomain.User{UserName: "admin"}
		developer := &identityDomain.User{UserName: "developer"}

		provider := &identityMocks.MockProvider{}
		provider.On("RoleExists", ctx, mock.Anything).Return(true, nil)
		provider.On("FindByUserName", ctx, "admin").Return(admin, nil)
		provider.On("FindByUserName", ctx, "developer").Return(developer, nil)
		provider.On("GetRoles", ctx, admin).Return([]string{}, nil)
		provider.On("GetRoles", ctx, developer).Return([]string{"developer"}, nil)
		provider.On("AddToRoles", ctx, admin, []string{identityDomain.RoleAdmin}).Return(nil).Once()

		var out bytes.Buffer
		err := RunSeed(ctx, inlineTx{}, provider, issuer, discardLogger(), &out, seedPasswords())

		require.NoError(t, err)
		assert.Contains(t, out.String(), "User admin given missing role Admin")
		provider.AssertExpectations(t)
		provider.AssertNumberOfCalls(t, "AddToRoles", 1)
		provider.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything, mock.Anything)
	})
}
