package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/identity/internal/identity/domain"

	apperrors "github.com/allisson/identity/internal/errors"
)

var userColumnNames = []string{
	"id", "user_name", "normalized_user_name", "email", "normalized_email", "email_confirmed",
	"password_hash", "security_stamp", "concurrency_stamp", "access_failed_count", "lockout_end",
	"created_at", "updated_at",
}

func newTestUser() *domain.User {
	now := time.Now().UTC().Truncate(time.Second)
	user := &domain.User{
		ID:               uuid.Must(uuid.NewV7()),
		UserName:         "alice",
		Email:            "alice@example.com",
		PasswordHash:     "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA",
		SecurityStamp:    uuid.NewString(),
		ConcurrencyStamp: uuid.NewString(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	user.Normalize()
	return user
}

func userRow(user *domain.User, id driver.Value) []driver.Value {
	return []driver.Value{
		id, user.UserName, user.NormalizedUserName, user.Email, user.NormalizedEmail, user.EmailConfirmed,
		user.PasswordHash, user.SecurityStamp, user.ConcurrencyStamp, user.AccessFailedCount, nil,
		user.CreatedAt, user.UpdatedAt,
	}
}

func TestPostgreSQLUserRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		repo := NewPostgreSQLUserRepository(db)
		user := newTestUser()

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
			WithArgs(
				user.ID, user.UserName, user.NormalizedUserName, user.Email, user.NormalizedEmail,
				user.EmailConfirmed, user.PasswordHash, user.SecurityStamp, user.ConcurrencyStamp,
				user.AccessFailedCount, nil, user.CreatedAt, user.UpdatedAt,
			).
			WillReturnResult(sqlmock.NewResult(1, 1))

		require.NoError(t, repo.Create(ctx, user))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_DuplicateUserName", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
			WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "uq_users_normalized_user_name"`))

		err = NewPostgreSQLUserRepository(db).Create(ctx, newTestUser())

		assert.ErrorIs(t, err, domain.ErrUserNameTaken)
		assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
	})

	t.Run("Error_DuplicateEmail", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
			WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "uq_users_normalized_email"`))

		err = NewPostgreSQLUserRepository(db).Create(ctx, newTestUser())

		assert.ErrorIs(t, err, domain.ErrEmailTaken)
	})
}

func TestPostgreSQLUserRepository_GetByNormalizedUserName(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		user := newTestUser()
		lockoutEnd := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
		row := userRow(user, user.ID.String())
		row[10] = lockoutEnd

		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE normalized_user_name = $1")).
			WithArgs("ALICE").
			WillReturnRows(sqlmock.NewRows(userColumnNames).AddRow(row...))

		found, err := NewPostgreSQLUserRepository(db).GetByNormalizedUserName(ctx, "ALICE")

		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
		assert.Equal(t, "alice", found.UserName)
		assert.Equal(t, "ALICE@EXAMPLE.COM", found.NormalizedEmail)
		require.NotNil(t, found.LockoutEnd)
		assert.Equal(t, lockoutEnd, *found.LockoutEnd)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE normalized_user_name = $1")).
			WithArgs("BOB").
			WillReturnRows(sqlmock.NewRows(userColumnNames))

		found, err := NewPostgreSQLUserRepository(db).GetByNormalizedUserName(ctx, "BOB")

		assert.Nil(t, found)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestPostgreSQLUserRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = NewPostgreSQLUserRepository(db).Update(ctx, newTestUser())

		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET")).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, NewPostgreSQLUserRepository(db).Update(ctx, newTestUser()))
	})
}

func TestPostgreSQLUserRepository_RecordAccessFailure(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	lockoutEnd := now.Add(30 * time.Minute)

	t.Run("Success_IncrementsInPlace", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		user := newTestUser()
		user.AccessFailedCount = 2
		user.UpdatedAt = now

		mock.ExpectQuery(regexp.QuoteMeta("access_failed_count = CASE WHEN $2 > 0 AND access_failed_count + 1 >= $2")).
			WithArgs(user.ID, 3, lockoutEnd, now).
			WillReturnRows(sqlmock.NewRows(userColumnNames).AddRow(userRow(user, user.ID.String())...))

		stored, err := NewPostgreSQLUserRepository(db).RecordAccessFailure(ctx, user.ID, 3, lockoutEnd, now)

		require.NoError(t, err)
		assert.Equal(t, 2, stored.AccessFailedCount)
		assert.Nil(t, stored.LockoutEnd)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success_Locks", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		user := newTestUser()
		row := userRow(user, user.ID.String())
		row[10] = lockoutEnd

		mock.ExpectQuery(regexp.QuoteMeta("RETURNING id, user_name")).
			WithArgs(user.ID, 3, lockoutEnd, now).
			WillReturnRows(sqlmock.NewRows(userColumnNames).AddRow(row...))

		stored, err := NewPostgreSQLUserRepository(db).RecordAccessFailure(ctx, user.ID, 3, lockoutEnd, now)

		require.NoError(t, err)
		assert.Equal(t, 0, stored.AccessFailedCount)
		require.NotNil(t, stored.LockoutEnd)
		assert.Equal(t, lockoutEnd, *stored.LockoutEnd)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery(regexp.QuoteMeta("UPDATE users SET")).
			WillReturnRows(sqlmock.NewRows(userColumnNames))

		stored, err := NewPostgreSQLUserRepository(db).RecordAccessFailure(ctx, uuid.Must(uuid.NewV7()), 3, lockoutEnd, now)

		assert.Nil(t, stored)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestPostgreSQLUserRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	first := newTestUser()
	second := newTestUser()
	second.UserName = "bob"
	second.Normalize()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users ORDER BY normalized_user_name LIMIT $1 OFFSET $2")).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows(userColumnNames).
			AddRow(userRow(first, first.ID.String())...).
			AddRow(userRow(second, second.ID.String())...))

	users, err := NewPostgreSQLUserRepository(db).List(context.Background(), 0, 10)

	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].UserName)
	assert.Equal(t, "bob", users[1].UserName)
}

func TestPostgreSQLUserRepository_Roles(t *testing.T) {
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV7())
	roleID := uuid.Must(uuid.NewV7())

	t.Run("GetRoleNames", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery(regexp.QuoteMeta("INNER JOIN user_roles")).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Admin").AddRow("Developer"))

		names, err := NewPostgreSQLUserRepository(db).GetRoleNames(ctx, userID)

		require.NoError(t, err)
		assert.Equal(t, []string{"Admin", "Developer"}, names)
	})

	t.Run("AddToRole", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_roles")).
			WithArgs(userID, roleID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, NewPostgreSQLUserRepository(db).AddToRole(ctx, userID, roleID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RemoveFromRole", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM user_roles")).
			WithArgs(userID, roleID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, NewPostgreSQLUserRepository(db).RemoveFromRole(ctx, userID, roleID))
	})
}

func TestPostgreSQLUserRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	id := uuid.Must(uuid.NewV7())
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewPostgreSQLUserRepository(db).Delete(context.Background(), id)

	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
