package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/identity/internal/identity/domain"
)

var roleColumnNames = []string{"id", "name", "normalized_name", "concurrency_stamp", "created_at"}

func TestPostgreSQLRoleRepository_GetByNormalizedNames(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		now := time.Now().UTC()
		mock.ExpectQuery(regexp.QuoteMeta("WHERE normalized_name = ANY($1)")).
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows(roleColumnNames).
				AddRow(uuid.NewString(), "Admin", "ADMIN", "stamp-1", now).
				AddRow(uuid.NewString(), "Developer", "DEVELOPER", "stamp-2", now))

		roles, err := NewPostgreSQLRoleRepository(db).GetByNormalizedNames(ctx, []string{"ADMIN", "DEVELOPER"})

		require.NoError(t, err)
		require.Len(t, roles, 2)
		assert.Equal(t, "Admin", roles[0].Name)
		assert.Equal(t, "DEVELOPER", roles[1].NormalizedName)
	})

	t.Run("Success_EmptyInputSkipsQuery", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		roles, err := NewPostgreSQLRoleRepository(db).GetByNormalizedNames(ctx, nil)

		require.NoError(t, err)
		assert.Empty(t, roles)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgreSQLRoleRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	role := &domain.Role{ID: uuid.Must(uuid.NewV7()), Name: "Admin", ConcurrencyStamp: "stamp", CreatedAt: time.Now()}
	role.Normalize()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO roles")).
		WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "uq_roles_normalized_name"`))

	err = NewPostgreSQLRoleRepository(db).Create(context.Background(), role)

	assert.ErrorIs(t, err, domain.ErrRoleNameTaken)
}

func TestPostgreSQLRoleRepository_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("FROM roles WHERE id = $1")).
		WillReturnRows(sqlmock.NewRows(roleColumnNames))

	role, err := NewPostgreSQLRoleRepository(db).GetByID(context.Background(), uuid.Must(uuid.NewV7()))

	assert.Nil(t, role)
	assert.ErrorIs(t, err, domain.ErrRoleNotFound)
}

func TestMySQLRoleRepository_GetByNormalizedNames(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	id := uuid.Must(uuid.NewV7())
	idBytes, _ := id.MarshalBinary()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE normalized_name IN (?, ?)")).
		WithArgs("ADMIN", "GHOST").
		WillReturnRows(sqlmock.NewRows(roleColumnNames).AddRow(idBytes, "Admin", "ADMIN", "stamp", time.Now()))

	roles, err := NewMySQLRoleRepository(db).GetByNormalizedNames(context.Background(), []string{"ADMIN", "GHOST"})

	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, id, roles[0].ID)
}

func TestMySQLRoleRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	id := uuid.Must(uuid.NewV7())
	idBytes, _ := id.MarshalBinary()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM roles WHERE id = ?")).
		WithArgs(idBytes).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, NewMySQLRoleRepository(db).Delete(context.Background(), id))
}
