// Package repository provides PostgreSQL and MySQL persistence for users, roles
// and user role membership.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/identity/internal/database"
	"github.com/allisson/identity/internal/identity/domain"

	apperrors "github.com/allisson/identity/internal/errors"
)

const postgresUserColumns = `id, user_name, normalized_user_name, email, normalized_email, email_confirmed,
	password_hash, security_stamp, concurrency_stamp, access_failed_count, lockout_end, created_at, updated_at`

// PostgreSQLUserRepository handles user persistence for PostgreSQL
type PostgreSQLUserRepository struct {
	db *sql.DB
}

// NewPostgreSQLUserRepository creates a new PostgreSQLUserRepository
func NewPostgreSQLUserRepository(db *sql.DB) *PostgreSQLUserRepository {
	return &PostgreSQLUserRepository{
		db: db,
	}
}

// Create inserts a new user
func (r *PostgreSQLUserRepository) Create(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO users (` + postgresUserColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := querier.ExecContext(
		ctx,
		query,
		user.ID,
		user.UserName,
		user.NormalizedUserName,
		user.Email,
		user.NormalizedEmail,
		user.EmailConfirmed,
		user.PasswordHash,
		user.SecurityStamp,
		user.ConcurrencyStamp,
		user.AccessFailedCount,
		user.LockoutEnd,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if uniqueErr := userUniqueViolation(err, isPostgreSQLUniqueViolation); uniqueErr != nil {
			return uniqueErr
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// Update overwrites every mutable column of the user
func (r *PostgreSQLUserRepository) Update(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE users SET user_name = $2, normalized_user_name = $3, email = $4, normalized_email = $5,
			  email_confirmed = $6, password_hash = $7, security_stamp = $8, concurrency_stamp = $9,
			  access_failed_count = $10, lockout_end = $11, updated_at = $12
			  WHERE id = $1`

	result, err := querier.ExecContext(
		ctx,
		query,
		user.ID,
		user.UserName,
		user.NormalizedUserName,
		user.Email,
		user.NormalizedEmail,
		user.EmailConfirmed,
		user.PasswordHash,
		user.SecurityStamp,
		user.ConcurrencyStamp,
		user.AccessFailedCount,
		user.LockoutEnd,
		user.UpdatedAt,
	)
	if err != nil {
		if uniqueErr := userUniqueViolation(err, isPostgreSQLUniqueViolation); uniqueErr != nil {
			return uniqueErr
		}
		return apperrors.Wrap(err, "failed to update user")
	}
	return requireAffected(result, domain.ErrUserNotFound)
}

// RecordAccessFailure increments the failed login counter in place and, once
// it reaches maxAttempts, resets it and sets lockout_end. A maxAttempts of
// zero never locks.
func (r *PostgreSQLUserRepository) RecordAccessFailure(
	ctx context.Context,
	id uuid.UUID,
	maxAttempts int,
	lockoutEnd, updatedAt time.Time,
) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE users SET
			  access_failed_count = CASE WHEN $2 > 0 AND access_failed_count + 1 >= $2
			  THEN 0 ELSE access_failed_count + 1 END,
			  lockout_end = CASE WHEN $2 > 0 AND access_failed_count + 1 >= $2
			  THEN $3 ELSE lockout_end END,
			  updated_at = $4
			  WHERE id = $1
			  RETURNING ` + postgresUserColumns

	user, err := scanUser(querier.QueryRowContext(ctx, query, id, maxAttempts, lockoutEnd, updatedAt).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to record access failure")
	}
	return user, nil
}

// Delete removes a user and its role memberships
func (r *PostgreSQLUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete user")
	}
	return requireAffected(result, domain.ErrUserNotFound)
}

// GetByID retrieves a user by ID
func (r *PostgreSQLUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+postgresUserColumns+` FROM users WHERE id = $1`, id)
}

// GetByNormalizedUserName retrieves a user by normalized username
func (r *PostgreSQLUserRepository) GetByNormalizedUserName(
	ctx context.Context,
	normalizedUserName string,
) (*domain.User, error) {
	return r.getOne(
		ctx,
		`SELECT `+postgresUserColumns+` FROM users WHERE normalized_user_name = $1`,
		normalizedUserName,
	)
}

// GetByNormalizedEmail retrieves a user by normalized email
func (r *PostgreSQLUserRepository) GetByNormalizedEmail(
	ctx context.Context,
	normalizedEmail string,
) (*domain.User, error) {
	return r.getOne(
		ctx,
		`SELECT `+postgresUserColumns+` FROM users WHERE normalized_email = $1`,
		normalizedEmail,
	)
}

// List retrieves users ordered by username
func (r *PostgreSQLUserRepository) List(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + postgresUserColumns + ` FROM users ORDER BY normalized_user_name LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list users")
	}
	defer func() {
		_ = rows.Close()
	}()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows.Scan)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan user")
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate users")
	}

	return users, nil
}

// Count returns the number of users
func (r *PostgreSQLUserRepository) Count(ctx context.Context) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	var count int64
	if err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count users")
	}
	return count, nil
}

// GetRoleNames returns the names of the roles the user belongs to
func (r *PostgreSQLUserRepository) GetRoleNames(ctx context.Context, userID uuid.UUID) ([]string, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT r.name FROM roles r
			  INNER JOIN user_roles ur ON ur.role_id = r.id
			  WHERE ur.user_id = $1
			  ORDER BY r.normalized_name`

	rows, err := querier.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get user roles")
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanNames(rows)
}

// AddToRole inserts a role membership
func (r *PostgreSQLUserRepository) AddToRole(ctx context.Context, userID, roleID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`

	if _, err := querier.ExecContext(ctx, query, userID, roleID); err != nil {
		return apperrors.Wrap(err, "failed to add user to role")
	}
	return nil
}

// RemoveFromRole deletes a role membership
func (r *PostgreSQLUserRepository) RemoveFromRole(ctx context.Context, userID, roleID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`

	if _, err := querier.ExecContext(ctx, query, userID, roleID); err != nil {
		return apperrors.Wrap(err, "failed to remove user from role")
	}
	return nil
}

func (r *PostgreSQLUserRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	user, err := scanUser(querier.QueryRowContext(ctx, query, arg).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user")
	}
	return user, nil
}

func scanUser(scan func(dest ...any) error) (*domain.User, error) {
	var user domain.User
	var lockoutEnd sql.NullTime

	err := scan(
		&user.ID,
		&user.UserName,
		&user.NormalizedUserName,
		&user.Email,
		&user.NormalizedEmail,
		&user.EmailConfirmed,
		&user.PasswordHash,
		&user.SecurityStamp,
		&user.ConcurrencyStamp,
		&user.AccessFailedCount,
		&lockoutEnd,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lockoutEnd.Valid {
		t := lockoutEnd.Time
		user.LockoutEnd = &t
	}
	return &user, nil
}

func scanNames(rows *sql.Rows) ([]string, error) {
	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan role name")
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate role names")
	}
	return names, nil
}

func requireAffected(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return notFound
	}
	return nil
}

// emailUniqueConstraint is the name of the unique index on users.normalized_email in both dialects.
const emailUniqueConstraint = "uq_users_normalized_email"

// userUniqueViolation maps a unique violation to the column it happened on.
func userUniqueViolation(err error, isUnique func(error) bool) error {
	if !isUnique(err) {
		return nil
	}
	if strings.Contains(strings.ToLower(err.Error()), emailUniqueConstraint) {
		return domain.ErrEmailTaken
	}
	return domain.ErrUserNameTaken
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// PostgreSQL: "duplicate key value violates unique constraint" or "pq: duplicate key"
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}
