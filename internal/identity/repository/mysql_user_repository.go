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

const mysqlUserColumns = postgresUserColumns

// MySQLUserRepository handles user persistence for MySQL. Ids are stored as BINARY(16).
type MySQLUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new MySQLUserRepository
func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{
		db: db,
	}
}

// Create inserts a new user
func (r *MySQLUserRepository) Create(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO users (` + mysqlUserColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	uuidBytes, err := user.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		uuidBytes,
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
		if uniqueErr := userUniqueViolation(err, isMySQLUniqueViolation); uniqueErr != nil {
			return uniqueErr
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// Update overwrites every mutable column of the user
func (r *MySQLUserRepository) Update(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE users SET user_name = ?, normalized_user_name = ?, email = ?, normalized_email = ?,
			  email_confirmed = ?, password_hash = ?, security_stamp = ?, concurrency_stamp = ?,
			  access_failed_count = ?, lockout_end = ?, updated_at = ?
			  WHERE id = ?`

	uuidBytes, err := user.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	result, err := querier.ExecContext(
		ctx,
		query,
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
		uuidBytes,
	)
	if err != nil {
		if uniqueErr := userUniqueViolation(err, isMySQLUniqueViolation); uniqueErr != nil {
			return uniqueErr
		}
		return apperrors.Wrap(err, "failed to update user")
	}
	// MySQL reports zero affected rows when nothing changed, so fall back to an existence check.
	if err := requireAffected(result, domain.ErrUserNotFound); err != nil {
		if _, getErr := r.GetByID(ctx, user.ID); getErr != nil {
			return getErr
		}
	}
	return nil
}

// RecordAccessFailure increments the failed login counter in place and, once
// it reaches maxAttempts, resets it and sets lockout_end. MySQL applies SET
// assignments left to right, so lockout_end is computed before the counter
// changes. Callers run it inside a transaction so the re-read sees this write.
func (r *MySQLUserRepository) RecordAccessFailure(
	ctx context.Context,
	id uuid.UUID,
	maxAttempts int,
	lockoutEnd, updatedAt time.Time,
) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	uuidBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `UPDATE users SET
			  lockout_end = CASE WHEN ? > 0 AND access_failed_count + 1 >= ?
			  THEN ? ELSE lockout_end END,
			  access_failed_count = CASE WHEN ? > 0 AND access_failed_count + 1 >= ?
			  THEN 0 ELSE access_failed_count + 1 END,
			  updated_at = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		maxAttempts, maxAttempts, lockoutEnd,
		maxAttempts, maxAttempts,
		updatedAt,
		uuidBytes,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to record access failure")
	}
	if err := requireAffected(result, domain.ErrUserNotFound); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a user and its role memberships
func (r *MySQLUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	uuidBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, uuidBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete user")
	}
	return requireAffected(result, domain.ErrUserNotFound)
}

// GetByID retrieves a user by ID
func (r *MySQLUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	uuidBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}
	return r.getOne(ctx, `SELECT `+mysqlUserColumns+` FROM users WHERE id = ?`, uuidBytes)
}

// GetByNormalizedUserName retrieves a user by normalized username
func (r *MySQLUserRepository) GetByNormalizedUserName(
	ctx context.Context,
	normalizedUserName string,
) (*domain.User, error) {
	return r.getOne(
		ctx,
		`SELECT `+mysqlUserColumns+` FROM users WHERE normalized_user_name = ?`,
		normalizedUserName,
	)
}

// GetByNormalizedEmail retrieves a user by normalized email
func (r *MySQLUserRepository) GetByNormalizedEmail(
	ctx context.Context,
	normalizedEmail string,
) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+mysqlUserColumns+` FROM users WHERE normalized_email = ?`, normalizedEmail)
}

// List retrieves users ordered by username
func (r *MySQLUserRepository) List(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + mysqlUserColumns + ` FROM users ORDER BY normalized_user_name LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list users")
	}
	defer func() {
		_ = rows.Close()
	}()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := scanMySQLUser(rows.Scan)
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
func (r *MySQLUserRepository) Count(ctx context.Context) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	var count int64
	if err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count users")
	}
	return count, nil
}

// GetRoleNames returns the names of the roles the user belongs to
func (r *MySQLUserRepository) GetRoleNames(ctx context.Context, userID uuid.UUID) ([]string, error) {
	querier := database.GetTx(ctx, r.db)

	uuidBytes, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `SELECT r.name FROM roles r
			  INNER JOIN user_roles ur ON ur.role_id = r.id
			  WHERE ur.user_id = ?
			  ORDER BY r.normalized_name`

	rows, err := querier.QueryContext(ctx, query, uuidBytes)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get user roles")
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanNames(rows)
}

// AddToRole inserts a role membership
func (r *MySQLUserRepository) AddToRole(ctx context.Context, userID, roleID uuid.UUID) error {
	return r.execMembership(
		ctx,
		`INSERT IGNORE INTO user_roles (user_id, role_id) VALUES (?, ?)`,
		userID,
		roleID,
		"failed to add user to role",
	)
}

// RemoveFromRole deletes a role membership
func (r *MySQLUserRepository) RemoveFromRole(ctx context.Context, userID, roleID uuid.UUID) error {
	return r.execMembership(
		ctx,
		`DELETE FROM user_roles WHERE user_id = ? AND role_id = ?`,
		userID,
		roleID,
		"failed to remove user from role",
	)
}

func (r *MySQLUserRepository) execMembership(
	ctx context.Context,
	query string,
	userID, roleID uuid.UUID,
	message string,
) error {
	querier := database.GetTx(ctx, r.db)

	userBytes, err := userID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}
	roleBytes, err := roleID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	if _, err := querier.ExecContext(ctx, query, userBytes, roleBytes); err != nil {
		return apperrors.Wrap(err, message)
	}
	return nil
}

func (r *MySQLUserRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	user, err := scanMySQLUser(querier.QueryRowContext(ctx, query, arg).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user")
	}
	return user, nil
}

func scanMySQLUser(scan func(dest ...any) error) (*domain.User, error) {
	var idBytes []byte
	var id uuid.UUID

	user, err := scanUser(func(dest ...any) error {
		dest[0] = &idBytes
		return scan(dest...)
	})
	if err != nil {
		return nil, err
	}

	// Convert bytes back to UUID
	if err := id.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}
	user.ID = id
	return user, nil
}

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// MySQL: "Error 1062: Duplicate entry"
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "1062")
}
