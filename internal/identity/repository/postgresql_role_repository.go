package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/allisson/identity/internal/database"
	"github.com/allisson/identity/internal/identity/domain"

	apperrors "github.com/allisson/identity/internal/errors"
)

const roleColumns = `id, name, normalized_name, concurrency_stamp, created_at`

// PostgreSQLRoleRepository handles role persistence for PostgreSQL
type PostgreSQLRoleRepository struct {
	db *sql.DB
}

// NewPostgreSQLRoleRepository creates a new PostgreSQLRoleRepository
func NewPostgreSQLRoleRepository(db *sql.DB) *PostgreSQLRoleRepository {
	return &PostgreSQLRoleRepository{db: db}
}

// Create inserts a new role
func (r *PostgreSQLRoleRepository) Create(ctx context.Context, role *domain.Role) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO roles (` + roleColumns + `) VALUES ($1, $2, $3, $4, $5)`

	_, err := querier.ExecContext(
		ctx,
		query,
		role.ID,
		role.Name,
		role.NormalizedName,
		role.ConcurrencyStamp,
		role.CreatedAt,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrRoleNameTaken
		}
		return apperrors.Wrap(err, "failed to create role")
	}
	return nil
}

// Update changes the role name and stamp
func (r *PostgreSQLRoleRepository) Update(ctx context.Context, role *domain.Role) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE roles SET name = $2, normalized_name = $3, concurrency_stamp = $4 WHERE id = $1`

	result, err := querier.ExecContext(ctx, query, role.ID, role.Name, role.NormalizedName, role.ConcurrencyStamp)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrRoleNameTaken
		}
		return apperrors.Wrap(err, "failed to update role")
	}
	return requireAffected(result, domain.ErrRoleNotFound)
}

// Delete removes a role and its memberships
func (r *PostgreSQLRoleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete role")
	}
	return requireAffected(result, domain.ErrRoleNotFound)
}

// GetByID retrieves a role by ID
func (r *PostgreSQLRoleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Role, error) {
	return r.getOne(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id)
}

// GetByNormalizedName retrieves a role by normalized name
func (r *PostgreSQLRoleRepository) GetByNormalizedName(
	ctx context.Context,
	normalizedName string,
) (*domain.Role, error) {
	return r.getOne(ctx, `SELECT `+roleColumns+` FROM roles WHERE normalized_name = $1`, normalizedName)
}

// GetByNormalizedNames retrieves every role whose normalized name is in the list
func (r *PostgreSQLRoleRepository) GetByNormalizedNames(
	ctx context.Context,
	normalizedNames []string,
) ([]*domain.Role, error) {
	if len(normalizedNames) == 0 {
		return []*domain.Role{}, nil
	}

	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + roleColumns + ` FROM roles WHERE normalized_name = ANY($1) ORDER BY normalized_name`

	rows, err := querier.QueryContext(ctx, query, pq.Array(normalizedNames))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get roles by name")
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanRoles(rows, scanRole)
}

// List retrieves roles ordered by name
func (r *PostgreSQLRoleRepository) List(ctx context.Context, offset, limit int) ([]*domain.Role, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + roleColumns + ` FROM roles ORDER BY normalized_name LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list roles")
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanRoles(rows, scanRole)
}

func (r *PostgreSQLRoleRepository) getOne(ctx context.Context, query string, arg any) (*domain.Role, error) {
	querier := database.GetTx(ctx, r.db)

	role, err := scanRole(querier.QueryRowContext(ctx, query, arg).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get role")
	}
	return role, nil
}

func scanRole(scan func(dest ...any) error) (*domain.Role, error) {
	var role domain.Role
	if err := scan(&role.ID, &role.Name, &role.NormalizedName, &role.ConcurrencyStamp, &role.CreatedAt); err != nil {
		return nil, err
	}
	return &role, nil
}

func scanRoles(rows *sql.Rows, scan func(func(dest ...any) error) (*domain.Role, error)) ([]*domain.Role, error) {
	roles := make([]*domain.Role, 0)
	for rows.Next() {
		role, err := scan(rows.Scan)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan role")
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate roles")
	}
	return roles, nil
}
