package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/allisson/identity/internal/database"
	"github.com/allisson/identity/internal/identity/domain"

	apperrors "github.com/allisson/identity/internal/errors"
)

// MySQLRoleRepository handles role persistence for MySQL
type MySQLRoleRepository struct {
	db *sql.DB
}

// NewMySQLRoleRepository creates a new MySQLRoleRepository
func NewMySQLRoleRepository(db *sql.DB) *MySQLRoleRepository {
	return &MySQLRoleRepository{db: db}
}

// Create inserts a new role
func (r *MySQLRoleRepository) Create(ctx context.Context, role *domain.Role) error {
	querier := database.GetTx(ctx, r.db)

	uuidBytes, err := role.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `INSERT INTO roles (` + roleColumns + `) VALUES (?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		uuidBytes,
		role.Name,
		role.NormalizedName,
		role.ConcurrencyStamp,
		role.CreatedAt,
	)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return domain.ErrRoleNameTaken
		}
		return apperrors.Wrap(err, "failed to create role")
	}
	return nil
}

// Update changes the role name and stamp
func (r *MySQLRoleRepository) Update(ctx context.Context, role *domain.Role) error {
	querier := database.GetTx(ctx, r.db)

	uuidBytes, err := role.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `UPDATE roles SET name = ?, normalized_name = ?, concurrency_stamp = ? WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, role.Name, role.NormalizedName, role.ConcurrencyStamp, uuidBytes)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return domain.ErrRoleNameTaken
		}
		return apperrors.Wrap(err, "failed to update role")
	}
	if err := requireAffected(result, domain.ErrRoleNotFound); err != nil {
		if _, getErr := r.GetByID(ctx, role.ID); getErr != nil {
			return getErr
		}
	}
	return nil
}

// Delete removes a role and its memberships
func (r *MySQLRoleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	uuidBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM roles WHERE id = ?`, uuidBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete role")
	}
	return requireAffected(result, domain.ErrRoleNotFound)
}

// GetByID retrieves a role by ID
func (r *MySQLRoleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Role, error) {
	uuidBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}
	return r.getOne(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = ?`, uuidBytes)
}

// GetByNormalizedName retrieves a role by normalized name
func (r *MySQLRoleRepository) GetByNormalizedName(ctx context.Context, normalizedName string) (*domain.Role, error) {
	return r.getOne(ctx, `SELECT `+roleColumns+` FROM roles WHERE normalized_name = ?`, normalizedName)
}

// GetByNormalizedNames retrieves every role whose normalized name is in the list
func (r *MySQLRoleRepository) GetByNormalizedNames(
	ctx context.Context,
	normalizedNames []string,
) ([]*domain.Role, error) {
	if len(normalizedNames) == 0 {
		return []*domain.Role{}, nil
	}

	querier := database.GetTx(ctx, r.db)

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(normalizedNames)), ", ")
	query := `SELECT ` + roleColumns + ` FROM roles WHERE normalized_name IN (` + placeholders + `)
			  ORDER BY normalized_name`

	args := lo.Map(normalizedNames, func(name string, _ int) any { return name })

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get roles by name")
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanRoles(rows, scanMySQLRole)
}

// List retrieves roles ordered by name
func (r *MySQLRoleRepository) List(ctx context.Context, offset, limit int) ([]*domain.Role, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + roleColumns + ` FROM roles ORDER BY normalized_name LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list roles")
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanRoles(rows, scanMySQLRole)
}

func (r *MySQLRoleRepository) getOne(ctx context.Context, query string, arg any) (*domain.Role, error) {
	querier := database.GetTx(ctx, r.db)

	role, err := scanMySQLRole(querier.QueryRowContext(ctx, query, arg).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get role")
	}
	return role, nil
}

func scanMySQLRole(scan func(dest ...any) error) (*domain.Role, error) {
	var idBytes []byte
	var role domain.Role

	if err := scan(&idBytes, &role.Name, &role.NormalizedName, &role.ConcurrencyStamp, &role.CreatedAt); err != nil {
		return nil, err
	}
	if err := role.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}
	return &role, nil
}
