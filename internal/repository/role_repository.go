package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jnitin/flask-catalog/internal/models"
)

type RoleRepository struct {
	db DB
}

func NewRoleRepository(db DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// Upsert inserts the role or updates permissions and the default flag of the
// role with the same name.
func (r *RoleRepository) Upsert(ctx context.Context, role models.Role) (models.Role, error) {
	const query = `
		INSERT INTO roles (name, is_default, permissions)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE
		SET is_default = EXCLUDED.is_default,
		    permissions = EXCLUDED.permissions
		RETURNING id, name, is_default, permissions
	`
	return scanRole(r.db.QueryRow(ctx, query, role.Name, role.Default, role.Permissions))
}

func (r *RoleRepository) GetByName(ctx context.Context, name string) (models.Role, error) {
	const query = `SELECT id, name, is_default, permissions FROM roles WHERE name = $1`
	return scanRole(r.db.QueryRow(ctx, query, name))
}

func (r *RoleRepository) GetDefault(ctx context.Context) (models.Role, error) {
	const query = `SELECT id, name, is_default, permissions FROM roles WHERE is_default ORDER BY id LIMIT 1`
	return scanRole(r.db.QueryRow(ctx, query))
}

func scanRole(row pgx.Row) (models.Role, error) {
	var role models.Role
	if err := row.Scan(&role.ID, &role.Name, &role.Default, &role.Permissions); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Role{}, ErrRoleNotFound
		}
		return models.Role{}, err
	}
	return role, nil
}
