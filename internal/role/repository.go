// repository.go

package role

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Laurel-rao/pmp-exam-assistant/internal/core"
)

type RoleWithCount struct {
	Role
	UserCount int `db:"user_count"`
}

type Repository interface {
	Create(ctx context.Context, role *Role) error
	GetByID(ctx context.Context, id string) (*Role, error)
	GetByCode(ctx context.Context, code string) (*Role, error)
	Update(ctx context.Context, role *Role) error
	// DeleteCascade removes the role and its menu grants in one
	// transaction. User assignments are checked by the service first.
	DeleteCascade(ctx context.Context, id string) error
	List(ctx context.Context) ([]RoleWithCount, error)
	CountAll(ctx context.Context) (int64, error)
	CountUsers(ctx context.Context, roleID string) (int, error)
	MenuIDsForRole(ctx context.Context, roleID string) ([]string, error)
	// SetMenus replaces the role's menu grants atomically: delete all,
	// insert the new set.
	SetMenus(ctx context.Context, roleID string, menuIDs []string) error
	ExistingMenuIDs(ctx context.Context, menuIDs []string) ([]string, error)
	ExistingRoleIDs(ctx context.Context, roleIDs []string) ([]string, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, role *Role) error {
	query := `
		INSERT INTO roles (id, name, code, description, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		role.ID,
		role.Name,
		role.Code,
		role.Description,
		role.Status,
	).Scan(&role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create role: %w", core.ErrConflict)
		}
		return fmt.Errorf("create role: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Role, error) {
	query := `
		SELECT id, name, code, description, status, created_at, updated_at
		FROM roles
		WHERE id = $1`

	var role Role
	err := r.db.GetContext(ctx, &role, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get role: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get role: %w", err)
	}

	return &role, nil
}

func (r *repository) GetByCode(
	ctx context.Context,
	code string,
) (*Role, error) {
	query := `
		SELECT id, name, code, description, status, created_at, updated_at
		FROM roles
		WHERE UPPER(code) = UPPER($1)`

	var role Role
	err := r.db.GetContext(ctx, &role, query, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get role by code: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get role by code: %w", err)
	}

	return &role, nil
}

func (r *repository) Update(ctx context.Context, role *Role) error {
	query := `
		UPDATE roles
		SET name = $2, code = $3, description = $4, status = $5,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		role.ID,
		role.Name,
		role.Code,
		role.Description,
		role.Status,
	).Scan(&role.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update role: %w", core.ErrNotFound)
	}
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("update role: %w", core.ErrConflict)
		}
		return fmt.Errorf("update role: %w", err)
	}

	return nil
}

func (r *repository) DeleteCascade(ctx context.Context, id string) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM role_menus WHERE role_id = $1`, id); err != nil {
			return fmt.Errorf("delete role menus: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			`DELETE FROM roles WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete role: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete role: %w", err)
		}

		if rows == 0 {
			return fmt.Errorf("delete role: %w", core.ErrNotFound)
		}

		return nil
	})
}

func (r *repository) List(ctx context.Context) ([]RoleWithCount, error) {
	query := `
		SELECT r.id, r.name, r.code, r.description, r.status,
		       r.created_at, r.updated_at,
		       COUNT(ur.user_id) AS user_count
		FROM roles r
		LEFT JOIN user_roles ur ON ur.role_id = r.id
		GROUP BY r.id
		ORDER BY r.created_at ASC`

	var roles []RoleWithCount
	if err := r.db.SelectContext(ctx, &roles, query); err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}

	return roles, nil
}

func (r *repository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM roles`)
	if err != nil {
		return 0, fmt.Errorf("count roles: %w", err)
	}

	return count, nil
}

func (r *repository) CountUsers(
	ctx context.Context,
	roleID string,
) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM user_roles WHERE role_id = $1`, roleID)
	if err != nil {
		return 0, fmt.Errorf("count role users: %w", err)
	}

	return count, nil
}

func (r *repository) MenuIDsForRole(
	ctx context.Context,
	roleID string,
) ([]string, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids,
		`SELECT menu_id FROM role_menus WHERE role_id = $1`, roleID)
	if err != nil {
		return nil, fmt.Errorf("list role menus: %w", err)
	}

	return ids, nil
}

func (r *repository) SetMenus(
	ctx context.Context,
	roleID string,
	menuIDs []string,
) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM role_menus WHERE role_id = $1`, roleID); err != nil {
			return fmt.Errorf("clear role menus: %w", err)
		}

		for _, menuID := range menuIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO role_menus (role_id, menu_id) VALUES ($1, $2)`,
				roleID, menuID); err != nil {
				return fmt.Errorf("insert role menu: %w", err)
			}
		}

		return nil
	})
}

func (r *repository) ExistingMenuIDs(
	ctx context.Context,
	menuIDs []string,
) ([]string, error) {
	return r.existingIDs(ctx, "menus", menuIDs)
}

func (r *repository) ExistingRoleIDs(
	ctx context.Context,
	roleIDs []string,
) ([]string, error) {
	return r.existingIDs(ctx, "roles", roleIDs)
}

func (r *repository) existingIDs(
	ctx context.Context,
	table string,
	ids []string,
) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(
		`SELECT id FROM `+table+` WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build id query: %w", err)
	}

	var existing []string
	err = r.db.SelectContext(ctx, &existing, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("check existing ids: %w", err)
	}

	return existing, nil
}
