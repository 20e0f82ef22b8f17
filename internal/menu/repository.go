// repository.go

package menu

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Laurel-rao/pmp-exam-assistant/internal/core"
)

type Repository interface {
	Create(ctx context.Context, menu *Menu) error
	GetByID(ctx context.Context, id string) (*Menu, error)
	Update(ctx context.Context, menu *Menu) error
	// DeleteCascade removes the menu and every role_menus row referencing
	// it inside one transaction.
	DeleteCascade(ctx context.Context, id string) error
	List(ctx context.Context) ([]Menu, error)
	// ListForUser returns the deduplicated, enabled menus reachable
	// through every role the user holds.
	ListForUser(ctx context.Context, userID string) ([]Menu, error)
	CountAll(ctx context.Context) (int, error)
	CountChildren(ctx context.Context, parentID string) (int, error)
	PermissionExists(
		ctx context.Context,
		permission, excludeID string,
	) (bool, error)
	ParentIDOf(ctx context.Context, id string) (*string, bool, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, menu *Menu) error {
	query := `
		INSERT INTO menus (id, name, path, icon, component, parent_id,
		                   sort, type, permission, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		menu.ID,
		menu.Name,
		menu.Path,
		menu.Icon,
		menu.Component,
		menu.ParentID,
		menu.Sort,
		menu.Type,
		menu.Permission,
		menu.Status,
	).Scan(&menu.CreatedAt, &menu.UpdatedAt)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create menu: %w", core.ErrConflict)
		}
		return fmt.Errorf("create menu: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Menu, error) {
	query := `
		SELECT id, name, path, icon, component, parent_id, sort, type,
		       permission, status, created_at, updated_at
		FROM menus
		WHERE id = $1`

	var menu Menu
	err := r.db.GetContext(ctx, &menu, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get menu: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get menu: %w", err)
	}

	return &menu, nil
}

func (r *repository) Update(ctx context.Context, menu *Menu) error {
	query := `
		UPDATE menus
		SET name = $2, path = $3, icon = $4, component = $5, parent_id = $6,
		    sort = $7, type = $8, permission = $9, status = $10,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		menu.ID,
		menu.Name,
		menu.Path,
		menu.Icon,
		menu.Component,
		menu.ParentID,
		menu.Sort,
		menu.Type,
		menu.Permission,
		menu.Status,
	).Scan(&menu.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update menu: %w", core.ErrNotFound)
	}
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("update menu: %w", core.ErrConflict)
		}
		return fmt.Errorf("update menu: %w", err)
	}

	return nil
}

func (r *repository) DeleteCascade(ctx context.Context, id string) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM role_menus WHERE menu_id = $1`, id); err != nil {
			return fmt.Errorf("delete role menus: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			`DELETE FROM menus WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete menu: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete menu: %w", err)
		}

		if rows == 0 {
			return fmt.Errorf("delete menu: %w", core.ErrNotFound)
		}

		return nil
	})
}

func (r *repository) List(ctx context.Context) ([]Menu, error) {
	query := `
		SELECT id, name, path, icon, component, parent_id, sort, type,
		       permission, status, created_at, updated_at
		FROM menus
		ORDER BY parent_id ASC NULLS FIRST, sort ASC`

	var menus []Menu
	if err := r.db.SelectContext(ctx, &menus, query); err != nil {
		return nil, fmt.Errorf("list menus: %w", err)
	}

	return menus, nil
}

func (r *repository) ListForUser(
	ctx context.Context,
	userID string,
) ([]Menu, error) {
	query := `
		SELECT DISTINCT m.id, m.name, m.path, m.icon, m.component,
		       m.parent_id, m.sort, m.type, m.permission, m.status,
		       m.created_at, m.updated_at
		FROM menus m
		JOIN role_menus rm ON rm.menu_id = m.id
		JOIN user_roles ur ON ur.role_id = rm.role_id
		WHERE ur.user_id = $1 AND m.status = $2
		ORDER BY m.sort ASC`

	var menus []Menu
	err := r.db.SelectContext(ctx, &menus, query, userID, StatusEnabled)
	if err != nil {
		return nil, fmt.Errorf("list menus for user: %w", err)
	}

	return menus, nil
}

func (r *repository) CountAll(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM menus`)
	if err != nil {
		return 0, fmt.Errorf("count menus: %w", err)
	}

	return count, nil
}

func (r *repository) CountChildren(
	ctx context.Context,
	parentID string,
) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM menus WHERE parent_id = $1`, parentID)
	if err != nil {
		return 0, fmt.Errorf("count children: %w", err)
	}

	return count, nil
}

func (r *repository) PermissionExists(
	ctx context.Context,
	permission, excludeID string,
) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM menus WHERE permission = $1 AND id <> $2
		)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, permission, excludeID)
	if err != nil {
		return false, fmt.Errorf("check permission exists: %w", err)
	}

	return exists, nil
}

// ParentIDOf returns the parent id of a menu and whether the menu exists.
// Used by the cycle walk, which must not treat a broken chain as an error.
func (r *repository) ParentIDOf(
	ctx context.Context,
	id string,
) (*string, bool, error) {
	var parentID *string
	err := r.db.GetContext(ctx, &parentID,
		`SELECT parent_id FROM menus WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get parent id: %w", err)
	}

	return parentID, true, nil
}
