// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Laurel-rao/pmp-exam-assistant/internal/core"
)

type Repository interface {
	// CreateWithRole inserts the user and grants the role with the given
	// code in one transaction. A missing role code grants nothing.
	CreateWithRole(ctx context.Context, user *User, roleCode string) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByPhone(ctx context.Context, phone string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	// DeleteCascade removes the user with their role assignments and
	// practice history in one transaction.
	DeleteCascade(ctx context.Context, id string) error
	List(ctx context.Context, params ListUsersParams) ([]User, int64, error)
	CountAll(ctx context.Context) (int64, error)
	TouchLastLogin(ctx context.Context, id string) error
	RoleCodesForUser(ctx context.Context, userID string) ([]string, error)
	RoleIDsForUser(ctx context.Context, userID string) ([]string, error)
	// SetRoles replaces the user's role assignments atomically: delete
	// all, insert the new set.
	SetRoles(ctx context.Context, userID string, roleIDs []string) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateWithRole(
	ctx context.Context,
	user *User,
	roleCode string,
) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO users (id, phone, email, password_hash, name,
			                   avatar, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING created_at, updated_at`

		err := tx.QueryRowxContext(ctx, query,
			user.ID,
			user.Phone,
			user.Email,
			user.PasswordHash,
			user.Name,
			user.Avatar,
			user.Status,
		).Scan(&user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			if core.IsDuplicateKeyError(err) {
				return fmt.Errorf("create user: %w", core.ErrConflict)
			}
			return fmt.Errorf("create user: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO user_roles (user_id, role_id)
			SELECT $1, id FROM roles WHERE UPPER(code) = UPPER($2)`,
			user.ID, roleCode); err != nil {
			return fmt.Errorf("grant default role: %w", err)
		}

		return nil
	})
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *repository) GetByPhone(
	ctx context.Context,
	phone string,
) (*User, error) {
	return r.getBy(ctx, "phone", phone)
}

func (r *repository) getBy(
	ctx context.Context,
	column, value string,
) (*User, error) {
	query := fmt.Sprintf(`
		SELECT id, phone, email, password_hash, name, avatar, status,
		       last_login, created_at, updated_at
		FROM users
		WHERE %s = $1`, column)

	var user User
	err := r.db.GetContext(ctx, &user, query, value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (r *repository) Update(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET email = $2, name = $3, avatar = $4, status = $5,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.Avatar,
		user.Status,
	).Scan(&user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("update user: %w", core.ErrConflict)
		}
		return fmt.Errorf("update user: %w", err)
	}

	return nil
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users SET password_hash = $2, updated_at = NOW()
		WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) DeleteCascade(ctx context.Context, id string) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		cleanups := []string{
			`DELETE FROM user_roles WHERE user_id = $1`,
			`DELETE FROM practice_records WHERE user_id = $1`,
			`DELETE FROM favorites WHERE user_id = $1`,
		}

		for _, query := range cleanups {
			if _, err := tx.ExecContext(ctx, query, id); err != nil {
				return fmt.Errorf("delete user data: %w", err)
			}
		}

		result, err := tx.ExecContext(ctx,
			`DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}

		if rows == 0 {
			return fmt.Errorf("delete user: %w", core.ErrNotFound)
		}

		return nil
	})
}

func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int64, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argn := 1

	if params.Search != "" {
		where += fmt.Sprintf(
			` AND (phone LIKE $%d OR name ILIKE $%d)`, argn, argn)
		args = append(args, "%"+params.Search+"%")
		argn++
	}

	if params.Status != nil {
		where += fmt.Sprintf(` AND status = $%d`, argn)
		args = append(args, *params.Status)
		argn++
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM users` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := `
		SELECT id, phone, email, password_hash, name, avatar, status,
		       last_login, created_at, updated_at
		FROM users` + where + fmt.Sprintf(`
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, argn, argn+1)
	args = append(args, params.PageSize, (params.Page-1)*params.PageSize)

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}

func (r *repository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}

	return count, nil
}

func (r *repository) TouchLastLogin(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET last_login = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}

	return nil
}

func (r *repository) RoleCodesForUser(
	ctx context.Context,
	userID string,
) ([]string, error) {
	query := `
		SELECT r.code
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1 AND r.status = 1
		ORDER BY r.code ASC`

	var codes []string
	err := r.db.SelectContext(ctx, &codes, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list role codes: %w", err)
	}

	return codes, nil
}

func (r *repository) RoleIDsForUser(
	ctx context.Context,
	userID string,
) ([]string, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids,
		`SELECT role_id FROM user_roles WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("list role ids: %w", err)
	}

	return ids, nil
}

func (r *repository) SetRoles(
	ctx context.Context,
	userID string,
	roleIDs []string,
) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("clear user roles: %w", err)
		}

		for _, roleID := range roleIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)`,
				userID, roleID); err != nil {
				return fmt.Errorf("insert user role: %w", err)
			}
		}

		return nil
	})
}
