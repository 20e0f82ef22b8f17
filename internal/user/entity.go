// entity.go

package user

import (
	"time"
)

// User is an account holder. Phone is the login identifier and is unique;
// email is optional but unique when present.
type User struct {
	ID           string     `db:"id"`
	Phone        string     `db:"phone"`
	Email        *string    `db:"email"`
	PasswordHash string     `db:"password_hash"`
	Name         string     `db:"name"`
	Avatar       *string    `db:"avatar"`
	Status       int        `db:"status"`
	LastLogin    *time.Time `db:"last_login"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

const (
	StatusEnabled  = 1
	StatusDisabled = 0
)
