// entity.go

package role

import (
	"time"
)

// Role groups menu grants. Code is the stable machine identifier referenced
// by session credentials; it is unique and compared case-insensitively.
type Role struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Code        string    `db:"code"`
	Description *string   `db:"description"`
	Status      int       `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

const (
	StatusEnabled  = 1
	StatusDisabled = 0
)
