// entity.go

package menu

import (
	"time"
)

// Menu is a node in the permission/navigation forest. Type distinguishes
// navigable menus from fine-grained action buttons; Permission is the
// authorization atom and is globally unique when present.
type Menu struct {
	ID         string    `db:"id"`
	Name       string    `db:"name"`
	Path       *string   `db:"path"`
	Icon       *string   `db:"icon"`
	Component  *string   `db:"component"`
	ParentID   *string   `db:"parent_id"`
	Sort       int       `db:"sort"`
	Type       int       `db:"type"`
	Permission *string   `db:"permission"`
	Status     int       `db:"status"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

const (
	TypeMenu   = 1
	TypeButton = 2
)

const (
	StatusEnabled = 1
	StatusHidden  = 0
)

func (m *Menu) IsEnabled() bool {
	return m.Status == StatusEnabled
}
