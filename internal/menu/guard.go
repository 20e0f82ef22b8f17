// guard.go

package menu

import (
	"context"
	"errors"
	"fmt"

	"github.com/Laurel-rao/pmp-exam-assistant/internal/core"
)

// Guard validates structural edits to the menu forest before they reach the
// database: parent existence, permission-key uniqueness, cycle prevention on
// reparenting and the has-children check on deletion. Failures carry their
// HTTP status so the boundary can surface the exact reason unmapped.
type Guard struct {
	repo Repository
}

func NewGuard(repo Repository) *Guard {
	return &Guard{repo: repo}
}

func (g *Guard) ValidateCreate(
	ctx context.Context,
	parentID, permission *string,
) error {
	if parentID != nil {
		if err := g.parentExists(ctx, *parentID); err != nil {
			return err
		}
	}

	if permission != nil && *permission != "" {
		return g.permissionUnique(ctx, *permission, "")
	}

	return nil
}

func (g *Guard) ValidateUpdate(
	ctx context.Context,
	menuID string,
	parentID, permission *string,
) error {
	if parentID != nil {
		if *parentID == menuID {
			return core.HierarchyError("menu cannot be its own parent")
		}

		if err := g.parentExists(ctx, *parentID); err != nil {
			return err
		}

		if err := g.checkNoCycle(ctx, menuID, *parentID); err != nil {
			return err
		}
	}

	if permission != nil && *permission != "" {
		return g.permissionUnique(ctx, *permission, menuID)
	}

	return nil
}

func (g *Guard) ValidateDelete(ctx context.Context, menuID string) error {
	children, err := g.repo.CountChildren(ctx, menuID)
	if err != nil {
		return err
	}

	if children > 0 {
		return core.ConflictError("menu has children, delete them first")
	}

	return nil
}

// checkNoCycle walks the ancestor chain starting at the proposed parent,
// carrying a visited set seeded with the node's own id. Revisiting any id
// means the reparent would close a loop. The walk is additionally capped at
// the total node count so it terminates even if concurrent edits left a
// corrupted parent chain behind.
func (g *Guard) checkNoCycle(
	ctx context.Context,
	menuID, newParentID string,
) error {
	limit, err := g.repo.CountAll(ctx)
	if err != nil {
		return err
	}

	visited := map[string]struct{}{menuID: {}}
	current := &newParentID

	for steps := 0; current != nil && steps <= limit; steps++ {
		if _, seen := visited[*current]; seen {
			return core.HierarchyError("reparenting would create a cycle")
		}
		visited[*current] = struct{}{}

		parent, found, err := g.repo.ParentIDOf(ctx, *current)
		if err != nil {
			return err
		}
		if !found {
			break
		}

		current = parent
	}

	return nil
}

func (g *Guard) parentExists(ctx context.Context, parentID string) error {
	_, err := g.repo.GetByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.ValidationError("parent menu does not exist")
		}
		return err
	}

	return nil
}

func (g *Guard) permissionUnique(
	ctx context.Context,
	permission, excludeID string,
) error {
	exists, err := g.repo.PermissionExists(ctx, permission, excludeID)
	if err != nil {
		return err
	}

	if exists {
		return core.ConflictError(
			fmt.Sprintf("permission key %q already exists", permission),
		)
	}

	return nil
}
