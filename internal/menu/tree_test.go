// tree_test.go

package menu

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTreeNestsChildrenUnderParents(t *testing.T) {
	menus := []Menu{
		{ID: "root", Name: "System", Sort: 1},
		{ID: "child-a", Name: "Users", ParentID: ptr("root"), Sort: 2},
		{ID: "child-b", Name: "Roles", ParentID: ptr("root"), Sort: 1},
		{ID: "grandchild", Name: "Add", ParentID: ptr("child-b"), Sort: 1},
	}

	roots := BuildTree(menus)
	require.Len(t, roots, 1)
	require.Equal(t, "root", roots[0].ID)

	children := roots[0].Children
	require.Len(t, children, 2)

	// Siblings come back ordered by sort weight.
	assert.Equal(t, "child-b", children[0].ID)
	assert.Equal(t, "child-a", children[1].ID)

	require.Len(t, children[0].Children, 1)
	assert.Equal(t, "grandchild", children[0].Children[0].ID)
	assert.Empty(t, children[1].Children)
}

func TestBuildTreeKeepsOrphansAsRoots(t *testing.T) {
	// The child's parent is not in the granted set. The child must still
	// be reachable; otherwise a user could hold a permission for a menu
	// that never renders.
	menus := []Menu{
		{ID: "visible", Name: "Visible", Sort: 2},
		{ID: "orphan", Name: "Orphan", ParentID: ptr("hidden-parent"), Sort: 1},
	}

	roots := BuildTree(menus)
	require.Len(t, roots, 2)
	assert.Equal(t, "orphan", roots[0].ID)
	assert.Equal(t, "visible", roots[1].ID)
}

func TestBuildTreeEmptyInput(t *testing.T) {
	assert.Empty(t, BuildTree(nil))
	assert.Empty(t, BuildTree([]Menu{}))
}

func TestHasPermissionMatchesGrantedMenus(t *testing.T) {
	repo := newFakeRepo()
	repo.add(&Menu{
		ID:         "m1",
		Name:       "Users",
		Permission: ptr("user:list"),
		Status:     StatusEnabled,
	})
	repo.add(&Menu{
		ID:         "m2",
		Name:       "Hidden",
		Permission: ptr("user:delete"),
		Status:     StatusHidden,
	})
	repo.userMenus["u1"] = []string{"m1", "m2"}

	svc := NewService(repo)

	granted, err := svc.HasPermission(context.Background(), "u1", "user:list")
	require.NoError(t, err)
	assert.True(t, granted)

	// Hidden menus do not grant their permission.
	granted, err = svc.HasPermission(context.Background(), "u1", "user:delete")
	require.NoError(t, err)
	assert.False(t, granted)

	granted, err = svc.HasPermission(context.Background(), "u1", "role:list")
	require.NoError(t, err)
	assert.False(t, granted)

	granted, err = svc.HasPermission(context.Background(), "u1", "")
	require.NoError(t, err)
	assert.False(t, granted)
}

func TestTreeForUserIncludesOrphanedGrants(t *testing.T) {
	repo := newFakeRepo()
	repo.add(&Menu{ID: "parent", Name: "Parent", Status: StatusEnabled})
	repo.add(&Menu{
		ID:       "child",
		Name:     "Child",
		ParentID: ptr("parent"),
		Status:   StatusEnabled,
	})
	// Only the child is granted.
	repo.userMenus["u1"] = []string{"child"}

	svc := NewService(repo)
	tree, err := svc.TreeForUser(context.Background(), "u1")
	require.NoError(t, err)

	require.Len(t, tree, 1)
	assert.Equal(t, "child", tree[0].ID)
}
