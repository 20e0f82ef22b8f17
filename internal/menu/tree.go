// tree.go

package menu

import (
	"sort"
	"time"
)

// TreeNode is a menu with its children nested, as served to clients.
type TreeNode struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Path       *string     `json:"path"`
	Icon       *string     `json:"icon"`
	Component  *string     `json:"component"`
	ParentID   *string     `json:"parentId"`
	Sort       int         `json:"sort"`
	Type       int         `json:"type"`
	Permission *string     `json:"permission"`
	Status     int         `json:"status"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
	Children   []*TreeNode `json:"children"`
}

// BuildTree nests a flat menu slice by parent id. A node whose parent is not
// in the slice becomes a root rather than disappearing, so every menu a user
// holds a permission for is reachable in the tree they receive.
func BuildTree(menus []Menu) []*TreeNode {
	nodes := make(map[string]*TreeNode, len(menus))
	for i := range menus {
		m := &menus[i]
		nodes[m.ID] = &TreeNode{
			ID:         m.ID,
			Name:       m.Name,
			Path:       m.Path,
			Icon:       m.Icon,
			Component:  m.Component,
			ParentID:   m.ParentID,
			Sort:       m.Sort,
			Type:       m.Type,
			Permission: m.Permission,
			Status:     m.Status,
			CreatedAt:  m.CreatedAt,
			UpdatedAt:  m.UpdatedAt,
			Children:   []*TreeNode{},
		}
	}

	roots := make([]*TreeNode, 0)
	for i := range menus {
		node := nodes[menus[i].ID]

		if node.ParentID != nil {
			if parent, ok := nodes[*node.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}

		roots = append(roots, node)
	}

	sortSiblings(roots)

	return roots
}

func sortSiblings(nodes []*TreeNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Sort < nodes[j].Sort
	})

	for _, node := range nodes {
		sortSiblings(node.Children)
	}
}
