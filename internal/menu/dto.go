// dto.go

package menu

import (
	"time"
)

type CreateMenuRequest struct {
	Name       string  `json:"name"       validate:"required,min=1,max=50"`
	Path       *string `json:"path"       validate:"omitempty,max=200"`
	Icon       *string `json:"icon"       validate:"omitempty,max=100"`
	Component  *string `json:"component"  validate:"omitempty,max=200"`
	ParentID   *string `json:"parentId"`
	Sort       *int    `json:"sort"       validate:"omitempty,min=0"`
	Type       *int    `json:"type"       validate:"omitempty,oneof=1 2"`
	Permission *string `json:"permission" validate:"omitempty,max=100"`
	Status     *int    `json:"status"     validate:"omitempty,oneof=0 1"`
}

type UpdateMenuRequest struct {
	Name       string  `json:"name"       validate:"required,min=1,max=50"`
	Path       *string `json:"path"       validate:"omitempty,max=200"`
	Icon       *string `json:"icon"       validate:"omitempty,max=100"`
	Component  *string `json:"component"  validate:"omitempty,max=200"`
	ParentID   *string `json:"parentId"`
	Sort       *int    `json:"sort"       validate:"omitempty,min=0"`
	Type       *int    `json:"type"       validate:"omitempty,oneof=1 2"`
	Permission *string `json:"permission" validate:"omitempty,max=100"`
	Status     *int    `json:"status"     validate:"omitempty,oneof=0 1"`
}

type MenuResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Path       *string   `json:"path"`
	Icon       *string   `json:"icon"`
	Component  *string   `json:"component"`
	ParentID   *string   `json:"parentId"`
	Sort       int       `json:"sort"`
	Type       int       `json:"type"`
	Permission *string   `json:"permission"`
	Status     int       `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type MenuListResponse struct {
	Menus []MenuResponse `json:"menus"`
}

type MenuTreeResponse struct {
	Menus []*TreeNode `json:"menus"`
}

func ToMenuResponse(m *Menu) MenuResponse {
	return MenuResponse{
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
	}
}

func ToMenuResponseList(menus []Menu) []MenuResponse {
	responses := make([]MenuResponse, 0, len(menus))
	for _, m := range menus {
		responses = append(responses, ToMenuResponse(&m))
	}
	return responses
}
