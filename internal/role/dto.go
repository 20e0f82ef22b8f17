// dto.go

package role

import (
	"time"
)

type CreateRoleRequest struct {
	Name        string  `json:"name"        validate:"required,min=1,max=50"`
	Code        string  `json:"code"        validate:"required,min=1,max=50,role_code"`
	Description *string `json:"description" validate:"omitempty,max=200"`
	Status      *int    `json:"status"      validate:"omitempty,oneof=0 1"`
}

type UpdateRoleRequest struct {
	Name        string  `json:"name"        validate:"required,min=1,max=50"`
	Code        string  `json:"code"        validate:"required,min=1,max=50,role_code"`
	Description *string `json:"description" validate:"omitempty,max=200"`
	Status      *int    `json:"status"      validate:"omitempty,oneof=0 1"`
}

type AssignMenusRequest struct {
	MenuIDs []string `json:"menuIds" validate:"required"`
}

type RoleResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Description *string   `json:"description"`
	Status      int       `json:"status"`
	UserCount   int       `json:"userCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type RoleListResponse struct {
	Roles []RoleResponse `json:"roles"`
}

type RoleMenusResponse struct {
	RoleID  string   `json:"roleId"`
	MenuIDs []string `json:"menuIds"`
}

func ToRoleResponse(r *Role, userCount int) RoleResponse {
	return RoleResponse{
		ID:          r.ID,
		Name:        r.Name,
		Code:        r.Code,
		Description: r.Description,
		Status:      r.Status,
		UserCount:   userCount,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
