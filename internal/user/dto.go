// dto.go

package user

import (
	"time"
)

type ListUsersParams struct {
	Page     int
	PageSize int
	Search   string
	Status   *int
}

func (p *ListUsersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 || p.PageSize > 100 {
		p.PageSize = 20
	}
}

type CreateUserRequest struct {
	Phone    string  `json:"phone"    validate:"required,phone_cn"`
	Password string  `json:"password" validate:"required,min=6,max=128"`
	Name     string  `json:"name"     validate:"omitempty,max=50"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Status   *int    `json:"status"   validate:"omitempty,oneof=0 1"`
}

type UpdateUserRequest struct {
	Name   string  `json:"name"   validate:"omitempty,max=50"`
	Email  *string `json:"email"  validate:"omitempty,email"`
	Avatar *string `json:"avatar" validate:"omitempty,max=500"`
	Status *int    `json:"status" validate:"omitempty,oneof=0 1"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type AssignRolesRequest struct {
	RoleIDs []string `json:"roleIds" validate:"required"`
}

type UserResponse struct {
	ID        string     `json:"id"`
	Phone     string     `json:"phone"`
	Email     *string    `json:"email"`
	Name      string     `json:"name"`
	Avatar    *string    `json:"avatar"`
	Status    int        `json:"status"`
	Roles     []string   `json:"roles,omitempty"`
	LastLogin *time.Time `json:"lastLogin"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type UserRolesResponse struct {
	UserID  string   `json:"userId"`
	RoleIDs []string `json:"roleIds"`
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Phone:     u.Phone,
		Email:     u.Email,
		Name:      u.Name,
		Avatar:    u.Avatar,
		Status:    u.Status,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i]))
	}
	return responses
}
