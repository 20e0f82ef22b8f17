// dto.go

package auth

type LoginRequest struct {
	Phone    string `json:"phone"    validate:"required,phone_cn"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type RegisterRequest struct {
	Phone    string `json:"phone"    validate:"required,phone_cn"`
	Password string `json:"password" validate:"required,min=6,max=128"`
	Name     string `json:"name"     validate:"omitempty,max=50"`
}

type LoginResponse struct {
	User  *Identity `json:"user"`
	Token string    `json:"token"`
}

type WhoamiResponse struct {
	User  *Identity `json:"user"`
	Menus any       `json:"menus"`
}
