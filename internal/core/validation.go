// validation.go

package core

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	phonePattern    = regexp.MustCompile(`^1[3-9]\d{9}$`)
	roleCodePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

// NewValidator returns a validator with the custom tags used by the request
// DTOs: phone_cn (mainland mobile number) and role_code (letters, digits,
// underscores).
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	//nolint:errcheck // registration only fails for empty tag names
	_ = v.RegisterValidation("phone_cn", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})

	//nolint:errcheck // registration only fails for empty tag names
	_ = v.RegisterValidation("role_code", func(fl validator.FieldLevel) bool {
		return roleCodePattern.MatchString(fl.Field().String())
	})

	return v
}
