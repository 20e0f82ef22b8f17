// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Sentinel errors for the access-control taxonomy. Services wrap these with
// fmt.Errorf("...: %w", err); the HTTP boundary maps them to a status code
// and a user-facing message exactly once, in JSONError.
var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidHierarchy = errors.New("invalid hierarchy")
	ErrValidation       = errors.New("validation failed")
)

type AppError struct {
	Err     error
	Message string
	Status  int
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(err error, message string, status int) *AppError {
	return &AppError{Err: err, Message: message, Status: status}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func UnauthenticatedError(message string) *AppError {
	if message == "" {
		message = "not logged in or session expired"
	}
	return NewAppError(ErrUnauthenticated, message, http.StatusUnauthorized)
}

func ForbiddenError(message string) *AppError {
	if message == "" {
		message = "access denied"
	}
	return NewAppError(ErrForbidden, message, http.StatusForbidden)
}

func NotFoundError(resource string) *AppError {
	return NewAppError(
		ErrNotFound,
		resource+" not found",
		http.StatusNotFound,
	)
}

func ConflictError(message string) *AppError {
	return NewAppError(ErrConflict, message, http.StatusConflict)
}

func HierarchyError(message string) *AppError {
	return NewAppError(
		ErrInvalidHierarchy,
		message,
		http.StatusUnprocessableEntity,
	)
}

func ValidationError(message string) *AppError {
	return NewAppError(ErrValidation, message, http.StatusBadRequest)
}

// StatusForError resolves a wrapped taxonomy error to its HTTP status.
// Unknown errors are internal.
func StatusForError(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidHierarchy):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func FormatValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return "invalid request"
	}

	messages := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		messages = append(messages, formatFieldError(fe))
	}

	return strings.Join(messages, "; ")
}

func formatFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "phone_cn":
		return fmt.Sprintf("%s must be a valid mobile number", field)
	case "role_code":
		return fmt.Sprintf(
			"%s may only contain letters, digits and underscores",
			field,
		)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
