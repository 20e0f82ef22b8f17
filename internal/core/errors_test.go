// errors_test.go

package core

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusForError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"unauthenticated", ErrUnauthenticated, http.StatusUnauthorized},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"not found", ErrNotFound, http.StatusNotFound},
		{"conflict", ErrConflict, http.StatusConflict},
		{"hierarchy", ErrInvalidHierarchy, http.StatusUnprocessableEntity},
		{"validation", ErrValidation, http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusForError(tc.err))

			// Wrapping must not change the resolution.
			wrapped := fmt.Errorf("load user: %w", tc.err)
			assert.Equal(t, tc.want, StatusForError(wrapped))
		})
	}
}

func TestAppErrorCarriesStatusAndSentinel(t *testing.T) {
	err := ConflictError("role is assigned to 3 users")

	assert.Equal(t, http.StatusConflict, StatusForError(err))
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "role is assigned to 3 users", err.Error())
	assert.True(t, IsAppError(err))

	// Still resolvable through further wrapping.
	wrapped := fmt.Errorf("delete role: %w", err)
	assert.Equal(t, http.StatusConflict, StatusForError(wrapped))
	assert.True(t, IsAppError(wrapped))
}

func TestAppErrorDefaultMessages(t *testing.T) {
	assert.Equal(
		t,
		"not logged in or session expired",
		UnauthenticatedError("").Error(),
	)
	assert.Equal(t, "access denied", ForbiddenError("").Error())
	assert.Equal(t, "menu not found", NotFoundError("menu").Error())
}
