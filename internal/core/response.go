// response.go

package core

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// Envelope is the uniform response body: {success, message?, data?}.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // best-effort response write
	_ = json.NewEncoder(w).Encode(body)
}

func OK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

func OKMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: message})
}

func Created(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, Envelope{Success: true, Data: data})
}

type Page struct {
	Items    any   `json:"items"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}

func Paginated(
	w http.ResponseWriter,
	items any,
	page, pageSize int,
	total int64,
) {
	writeJSON(w, http.StatusOK, Envelope{
		Success: true,
		Data: Page{
			Items:    items,
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	})
}

func BadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, Envelope{
		Success: false,
		Message: message,
	})
}

func Unauthorized(w http.ResponseWriter, message string) {
	if message == "" {
		message = "not logged in or session expired"
	}
	writeJSON(w, http.StatusUnauthorized, Envelope{
		Success: false,
		Message: message,
	})
}

func Forbidden(w http.ResponseWriter, message string) {
	if message == "" {
		message = "access denied"
	}
	writeJSON(w, http.StatusForbidden, Envelope{
		Success: false,
		Message: message,
	})
}

func NotFound(w http.ResponseWriter, resource string) {
	writeJSON(w, http.StatusNotFound, Envelope{
		Success: false,
		Message: resource + " not found",
	})
}

// JSONError maps a taxonomy error to its response. Internal detail never
// reaches the client; unknown errors are logged and reported generically.
func JSONError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		writeJSON(w, appErr.Status, Envelope{
			Success: false,
			Message: appErr.Message,
		})
		return
	}

	status := StatusForError(err)
	if status == http.StatusInternalServerError {
		InternalServerError(w, err)
		return
	}

	writeJSON(w, status, Envelope{Success: false, Message: err.Error()})
}

func InternalServerError(w http.ResponseWriter, err error) {
	slog.Error("internal server error", "error", err)
	writeJSON(w, http.StatusInternalServerError, Envelope{
		Success: false,
		Message: "internal server error",
	})
}
