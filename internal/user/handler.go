// handler.go

package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Laurel-rao/pmp-exam-assistant/internal/core"
	"github.com/Laurel-rao/pmp-exam-assistant/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

// Permission keys gating the administration routes.
const (
	PermList   = "system:user:list"
	PermCreate = "system:user:create"
	PermUpdate = "system:user:update"
	PermDelete = "system:user:delete"
	PermAssign = "system:user:assign"
)

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	requirePerm func(permission string) func(http.Handler) http.Handler,
) {
	r.Route("/users", func(r chi.Router) {
		r.Use(authenticator)

		r.With(requirePerm(PermList)).Get("/", h.ListUsers)
		r.With(requirePerm(PermList)).Get("/{userID}", h.GetUser)
		r.With(requirePerm(PermCreate)).Post("/", h.CreateUser)
		r.With(requirePerm(PermUpdate)).Put("/{userID}", h.UpdateUser)
		r.With(requirePerm(PermUpdate)).Put("/{userID}/password", h.ResetPassword)
		r.With(requirePerm(PermDelete)).Delete("/{userID}", h.DeleteUser)
		r.With(requirePerm(PermAssign)).Get("/{userID}/roles", h.GetUserRoles)
		r.With(requirePerm(PermAssign)).Put("/{userID}/roles", h.SetUserRoles)
	})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := ListUsersParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "pageSize", 20),
		Search:   r.URL.Query().Get("search"),
	}

	if raw := r.URL.Query().Get("status"); raw != "" {
		if status, err := strconv.Atoi(raw); err == nil {
			params.Status = &status
		}
	}

	users, total, err := h.service.List(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToUserResponseList(users),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	user, err := h.service.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	resp := ToUserResponse(user)
	if roles, err := h.service.RoleCodesForUser(r.Context(), userID); err == nil {
		resp.Roles = roles
	}

	core.OK(w, resp)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.AdminCreate(r.Context(), req)
	if err != nil {
		if errors.Is(err, core.ErrConflict) {
			core.JSONError(w, core.ConflictError("phone already registered"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToUserResponse(user))
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.Update(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		if errors.Is(err, core.ErrConflict) {
			core.JSONError(w, core.ConflictError("email already in use"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	if err := h.service.ResetPassword(r.Context(), userID, req.Password); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OKMessage(w, "password reset")
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	requesterID := middleware.GetUserID(r.Context())
	targetID := chi.URLParam(r, "userID")

	if err := h.service.Delete(r.Context(), requesterID, targetID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		if core.IsAppError(err) {
			core.JSONError(w, err)
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OKMessage(w, "user deleted")
}

func (h *Handler) GetUserRoles(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	roleIDs, err := h.service.RoleIDs(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, UserRolesResponse{UserID: userID, RoleIDs: roleIDs})
}

func (h *Handler) SetUserRoles(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req AssignRolesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if req.RoleIDs == nil {
		core.BadRequest(w, "roleIds is required")
		return
	}

	if err := h.service.SetRoles(r.Context(), userID, req.RoleIDs); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		if core.IsAppError(err) {
			core.JSONError(w, err)
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OKMessage(w, "user roles updated")
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}
