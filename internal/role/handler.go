// handler.go

package role

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Laurel-rao/pmp-exam-assistant/internal/core"
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
	PermList   = "system:role:list"
	PermCreate = "system:role:create"
	PermUpdate = "system:role:update"
	PermDelete = "system:role:delete"
	PermAssign = "system:role:assign"
)

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	requirePerm func(permission string) func(http.Handler) http.Handler,
) {
	r.Route("/roles", func(r chi.Router) {
		r.Use(authenticator)

		r.With(requirePerm(PermList)).Get("/", h.ListRoles)
		r.With(requirePerm(PermList)).Get("/{roleID}", h.GetRole)
		r.With(requirePerm(PermCreate)).Post("/", h.CreateRole)
		r.With(requirePerm(PermUpdate)).Put("/{roleID}", h.UpdateRole)
		r.With(requirePerm(PermDelete)).Delete("/{roleID}", h.DeleteRole)
		r.With(requirePerm(PermAssign)).Get("/{roleID}/menus", h.GetRoleMenus)
		r.With(requirePerm(PermAssign)).Put("/{roleID}/menus", h.SetRoleMenus)
	})
}

func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.List(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	responses := make([]RoleResponse, 0, len(roles))
	for i := range roles {
		responses = append(
			responses,
			ToRoleResponse(&roles[i].Role, roles[i].UserCount),
		)
	}

	core.OK(w, RoleListResponse{Roles: responses})
}

func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	roleID := chi.URLParam(r, "roleID")

	role, userCount, err := h.service.Get(r.Context(), roleID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "role")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToRoleResponse(role, userCount))
}

func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req CreateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	role, err := h.service.Create(r.Context(), req)
	if err != nil {
		if errors.Is(err, core.ErrConflict) {
			core.JSONError(w, core.ConflictError("role code already exists"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToRoleResponse(role, 0))
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	roleID := chi.URLParam(r, "roleID")

	var req UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	role, err := h.service.Update(r.Context(), roleID, req)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "role")
			return
		}
		if core.IsAppError(err) {
			core.JSONError(w, err)
			return
		}
		if errors.Is(err, core.ErrConflict) {
			core.JSONError(w, core.ConflictError("role code already exists"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	userCount, err := h.service.UserCount(r.Context(), roleID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToRoleResponse(role, userCount))
}

func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	roleID := chi.URLParam(r, "roleID")

	if err := h.service.Delete(r.Context(), roleID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "role")
			return
		}
		if core.IsAppError(err) {
			core.JSONError(w, err)
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OKMessage(w, "role deleted")
}

func (h *Handler) GetRoleMenus(w http.ResponseWriter, r *http.Request) {
	roleID := chi.URLParam(r, "roleID")

	menuIDs, err := h.service.MenuIDs(r.Context(), roleID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "role")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, RoleMenusResponse{RoleID: roleID, MenuIDs: menuIDs})
}

func (h *Handler) SetRoleMenus(w http.ResponseWriter, r *http.Request) {
	roleID := chi.URLParam(r, "roleID")

	var req AssignMenusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if req.MenuIDs == nil {
		core.BadRequest(w, "menuIds is required")
		return
	}

	if err := h.service.SetMenus(r.Context(), roleID, req.MenuIDs); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "role")
			return
		}
		if core.IsAppError(err) {
			core.JSONError(w, err)
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OKMessage(w, "role menus updated")
}
