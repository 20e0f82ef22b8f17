// handler.go

package menu

import (
	"encoding/json"
	"errors"
	"net/http"

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

// Permission keys gating the administration routes. Each key lives on a
// seeded menu node; admins bypass the lookup.
const (
	PermList   = "system:menu:list"
	PermCreate = "system:menu:create"
	PermUpdate = "system:menu:update"
	PermDelete = "system:menu:delete"
)

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	requirePerm func(permission string) func(http.Handler) http.Handler,
) {
	r.Route("/menus", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/user", h.GetUserMenus)

		r.With(requirePerm(PermList)).Get("/", h.ListMenus)
		r.With(requirePerm(PermList)).Get("/tree", h.GetMenuTree)
		r.With(requirePerm(PermList)).Get("/{menuID}", h.GetMenu)
		r.With(requirePerm(PermCreate)).Post("/", h.CreateMenu)
		r.With(requirePerm(PermUpdate)).Put("/{menuID}", h.UpdateMenu)
		r.With(requirePerm(PermDelete)).Delete("/{menuID}", h.DeleteMenu)
	})
}

// GetUserMenus returns the caller's granted menus as a nested tree.
func (h *Handler) GetUserMenus(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		core.Unauthorized(w, "")
		return
	}

	tree, err := h.service.TreeForUser(r.Context(), identity.UserID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, MenuTreeResponse{Menus: tree})
}

func (h *Handler) ListMenus(w http.ResponseWriter, r *http.Request) {
	menus, err := h.service.List(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, MenuListResponse{Menus: ToMenuResponseList(menus)})
}

func (h *Handler) GetMenuTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.service.Tree(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, MenuTreeResponse{Menus: tree})
}

func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	menuID := chi.URLParam(r, "menuID")

	menu, err := h.service.Get(r.Context(), menuID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "menu")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToMenuResponse(menu))
}

func (h *Handler) CreateMenu(w http.ResponseWriter, r *http.Request) {
	var req CreateMenuRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	menu, err := h.service.Create(r.Context(), req)
	if err != nil {
		if core.IsAppError(err) {
			core.JSONError(w, err)
			return
		}
		// Concurrent insert slipped past the guard; the constraint caught it.
		if errors.Is(err, core.ErrConflict) {
			core.JSONError(w, core.ConflictError("permission key already exists"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToMenuResponse(menu))
}

func (h *Handler) UpdateMenu(w http.ResponseWriter, r *http.Request) {
	menuID := chi.URLParam(r, "menuID")

	var req UpdateMenuRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	menu, err := h.service.Update(r.Context(), menuID, req)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "menu")
			return
		}
		if core.IsAppError(err) {
			core.JSONError(w, err)
			return
		}
		if errors.Is(err, core.ErrConflict) {
			core.JSONError(w, core.ConflictError("permission key already exists"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToMenuResponse(menu))
}

func (h *Handler) DeleteMenu(w http.ResponseWriter, r *http.Request) {
	menuID := chi.URLParam(r, "menuID")

	if err := h.service.Delete(r.Context(), menuID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "menu")
			return
		}
		if core.IsAppError(err) {
			core.JSONError(w, err)
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OKMessage(w, "menu deleted")
}
