// handler.go

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Laurel-rao/pmp-exam-assistant/internal/config"
	"github.com/Laurel-rao/pmp-exam-assistant/internal/core"
)

// MenuSource supplies the caller's menu tree for the whoami response. Wired
// at startup to keep this package free of a menu dependency.
type MenuSource func(ctx context.Context, userID string) (any, error)

type Handler struct {
	service   *Service
	menus     MenuSource
	session   config.SessionConfig
	validator *validator.Validate
}

func NewHandler(
	service *Service,
	menus MenuSource,
	session config.SessionConfig,
) *Handler {
	return &Handler{
		service:   service,
		menus:     menus,
		session:   session,
		validator: core.NewValidator(),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	identityFromContext func(ctx context.Context) *Identity,
) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/register", h.Register)
		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Get("/me", h.whoami(identityFromContext))
		})
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			core.JSONError(
				w,
				core.UnauthenticatedError("invalid phone or password"),
			)
			return
		}
		if errors.Is(err, ErrAccountDisabled) {
			// Still a 401: the caller holds no session either way.
			core.JSONError(w, core.UnauthenticatedError("account is disabled"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	h.setSessionCookie(w, resp.Token)
	core.OK(w, resp)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrPhoneExists) {
			core.JSONError(
				w,
				core.ConflictError("phone already registered"),
			)
			return
		}
		core.InternalServerError(w, err)
		return
	}

	h.setSessionCookie(w, resp.Token)
	core.Created(w, resp)
}

// Logout clears the session cookie. The credential itself stays valid until
// expiry; revocation happens through account status, not a token blacklist.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	core.OKMessage(w, "logged out")
}

func (h *Handler) whoami(
	identityFromContext func(ctx context.Context) *Identity,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := identityFromContext(r.Context())
		if identity == nil {
			core.Unauthorized(w, "")
			return
		}

		menus, err := h.menus(r.Context(), identity.UserID)
		if err != nil {
			core.InternalServerError(w, err)
			return
		}

		core.OK(w, WhoamiResponse{User: identity, Menus: menus})
	}
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.session.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.session.TokenExpire.Seconds()),
		HttpOnly: true,
		Secure:   h.session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
