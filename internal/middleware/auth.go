// auth.go

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Laurel-rao/pmp-exam-assistant/internal/auth"
	"github.com/Laurel-rao/pmp-exam-assistant/internal/core"
)

type contextKey string

const IdentityKey contextKey = "identity"

// SessionResolver turns a raw transport token into a live identity.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*auth.Identity, error)
}

// PermissionChecker answers whether a user holds a permission key through
// any of their roles.
type PermissionChecker interface {
	HasPermission(
		ctx context.Context,
		userID, permission string,
	) (bool, error)
}

// Authenticator resolves the request credential and stores the identity in
// the context. The cookie takes precedence over the Authorization header on
// every route.
func Authenticator(
	resolver SessionResolver,
	cookieName string,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r, cookieName)

			if token == "" {
				core.JSONError(w, core.UnauthenticatedError(""))
				return
			}

			identity, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				core.JSONError(w, core.UnauthenticatedError(""))
				return
			}

			ctx := context.WithValue(r.Context(), IdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := IdentityFromContext(r.Context())

		if identity == nil {
			core.JSONError(w, core.UnauthenticatedError(""))
			return
		}

		if !identity.IsAdmin() {
			core.JSONError(w, core.ForbiddenError(""))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequirePermission gates a route on a menu permission key. Admins pass
// without the lookup.
func RequirePermission(
	checker PermissionChecker,
	permission string,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := IdentityFromContext(r.Context())

			if identity == nil {
				core.JSONError(w, core.UnauthenticatedError(""))
				return
			}

			if identity.IsAdmin() {
				next.ServeHTTP(w, r)
				return
			}

			granted, err := checker.HasPermission(
				r.Context(),
				identity.UserID,
				permission,
			)
			if err != nil {
				core.InternalServerError(w, err)
				return
			}

			if !granted {
				core.JSONError(w, core.ForbiddenError(""))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ExtractToken reads the session cookie first, then falls back to a Bearer
// Authorization header.
func ExtractToken(r *http.Request, cookieName string) string {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func IdentityFromContext(ctx context.Context) *auth.Identity {
	if identity, ok := ctx.Value(IdentityKey).(*auth.Identity); ok {
		return identity
	}
	return nil
}

func GetUserID(ctx context.Context) string {
	if identity := IdentityFromContext(ctx); identity != nil {
		return identity.UserID
	}
	return ""
}

func IsAuthenticated(ctx context.Context) bool {
	return IdentityFromContext(ctx) != nil
}
