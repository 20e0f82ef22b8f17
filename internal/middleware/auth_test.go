// auth_test.go

package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Laurel-rao/pmp-exam-assistant/internal/auth"
	"github.com/Laurel-rao/pmp-exam-assistant/internal/core"
)

const testCookieName = "token"

type fakeResolver struct {
	identities map[string]*auth.Identity
}

func (f *fakeResolver) Resolve(
	ctx context.Context,
	token string,
) (*auth.Identity, error) {
	if identity, ok := f.identities[token]; ok {
		return identity, nil
	}
	return nil, core.ErrUnauthenticated
}

type fakeChecker struct {
	grants map[string]map[string]bool
}

func (f *fakeChecker) HasPermission(
	ctx context.Context,
	userID, permission string,
) (bool, error) {
	return f.grants[userID][permission], nil
}

func newResolver(identities ...*auth.Identity) *fakeResolver {
	r := &fakeResolver{identities: map[string]*auth.Identity{}}
	for _, identity := range identities {
		r.identities["token-"+identity.UserID] = identity
	}
	return r
}

// echoIdentity reports the resolved user id so tests can see who passed the
// middleware.
func echoIdentity() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		core.OK(w, GetUserID(r.Context()))
	})
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestExtractTokenPrefersCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: testCookieName, Value: "from-cookie"})
	r.Header.Set("Authorization", "Bearer from-header")

	assert.Equal(t, "from-cookie", ExtractToken(r, testCookieName))
}

func TestExtractTokenFallsBackToBearer(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer from-header")
	assert.Equal(t, "from-header", ExtractToken(r, testCookieName))

	// Scheme matching is case-insensitive.
	r.Header.Set("Authorization", "bearer from-header")
	assert.Equal(t, "from-header", ExtractToken(r, testCookieName))
}

func TestExtractTokenIgnoresOtherSchemes(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	assert.Empty(t, ExtractToken(r, testCookieName))

	r.Header.Set("Authorization", "Bearer")
	assert.Empty(t, ExtractToken(r, testCookieName))

	r.Header.Del("Authorization")
	assert.Empty(t, ExtractToken(r, testCookieName))
}

func TestExtractTokenSkipsEmptyCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: testCookieName, Value: ""})
	r.Header.Set("Authorization", "Bearer from-header")

	assert.Equal(t, "from-header", ExtractToken(r, testCookieName))
}

func TestAuthenticatorStoresIdentity(t *testing.T) {
	resolver := newResolver(&auth.Identity{
		UserID: "user-1",
		Roles:  []string{"USER"},
	})
	handler := Authenticator(resolver, testCookieName)(echoIdentity())

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: testCookieName, Value: "token-user-1"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, true, envelope["success"])
	assert.Equal(t, "user-1", envelope["data"])
}

func TestAuthenticatorRejectsMissingToken(t *testing.T) {
	handler := Authenticator(newResolver(), testCookieName)(echoIdentity())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, false, envelope["success"])
	assert.NotEmpty(t, envelope["message"])
}

func TestAuthenticatorRejectsUnknownToken(t *testing.T) {
	handler := Authenticator(newResolver(), testCookieName)(echoIdentity())

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer bogus")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	resolver := newResolver(
		&auth.Identity{UserID: "admin-1", Roles: []string{"ADMIN"}},
		&auth.Identity{UserID: "user-1", Roles: []string{"USER"}},
	)
	handler := Authenticator(resolver, testCookieName)(
		RequireAdmin(echoIdentity()),
	)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: testCookieName, Value: "token-admin-1"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: testCookieName, Value: "token-user-1"})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAdminWithoutIdentity(t *testing.T) {
	// RequireAdmin behind no authenticator must not panic.
	handler := RequireAdmin(echoIdentity())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequirePermission(t *testing.T) {
	resolver := newResolver(
		&auth.Identity{UserID: "user-1", Roles: []string{"USER"}},
		&auth.Identity{UserID: "user-2", Roles: []string{"USER"}},
		&auth.Identity{UserID: "admin-1", Roles: []string{"ADMIN"}},
	)
	checker := &fakeChecker{grants: map[string]map[string]bool{
		"user-1": {"menu:list": true},
	}}
	handler := Authenticator(resolver, testCookieName)(
		RequirePermission(checker, "menu:list")(echoIdentity()),
	)

	// Granted through a role.
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: testCookieName, Value: "token-user-1"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Not granted.
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: testCookieName, Value: "token-user-2"})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Admins bypass the lookup entirely.
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: testCookieName, Value: "token-admin-1"})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIdentityHelpers(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, IdentityFromContext(ctx))
	assert.Empty(t, GetUserID(ctx))
	assert.False(t, IsAuthenticated(ctx))

	identity := &auth.Identity{UserID: "user-1"}
	ctx = context.WithValue(ctx, IdentityKey, identity)
	assert.Equal(t, identity, IdentityFromContext(ctx))
	assert.Equal(t, "user-1", GetUserID(ctx))
	assert.True(t, IsAuthenticated(ctx))
}
