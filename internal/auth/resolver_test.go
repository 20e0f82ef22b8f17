// resolver_test.go

package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Laurel-rao/pmp-exam-assistant/internal/core"
)

type fakeUsers struct {
	byID      map[string]*UserInfo
	byPhone   map[string]*UserInfo
	roles     map[string][]string
	createErr error
	touched   []string
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		byID:    map[string]*UserInfo{},
		byPhone: map[string]*UserInfo{},
		roles:   map[string][]string{},
	}
}

func (f *fakeUsers) add(u *UserInfo, roles ...string) {
	f.byID[u.ID] = u
	f.byPhone[u.Phone] = u
	f.roles[u.ID] = roles
}

func (f *fakeUsers) GetByID(
	ctx context.Context,
	id string,
) (*UserInfo, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, core.ErrNotFound
}

func (f *fakeUsers) GetByPhone(
	ctx context.Context,
	phone string,
) (*UserInfo, error) {
	if u, ok := f.byPhone[phone]; ok {
		return u, nil
	}
	return nil, core.ErrNotFound
}

func (f *fakeUsers) Create(
	ctx context.Context,
	phone, passwordHash, name string,
) (*UserInfo, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}

	u := &UserInfo{
		ID:           "user-" + phone,
		Phone:        phone,
		Name:         name,
		PasswordHash: passwordHash,
		Status:       StatusEnabled,
	}
	f.add(u, RoleUser)
	return u, nil
}

func (f *fakeUsers) RoleCodesForUser(
	ctx context.Context,
	userID string,
) ([]string, error) {
	return f.roles[userID], nil
}

func (f *fakeUsers) TouchLastLogin(ctx context.Context, userID string) error {
	f.touched = append(f.touched, userID)
	return nil
}

func TestResolverReturnsLiveRoles(t *testing.T) {
	cfg := testSessionConfig()
	codec, err := NewCodec(cfg)
	require.NoError(t, err)

	users := newFakeUsers()
	users.add(&UserInfo{
		ID:     "user-1",
		Phone:  "13800138000",
		Name:   "Alice",
		Status: StatusEnabled,
	}, "ADMIN")

	// Token carries the USER snapshot; the store has since granted ADMIN.
	token, err := codec.Issue(Credential{
		UserID: "user-1",
		Phone:  "13800138000",
		Roles:  []string{"USER"},
	})
	require.NoError(t, err)

	resolver := NewResolver(codec, users)
	identity, err := resolver.Resolve(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, "user-1", identity.UserID)
	assert.Equal(t, []string{"ADMIN"}, identity.Roles)
	assert.True(t, identity.IsAdmin())
}

func TestResolverRejectsVanishedSubject(t *testing.T) {
	cfg := testSessionConfig()
	codec, err := NewCodec(cfg)
	require.NoError(t, err)

	token, err := codec.Issue(Credential{
		UserID: "ghost",
		Phone:  "13800138000",
		Roles:  []string{"USER"},
	})
	require.NoError(t, err)

	resolver := NewResolver(codec, newFakeUsers())
	_, err = resolver.Resolve(context.Background(), token)

	// Unauthenticated, not not-found: the response must not reveal whether
	// the account ever existed.
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
	assert.NotErrorIs(t, err, core.ErrNotFound)
}

func TestResolverRejectsDisabledSubject(t *testing.T) {
	cfg := testSessionConfig()
	codec, err := NewCodec(cfg)
	require.NoError(t, err)

	users := newFakeUsers()
	users.add(&UserInfo{
		ID:     "user-1",
		Phone:  "13800138000",
		Status: StatusDisabled,
	}, "USER")

	token, err := codec.Issue(Credential{
		UserID: "user-1",
		Phone:  "13800138000",
		Roles:  []string{"USER"},
	})
	require.NoError(t, err)

	resolver := NewResolver(codec, users)
	_, err = resolver.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
}

func TestResolverRejectsInvalidToken(t *testing.T) {
	cfg := testSessionConfig()
	codec, err := NewCodec(cfg)
	require.NoError(t, err)

	resolver := NewResolver(codec, newFakeUsers())
	_, err = resolver.Resolve(context.Background(), "garbage")
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
}

func TestIdentityRoleChecksAreCaseInsensitive(t *testing.T) {
	identity := &Identity{Roles: []string{"admin"}}

	assert.True(t, identity.HasRole("ADMIN"))
	assert.True(t, identity.IsAdmin())
	assert.False(t, identity.HasRole("USER"))
}
