// service_test.go

package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Laurel-rao/pmp-exam-assistant/internal/core"
)

type fakeRepo struct {
	users     map[string]*User
	byPhone   map[string]*User
	roleCodes map[string][]string
	roleIDs   map[string][]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:     map[string]*User{},
		byPhone:   map[string]*User{},
		roleCodes: map[string][]string{},
		roleIDs:   map[string][]string{},
	}
}

func (f *fakeRepo) add(u *User) {
	f.users[u.ID] = u
	f.byPhone[u.Phone] = u
}

func (f *fakeRepo) CreateWithRole(
	ctx context.Context,
	user *User,
	roleCode string,
) error {
	if _, ok := f.byPhone[user.Phone]; ok {
		return core.ErrConflict
	}
	f.add(user)
	f.roleCodes[user.ID] = []string{roleCode}
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (*User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, core.ErrNotFound
}

func (f *fakeRepo) GetByPhone(
	ctx context.Context,
	phone string,
) (*User, error) {
	if u, ok := f.byPhone[phone]; ok {
		return u, nil
	}
	return nil, core.ErrNotFound
}

func (f *fakeRepo) Update(ctx context.Context, user *User) error {
	if _, ok := f.users[user.ID]; !ok {
		return core.ErrNotFound
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeRepo) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	u, ok := f.users[id]
	if !ok {
		return core.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (f *fakeRepo) DeleteCascade(ctx context.Context, id string) error {
	u, ok := f.users[id]
	if !ok {
		return core.ErrNotFound
	}
	delete(f.byPhone, u.Phone)
	delete(f.users, id)
	delete(f.roleIDs, id)
	return nil
}

func (f *fakeRepo) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int64, error) {
	out := make([]User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) CountAll(ctx context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

func (f *fakeRepo) TouchLastLogin(ctx context.Context, id string) error {
	return nil
}

func (f *fakeRepo) RoleCodesForUser(
	ctx context.Context,
	userID string,
) ([]string, error) {
	return f.roleCodes[userID], nil
}

func (f *fakeRepo) RoleIDsForUser(
	ctx context.Context,
	userID string,
) ([]string, error) {
	return f.roleIDs[userID], nil
}

func (f *fakeRepo) SetRoles(
	ctx context.Context,
	userID string,
	roleIDs []string,
) error {
	f.roleIDs[userID] = roleIDs
	return nil
}

// fakeRoles verifies assignment ids against a fixed set.
type fakeRoles struct {
	known map[string]struct{}
}

func newFakeRoles(ids ...string) *fakeRoles {
	known := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		known[id] = struct{}{}
	}
	return &fakeRoles{known: known}
}

func (f *fakeRoles) ExistingRoleIDs(
	ctx context.Context,
	roleIDs []string,
) ([]string, error) {
	var existing []string
	for _, id := range roleIDs {
		if _, ok := f.known[id]; ok {
			existing = append(existing, id)
		}
	}
	return existing, nil
}

func TestDeleteRefusesOwnAccount(t *testing.T) {
	repo := newFakeRepo()
	repo.add(&User{ID: "u1", Phone: "13800138000", Status: StatusEnabled})
	svc := NewService(repo, newFakeRoles())

	err := svc.Delete(context.Background(), "u1", "u1")
	assert.ErrorIs(t, err, core.ErrConflict)
	assert.Contains(t, repo.users, "u1")
}

func TestDeleteRemovesOtherAccount(t *testing.T) {
	repo := newFakeRepo()
	repo.add(&User{ID: "u1", Phone: "13800138000", Status: StatusEnabled})
	repo.add(&User{ID: "u2", Phone: "13800138001", Status: StatusEnabled})
	repo.roleIDs["u2"] = []string{"r1"}
	svc := NewService(repo, newFakeRoles())

	err := svc.Delete(context.Background(), "u1", "u2")
	require.NoError(t, err)
	assert.NotContains(t, repo.users, "u2")
	assert.NotContains(t, repo.roleIDs, "u2")
}

func TestDeleteUnknownAccount(t *testing.T) {
	svc := NewService(newFakeRepo(), newFakeRoles())

	err := svc.Delete(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSetRolesRejectsUnknownIDs(t *testing.T) {
	repo := newFakeRepo()
	repo.add(&User{ID: "u1", Phone: "13800138000", Status: StatusEnabled})
	svc := NewService(repo, newFakeRoles("r1"))

	err := svc.SetRoles(context.Background(), "u1", []string{"r1", "r9"})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrValidation)
	assert.Contains(t, err.Error(), "r9")
	assert.Empty(t, repo.roleIDs["u1"])
}

func TestSetRolesReplacesAndDedupes(t *testing.T) {
	repo := newFakeRepo()
	repo.add(&User{ID: "u1", Phone: "13800138000", Status: StatusEnabled})
	repo.roleIDs["u1"] = []string{"r1"}
	svc := NewService(repo, newFakeRoles("r1", "r2"))

	err := svc.SetRoles(
		context.Background(),
		"u1",
		[]string{"r2", "r2", "r1"},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"r2", "r1"}, repo.roleIDs["u1"])
}

func TestSetRolesEmptyListClears(t *testing.T) {
	repo := newFakeRepo()
	repo.add(&User{ID: "u1", Phone: "13800138000", Status: StatusEnabled})
	repo.roleIDs["u1"] = []string{"r1"}
	svc := NewService(repo, newFakeRoles("r1"))

	err := svc.SetRoles(context.Background(), "u1", []string{})
	require.NoError(t, err)
	assert.Empty(t, repo.roleIDs["u1"])
}

func TestAdminCreateHashesPassword(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, newFakeRoles())

	user, err := svc.AdminCreate(context.Background(), CreateUserRequest{
		Phone:    "13800138000",
		Password: "secret123",
		Name:     "Alice",
	})
	require.NoError(t, err)

	assert.NotEqual(t, "secret123", user.PasswordHash)
	ok, err := core.VerifyPassword("secret123", user.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	// Self-registration defaults apply here too.
	assert.Equal(t, []string{"USER"}, repo.roleCodes[user.ID])
	assert.Equal(t, StatusEnabled, user.Status)
}

func TestUpdateAppliesPartialChanges(t *testing.T) {
	repo := newFakeRepo()
	repo.add(&User{
		ID:     "u1",
		Phone:  "13800138000",
		Name:   "Alice",
		Status: StatusEnabled,
	})
	svc := NewService(repo, newFakeRoles())

	disabled := StatusDisabled
	updated, err := svc.Update(context.Background(), "u1", UpdateUserRequest{
		Status: &disabled,
	})
	require.NoError(t, err)

	// Untouched fields survive.
	assert.Equal(t, "Alice", updated.Name)
	assert.Equal(t, StatusDisabled, updated.Status)
}

func TestRoleCodesForUserNeverNil(t *testing.T) {
	repo := newFakeRepo()
	repo.add(&User{ID: "u1", Phone: "13800138000", Status: StatusEnabled})
	svc := NewService(repo, newFakeRoles())

	codes, err := svc.RoleCodesForUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, codes)
	assert.Empty(t, codes)
}
