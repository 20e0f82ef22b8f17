// service_test.go

package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Laurel-rao/pmp-exam-assistant/internal/core"
)

func newTestService(t *testing.T, users *fakeUsers) *Service {
	t.Helper()

	codec, err := NewCodec(testSessionConfig())
	require.NoError(t, err)

	return NewService(codec, users)
}

func TestLoginSucceedsWithCorrectPassword(t *testing.T) {
	hash, err := core.HashPassword("secret123")
	require.NoError(t, err)

	users := newFakeUsers()
	users.add(&UserInfo{
		ID:           "user-1",
		Phone:        "13800138000",
		Name:         "Alice",
		PasswordHash: hash,
		Status:       StatusEnabled,
	}, "USER")

	svc := newTestService(t, users)
	resp, err := svc.Login(context.Background(), LoginRequest{
		Phone:    "13800138000",
		Password: "secret123",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "user-1", resp.User.UserID)
	assert.Equal(t, []string{"USER"}, resp.User.Roles)
	assert.Equal(t, []string{"user-1"}, users.touched)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	hash, err := core.HashPassword("secret123")
	require.NoError(t, err)

	users := newFakeUsers()
	users.add(&UserInfo{
		ID:           "user-1",
		Phone:        "13800138000",
		PasswordHash: hash,
		Status:       StatusEnabled,
	}, "USER")

	svc := newTestService(t, users)
	_, err = svc.Login(context.Background(), LoginRequest{
		Phone:    "13800138000",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, users.touched)
}

func TestLoginRejectsUnknownPhoneIndistinguishably(t *testing.T) {
	svc := newTestService(t, newFakeUsers())

	_, err := svc.Login(context.Background(), LoginRequest{
		Phone:    "13800138000",
		Password: "whatever123",
	})

	// Same error as a wrong password; existence is not revealed.
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsDisabledAccount(t *testing.T) {
	hash, err := core.HashPassword("secret123")
	require.NoError(t, err)

	users := newFakeUsers()
	users.add(&UserInfo{
		ID:           "user-1",
		Phone:        "13800138000",
		PasswordHash: hash,
		Status:       StatusDisabled,
	}, "USER")

	svc := newTestService(t, users)
	_, err = svc.Login(context.Background(), LoginRequest{
		Phone:    "13800138000",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestRegisterIssuesTokenWithDefaultRole(t *testing.T) {
	users := newFakeUsers()
	svc := newTestService(t, users)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Phone:    "13800138000",
		Password: "secret123",
		Name:     "Alice",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, []string{RoleUser}, resp.User.Roles)

	stored, err := users.GetByPhone(context.Background(), "13800138000")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", stored.PasswordHash)
}

func TestRegisterRejectsDuplicatePhone(t *testing.T) {
	users := newFakeUsers()
	users.createErr = core.ErrConflict

	svc := newTestService(t, users)
	_, err := svc.Register(context.Background(), RegisterRequest{
		Phone:    "13800138000",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrPhoneExists)
}
