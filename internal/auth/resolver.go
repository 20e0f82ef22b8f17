// resolver.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Laurel-rao/pmp-exam-assistant/internal/core"
)

// RoleAdmin is the built-in administrator role code. Role-code comparison is
// case-insensitive throughout; normalize at comparison time, never in
// storage.
const RoleAdmin = "ADMIN"

// RoleUser is the default role assigned at registration.
const RoleUser = "USER"

// Identity is the live, persistence-checked view of a subject. Roles come
// from the user_roles join at resolution time, so a revocation takes effect
// on the very next request even while the credential stays valid.
type Identity struct {
	UserID string   `json:"id"`
	Phone  string   `json:"phone"`
	Name   string   `json:"name,omitempty"`
	Roles  []string `json:"roles"`
}

func (i *Identity) HasRole(code string) bool {
	for _, r := range i.Roles {
		if strings.EqualFold(r, code) {
			return true
		}
	}
	return false
}

func (i *Identity) IsAdmin() bool {
	return i.HasRole(RoleAdmin)
}

// UserInfo is the subset of a user record the auth package needs. The user
// package implements UserProvider on top of its repository.
type UserInfo struct {
	ID           string
	Phone        string
	Name         string
	PasswordHash string
	Status       int
}

const (
	StatusEnabled  = 1
	StatusDisabled = 0
)

type UserProvider interface {
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	GetByPhone(ctx context.Context, phone string) (*UserInfo, error)
	Create(
		ctx context.Context,
		phone, passwordHash, name string,
	) (*UserInfo, error)
	RoleCodesForUser(ctx context.Context, userID string) ([]string, error)
	TouchLastLogin(ctx context.Context, userID string) error
}

// Resolver turns a transport-carried token into a live identity. A valid
// credential alone is never sufficient: the subject must still exist and be
// enabled, and roles are re-read fresh.
type Resolver struct {
	verifier Verifier
	users    UserProvider
}

func NewResolver(verifier Verifier, users UserProvider) *Resolver {
	return &Resolver{verifier: verifier, users: users}
}

func (r *Resolver) Resolve(
	ctx context.Context,
	token string,
) (*Identity, error) {
	cred, err := r.verifier.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := r.users.GetByID(ctx, cred.UserID)
	if err != nil {
		// A vanished subject is reported as unauthenticated, not as not
		// found, so the response does not reveal account existence.
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf(
				"resolve session: %w",
				core.ErrUnauthenticated,
			)
		}
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	if user.Status != StatusEnabled {
		return nil, fmt.Errorf(
			"resolve session: subject disabled: %w",
			core.ErrUnauthenticated,
		)
	}

	roles, err := r.users.RoleCodesForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	return &Identity{
		UserID: user.ID,
		Phone:  user.Phone,
		Name:   user.Name,
		Roles:  roles,
	}, nil
}
