// service.go

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/Laurel-rao/pmp-exam-assistant/internal/core"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrPhoneExists        = errors.New("phone already registered")
)

type Service struct {
	codec *Codec
	users UserProvider
}

func NewService(codec *Codec, users UserProvider) *Service {
	return &Service{codec: codec, users: users}
}

// Login verifies the password against the stored hash (hashed comparison
// only) and issues a session credential. Unknown phone and wrong password
// are indistinguishable to the caller.
func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*LoginResponse, error) {
	user, err := s.users.GetByPhone(ctx, req.Phone)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // burn the same time as a real verification
			_, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, err := core.VerifyPasswordTimingSafe(req.Password, &user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if user.Status != StatusEnabled {
		return nil, ErrAccountDisabled
	}

	roles, err := s.users.RoleCodesForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}

	token, err := s.codec.Issue(Credential{
		UserID: user.ID,
		Phone:  user.Phone,
		Name:   user.Name,
		Roles:  roles,
	})
	if err != nil {
		return nil, fmt.Errorf("issue credential: %w", err)
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}

	return &LoginResponse{
		User: &Identity{
			UserID: user.ID,
			Phone:  user.Phone,
			Name:   user.Name,
			Roles:  roles,
		},
		Token: token,
	}, nil
}

// Register creates an account with the default USER role and logs it in.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*LoginResponse, error) {
	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, req.Phone, passwordHash, req.Name)
	if err != nil {
		if errors.Is(err, core.ErrConflict) {
			return nil, ErrPhoneExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	roles, err := s.users.RoleCodesForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}

	token, err := s.codec.Issue(Credential{
		UserID: user.ID,
		Phone:  user.Phone,
		Name:   user.Name,
		Roles:  roles,
	})
	if err != nil {
		return nil, fmt.Errorf("issue credential: %w", err)
	}

	return &LoginResponse{
		User: &Identity{
			UserID: user.ID,
			Phone:  user.Phone,
			Name:   user.Name,
			Roles:  roles,
		},
		Token: token,
	}, nil
}
