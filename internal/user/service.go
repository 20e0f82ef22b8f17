// service.go

package user

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Laurel-rao/pmp-exam-assistant/internal/auth"
	"github.com/Laurel-rao/pmp-exam-assistant/internal/core"
)

// RoleVerifier reports which of the given ids name real roles. The role
// package provides it.
type RoleVerifier interface {
	ExistingRoleIDs(ctx context.Context, roleIDs []string) ([]string, error)
}

type Service struct {
	repo  Repository
	roles RoleVerifier
}

var _ auth.UserProvider = (*Service)(nil)

func NewService(repo Repository, roles RoleVerifier) *Service {
	return &Service{repo: repo, roles: roles}
}

// GetByID satisfies auth.UserProvider.
func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserInfo(user), nil
}

// GetByPhone satisfies auth.UserProvider.
func (s *Service) GetByPhone(
	ctx context.Context,
	phone string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	return toUserInfo(user), nil
}

// Create satisfies auth.UserProvider: self-registration with the default
// role.
func (s *Service) Create(
	ctx context.Context,
	phone, passwordHash, name string,
) (*auth.UserInfo, error) {
	user := &User{
		ID:           uuid.NewString(),
		Phone:        phone,
		PasswordHash: passwordHash,
		Name:         name,
		Status:       StatusEnabled,
	}

	if err := s.repo.CreateWithRole(ctx, user, auth.RoleUser); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

// RoleCodesForUser satisfies auth.UserProvider.
func (s *Service) RoleCodesForUser(
	ctx context.Context,
	userID string,
) ([]string, error) {
	codes, err := s.repo.RoleCodesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if codes == nil {
		codes = []string{}
	}

	return codes, nil
}

// TouchLastLogin satisfies auth.UserProvider.
func (s *Service) TouchLastLogin(ctx context.Context, userID string) error {
	return s.repo.TouchLastLogin(ctx, userID)
}

func (s *Service) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int64, error) {
	params.Normalize()
	return s.repo.List(ctx, params)
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// AdminCreate creates an account on behalf of an administrator. The default
// role still applies; assignments can be adjusted afterwards.
func (s *Service) AdminCreate(
	ctx context.Context,
	req CreateUserRequest,
) (*User, error) {
	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:           uuid.NewString(),
		Phone:        req.Phone,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Name:         req.Name,
		Status:       StatusEnabled,
	}

	if req.Status != nil {
		user.Status = *req.Status
	}

	if err := s.repo.CreateWithRole(ctx, user, auth.RoleUser); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) Update(
	ctx context.Context,
	id string,
	req UpdateUserRequest,
) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != nil {
		user.Email = req.Email
	}
	if req.Avatar != nil {
		user.Avatar = req.Avatar
	}
	if req.Status != nil {
		user.Status = *req.Status
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) ResetPassword(
	ctx context.Context,
	id, password string,
) error {
	passwordHash, err := core.HashPassword(password)
	if err != nil {
		return err
	}

	return s.repo.UpdatePassword(ctx, id, passwordHash)
}

// Delete removes an account and its assignments and history. An
// administrator cannot delete their own account.
func (s *Service) Delete(ctx context.Context, requesterID, id string) error {
	if requesterID == id {
		return core.ConflictError("cannot delete your own account")
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	return s.repo.DeleteCascade(ctx, id)
}

func (s *Service) RoleIDs(
	ctx context.Context,
	userID string,
) ([]string, error) {
	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	ids, err := s.repo.RoleIDsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if ids == nil {
		ids = []string{}
	}

	return ids, nil
}

// SetRoles replaces the user's role assignments. Every id must name an
// existing role; an empty list clears the assignments.
func (s *Service) SetRoles(
	ctx context.Context,
	userID string,
	roleIDs []string,
) error {
	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		return err
	}

	roleIDs = dedupe(roleIDs)

	if len(roleIDs) > 0 {
		existing, err := s.roles.ExistingRoleIDs(ctx, roleIDs)
		if err != nil {
			return err
		}

		if invalid := missingIDs(roleIDs, existing); len(invalid) > 0 {
			return core.ValidationError(
				"unknown role ids: " + strings.Join(invalid, ", "),
			)
		}
	}

	return s.repo.SetRoles(ctx, userID, roleIDs)
}

func (s *Service) CountAll(ctx context.Context) (int64, error) {
	return s.repo.CountAll(ctx)
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Phone:        u.Phone,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Status:       u.Status,
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func missingIDs(requested, existing []string) []string {
	have := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		have[id] = struct{}{}
	}

	var missing []string
	for _, id := range requested {
		if _, ok := have[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
