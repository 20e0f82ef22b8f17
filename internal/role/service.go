// service.go

package role

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Laurel-rao/pmp-exam-assistant/internal/auth"
	"github.com/Laurel-rao/pmp-exam-assistant/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]RoleWithCount, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*Role, int, error) {
	role, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	count, err := s.repo.CountUsers(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	return role, count, nil
}

func (s *Service) Create(
	ctx context.Context,
	req CreateRoleRequest,
) (*Role, error) {
	role := &Role{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		Status:      StatusEnabled,
	}

	if req.Status != nil {
		role.Status = *req.Status
	}

	if err := s.repo.Create(ctx, role); err != nil {
		return nil, err
	}

	return role, nil
}

func (s *Service) Update(
	ctx context.Context,
	id string,
	req UpdateRoleRequest,
) (*Role, error) {
	role, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// The built-in administrator role keeps its code; everything else on it
	// may change.
	if isAdminCode(role.Code) && !isAdminCode(req.Code) {
		return nil, core.ConflictError(
			"the administrator role code cannot be changed",
		)
	}

	role.Name = req.Name
	role.Code = req.Code
	role.Description = req.Description
	if req.Status != nil {
		role.Status = *req.Status
	}

	if err := s.repo.Update(ctx, role); err != nil {
		return nil, err
	}

	return role, nil
}

// Delete removes a role unless it is the built-in administrator role or
// still assigned to users. Menu grants go with it.
func (s *Service) Delete(ctx context.Context, id string) error {
	role, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if isAdminCode(role.Code) {
		return core.ForbiddenError(
			"the administrator role cannot be deleted",
		)
	}

	users, err := s.repo.CountUsers(ctx, id)
	if err != nil {
		return err
	}

	if users > 0 {
		return core.ConflictError(
			fmt.Sprintf("role is assigned to %d users", users),
		)
	}

	return s.repo.DeleteCascade(ctx, id)
}

func (s *Service) UserCount(
	ctx context.Context,
	roleID string,
) (int, error) {
	return s.repo.CountUsers(ctx, roleID)
}

func (s *Service) MenuIDs(
	ctx context.Context,
	roleID string,
) ([]string, error) {
	if _, err := s.repo.GetByID(ctx, roleID); err != nil {
		return nil, err
	}

	ids, err := s.repo.MenuIDsForRole(ctx, roleID)
	if err != nil {
		return nil, err
	}

	if ids == nil {
		ids = []string{}
	}

	return ids, nil
}

// SetMenus replaces the role's menu grants. Every id must name an existing
// menu; an empty list clears the grants. Resubmitting the same list is a
// no-op in effect.
func (s *Service) SetMenus(
	ctx context.Context,
	roleID string,
	menuIDs []string,
) error {
	if _, err := s.repo.GetByID(ctx, roleID); err != nil {
		return err
	}

	menuIDs = dedupe(menuIDs)

	if len(menuIDs) > 0 {
		existing, err := s.repo.ExistingMenuIDs(ctx, menuIDs)
		if err != nil {
			return err
		}

		if invalid := missingIDs(menuIDs, existing); len(invalid) > 0 {
			return core.ValidationError(
				"unknown menu ids: " + strings.Join(invalid, ", "),
			)
		}
	}

	return s.repo.SetMenus(ctx, roleID, menuIDs)
}

// ExistingRoleIDs reports which of the given ids name real roles. The user
// package uses it to validate assignments.
func (s *Service) ExistingRoleIDs(
	ctx context.Context,
	roleIDs []string,
) ([]string, error) {
	return s.repo.ExistingRoleIDs(ctx, roleIDs)
}

func isAdminCode(code string) bool {
	return strings.EqualFold(code, auth.RoleAdmin)
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
