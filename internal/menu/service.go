// service.go

package menu

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo  Repository
	guard *Guard
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:  repo,
		guard: NewGuard(repo),
	}
}

func (s *Service) List(ctx context.Context) ([]Menu, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*Menu, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(
	ctx context.Context,
	req CreateMenuRequest,
) (*Menu, error) {
	if err := s.guard.ValidateCreate(ctx, req.ParentID, req.Permission); err != nil {
		return nil, err
	}

	menu := &Menu{
		ID:         uuid.NewString(),
		Name:       req.Name,
		Path:       req.Path,
		Icon:       req.Icon,
		Component:  req.Component,
		ParentID:   req.ParentID,
		Sort:       0,
		Type:       TypeMenu,
		Permission: normalizePermission(req.Permission),
		Status:     StatusEnabled,
	}

	if req.Sort != nil {
		menu.Sort = *req.Sort
	}
	if req.Type != nil {
		menu.Type = *req.Type
	}
	if req.Status != nil {
		menu.Status = *req.Status
	}

	if err := s.repo.Create(ctx, menu); err != nil {
		return nil, err
	}

	return menu, nil
}

func (s *Service) Update(
	ctx context.Context,
	id string,
	req UpdateMenuRequest,
) (*Menu, error) {
	menu, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.guard.ValidateUpdate(ctx, id, req.ParentID, req.Permission); err != nil {
		return nil, err
	}

	menu.Name = req.Name
	menu.Path = req.Path
	menu.Icon = req.Icon
	menu.Component = req.Component
	menu.ParentID = req.ParentID
	menu.Permission = normalizePermission(req.Permission)

	if req.Sort != nil {
		menu.Sort = *req.Sort
	}
	if req.Type != nil {
		menu.Type = *req.Type
	}
	if req.Status != nil {
		menu.Status = *req.Status
	}

	if err := s.repo.Update(ctx, menu); err != nil {
		return nil, err
	}

	return menu, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.guard.ValidateDelete(ctx, id); err != nil {
		return err
	}

	return s.repo.DeleteCascade(ctx, id)
}

// Tree returns the whole forest, including hidden menus, for admin screens.
func (s *Service) Tree(ctx context.Context) ([]*TreeNode, error) {
	menus, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	return BuildTree(menus), nil
}

// TreeForUser returns the enabled menus granted through the user's roles,
// nested for rendering.
func (s *Service) TreeForUser(
	ctx context.Context,
	userID string,
) ([]*TreeNode, error) {
	menus, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("build user menu tree: %w", err)
	}

	return BuildTree(menus), nil
}

// HasPermission reports whether any of the user's granted, enabled menus
// carries the given permission key.
func (s *Service) HasPermission(
	ctx context.Context,
	userID, permission string,
) (bool, error) {
	if permission == "" {
		return false, nil
	}

	menus, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("check permission: %w", err)
	}

	for i := range menus {
		if menus[i].Permission != nil && *menus[i].Permission == permission {
			return true, nil
		}
	}

	return false, nil
}

// normalizePermission stores blank permission keys as NULL so the uniqueness
// constraint only binds real keys.
func normalizePermission(p *string) *string {
	if p == nil || *p == "" {
		return nil
	}
	return p
}
