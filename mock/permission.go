package mock

import (
	"context"
	"time"

	"github.com/dukerupert/shopwrench"
	"github.com/google/uuid"
)

// Compile-time interface check
var _ shopwrench.PermissionService = (*PermissionService)(nil)

// PermissionService is a mock implementation of shopwrench.PermissionService.
type PermissionService struct {
	FindRolePermissionsFn  func(ctx context.Context, role shopwrench.Role) ([]shopwrench.Permission, error)
	FindUserPermissionsFn  func(ctx context.Context, userID uuid.UUID) ([]*shopwrench.UserPermission, error)
	ResolvePermissionsFn   func(ctx context.Context, userID uuid.UUID, role shopwrench.Role) (shopwrench.PermissionSet, error)
	CreateUserPermissionFn func(ctx context.Context, up *shopwrench.UserPermission) error
	DeleteUserPermissionFn func(ctx context.Context, id uuid.UUID) error
}

func (s *PermissionService) FindRolePermissions(ctx context.Context, role shopwrench.Role) ([]shopwrench.Permission, error) {
	if s.FindRolePermissionsFn != nil {
		return s.FindRolePermissionsFn(ctx, role)
	}
	return []shopwrench.Permission{}, nil
}

func (s *PermissionService) FindUserPermissions(ctx context.Context, userID uuid.UUID) ([]*shopwrench.UserPermission, error) {
	if s.FindUserPermissionsFn != nil {
		return s.FindUserPermissionsFn(ctx, userID)
	}
	return []*shopwrench.UserPermission{}, nil
}

func (s *PermissionService) ResolvePermissions(ctx context.Context, userID uuid.UUID, role shopwrench.Role) (shopwrench.PermissionSet, error) {
	if s.ResolvePermissionsFn != nil {
		return s.ResolvePermissionsFn(ctx, userID, role)
	}
	return shopwrench.PermissionSet{}, nil
}

func (s *PermissionService) CreateUserPermission(ctx context.Context, up *shopwrench.UserPermission) error {
	if s.CreateUserPermissionFn != nil {
		return s.CreateUserPermissionFn(ctx, up)
	}
	up.ID = uuid.New()
	up.CreatedAt = time.Now()
	return nil
}

func (s *PermissionService) DeleteUserPermission(ctx context.Context, id uuid.UUID) error {
	if s.DeleteUserPermissionFn != nil {
		return s.DeleteUserPermissionFn(ctx, id)
	}
	return nil
}
