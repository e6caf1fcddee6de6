package postgres

import (
	"context"
	"time"

	"github.com/dukerupert/shopwrench"
	"github.com/google/uuid"
)

// Compile-time check that PermissionService implements shopwrench.PermissionService.
var _ shopwrench.PermissionService = (*PermissionService)(nil)

// PermissionService implements shopwrench.PermissionService using PostgreSQL.
type PermissionService struct {
	db *DB
}

func (s *PermissionService) FindRolePermissions(ctx context.Context, role shopwrench.Role) ([]shopwrench.Permission, error) {
	rows, err := s.db.pool.Query(ctx, `
		SELECT resource, action
		FROM role_permissions
		WHERE role = $1
		ORDER BY resource, action`,
		role,
	)
	if err != nil {
		return nil, shopwrench.Internal("Failed to fetch role permissions", err)
	}
	defer rows.Close()

	var perms []shopwrench.Permission
	for rows.Next() {
		var p shopwrench.Permission
		if err := rows.Scan(&p.Resource, &p.Action); err != nil {
			return nil, shopwrench.Internal("Failed to scan permission", err)
		}
		perms = append(perms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, shopwrench.Internal("Failed to iterate permissions", err)
	}
	return perms, nil
}

func (s *PermissionService) FindUserPermissions(ctx context.Context, userID uuid.UUID) ([]*shopwrench.UserPermission, error) {
	rows, err := s.db.pool.Query(ctx, `
		SELECT id, user_id, resource, action, effect, expires_at, created_at
		FROM user_permissions
		WHERE user_id = $1
		ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, shopwrench.Internal("Failed to fetch user permissions", err)
	}
	defer rows.Close()

	var overrides []*shopwrench.UserPermission
	for rows.Next() {
		var up shopwrench.UserPermission
		if err := rows.Scan(&up.ID, &up.UserID, &up.Permission.Resource, &up.Permission.Action,
			&up.Effect, &up.ExpiresAt, &up.CreatedAt); err != nil {
			return nil, shopwrench.Internal("Failed to scan user permission", err)
		}
		overrides = append(overrides, &up)
	}
	if err := rows.Err(); err != nil {
		return nil, shopwrench.Internal("Failed to iterate user permissions", err)
	}
	return overrides, nil
}

func (s *PermissionService) ResolvePermissions(ctx context.Context, userID uuid.UUID, role shopwrench.Role) (shopwrench.PermissionSet, error) {
	rolePerms, err := s.FindRolePermissions(ctx, role)
	if err != nil {
		return nil, err
	}
	overrides, err := s.FindUserPermissions(ctx, userID)
	if err != nil {
		return nil, err
	}
	return shopwrench.EffectivePermissions(rolePerms, overrides, time.Now()), nil
}

func (s *PermissionService) CreateUserPermission(ctx context.Context, up *shopwrench.UserPermission) error {
	switch up.Effect {
	case shopwrench.OverrideGrant, shopwrench.OverrideRevoke:
	default:
		return shopwrench.Invalid("invalid override effect %q", up.Effect)
	}

	if up.ID == uuid.Nil {
		up.ID = uuid.New()
	}
	up.CreatedAt = time.Now()

	_, err := s.db.pool.Exec(ctx, `
		INSERT INTO user_permissions (id, user_id, resource, action, effect, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		up.ID, up.UserID, up.Permission.Resource, up.Permission.Action,
		up.Effect, up.ExpiresAt, up.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return shopwrench.Conflict("An override for this permission already exists")
		}
		if isForeignKeyViolation(err) {
			return shopwrench.NotFound("User not found")
		}
		return shopwrench.Internal("Failed to create user permission", err)
	}
	return nil
}

func (s *PermissionService) DeleteUserPermission(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.pool.Exec(ctx, `DELETE FROM user_permissions WHERE id = $1`, id)
	if err != nil {
		return shopwrench.Internal("Failed to delete user permission", err)
	}
	if tag.RowsAffected() == 0 {
		return shopwrench.NotFound("Permission override not found")
	}
	return nil
}
