package shopwrench

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Permission is a stable (resource, action) pair, e.g. inspections.approve.
type Permission struct {
	Resource string `json:"resource"`
	Action   string `json:"action"`
}

// Permissions required by the transition validator.
var (
	PermInspectionsUpdate         = Permission{"inspections", "update"}
	PermInspectionsUpdateOwn      = Permission{"inspections", "update_own"}
	PermInspectionsApprove        = Permission{"inspections", "approve"}
	PermInspectionsSend           = Permission{"inspections", "send"}
	PermInspectionsSafetyOverride = Permission{"inspections", "safety_override"}
	PermPermissionsManage         = Permission{"permissions", "manage"}
)

// Name returns the canonical "resource.action" form.
func (p Permission) Name() string {
	return p.Resource + "." + p.Action
}

// ParsePermission parses a "resource.action" name.
func ParsePermission(name string) (Permission, error) {
	resource, action, ok := strings.Cut(name, ".")
	if !ok || resource == "" || action == "" {
		return Permission{}, Invalid("invalid permission name %q", name)
	}
	return Permission{Resource: resource, Action: action}, nil
}

// PermissionSet is an actor's effective set of granted permissions.
type PermissionSet map[Permission]struct{}

// Has returns true if the set contains the permission.
func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// Add inserts a permission into the set.
func (s PermissionSet) Add(p Permission) {
	s[p] = struct{}{}
}

// Names returns the sorted-insertion list of permission names, for logging.
func (s PermissionSet) Names() []string {
	names := make([]string, 0, len(s))
	for p := range s {
		names = append(names, p.Name())
	}
	return names
}

// OverrideEffect distinguishes per-user grants from revocations.
type OverrideEffect string

const (
	OverrideGrant  OverrideEffect = "grant"
	OverrideRevoke OverrideEffect = "revoke"
)

// UserPermission is a per-user override with optional expiry. Overrides take
// precedence over the role mapping; expired overrides are ignored.
type UserPermission struct {
	ID         uuid.UUID      `json:"id"`
	UserID     uuid.UUID      `json:"userId"`
	Permission Permission     `json:"permission"`
	Effect     OverrideEffect `json:"effect"`
	ExpiresAt  *time.Time     `json:"expiresAt,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// Expired returns true if the override has lapsed as of now.
func (up *UserPermission) Expired(now time.Time) bool {
	return up.ExpiresAt != nil && !up.ExpiresAt.After(now)
}

// EffectivePermissions resolves a role's permissions plus per-user overrides:
// role permissions, union granted overrides, minus revoked overrides.
func EffectivePermissions(rolePerms []Permission, overrides []*UserPermission, now time.Time) PermissionSet {
	set := make(PermissionSet, len(rolePerms))
	for _, p := range rolePerms {
		set.Add(p)
	}
	for _, o := range overrides {
		if o.Expired(now) {
			continue
		}
		switch o.Effect {
		case OverrideGrant:
			set.Add(o.Permission)
		case OverrideRevoke:
			delete(set, o.Permission)
		}
	}
	return set
}

// String implements fmt.Stringer.
func (p Permission) String() string { return p.Name() }

var _ fmt.Stringer = Permission{}

// PermissionService resolves and manages permissions. Callers that need a
// cached answer go through the authorization checker, which wraps this
// service; any mutation here must be followed by a checker cache clear.
type PermissionService interface {
	// FindRolePermissions returns the permissions granted to a role.
	FindRolePermissions(ctx context.Context, role Role) ([]Permission, error)

	// FindUserPermissions returns all overrides for a user, including
	// expired ones.
	FindUserPermissions(ctx context.Context, userID uuid.UUID) ([]*UserPermission, error)

	// ResolvePermissions computes a user's effective permission set from
	// their role and current (unexpired) overrides.
	ResolvePermissions(ctx context.Context, userID uuid.UUID, role Role) (PermissionSet, error)

	// CreateUserPermission records a grant or revoke override.
	// Returns ECONFLICT if an override for the same permission exists.
	CreateUserPermission(ctx context.Context, up *UserPermission) error

	// DeleteUserPermission removes an override.
	// Returns ENOTFOUND if the override does not exist.
	DeleteUserPermission(ctx context.Context, id uuid.UUID) error
}
