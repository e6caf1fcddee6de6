// Package authz caches effective permission sets so authorization checks on
// the hot path (every transition request) don't hit the database.
package authz

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/dukerupert/shopwrench"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Default cache settings. Permission changes are rare; a short TTL keeps the
// worst-case staleness after a missed invalidation to a few minutes.
const (
	DefaultTTL             = 5 * time.Minute
	DefaultCleanupInterval = 10 * time.Minute
)

// Checker resolves an actor's effective permissions with an in-memory cache
// in front of the permission service. Single-instance only; a shared cache
// (Redis) would be needed for horizontal scaling.
type Checker struct {
	perms  shopwrench.PermissionService
	cache  *cache.Cache
	logger *slog.Logger
}

// NewChecker creates a Checker with the given TTL. A zero ttl uses the
// default.
func NewChecker(perms shopwrench.PermissionService, logger *slog.Logger, ttl time.Duration) *Checker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Checker{
		perms:  perms,
		cache:  cache.New(ttl, DefaultCleanupInterval),
		logger: logger.With(slog.String("component", "authz")),
	}
}

// cacheKey scopes entries to (user, role) so a role change never serves the
// old role's set, even when the corresponding Invalidate call is missed.
func cacheKey(actor shopwrench.Actor) string {
	return actor.UserID.String() + ":" + string(actor.Role)
}

// Effective returns the actor's effective permission set, cached per
// (user, role). The cached set is shared, not copied; callers must treat it
// as read-only.
func (c *Checker) Effective(ctx context.Context, actor shopwrench.Actor) (shopwrench.PermissionSet, error) {
	key := cacheKey(actor)
	if cached, found := c.cache.Get(key); found {
		return cached.(shopwrench.PermissionSet), nil
	}

	set, err := c.perms.ResolvePermissions(ctx, actor.UserID, actor.Role)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, set, cache.DefaultExpiration)
	return set, nil
}

// Check returns nil if the actor holds the permission and EFORBIDDEN
// otherwise. Resolution failures fall closed.
func (c *Checker) Check(ctx context.Context, actor shopwrench.Actor, p shopwrench.Permission) error {
	set, err := c.Effective(ctx, actor)
	if err != nil {
		c.logger.ErrorContext(ctx, "permission resolution failed, denying",
			slog.String("user_id", actor.UserID.String()),
			slog.String("permission", p.Name()),
			slog.Any("error", err))
		return shopwrench.Forbidden("permission check failed")
	}
	if !set.Has(p) {
		return shopwrench.Forbidden("missing permission %s", p.Name())
	}
	return nil
}

// Invalidate drops the cached sets for one user across all roles. Call after
// creating or deleting a permission override for that user.
func (c *Checker) Invalidate(userID uuid.UUID) {
	prefix := userID.String() + ":"
	for key := range c.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			c.cache.Delete(key)
		}
	}
}

// Clear flushes the whole cache. Call after editing role permission
// mappings, which affect every user with that role.
func (c *Checker) Clear() {
	c.cache.Flush()
}

// Items reports the number of cached permission sets, for health output.
func (c *Checker) Items() int {
	return c.cache.ItemCount()
}
