// Package entitlement computes and represents "what may this tenant do right
// now". It owns the slow-path resolver and the contracts for the materialized
// tenant_modules projection and the in-process cache.
package entitlement

import (
	"context"
	"time"

	"scholara/internal/domain/catalog"
)

// TenantModule is one row of the materialized per-tenant module projection.
// The projection is disposable: it is deleted and fully rebuilt from
// subscription state, never patched incrementally.
type TenantModule struct {
	TenantID       uint
	ModuleID       catalog.ModuleID
	SubscriptionID uint
	GrantedAt      time.Time
	IsActive       bool
	UpdatedAt      time.Time
}

// TenantModuleRepository is the persistence contract for the materialized
// projection.
type TenantModuleRepository interface {
	DeleteByTenant(ctx context.Context, tenantID uint) error
	DeleteAll(ctx context.Context) error
	BulkInsert(ctx context.Context, rows []TenantModule) error
	// ListActiveByTenant returns rows with is_active=true for the tenant.
	ListActiveByTenant(ctx context.Context, tenantID uint) ([]TenantModule, error)
	// HasActiveModule is a single indexed point lookup, cheap enough for the
	// synchronous capability-check path.
	HasActiveModule(ctx context.Context, tenantID uint, moduleID catalog.ModuleID) (bool, error)
}

// CachedEntitlement is one in-process cache entry: the resolved module set
// and derived permissions for a tenant, valid until ExpiresAt.
type CachedEntitlement struct {
	TenantID    uint
	Modules     []catalog.ModuleID
	Permissions []string
	CachedAt    time.Time
	ExpiresAt   time.Time
}

// HasModule reports whether the cached module set includes the given module.
func (c *CachedEntitlement) HasModule(moduleID catalog.ModuleID) bool {
	return catalog.Contains(c.Modules, moduleID)
}

// HasPermission reports whether the cached permission set includes perm.
func (c *CachedEntitlement) HasPermission(perm string) bool {
	for _, p := range c.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// IsExpired reports whether the entry has outlived its TTL at the given time.
func (c *CachedEntitlement) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
