package cache

import (
	"sync"
	"time"

	"scholara/internal/domain/catalog"
	"scholara/internal/domain/entitlement"
)

// DefaultEntitlementTTL bounds the staleness window of a cache entry. It is
// deliberately short: a revoked module must become invisible within this
// window even if an invalidation call is missed.
const DefaultEntitlementTTL = 5 * time.Minute

// EntitlementCache is the in-process, TTL-based cache of resolved tenant
// entitlements. It is safe for concurrent use; the single mutex is held only
// for map operations, never across I/O.
//
// Each tenant carries a monotonic generation counter, and the cache carries a
// global epoch covering tenants that have never been cached. The generation a
// caller observes is the sum of the two; both only ever increase. Writes carry
// the generation observed before the underlying store reads started, and a
// write whose generation is stale is discarded, so an in-flight population
// cannot resurrect data invalidated while it was being resolved. This holds
// for global invalidation too: InvalidateAll advances the epoch, which moves
// every tenant's generation whether or not an entry exists for it.
//
// Construct one instance at process start and inject it everywhere a shared
// cache is needed; there is no package-level singleton.
type EntitlementCache struct {
	mu          sync.Mutex
	entries     map[uint]*entitlement.CachedEntitlement
	generations map[uint]uint64
	epoch       uint64
	ttl         time.Duration
	now         func() time.Time
}

// NewEntitlementCache creates a cache with the default TTL.
func NewEntitlementCache() *EntitlementCache {
	return NewEntitlementCacheWithTTL(DefaultEntitlementTTL)
}

// NewEntitlementCacheWithTTL creates a cache with a custom TTL.
func NewEntitlementCacheWithTTL(ttl time.Duration) *EntitlementCache {
	return &EntitlementCache{
		entries:     make(map[uint]*entitlement.CachedEntitlement),
		generations: make(map[uint]uint64),
		ttl:         ttl,
		now:         time.Now,
	}
}

// TryGet returns the cached entry for the tenant, or (nil, false) when the
// entry is absent or past its TTL. Expired entries behave exactly like absent
// ones; removal is left to SweepExpired.
func (c *EntitlementCache) TryGet(tenantID uint) (*entitlement.CachedEntitlement, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[tenantID]
	if !ok || entry.IsExpired(c.now()) {
		return nil, false
	}
	return entry, true
}

// Generation returns the tenant's current generation. Callers snapshot it
// before starting store reads and pass it back to Put.
func (c *EntitlementCache) Generation(tenantID uint) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch + c.generations[tenantID]
}

// Put stores the resolved module set for the tenant, deriving permissions
// from the catalog. The write is discarded when the tenant's generation has
// moved past gen, meaning an invalidation happened after the caller read its
// snapshot. Returns whether the write was applied.
func (c *EntitlementCache) Put(tenantID uint, gen uint64, modules []catalog.ModuleID) bool {
	withCore := catalog.WithCore(modules)
	perms := catalog.PermissionsFor(withCore...)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epoch+c.generations[tenantID] != gen {
		return false
	}

	now := c.now()
	c.entries[tenantID] = &entitlement.CachedEntitlement{
		TenantID:    tenantID,
		Modules:     withCore,
		Permissions: perms,
		CachedAt:    now,
		ExpiresAt:   now.Add(c.ttl),
	}
	return true
}

// Invalidate removes the tenant's entry and bumps its generation so that
// stale in-flight writes are discarded.
func (c *EntitlementCache) Invalidate(tenantID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, tenantID)
	c.generations[tenantID]++
}

// InvalidateAll removes every entry and advances the global epoch, which
// invalidates the generation snapshot of every tenant, including tenants
// that have never had an entry.
func (c *EntitlementCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	c.entries = make(map[uint]*entitlement.CachedEntitlement)
}

// SweepExpired removes entries past their TTL and returns how many were
// dropped. Not required for correctness (TryGet already treats expired
// entries as absent), only for bounding memory.
func (c *EntitlementCache) SweepExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for tenantID, entry := range c.entries {
		if entry.IsExpired(now) {
			delete(c.entries, tenantID)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries currently held, expired or not.
func (c *EntitlementCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
