package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholara/internal/domain/catalog"
)

func newTestCache(ttl time.Duration) (*EntitlementCache, *time.Time) {
	c := NewEntitlementCacheWithTTL(ttl)
	now := time.Now()
	c.now = func() time.Time { return now }
	return c, &now
}

func TestPutAndTryGet(t *testing.T) {
	c, _ := newTestCache(5 * time.Minute)

	gen := c.Generation(1)
	require.True(t, c.Put(1, gen, []catalog.ModuleID{catalog.ModuleFinance}))

	entry, ok := c.TryGet(1)
	require.True(t, ok)
	assert.Equal(t, uint(1), entry.TenantID)
	assert.Contains(t, entry.Modules, catalog.ModuleCore, "core always cached")
	assert.Contains(t, entry.Modules, catalog.ModuleFinance)
	assert.Contains(t, entry.Permissions, "fees.view", "permissions derived from catalog")
	assert.Contains(t, entry.Permissions, "dashboard.view")
	assert.Equal(t, entry.CachedAt.Add(5*time.Minute), entry.ExpiresAt)
}

func TestTryGet_MissingTenant(t *testing.T) {
	c, _ := newTestCache(5 * time.Minute)
	_, ok := c.TryGet(99)
	assert.False(t, ok)
}

func TestTryGet_ExpiredBehavesAsAbsent(t *testing.T) {
	c, now := newTestCache(5 * time.Minute)

	require.True(t, c.Put(1, c.Generation(1), []catalog.ModuleID{catalog.ModuleFinance}))

	*now = now.Add(5*time.Minute + time.Second)

	_, ok := c.TryGet(1)
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len(), "expired entry stays until swept")
}

func TestInvalidate_RemovesEntry(t *testing.T) {
	c, _ := newTestCache(5 * time.Minute)

	require.True(t, c.Put(1, c.Generation(1), nil))
	c.Invalidate(1)

	_, ok := c.TryGet(1)
	assert.False(t, ok)
}

func TestPut_StaleGenerationDiscarded(t *testing.T) {
	c, _ := newTestCache(5 * time.Minute)

	// A slow population snapshots the generation, then an invalidation lands
	// before it writes.
	gen := c.Generation(1)
	c.Invalidate(1)

	applied := c.Put(1, gen, []catalog.ModuleID{catalog.ModuleFinance})
	assert.False(t, applied, "write with stale generation must be discarded")

	_, ok := c.TryGet(1)
	assert.False(t, ok)

	// A fresh snapshot succeeds.
	assert.True(t, c.Put(1, c.Generation(1), []catalog.ModuleID{catalog.ModuleFinance}))
	_, ok = c.TryGet(1)
	assert.True(t, ok)
}

func TestInvalidateAll(t *testing.T) {
	c, _ := newTestCache(5 * time.Minute)

	gen1, gen2 := c.Generation(1), c.Generation(2)
	require.True(t, c.Put(1, gen1, nil))
	require.True(t, c.Put(2, gen2, nil))

	c.InvalidateAll()

	assert.Equal(t, 0, c.Len())
	assert.False(t, c.Put(1, gen1, nil), "pre-invalidation generation rejected")
	assert.False(t, c.Put(2, gen2, nil))
}

func TestInvalidateAll_CoversUncachedTenants(t *testing.T) {
	c, _ := newTestCache(5 * time.Minute)

	// A background population snapshots the generation of a tenant that has
	// no entry yet, then a global invalidation lands before it writes.
	gen := c.Generation(42)
	c.InvalidateAll()

	applied := c.Put(42, gen, []catalog.ModuleID{catalog.ModuleFinance})
	assert.False(t, applied, "write predating the global invalidation must be discarded")

	_, ok := c.TryGet(42)
	assert.False(t, ok)

	// A snapshot taken after the invalidation still goes through.
	assert.True(t, c.Put(42, c.Generation(42), []catalog.ModuleID{catalog.ModuleFinance}))
}

func TestSweepExpired(t *testing.T) {
	c, now := newTestCache(5 * time.Minute)

	require.True(t, c.Put(1, c.Generation(1), nil))
	*now = now.Add(3 * time.Minute)
	require.True(t, c.Put(2, c.Generation(2), nil))

	*now = now.Add(2*time.Minute + time.Second) // tenant 1 expired, tenant 2 not

	removed := c.SweepExpired()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, c.Len())

	_, ok := c.TryGet(2)
	assert.True(t, ok)
}

func TestConcurrentAccess(t *testing.T) {
	c := NewEntitlementCache()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(tenantID uint) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				gen := c.Generation(tenantID)
				c.Put(tenantID, gen, []catalog.ModuleID{catalog.ModuleFinance})
				c.TryGet(tenantID)
				if j%50 == 0 {
					c.Invalidate(tenantID)
				}
			}
		}(uint(i % 4))
	}
	wg.Wait()
}
