package entitlement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholara/internal/domain/catalog"
	domainent "scholara/internal/domain/entitlement"
	"scholara/internal/domain/subscription"
	"scholara/internal/domain/tenant"
	"scholara/internal/infrastructure/cache"
	"scholara/internal/shared/config"
	"scholara/internal/shared/logger"
)

type serviceFixture struct {
	service    *Service
	cache      *cache.EntitlementCache
	projection *fakeProjectionStore
	tenants    *fakeTenantStore
	subs       *fakeSubscriptionStore
	refresher  *fakeRefresher
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	projection := newFakeProjectionStore()
	tenants := &fakeTenantStore{byEmail: make(map[string]*tenant.Tenant)}
	subs := &fakeSubscriptionStore{byTenant: make(map[uint][]*subscription.Subscription)}
	plans := &fakePlanStore{byID: make(map[uint]*subscription.Plan)}
	grants := &fakeGrantStore{bySubscription: make(map[uint][]*subscription.ModuleGrant)}
	refresher := &fakeRefresher{}

	log := logger.NewLogger()
	resolver := domainent.NewResolver(subs, plans, grants, log)
	entCache := cache.NewEntitlementCache()

	svc := NewService(entCache, projection, tenants, resolver, refresher, config.EntitlementConfig{
		PopulateQueueSize: 8,
		PopulateWorkers:   1,
	}, log)
	t.Cleanup(svc.Close)

	return &serviceFixture{
		service:    svc,
		cache:      entCache,
		projection: projection,
		tenants:    tenants,
		subs:       subs,
		refresher:  refresher,
	}
}

func activeRow(tenantID uint, moduleID catalog.ModuleID) domainent.TenantModule {
	now := time.Now().UTC()
	return domainent.TenantModule{
		TenantID:       tenantID,
		ModuleID:       moduleID,
		SubscriptionID: 1,
		GrantedAt:      now,
		IsActive:       true,
		UpdatedAt:      now,
	}
}

func TestResolveModulesFromProjection(t *testing.T) {
	f := newServiceFixture(t)
	f.projection.rows[1] = []domainent.TenantModule{
		activeRow(1, catalog.ModuleEnrollment),
		activeRow(1, catalog.ModuleFinance),
	}

	modules := f.service.ResolveModules(context.Background(), 1)

	assert.ElementsMatch(t,
		[]catalog.ModuleID{catalog.ModuleCore, catalog.ModuleEnrollment, catalog.ModuleFinance},
		modules)
}

func TestResolveModulesServesFromCache(t *testing.T) {
	f := newServiceFixture(t)
	f.projection.rows[1] = []domainent.TenantModule{activeRow(1, catalog.ModuleEnrollment)}

	first := f.service.ResolveModules(context.Background(), 1)
	require.Contains(t, first, catalog.ModuleEnrollment)

	// The store is now broken; the cache must still answer.
	f.projection.listErr = errors.New("connection refused")

	second := f.service.ResolveModules(context.Background(), 1)
	assert.ElementsMatch(t, first, second)
}

func TestResolveModulesEmptyProjectionDegradesToCore(t *testing.T) {
	f := newServiceFixture(t)
	f.refresher.refreshedCh = make(chan struct{}, 1)

	modules := f.service.ResolveModules(context.Background(), 7)

	assert.Equal(t, []catalog.ModuleID{catalog.ModuleCore}, modules)

	// The empty projection schedules a background repair.
	select {
	case <-f.refresher.refreshedCh:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a projection repair to be scheduled")
	}
}

func TestResolveModulesStoreErrorFailsClosed(t *testing.T) {
	f := newServiceFixture(t)
	f.projection.listErr = errors.New("timeout")

	modules := f.service.ResolveModules(context.Background(), 1)

	assert.Equal(t, []catalog.ModuleID{catalog.ModuleCore}, modules)
	assert.Zero(t, f.cache.Len(), "a degraded answer must not be cached")
}

func TestResolvePermissionsFlattensModules(t *testing.T) {
	f := newServiceFixture(t)
	f.projection.rows[1] = []domainent.TenantModule{activeRow(1, catalog.ModuleFinance)}

	perms := f.service.ResolvePermissions(context.Background(), 1)

	assert.Contains(t, perms, "fees.view")
	assert.Contains(t, perms, "dashboard.view")
	assert.NotContains(t, perms, "students.manage")
}

func TestHasModuleCoreAlwaysGranted(t *testing.T) {
	f := newServiceFixture(t)
	f.projection.hasErr = errors.New("down")

	assert.True(t, f.service.HasModule(context.Background(), 1, catalog.ModuleCore))
}

func TestHasModuleUnknownModuleDenied(t *testing.T) {
	f := newServiceFixture(t)
	f.projection.rows[1] = []domainent.TenantModule{activeRow(1, catalog.ModuleEnrollment)}

	assert.False(t, f.service.HasModule(context.Background(), 1, catalog.ModuleID("transport")))
}

func TestHasModuleProjectionLookup(t *testing.T) {
	f := newServiceFixture(t)
	f.projection.rows[1] = []domainent.TenantModule{activeRow(1, catalog.ModuleHRPayroll)}

	assert.True(t, f.service.HasModule(context.Background(), 1, catalog.ModuleHRPayroll))
	assert.False(t, f.service.HasModule(context.Background(), 1, catalog.ModuleInventory))
}

func TestHasModuleMissSchedulesPopulation(t *testing.T) {
	f := newServiceFixture(t)
	f.projection.rows[2] = []domainent.TenantModule{activeRow(2, catalog.ModuleFinance)}

	assert.True(t, f.service.HasModule(context.Background(), 2, catalog.ModuleFinance))

	// The miss kicked off a background population; once it lands the cache
	// answers without touching the store.
	assert.Eventually(t, func() bool {
		_, ok := f.cache.TryGet(2)
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	f.projection.hasErr = errors.New("down")
	assert.True(t, f.service.HasModule(context.Background(), 2, catalog.ModuleFinance))
}

func TestHasModuleLookupErrorFailsClosed(t *testing.T) {
	f := newServiceFixture(t)
	f.projection.hasErr = errors.New("timeout")

	assert.False(t, f.service.HasModule(context.Background(), 1, catalog.ModuleFinance))
}

func TestHasPermissionCoreAlwaysGranted(t *testing.T) {
	f := newServiceFixture(t)
	f.projection.hasErr = errors.New("down")

	assert.True(t, f.service.HasPermission(context.Background(), 1, "dashboard.view"))
}

func TestHasPermissionMapsToGrantingPackage(t *testing.T) {
	f := newServiceFixture(t)
	f.projection.rows[1] = []domainent.TenantModule{activeRow(1, catalog.ModuleFinance)}

	assert.True(t, f.service.HasPermission(context.Background(), 1, "fees.collect"))
	assert.False(t, f.service.HasPermission(context.Background(), 1, "students.manage"))
	assert.False(t, f.service.HasPermission(context.Background(), 1, "no.such.permission"))
}

func TestResolveModulesByEmail(t *testing.T) {
	f := newServiceFixture(t)

	owner, err := tenant.NewTenant("Hillcrest Academy", "admin@hillcrest.test")
	require.NoError(t, err)
	require.NoError(t, owner.SetID(3))
	f.tenants.byEmail[owner.Email()] = owner
	f.projection.rows[3] = []domainent.TenantModule{activeRow(3, catalog.ModuleInventory)}

	modules := f.service.ResolveModulesByEmail(context.Background(), "admin@hillcrest.test")
	assert.Contains(t, modules, catalog.ModuleInventory)

	modules = f.service.ResolveModulesByEmail(context.Background(), "nobody@hillcrest.test")
	assert.Equal(t, []catalog.ModuleID{catalog.ModuleCore}, modules)
}

func TestByEmailLookupFailureFailsClosed(t *testing.T) {
	f := newServiceFixture(t)
	f.tenants.err = errors.New("down")

	assert.Equal(t, []catalog.ModuleID{catalog.ModuleCore},
		f.service.ResolveModulesByEmail(context.Background(), "admin@hillcrest.test"))
	assert.False(t, f.service.HasModuleByEmail(context.Background(), "admin@hillcrest.test", catalog.ModuleFinance))
	assert.True(t, f.service.HasModuleByEmail(context.Background(), "admin@hillcrest.test", catalog.ModuleCore))
	assert.True(t, f.service.HasPermissionByEmail(context.Background(), "admin@hillcrest.test", "profile.view"))
	assert.False(t, f.service.HasPermissionByEmail(context.Background(), "admin@hillcrest.test", "fees.view"))
}

func TestInvalidateDelegatesToRefresher(t *testing.T) {
	f := newServiceFixture(t)

	f.service.Invalidate(context.Background(), 5)
	f.service.InvalidateAll(context.Background())

	require.Len(t, f.refresher.invalidated, 2)
	require.NotNil(t, f.refresher.invalidated[0])
	assert.Equal(t, uint(5), *f.refresher.invalidated[0])
	assert.Nil(t, f.refresher.invalidated[1])
}
