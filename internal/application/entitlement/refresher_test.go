package entitlement

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholara/internal/domain/catalog"
	"scholara/internal/domain/entitlement"
	"scholara/internal/domain/subscription"
	"scholara/internal/infrastructure/cache"
	"scholara/internal/shared/logger"
)

type refresherFixture struct {
	refresher  *Refresher
	projection *fakeProjectionStore
	subs       *fakeSubscriptionStore
	plans      *fakePlanStore
	grants     *fakeGrantStore
	cache      *cache.EntitlementCache
	publisher  *fakePublisher
}

func newRefresherFixture(t *testing.T) *refresherFixture {
	t.Helper()

	projection := newFakeProjectionStore()
	subs := &fakeSubscriptionStore{byTenant: make(map[uint][]*subscription.Subscription)}
	plans := &fakePlanStore{byID: make(map[uint]*subscription.Plan)}
	grants := &fakeGrantStore{bySubscription: make(map[uint][]*subscription.ModuleGrant)}
	entCache := cache.NewEntitlementCache()
	publisher := &fakePublisher{}

	r := NewRefresher(subs, plans, grants, projection, &fakeTxRunner{}, entCache, publisher, logger.NewLogger())

	return &refresherFixture{
		refresher:  r,
		projection: projection,
		subs:       subs,
		plans:      plans,
		grants:     grants,
		cache:      entCache,
		publisher:  publisher,
	}
}

func (f *refresherFixture) addPlan(t *testing.T, planID uint, modules ...catalog.ModuleID) *subscription.Plan {
	t.Helper()
	plan, err := subscription.NewPlan("Test Plan", "test-plan", "", modules)
	require.NoError(t, err)
	require.NoError(t, plan.SetID(planID))
	f.plans.byID[planID] = plan
	return plan
}

func (f *refresherFixture) addPredefined(t *testing.T, subID, tenantID, planID uint, endDate *time.Time) *subscription.Subscription {
	t.Helper()
	sub, err := subscription.NewPredefinedSubscription(tenantID, planID, time.Now().UTC().AddDate(0, 0, -30), endDate, 0, "USD")
	require.NoError(t, err)
	require.NoError(t, sub.SetID(subID))
	f.subs.byTenant[tenantID] = append(f.subs.byTenant[tenantID], sub)
	return sub
}

func (f *refresherFixture) addCustom(t *testing.T, subID, tenantID uint, granted ...catalog.ModuleID) *subscription.Subscription {
	t.Helper()
	sub, err := subscription.NewCustomSubscription(tenantID, time.Now().UTC().AddDate(0, 0, -30), nil, 0, "USD")
	require.NoError(t, err)
	require.NoError(t, sub.SetID(subID))
	f.subs.byTenant[tenantID] = append(f.subs.byTenant[tenantID], sub)

	for i, moduleID := range granted {
		grant, err := subscription.NewModuleGrant(subID, moduleID, nil)
		require.NoError(t, err)
		require.NoError(t, grant.SetID(uint(100+i)))
		f.grants.bySubscription[subID] = append(f.grants.bySubscription[subID], grant)
	}
	return sub
}

func TestRebuildTenantScopeExpandsPlan(t *testing.T) {
	f := newRefresherFixture(t)
	f.addPlan(t, 10, catalog.ModuleEnrollment, catalog.ModuleFinance)
	f.addPredefined(t, 1, 1, 10, nil)

	tenantID := uint(1)
	require.NoError(t, f.refresher.Rebuild(context.Background(), &tenantID))

	assert.Equal(t, []uint{1}, f.projection.deletedTenants)
	assert.False(t, f.projection.deletedAll)

	var modules []catalog.ModuleID
	for _, row := range f.projection.inserted {
		assert.Equal(t, uint(1), row.TenantID)
		assert.True(t, row.IsActive)
		modules = append(modules, row.ModuleID)
	}
	assert.ElementsMatch(t,
		[]catalog.ModuleID{catalog.ModuleCore, catalog.ModuleEnrollment, catalog.ModuleFinance},
		modules)
}

func TestRebuildAllScope(t *testing.T) {
	f := newRefresherFixture(t)
	f.addPlan(t, 10, catalog.ModuleEnrollment)
	f.addPredefined(t, 1, 1, 10, nil)
	f.addCustom(t, 2, 2, catalog.ModuleCore, catalog.ModuleInventory)

	require.NoError(t, f.refresher.Rebuild(context.Background(), nil))

	assert.True(t, f.projection.deletedAll)

	tenants := make(map[uint]bool)
	for _, row := range f.projection.inserted {
		tenants[row.TenantID] = true
	}
	assert.True(t, tenants[1])
	assert.True(t, tenants[2])
}

func TestRebuildCustomSubscriptionSkipsRevoked(t *testing.T) {
	f := newRefresherFixture(t)
	f.addCustom(t, 1, 1, catalog.ModuleCore, catalog.ModuleFinance, catalog.ModuleInventory)

	revokedBy := uint(9)
	require.NoError(t, f.grants.bySubscription[1][2].Revoke(&revokedBy))

	tenantID := uint(1)
	require.NoError(t, f.refresher.Rebuild(context.Background(), &tenantID))

	var modules []catalog.ModuleID
	for _, row := range f.projection.inserted {
		modules = append(modules, row.ModuleID)
	}
	assert.ElementsMatch(t, []catalog.ModuleID{catalog.ModuleCore, catalog.ModuleFinance}, modules)
}

func TestRebuildExpiredSubscriptionRowsInactive(t *testing.T) {
	f := newRefresherFixture(t)
	f.addPlan(t, 10, catalog.ModuleEnrollment)
	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	f.addPredefined(t, 1, 1, 10, &yesterday)

	tenantID := uint(1)
	require.NoError(t, f.refresher.Rebuild(context.Background(), &tenantID))

	require.NotEmpty(t, f.projection.inserted)
	for _, row := range f.projection.inserted {
		assert.False(t, row.IsActive)
	}
}

func TestRebuildSkipsSubscriptionWithMissingPlan(t *testing.T) {
	f := newRefresherFixture(t)
	f.addPredefined(t, 1, 1, 99, nil)

	tenantID := uint(1)
	require.NoError(t, f.refresher.Rebuild(context.Background(), &tenantID))

	assert.Empty(t, f.projection.inserted)
}

func TestRefreshInvalidatesLocalAndRemote(t *testing.T) {
	f := newRefresherFixture(t)
	f.addPlan(t, 10, catalog.ModuleEnrollment)
	f.addPredefined(t, 1, 1, 10, nil)

	gen := f.cache.Generation(1)
	f.cache.Put(1, gen, []catalog.ModuleID{catalog.ModuleCore})
	_, ok := f.cache.TryGet(1)
	require.True(t, ok)

	tenantID := uint(1)
	require.NoError(t, f.refresher.Refresh(context.Background(), &tenantID))

	_, ok = f.cache.TryGet(1)
	assert.False(t, ok, "local cache entry must be dropped")

	require.Len(t, f.publisher.scopes, 1)
	require.NotNil(t, f.publisher.scopes[0])
	assert.Equal(t, uint(1), *f.publisher.scopes[0])
}

func TestRefreshTwiceYieldsSameRows(t *testing.T) {
	f := newRefresherFixture(t)
	f.addPlan(t, 10, catalog.ModuleEnrollment, catalog.ModuleFinance)
	f.addPredefined(t, 1, 1, 10, nil)
	f.addCustom(t, 2, 1, catalog.ModuleInventory)

	tenantID := uint(1)
	require.NoError(t, f.refresher.Refresh(context.Background(), &tenantID))
	first := projectedRows(f.projection.rows[1])
	require.NotEmpty(t, first)

	require.NoError(t, f.refresher.Refresh(context.Background(), &tenantID))
	second := projectedRows(f.projection.rows[1])

	assert.ElementsMatch(t, first, second,
		"a second refresh with no intervening change must materialize the same rows")
}

// projectedRows strips the rebuild timestamps so two materializations of the
// same state compare equal.
func projectedRows(rows []entitlement.TenantModule) [][4]any {
	out := make([][4]any, 0, len(rows))
	for _, row := range rows {
		out = append(out, [4]any{row.TenantID, row.ModuleID, row.SubscriptionID, row.IsActive})
	}
	return out
}

func TestInvalidateScopePublishFailureIsNonFatal(t *testing.T) {
	f := newRefresherFixture(t)
	f.publisher.err = assert.AnError

	gen := f.cache.Generation(4)
	f.cache.Put(4, gen, []catalog.ModuleID{catalog.ModuleCore})

	tenantID := uint(4)
	f.refresher.InvalidateScope(context.Background(), &tenantID)

	_, ok := f.cache.TryGet(4)
	assert.False(t, ok)
}
