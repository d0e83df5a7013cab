package entitlement

import (
	"context"
	"sync"

	"scholara/internal/domain/catalog"
	"scholara/internal/domain/entitlement"
	"scholara/internal/domain/subscription"
	"scholara/internal/domain/tenant"
)

type fakeSubscriptionStore struct {
	byTenant map[uint][]*subscription.Subscription
	err      error
}

func (f *fakeSubscriptionStore) Create(ctx context.Context, sub *subscription.Subscription) error {
	return nil
}

func (f *fakeSubscriptionStore) Update(ctx context.Context, sub *subscription.Subscription) error {
	return nil
}

func (f *fakeSubscriptionStore) GetByID(ctx context.Context, id uint) (*subscription.Subscription, error) {
	return nil, nil
}

func (f *fakeSubscriptionStore) GetBySID(ctx context.Context, sid string) (*subscription.Subscription, error) {
	return nil, nil
}

func (f *fakeSubscriptionStore) ListActiveByTenant(ctx context.Context, tenantID uint) ([]*subscription.Subscription, error) {
	if f.err != nil {
		return nil, f.err
	}
	var active []*subscription.Subscription
	for _, sub := range f.byTenant[tenantID] {
		if sub.Status().CanUseService() {
			active = append(active, sub)
		}
	}
	return active, nil
}

func (f *fakeSubscriptionStore) ListByTenant(ctx context.Context, tenantID uint) ([]*subscription.Subscription, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byTenant[tenantID], nil
}

func (f *fakeSubscriptionStore) ListAll(ctx context.Context) ([]*subscription.Subscription, error) {
	if f.err != nil {
		return nil, f.err
	}
	var all []*subscription.Subscription
	for _, subs := range f.byTenant {
		all = append(all, subs...)
	}
	return all, nil
}

type fakePlanStore struct {
	byID map[uint]*subscription.Plan
	err  error
}

func (f *fakePlanStore) Create(ctx context.Context, plan *subscription.Plan) error { return nil }
func (f *fakePlanStore) Update(ctx context.Context, plan *subscription.Plan) error { return nil }

func (f *fakePlanStore) GetByID(ctx context.Context, planID uint) (*subscription.Plan, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byID[planID], nil
}

func (f *fakePlanStore) GetBySID(ctx context.Context, sid string) (*subscription.Plan, error) {
	return nil, nil
}

func (f *fakePlanStore) GetBySlug(ctx context.Context, slug string) (*subscription.Plan, error) {
	return nil, nil
}

func (f *fakePlanStore) ListActive(ctx context.Context) ([]*subscription.Plan, error) {
	return nil, nil
}

func (f *fakePlanStore) List(ctx context.Context) ([]*subscription.Plan, error) { return nil, nil }

type fakeGrantStore struct {
	bySubscription map[uint][]*subscription.ModuleGrant
	err            error
}

func (f *fakeGrantStore) Create(ctx context.Context, grant *subscription.ModuleGrant) error {
	return nil
}

func (f *fakeGrantStore) Update(ctx context.Context, grant *subscription.ModuleGrant) error {
	return nil
}

func (f *fakeGrantStore) GetBySubscriptionAndModule(ctx context.Context, subscriptionID uint, moduleID catalog.ModuleID) (*subscription.ModuleGrant, error) {
	for _, g := range f.bySubscription[subscriptionID] {
		if g.ModuleID() == moduleID {
			return g, nil
		}
	}
	return nil, nil
}

func (f *fakeGrantStore) ListBySubscription(ctx context.Context, subscriptionID uint) ([]*subscription.ModuleGrant, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.bySubscription[subscriptionID], nil
}

func (f *fakeGrantStore) ListGrantedBySubscription(ctx context.Context, subscriptionID uint) ([]*subscription.ModuleGrant, error) {
	if f.err != nil {
		return nil, f.err
	}
	var granted []*subscription.ModuleGrant
	for _, g := range f.bySubscription[subscriptionID] {
		if !g.IsRevoked() {
			granted = append(granted, g)
		}
	}
	return granted, nil
}

type fakeProjectionStore struct {
	mu   sync.Mutex
	rows map[uint][]entitlement.TenantModule

	listErr   error
	hasErr    error
	deleteErr error
	insertErr error

	deletedTenants []uint
	deletedAll     bool
	inserted       []entitlement.TenantModule
}

func newFakeProjectionStore() *fakeProjectionStore {
	return &fakeProjectionStore{rows: make(map[uint][]entitlement.TenantModule)}
}

func (f *fakeProjectionStore) DeleteByTenant(ctx context.Context, tenantID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedTenants = append(f.deletedTenants, tenantID)
	delete(f.rows, tenantID)
	return nil
}

func (f *fakeProjectionStore) DeleteAll(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedAll = true
	f.rows = make(map[uint][]entitlement.TenantModule)
	return nil
}

func (f *fakeProjectionStore) BulkInsert(ctx context.Context, rows []entitlement.TenantModule) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, rows...)
	for _, row := range rows {
		f.rows[row.TenantID] = append(f.rows[row.TenantID], row)
	}
	return nil
}

func (f *fakeProjectionStore) ListActiveByTenant(ctx context.Context, tenantID uint) ([]entitlement.TenantModule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var active []entitlement.TenantModule
	for _, row := range f.rows[tenantID] {
		if row.IsActive {
			active = append(active, row)
		}
	}
	return active, nil
}

func (f *fakeProjectionStore) HasActiveModule(ctx context.Context, tenantID uint, moduleID catalog.ModuleID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hasErr != nil {
		return false, f.hasErr
	}
	for _, row := range f.rows[tenantID] {
		if row.IsActive && row.ModuleID == moduleID {
			return true, nil
		}
	}
	return false, nil
}

type fakeTenantStore struct {
	byEmail map[string]*tenant.Tenant
	err     error
}

func (f *fakeTenantStore) Create(ctx context.Context, t *tenant.Tenant) error { return nil }

func (f *fakeTenantStore) GetByID(ctx context.Context, tenantID uint) (*tenant.Tenant, error) {
	return nil, nil
}

func (f *fakeTenantStore) GetBySID(ctx context.Context, sid string) (*tenant.Tenant, error) {
	return nil, nil
}

func (f *fakeTenantStore) GetByEmail(ctx context.Context, email string) (*tenant.Tenant, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byEmail[email], nil
}

func (f *fakeTenantStore) ListIDs(ctx context.Context) ([]uint, error) { return nil, nil }

type fakeTxRunner struct {
	err error
}

func (f *fakeTxRunner) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(ctx)
}

type fakePublisher struct {
	mu     sync.Mutex
	scopes []*uint
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, tenantID *uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.scopes = append(f.scopes, tenantID)
	return nil
}

type fakeRefresher struct {
	mu          sync.Mutex
	refreshed   []*uint
	invalidated []*uint
	refreshErr  error
	refreshedCh chan struct{}
}

func (f *fakeRefresher) Refresh(ctx context.Context, tenantID *uint) error {
	f.mu.Lock()
	f.refreshed = append(f.refreshed, tenantID)
	ch := f.refreshedCh
	f.mu.Unlock()
	if ch != nil {
		ch <- struct{}{}
	}
	return f.refreshErr
}

func (f *fakeRefresher) InvalidateScope(ctx context.Context, tenantID *uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, tenantID)
}

func (f *fakeRefresher) refreshCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.refreshed)
}
