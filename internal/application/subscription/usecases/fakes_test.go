package usecases

import (
	"context"

	"scholara/internal/domain/catalog"
	"scholara/internal/domain/subscription"
	"scholara/internal/domain/tenant"
)

type memSubscriptionRepo struct {
	subs   []*subscription.Subscription
	nextID uint
}

func (m *memSubscriptionRepo) Create(ctx context.Context, sub *subscription.Subscription) error {
	m.nextID++
	if err := sub.SetID(m.nextID); err != nil {
		return err
	}
	m.subs = append(m.subs, sub)
	return nil
}

func (m *memSubscriptionRepo) Update(ctx context.Context, sub *subscription.Subscription) error {
	return nil
}

func (m *memSubscriptionRepo) GetByID(ctx context.Context, id uint) (*subscription.Subscription, error) {
	for _, s := range m.subs {
		if s.ID() == id {
			return s, nil
		}
	}
	return nil, nil
}

func (m *memSubscriptionRepo) GetBySID(ctx context.Context, sid string) (*subscription.Subscription, error) {
	for _, s := range m.subs {
		if s.SID() == sid {
			return s, nil
		}
	}
	return nil, nil
}

func (m *memSubscriptionRepo) ListActiveByTenant(ctx context.Context, tenantID uint) ([]*subscription.Subscription, error) {
	var active []*subscription.Subscription
	for _, s := range m.subs {
		if s.TenantID() == tenantID && s.Status().CanUseService() {
			active = append(active, s)
		}
	}
	return active, nil
}

func (m *memSubscriptionRepo) ListByTenant(ctx context.Context, tenantID uint) ([]*subscription.Subscription, error) {
	var out []*subscription.Subscription
	for _, s := range m.subs {
		if s.TenantID() == tenantID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memSubscriptionRepo) ListAll(ctx context.Context) ([]*subscription.Subscription, error) {
	return m.subs, nil
}

type memPlanRepo struct {
	plans  []*subscription.Plan
	nextID uint
}

func (m *memPlanRepo) Create(ctx context.Context, plan *subscription.Plan) error {
	m.nextID++
	if err := plan.SetID(m.nextID); err != nil {
		return err
	}
	m.plans = append(m.plans, plan)
	return nil
}

func (m *memPlanRepo) Update(ctx context.Context, plan *subscription.Plan) error { return nil }

func (m *memPlanRepo) GetByID(ctx context.Context, planID uint) (*subscription.Plan, error) {
	for _, p := range m.plans {
		if p.ID() == planID {
			return p, nil
		}
	}
	return nil, nil
}

func (m *memPlanRepo) GetBySID(ctx context.Context, sid string) (*subscription.Plan, error) {
	for _, p := range m.plans {
		if p.SID() == sid {
			return p, nil
		}
	}
	return nil, nil
}

func (m *memPlanRepo) GetBySlug(ctx context.Context, slug string) (*subscription.Plan, error) {
	for _, p := range m.plans {
		if p.Slug() == slug {
			return p, nil
		}
	}
	return nil, nil
}

func (m *memPlanRepo) ListActive(ctx context.Context) ([]*subscription.Plan, error) {
	var out []*subscription.Plan
	for _, p := range m.plans {
		if p.IsActive() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPlanRepo) List(ctx context.Context) ([]*subscription.Plan, error) {
	return m.plans, nil
}

type memGrantRepo struct {
	grants []*subscription.ModuleGrant
	nextID uint
}

func (m *memGrantRepo) Create(ctx context.Context, grant *subscription.ModuleGrant) error {
	m.nextID++
	if err := grant.SetID(m.nextID); err != nil {
		return err
	}
	m.grants = append(m.grants, grant)
	return nil
}

func (m *memGrantRepo) Update(ctx context.Context, grant *subscription.ModuleGrant) error {
	return nil
}

func (m *memGrantRepo) GetBySubscriptionAndModule(ctx context.Context, subscriptionID uint, moduleID catalog.ModuleID) (*subscription.ModuleGrant, error) {
	for _, g := range m.grants {
		if g.SubscriptionID() == subscriptionID && g.ModuleID() == moduleID {
			return g, nil
		}
	}
	return nil, nil
}

func (m *memGrantRepo) ListBySubscription(ctx context.Context, subscriptionID uint) ([]*subscription.ModuleGrant, error) {
	var out []*subscription.ModuleGrant
	for _, g := range m.grants {
		if g.SubscriptionID() == subscriptionID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *memGrantRepo) ListGrantedBySubscription(ctx context.Context, subscriptionID uint) ([]*subscription.ModuleGrant, error) {
	var out []*subscription.ModuleGrant
	for _, g := range m.grants {
		if g.SubscriptionID() == subscriptionID && !g.IsRevoked() {
			out = append(out, g)
		}
	}
	return out, nil
}

type memTenantRepo struct {
	tenants []*tenant.Tenant
	nextID  uint
}

func (m *memTenantRepo) Create(ctx context.Context, t *tenant.Tenant) error {
	m.nextID++
	if err := t.SetID(m.nextID); err != nil {
		return err
	}
	m.tenants = append(m.tenants, t)
	return nil
}

func (m *memTenantRepo) GetByID(ctx context.Context, tenantID uint) (*tenant.Tenant, error) {
	for _, t := range m.tenants {
		if t.ID() == tenantID {
			return t, nil
		}
	}
	return nil, nil
}

func (m *memTenantRepo) GetBySID(ctx context.Context, sid string) (*tenant.Tenant, error) {
	for _, t := range m.tenants {
		if t.SID() == sid {
			return t, nil
		}
	}
	return nil, nil
}

func (m *memTenantRepo) GetByEmail(ctx context.Context, email string) (*tenant.Tenant, error) {
	for _, t := range m.tenants {
		if t.Email() == email {
			return t, nil
		}
	}
	return nil, nil
}

func (m *memTenantRepo) ListIDs(ctx context.Context) ([]uint, error) {
	ids := make([]uint, 0, len(m.tenants))
	for _, t := range m.tenants {
		ids = append(ids, t.ID())
	}
	return ids, nil
}

type recordingRefresher struct {
	rebuilt     []*uint
	invalidated []*uint
}

func (r *recordingRefresher) Rebuild(ctx context.Context, tenantID *uint) error {
	r.rebuilt = append(r.rebuilt, tenantID)
	return nil
}

func (r *recordingRefresher) InvalidateScope(ctx context.Context, tenantID *uint) {
	r.invalidated = append(r.invalidated, tenantID)
}

type passthroughTxRunner struct{}

func (passthroughTxRunner) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
