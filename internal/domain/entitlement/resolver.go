package entitlement

import (
	"context"

	"scholara/internal/domain/catalog"
	"scholara/internal/domain/subscription"
	vo "scholara/internal/domain/subscription/valueobjects"
	"scholara/internal/shared/logger"
)

// Resolver computes the authoritative module set for a tenant directly from
// subscription state. This is the slow path: it seeds the materialized
// projection and serves as the emergency fallback when the projection is
// empty or missing.
//
// Resolution fails closed: any store error, timeout, or data inconsistency
// yields core-only access instead of an error. Under-provisioning is always
// preferred over granting unpaid access, and callers must never be crashed by
// entitlement resolution.
type Resolver struct {
	subscriptions subscription.Repository
	plans         subscription.PlanRepository
	grants        subscription.ModuleGrantRepository
	logger        logger.Interface
}

// NewResolver creates a new Resolver.
func NewResolver(
	subscriptions subscription.Repository,
	plans subscription.PlanRepository,
	grants subscription.ModuleGrantRepository,
	logger logger.Interface,
) *Resolver {
	return &Resolver{
		subscriptions: subscriptions,
		plans:         plans,
		grants:        grants,
		logger:        logger,
	}
}

// coreOnly is the conservative default result.
func coreOnly() []catalog.ModuleID {
	return []catalog.ModuleID{catalog.ModuleCore}
}

// ResolveActiveModules returns the module set the tenant is entitled to right
// now. The result always contains core and never carries an error.
func (r *Resolver) ResolveActiveModules(ctx context.Context, tenantID uint) []catalog.ModuleID {
	sub, err := r.activeSubscription(ctx, tenantID)
	if err != nil {
		r.logger.Warnw("entitlement resolution failed, defaulting to core access",
			"tenant_id", tenantID,
			"error", err,
		)
		return coreOnly()
	}
	if sub == nil {
		return coreOnly()
	}

	switch sub.Type() {
	case vo.TypePredefined:
		return r.resolvePredefined(ctx, tenantID, sub)
	case vo.TypeCustom:
		return r.resolveCustom(ctx, tenantID, sub)
	default:
		// Unknown type is a data inconsistency: treat like no subscription.
		r.logger.Errorw("unknown subscription type, defaulting to core access",
			"tenant_id", tenantID,
			"subscription_id", sub.ID(),
			"type", sub.Type(),
		)
		return coreOnly()
	}
}

// activeSubscription fetches the tenant's active subscription. When the
// at-most-one-active invariant has been violated, the most recently started
// one wins.
func (r *Resolver) activeSubscription(ctx context.Context, tenantID uint) (*subscription.Subscription, error) {
	subs, err := r.subscriptions.ListActiveByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, nil
	}
	if len(subs) > 1 {
		r.logger.Warnw("multiple active subscriptions found, using latest start date",
			"tenant_id", tenantID,
			"count", len(subs),
		)
	}

	latest := subs[0]
	for _, s := range subs[1:] {
		if s.StartDate().After(latest.StartDate()) {
			latest = s
		}
	}
	return latest, nil
}

func (r *Resolver) resolvePredefined(ctx context.Context, tenantID uint, sub *subscription.Subscription) []catalog.ModuleID {
	planID := sub.PlanID()
	if planID == nil {
		r.logger.Errorw("predefined subscription has no plan, defaulting to core access",
			"tenant_id", tenantID,
			"subscription_id", sub.ID(),
		)
		return coreOnly()
	}

	plan, err := r.plans.GetByID(ctx, *planID)
	if err != nil {
		r.logger.Warnw("failed to load plan, defaulting to core access",
			"tenant_id", tenantID,
			"plan_id", *planID,
			"error", err,
		)
		return coreOnly()
	}
	if plan == nil {
		r.logger.Errorw("subscription references missing plan, defaulting to core access",
			"tenant_id", tenantID,
			"plan_id", *planID,
		)
		return coreOnly()
	}

	return catalog.WithCore(plan.Modules())
}

func (r *Resolver) resolveCustom(ctx context.Context, tenantID uint, sub *subscription.Subscription) []catalog.ModuleID {
	grants, err := r.grants.ListGrantedBySubscription(ctx, sub.ID())
	if err != nil {
		r.logger.Warnw("failed to load module grants, defaulting to core access",
			"tenant_id", tenantID,
			"subscription_id", sub.ID(),
			"error", err,
		)
		return coreOnly()
	}

	modules := make([]catalog.ModuleID, 0, len(grants))
	for _, g := range grants {
		modules = append(modules, g.ModuleID())
	}
	return catalog.WithCore(modules)
}
