// Package entitlement wires the entitlement engine's application services:
// the capability facade queried by UI and business code, and the refresher
// that keeps the materialized tenant_modules projection in step with
// subscription state.
package entitlement

import (
	"context"
	"fmt"

	"scholara/internal/domain/entitlement"
	"scholara/internal/domain/subscription"
	vo "scholara/internal/domain/subscription/valueobjects"
	"scholara/internal/infrastructure/cache"
	"scholara/internal/shared/biztime"
	"scholara/internal/shared/logger"
)

// InvalidationPublisher broadcasts invalidations to other instances.
// Implemented by cache.InvalidationBus; nil disables broadcasting.
type InvalidationPublisher interface {
	Publish(ctx context.Context, tenantID *uint) error
}

// TransactionRunner runs a function inside a database transaction.
// Implemented by db.TransactionManager.
type TransactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Refresher rebuilds the materialized tenant_modules projection from
// authoritative subscription state, for one tenant or all.
//
// The projection is always rebuilt wholesale: rows in scope are deleted and
// reinserted in one transaction. Per tenant the row count is bounded by the
// catalog size, and a full rebuild cannot drift from the source of truth the
// way an incremental diff could.
type Refresher struct {
	subscriptions subscription.Repository
	plans         subscription.PlanRepository
	grants        subscription.ModuleGrantRepository
	tenantModules entitlement.TenantModuleRepository
	txManager     TransactionRunner
	cache         *cache.EntitlementCache
	publisher     InvalidationPublisher
	logger        logger.Interface
}

// NewRefresher creates a Refresher. publisher may be nil when the deployment
// runs a single instance.
func NewRefresher(
	subscriptions subscription.Repository,
	plans subscription.PlanRepository,
	grants subscription.ModuleGrantRepository,
	tenantModules entitlement.TenantModuleRepository,
	txManager TransactionRunner,
	entCache *cache.EntitlementCache,
	publisher InvalidationPublisher,
	logger logger.Interface,
) *Refresher {
	return &Refresher{
		subscriptions: subscriptions,
		plans:         plans,
		grants:        grants,
		tenantModules: tenantModules,
		txManager:     txManager,
		cache:         entCache,
		publisher:     publisher,
		logger:        logger,
	}
}

// Rebuild deletes and reinserts the projection rows in scope. It joins the
// caller's transaction when one is in the context, so a subscription mutation
// and its projection rebuild commit atomically and readers never observe a
// half-updated projection. Errors propagate: this sits on the write path.
func (r *Refresher) Rebuild(ctx context.Context, tenantID *uint) error {
	var subs []*subscription.Subscription
	var err error

	if tenantID != nil {
		if err = r.tenantModules.DeleteByTenant(ctx, *tenantID); err != nil {
			return fmt.Errorf("failed to clear tenant modules: %w", err)
		}
		subs, err = r.subscriptions.ListByTenant(ctx, *tenantID)
	} else {
		if err = r.tenantModules.DeleteAll(ctx); err != nil {
			return fmt.Errorf("failed to clear tenant modules: %w", err)
		}
		subs, err = r.subscriptions.ListAll(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to list subscriptions for rebuild: %w", err)
	}

	rows, err := r.projectionRows(ctx, subs)
	if err != nil {
		return err
	}

	if len(rows) > 0 {
		if err := r.tenantModules.BulkInsert(ctx, rows); err != nil {
			return fmt.Errorf("failed to insert tenant modules: %w", err)
		}
	}

	r.logger.Debugw("materialized tenant modules rebuilt",
		"scope", scopeLabel(tenantID),
		"subscriptions", len(subs),
		"rows", len(rows),
	)
	return nil
}

func (r *Refresher) projectionRows(ctx context.Context, subs []*subscription.Subscription) ([]entitlement.TenantModule, error) {
	now := biztime.NowUTC()
	todayStart := biztime.StartOfDayUTC(now)

	var rows []entitlement.TenantModule
	for _, sub := range subs {
		isActive := sub.IsActive(todayStart)

		switch sub.Type() {
		case vo.TypePredefined:
			planID := sub.PlanID()
			if planID == nil {
				r.logger.Warnw("skipping predefined subscription without plan",
					"subscription_id", sub.ID())
				continue
			}
			plan, err := r.plans.GetByID(ctx, *planID)
			if err != nil {
				return nil, fmt.Errorf("failed to load plan %d: %w", *planID, err)
			}
			if plan == nil {
				r.logger.Warnw("skipping subscription referencing missing plan",
					"subscription_id", sub.ID(), "plan_id", *planID)
				continue
			}
			for _, moduleID := range plan.Modules() {
				rows = append(rows, entitlement.TenantModule{
					TenantID:       sub.TenantID(),
					ModuleID:       moduleID,
					SubscriptionID: sub.ID(),
					GrantedAt:      sub.StartDate(),
					IsActive:       isActive,
					UpdatedAt:      now,
				})
			}

		case vo.TypeCustom:
			grants, err := r.grants.ListGrantedBySubscription(ctx, sub.ID())
			if err != nil {
				return nil, fmt.Errorf("failed to load grants for subscription %d: %w", sub.ID(), err)
			}
			for _, g := range grants {
				rows = append(rows, entitlement.TenantModule{
					TenantID:       sub.TenantID(),
					ModuleID:       g.ModuleID(),
					SubscriptionID: sub.ID(),
					GrantedAt:      g.GrantedAt(),
					IsActive:       isActive,
					UpdatedAt:      now,
				})
			}

		default:
			r.logger.Errorw("skipping subscription with unknown type",
				"subscription_id", sub.ID(), "type", sub.Type())
		}
	}
	return rows, nil
}

// Refresh rebuilds the projection in its own transaction and invalidates
// caches afterwards. Used by administrative force-refresh and boot-time
// warmup; subscription mutations instead call Rebuild inside their own
// transaction followed by InvalidateScope.
func (r *Refresher) Refresh(ctx context.Context, tenantID *uint) error {
	err := r.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		return r.Rebuild(txCtx, tenantID)
	})
	if err != nil {
		return err
	}

	r.InvalidateScope(ctx, tenantID)
	return nil
}

// InvalidateScope drops in-process cache entries for the scope and broadcasts
// the invalidation. Call it only after the rebuilding transaction has
// committed, so a cache-miss read that follows observes the new state.
func (r *Refresher) InvalidateScope(ctx context.Context, tenantID *uint) {
	if tenantID != nil {
		r.cache.Invalidate(*tenantID)
	} else {
		r.cache.InvalidateAll()
	}

	if r.publisher != nil {
		if err := r.publisher.Publish(ctx, tenantID); err != nil {
			// Best-effort: remote caches fall back to their TTL bound.
			r.logger.Warnw("failed to broadcast cache invalidation",
				"scope", scopeLabel(tenantID),
				"error", err,
			)
		}
	}
}

func scopeLabel(tenantID *uint) string {
	if tenantID == nil {
		return "all"
	}
	return fmt.Sprintf("tenant:%d", *tenantID)
}
