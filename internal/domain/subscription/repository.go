package subscription

import (
	"context"

	"scholara/internal/domain/catalog"
)

// Repository is the persistence contract for subscriptions. Get methods
// return (nil, nil) when nothing matches.
type Repository interface {
	Create(ctx context.Context, sub *Subscription) error
	Update(ctx context.Context, sub *Subscription) error
	GetByID(ctx context.Context, subscriptionID uint) (*Subscription, error)
	GetBySID(ctx context.Context, sid string) (*Subscription, error)
	// ListActiveByTenant returns all subscriptions with status=active for the
	// tenant. Duplicates should not exist but callers must tolerate them.
	ListActiveByTenant(ctx context.Context, tenantID uint) ([]*Subscription, error)
	ListByTenant(ctx context.Context, tenantID uint) ([]*Subscription, error)
	// ListAll returns every subscription; used by global materialized rebuilds.
	ListAll(ctx context.Context) ([]*Subscription, error)
}

// PlanRepository is the persistence contract for plans, including their
// module lists.
type PlanRepository interface {
	Create(ctx context.Context, plan *Plan) error
	Update(ctx context.Context, plan *Plan) error
	GetByID(ctx context.Context, planID uint) (*Plan, error)
	GetBySID(ctx context.Context, sid string) (*Plan, error)
	GetBySlug(ctx context.Context, slug string) (*Plan, error)
	ListActive(ctx context.Context) ([]*Plan, error)
	List(ctx context.Context) ([]*Plan, error)
}

// ModuleGrantRepository is the persistence contract for custom-subscription
// module grants.
type ModuleGrantRepository interface {
	Create(ctx context.Context, grant *ModuleGrant) error
	Update(ctx context.Context, grant *ModuleGrant) error
	// GetBySubscriptionAndModule returns the grant row for the module on the
	// subscription regardless of revocation state, or (nil, nil).
	GetBySubscriptionAndModule(ctx context.Context, subscriptionID uint, moduleID catalog.ModuleID) (*ModuleGrant, error)
	ListBySubscription(ctx context.Context, subscriptionID uint) ([]*ModuleGrant, error)
	// ListGrantedBySubscription returns only grants with no revocation.
	ListGrantedBySubscription(ctx context.Context, subscriptionID uint) ([]*ModuleGrant, error)
}
