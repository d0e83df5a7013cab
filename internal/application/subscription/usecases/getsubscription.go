package usecases

import (
	"context"
	"fmt"

	"scholara/internal/domain/catalog"
	"scholara/internal/domain/subscription"
	vo "scholara/internal/domain/subscription/valueobjects"
	"scholara/internal/shared/logger"
)

type GetSubscriptionQuery struct {
	SubscriptionID  uint   // internal ID (used if SubscriptionSID is empty)
	SubscriptionSID string // takes precedence over SubscriptionID
}

// SubscriptionDetails is a subscription together with the module packages it
// currently carries.
type SubscriptionDetails struct {
	Subscription *subscription.Subscription
	Plan         *subscription.Plan // nil for custom subscriptions
	Modules      []catalog.ModuleID
}

type GetSubscriptionUseCase struct {
	subscriptionRepo subscription.Repository
	planRepo         subscription.PlanRepository
	grantRepo        subscription.ModuleGrantRepository
	logger           logger.Interface
}

func NewGetSubscriptionUseCase(
	subscriptionRepo subscription.Repository,
	planRepo subscription.PlanRepository,
	grantRepo subscription.ModuleGrantRepository,
	logger logger.Interface,
) *GetSubscriptionUseCase {
	return &GetSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		grantRepo:        grantRepo,
		logger:           logger,
	}
}

func (uc *GetSubscriptionUseCase) Execute(ctx context.Context, q GetSubscriptionQuery) (*SubscriptionDetails, error) {
	sub, err := resolveSubscription(ctx, uc.subscriptionRepo, q.SubscriptionID, q.SubscriptionSID, uc.logger)
	if err != nil {
		return nil, err
	}

	details := &SubscriptionDetails{Subscription: sub}

	switch sub.Type() {
	case vo.TypePredefined:
		planID := sub.PlanID()
		if planID == nil {
			return details, nil
		}
		plan, err := uc.planRepo.GetByID(ctx, *planID)
		if err != nil {
			uc.logger.Errorw("failed to get plan", "error", err, "plan_id", *planID)
			return nil, fmt.Errorf("failed to get plan: %w", err)
		}
		if plan != nil {
			details.Plan = plan
			details.Modules = plan.Modules()
		}
	case vo.TypeCustom:
		grants, err := uc.grantRepo.ListGrantedBySubscription(ctx, sub.ID())
		if err != nil {
			uc.logger.Errorw("failed to list module grants", "error", err,
				"subscription_id", sub.ID())
			return nil, fmt.Errorf("failed to list module grants: %w", err)
		}
		modules := make([]catalog.ModuleID, 0, len(grants))
		for _, g := range grants {
			modules = append(modules, g.ModuleID())
		}
		details.Modules = catalog.WithCore(modules)
	}

	return details, nil
}
