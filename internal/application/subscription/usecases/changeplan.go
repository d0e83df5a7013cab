package usecases

import (
	"context"
	"fmt"

	"scholara/internal/domain/subscription"
	apperrors "scholara/internal/shared/errors"
	"scholara/internal/shared/logger"
)

type ChangePlanCommand struct {
	SubscriptionID  uint   // internal ID (used if SubscriptionSID is empty)
	SubscriptionSID string // takes precedence over SubscriptionID
	NewPlanID       uint   // internal plan ID (used if NewPlanSID is empty)
	NewPlanSID      string // takes precedence over NewPlanID
}

type ChangePlanUseCase struct {
	subscriptionRepo subscription.Repository
	planRepo         subscription.PlanRepository
	refresher        EntitlementRefresher
	txManager        TransactionRunner
	logger           logger.Interface
}

func NewChangePlanUseCase(
	subscriptionRepo subscription.Repository,
	planRepo subscription.PlanRepository,
	refresher EntitlementRefresher,
	txManager TransactionRunner,
	logger logger.Interface,
) *ChangePlanUseCase {
	return &ChangePlanUseCase{
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		refresher:        refresher,
		txManager:        txManager,
		logger:           logger,
	}
}

// Execute points a predefined subscription at a different plan. The
// projection is rebuilt in the same transaction and caches are invalidated
// after commit, so the module change is visible on the next resolution
// rather than after the cache TTL runs out.
func (uc *ChangePlanUseCase) Execute(ctx context.Context, cmd ChangePlanCommand) error {
	sub, err := resolveSubscription(ctx, uc.subscriptionRepo, cmd.SubscriptionID, cmd.SubscriptionSID, uc.logger)
	if err != nil {
		return err
	}
	tenantID := sub.TenantID()

	var plan *subscription.Plan
	if cmd.NewPlanSID != "" {
		plan, err = uc.planRepo.GetBySID(ctx, cmd.NewPlanSID)
	} else {
		plan, err = uc.planRepo.GetByID(ctx, cmd.NewPlanID)
	}
	if err != nil {
		uc.logger.Errorw("failed to get plan", "error", err,
			"plan_id", cmd.NewPlanID, "plan_sid", cmd.NewPlanSID)
		return fmt.Errorf("failed to get plan: %w", err)
	}
	if plan == nil {
		return apperrors.NewNotFoundError("plan not found")
	}
	if !plan.IsActive() {
		return apperrors.NewValidationError("plan is not available for new subscriptions")
	}

	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := sub.ChangePlan(plan.ID()); err != nil {
			return apperrors.NewValidationError(err.Error())
		}
		if err := uc.subscriptionRepo.Update(txCtx, sub); err != nil {
			return fmt.Errorf("failed to update subscription: %w", err)
		}
		return uc.refresher.Rebuild(txCtx, &tenantID)
	})
	if err != nil {
		uc.logger.Errorw("failed to change plan",
			"error", err, "subscription_id", sub.ID(), "plan_id", plan.ID())
		return err
	}

	uc.refresher.InvalidateScope(ctx, &tenantID)

	uc.logger.Infow("subscription plan changed",
		"subscription_sid", sub.SID(), "tenant_id", tenantID, "plan_sid", plan.SID())
	return nil
}
