package usecases

import (
	"context"
	"fmt"

	"scholara/internal/domain/subscription"
	apperrors "scholara/internal/shared/errors"
	"scholara/internal/shared/logger"
)

type CancelSubscriptionCommand struct {
	SubscriptionID  uint   // internal ID (used if SubscriptionSID is empty)
	SubscriptionSID string // takes precedence over SubscriptionID
	Reason          string
}

type CancelSubscriptionUseCase struct {
	subscriptionRepo subscription.Repository
	refresher        EntitlementRefresher
	txManager        TransactionRunner
	logger           logger.Interface
}

func NewCancelSubscriptionUseCase(
	subscriptionRepo subscription.Repository,
	refresher EntitlementRefresher,
	txManager TransactionRunner,
	logger logger.Interface,
) *CancelSubscriptionUseCase {
	return &CancelSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		refresher:        refresher,
		txManager:        txManager,
		logger:           logger,
	}
}

// Execute cancels the subscription and rebuilds the tenant's projection in
// the same transaction. The tenant falls back to core on the next
// resolution. Cancelling an already cancelled subscription succeeds.
func (uc *CancelSubscriptionUseCase) Execute(ctx context.Context, cmd CancelSubscriptionCommand) error {
	sub, err := resolveSubscription(ctx, uc.subscriptionRepo, cmd.SubscriptionID, cmd.SubscriptionSID, uc.logger)
	if err != nil {
		return err
	}
	tenantID := sub.TenantID()

	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := sub.Cancel(cmd.Reason); err != nil {
			return apperrors.NewValidationError(err.Error())
		}
		if err := uc.subscriptionRepo.Update(txCtx, sub); err != nil {
			return fmt.Errorf("failed to update subscription: %w", err)
		}
		return uc.refresher.Rebuild(txCtx, &tenantID)
	})
	if err != nil {
		uc.logger.Errorw("failed to cancel subscription",
			"error", err, "subscription_id", sub.ID(), "tenant_id", tenantID)
		return err
	}

	uc.refresher.InvalidateScope(ctx, &tenantID)

	uc.logger.Infow("subscription cancelled",
		"subscription_sid", sub.SID(), "tenant_id", tenantID, "reason", cmd.Reason)
	return nil
}

// resolveSubscription loads a subscription by SID or internal ID, preferring
// the SID. Shared by the mutation use cases.
func resolveSubscription(
	ctx context.Context,
	repo subscription.Repository,
	subscriptionID uint,
	subscriptionSID string,
	log logger.Interface,
) (*subscription.Subscription, error) {
	var sub *subscription.Subscription
	var err error

	if subscriptionSID != "" {
		sub, err = repo.GetBySID(ctx, subscriptionSID)
	} else {
		sub, err = repo.GetByID(ctx, subscriptionID)
	}
	if err != nil {
		log.Errorw("failed to get subscription", "error", err,
			"subscription_id", subscriptionID, "subscription_sid", subscriptionSID)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if sub == nil {
		return nil, apperrors.NewNotFoundError("subscription not found")
	}
	return sub, nil
}
