package usecases

import (
	"context"
	"errors"
	"fmt"

	"scholara/internal/domain/catalog"
	"scholara/internal/domain/subscription"
	vo "scholara/internal/domain/subscription/valueobjects"
	apperrors "scholara/internal/shared/errors"
	"scholara/internal/shared/logger"
)

type RevokeModuleCommand struct {
	SubscriptionID  uint   // internal ID (used if SubscriptionSID is empty)
	SubscriptionSID string // takes precedence over SubscriptionID
	Module          string
	RevokedBy       *uint
}

type RevokeModuleUseCase struct {
	subscriptionRepo subscription.Repository
	grantRepo        subscription.ModuleGrantRepository
	refresher        EntitlementRefresher
	txManager        TransactionRunner
	logger           logger.Interface
}

func NewRevokeModuleUseCase(
	subscriptionRepo subscription.Repository,
	grantRepo subscription.ModuleGrantRepository,
	refresher EntitlementRefresher,
	txManager TransactionRunner,
	logger logger.Interface,
) *RevokeModuleUseCase {
	return &RevokeModuleUseCase{
		subscriptionRepo: subscriptionRepo,
		grantRepo:        grantRepo,
		refresher:        refresher,
		txManager:        txManager,
		logger:           logger,
	}
}

// Execute revokes a module grant on a custom subscription. Core cannot be
// revoked. Revoking a grant that is already revoked succeeds.
func (uc *RevokeModuleUseCase) Execute(ctx context.Context, cmd RevokeModuleCommand) error {
	moduleID, err := catalog.ParseModuleID(cmd.Module)
	if err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	if moduleID.IsCore() {
		return apperrors.NewForbiddenError(subscription.ErrCoreModuleNotRevocable.Error())
	}

	sub, err := resolveSubscription(ctx, uc.subscriptionRepo, cmd.SubscriptionID, cmd.SubscriptionSID, uc.logger)
	if err != nil {
		return err
	}
	if sub.Type() != vo.TypeCustom {
		return apperrors.NewValidationError(subscription.ErrNotCustomSubscription.Error())
	}
	tenantID := sub.TenantID()

	grant, err := uc.grantRepo.GetBySubscriptionAndModule(ctx, sub.ID(), moduleID)
	if err != nil {
		uc.logger.Errorw("failed to get module grant", "error", err,
			"subscription_id", sub.ID(), "module", moduleID)
		return fmt.Errorf("failed to get module grant: %w", err)
	}
	if grant == nil {
		return apperrors.NewNotFoundError(fmt.Sprintf("module %s is not granted on this subscription", moduleID))
	}

	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := grant.Revoke(cmd.RevokedBy); err != nil {
			if errors.Is(err, subscription.ErrCoreModuleNotRevocable) {
				return apperrors.NewForbiddenError(err.Error())
			}
			return apperrors.NewValidationError(err.Error())
		}
		if err := uc.grantRepo.Update(txCtx, grant); err != nil {
			return fmt.Errorf("failed to update module grant: %w", err)
		}
		return uc.refresher.Rebuild(txCtx, &tenantID)
	})
	if err != nil {
		uc.logger.Errorw("failed to revoke module",
			"error", err, "subscription_id", sub.ID(), "module", moduleID)
		return err
	}

	uc.refresher.InvalidateScope(ctx, &tenantID)

	uc.logger.Infow("module revoked",
		"subscription_sid", sub.SID(), "tenant_id", tenantID, "module", moduleID)
	return nil
}
