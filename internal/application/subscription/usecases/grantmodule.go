package usecases

import (
	"context"
	"fmt"

	"scholara/internal/domain/catalog"
	"scholara/internal/domain/subscription"
	vo "scholara/internal/domain/subscription/valueobjects"
	apperrors "scholara/internal/shared/errors"
	"scholara/internal/shared/logger"
)

type GrantModuleCommand struct {
	SubscriptionID  uint   // internal ID (used if SubscriptionSID is empty)
	SubscriptionSID string // takes precedence over SubscriptionID
	Module          string
	GrantedBy       *uint
}

type GrantModuleUseCase struct {
	subscriptionRepo subscription.Repository
	grantRepo        subscription.ModuleGrantRepository
	refresher        EntitlementRefresher
	txManager        TransactionRunner
	logger           logger.Interface
}

func NewGrantModuleUseCase(
	subscriptionRepo subscription.Repository,
	grantRepo subscription.ModuleGrantRepository,
	refresher EntitlementRefresher,
	txManager TransactionRunner,
	logger logger.Interface,
) *GrantModuleUseCase {
	return &GrantModuleUseCase{
		subscriptionRepo: subscriptionRepo,
		grantRepo:        grantRepo,
		refresher:        refresher,
		txManager:        txManager,
		logger:           logger,
	}
}

// Execute grants a module package on a custom subscription. A previously
// revoked grant for the same module is revived in place, keeping one grant
// row per subscription and module. Granting a module that is already live
// is a conflict.
func (uc *GrantModuleUseCase) Execute(ctx context.Context, cmd GrantModuleCommand) error {
	moduleID, err := catalog.ParseModuleID(cmd.Module)
	if err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	sub, err := resolveSubscription(ctx, uc.subscriptionRepo, cmd.SubscriptionID, cmd.SubscriptionSID, uc.logger)
	if err != nil {
		return err
	}
	if sub.Type() != vo.TypeCustom {
		return apperrors.NewValidationError(subscription.ErrNotCustomSubscription.Error())
	}
	tenantID := sub.TenantID()

	existing, err := uc.grantRepo.GetBySubscriptionAndModule(ctx, sub.ID(), moduleID)
	if err != nil {
		uc.logger.Errorw("failed to get module grant", "error", err,
			"subscription_id", sub.ID(), "module", moduleID)
		return fmt.Errorf("failed to get module grant: %w", err)
	}
	if existing != nil && !existing.IsRevoked() {
		return apperrors.NewConflictError(fmt.Sprintf("module %s is already granted", moduleID))
	}

	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if existing != nil {
			existing.Regrant(cmd.GrantedBy)
			if err := uc.grantRepo.Update(txCtx, existing); err != nil {
				return fmt.Errorf("failed to revive module grant: %w", err)
			}
		} else {
			grant, err := subscription.NewModuleGrant(sub.ID(), moduleID, cmd.GrantedBy)
			if err != nil {
				return apperrors.NewValidationError(err.Error())
			}
			if err := uc.grantRepo.Create(txCtx, grant); err != nil {
				return fmt.Errorf("failed to create module grant: %w", err)
			}
		}
		return uc.refresher.Rebuild(txCtx, &tenantID)
	})
	if err != nil {
		uc.logger.Errorw("failed to grant module",
			"error", err, "subscription_id", sub.ID(), "module", moduleID)
		return err
	}

	uc.refresher.InvalidateScope(ctx, &tenantID)

	uc.logger.Infow("module granted",
		"subscription_sid", sub.SID(), "tenant_id", tenantID, "module", moduleID)
	return nil
}
