package usecases

import (
	"context"
	"fmt"
	"time"

	"scholara/internal/domain/catalog"
	"scholara/internal/domain/subscription"
	vo "scholara/internal/domain/subscription/valueobjects"
	"scholara/internal/domain/tenant"
	apperrors "scholara/internal/shared/errors"
	"scholara/internal/shared/logger"
)

// supersededReason is recorded on a subscription cancelled because a newer
// one replaces it.
const supersededReason = "superseded by a new subscription"

type CreateSubscriptionCommand struct {
	TenantID  uint   // internal tenant ID (used if TenantSID is empty)
	TenantSID string // takes precedence over TenantID
	Type      string // "predefined" or "custom"
	PlanID    uint   // internal plan ID (used if PlanSID is empty)
	PlanSID   string // takes precedence over PlanID
	StartDate time.Time
	EndDate   *time.Time
	Price     uint64
	Currency  string
}

type CreateSubscriptionUseCase struct {
	subscriptionRepo subscription.Repository
	planRepo         subscription.PlanRepository
	grantRepo        subscription.ModuleGrantRepository
	tenantRepo       tenant.Repository
	refresher        EntitlementRefresher
	txManager        TransactionRunner
	logger           logger.Interface
}

func NewCreateSubscriptionUseCase(
	subscriptionRepo subscription.Repository,
	planRepo subscription.PlanRepository,
	grantRepo subscription.ModuleGrantRepository,
	tenantRepo tenant.Repository,
	refresher EntitlementRefresher,
	txManager TransactionRunner,
	logger logger.Interface,
) *CreateSubscriptionUseCase {
	return &CreateSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		grantRepo:        grantRepo,
		tenantRepo:       tenantRepo,
		refresher:        refresher,
		txManager:        txManager,
		logger:           logger,
	}
}

// Execute creates a subscription for the tenant. A tenant holds at most one
// active subscription: any previously active one is cancelled in the same
// transaction, so the projection rebuild at the end observes only the new
// state. Custom subscriptions start with a core grant already in place.
func (uc *CreateSubscriptionUseCase) Execute(ctx context.Context, cmd CreateSubscriptionCommand) (*subscription.Subscription, error) {
	target, err := uc.resolveTenant(ctx, cmd)
	if err != nil {
		return nil, err
	}
	tenantID := target.ID()

	subType, err := vo.ParseSubscriptionType(cmd.Type)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	startDate := cmd.StartDate
	if startDate.IsZero() {
		startDate = time.Now().UTC()
	}

	var sub *subscription.Subscription
	switch subType {
	case vo.TypePredefined:
		plan, err := uc.resolvePlan(ctx, cmd)
		if err != nil {
			return nil, err
		}
		if !plan.IsActive() {
			return nil, apperrors.NewValidationError("plan is not available for new subscriptions")
		}
		sub, err = subscription.NewPredefinedSubscription(tenantID, plan.ID(), startDate, cmd.EndDate, cmd.Price, cmd.Currency)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
	case vo.TypeCustom:
		sub, err = subscription.NewCustomSubscription(tenantID, startDate, cmd.EndDate, cmd.Price, cmd.Currency)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
	}

	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.cancelPriorActive(txCtx, tenantID); err != nil {
			return err
		}

		if err := uc.subscriptionRepo.Create(txCtx, sub); err != nil {
			return fmt.Errorf("failed to create subscription: %w", err)
		}

		if sub.Type() == vo.TypeCustom {
			coreGrant, err := subscription.NewModuleGrant(sub.ID(), catalog.ModuleCore, nil)
			if err != nil {
				return fmt.Errorf("failed to build core grant: %w", err)
			}
			if err := uc.grantRepo.Create(txCtx, coreGrant); err != nil {
				return fmt.Errorf("failed to seed core grant: %w", err)
			}
		}

		return uc.refresher.Rebuild(txCtx, &tenantID)
	})
	if err != nil {
		uc.logger.Errorw("failed to create subscription",
			"error", err, "tenant_id", tenantID, "type", cmd.Type)
		return nil, err
	}

	uc.refresher.InvalidateScope(ctx, &tenantID)

	uc.logger.Infow("subscription created",
		"subscription_sid", sub.SID(), "tenant_id", tenantID, "type", sub.Type())
	return sub, nil
}

func (uc *CreateSubscriptionUseCase) cancelPriorActive(ctx context.Context, tenantID uint) error {
	active, err := uc.subscriptionRepo.ListActiveByTenant(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("failed to list active subscriptions: %w", err)
	}
	for _, prior := range active {
		if err := prior.Cancel(supersededReason); err != nil {
			return fmt.Errorf("failed to cancel prior subscription %d: %w", prior.ID(), err)
		}
		if err := uc.subscriptionRepo.Update(ctx, prior); err != nil {
			return fmt.Errorf("failed to persist cancellation of subscription %d: %w", prior.ID(), err)
		}
	}
	return nil
}

func (uc *CreateSubscriptionUseCase) resolveTenant(ctx context.Context, cmd CreateSubscriptionCommand) (*tenant.Tenant, error) {
	var target *tenant.Tenant
	var err error

	if cmd.TenantSID != "" {
		target, err = uc.tenantRepo.GetBySID(ctx, cmd.TenantSID)
	} else {
		target, err = uc.tenantRepo.GetByID(ctx, cmd.TenantID)
	}
	if err != nil {
		uc.logger.Errorw("failed to get tenant", "error", err,
			"tenant_id", cmd.TenantID, "tenant_sid", cmd.TenantSID)
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	if target == nil {
		return nil, apperrors.NewNotFoundError("tenant not found")
	}
	return target, nil
}

func (uc *CreateSubscriptionUseCase) resolvePlan(ctx context.Context, cmd CreateSubscriptionCommand) (*subscription.Plan, error) {
	var plan *subscription.Plan
	var err error

	if cmd.PlanSID != "" {
		plan, err = uc.planRepo.GetBySID(ctx, cmd.PlanSID)
	} else {
		if cmd.PlanID == 0 {
			return nil, apperrors.NewValidationError("a plan is required for a predefined subscription")
		}
		plan, err = uc.planRepo.GetByID(ctx, cmd.PlanID)
	}
	if err != nil {
		uc.logger.Errorw("failed to get plan", "error", err,
			"plan_id", cmd.PlanID, "plan_sid", cmd.PlanSID)
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	if plan == nil {
		return nil, apperrors.NewNotFoundError("plan not found")
	}
	return plan, nil
}
