package usecases

import (
	"context"
	"fmt"

	"scholara/internal/domain/catalog"
	"scholara/internal/domain/subscription"
	apperrors "scholara/internal/shared/errors"
	"scholara/internal/shared/logger"
)

type UpdatePlanModulesCommand struct {
	PlanID  uint   // internal ID (used if PlanSID is empty)
	PlanSID string // takes precedence over PlanID
	Modules []string
}

type UpdatePlanModulesUseCase struct {
	planRepo  subscription.PlanRepository
	refresher EntitlementRefresher
	txManager TransactionRunner
	logger    logger.Interface
}

func NewUpdatePlanModulesUseCase(
	planRepo subscription.PlanRepository,
	refresher EntitlementRefresher,
	txManager TransactionRunner,
	logger logger.Interface,
) *UpdatePlanModulesUseCase {
	return &UpdatePlanModulesUseCase{
		planRepo:  planRepo,
		refresher: refresher,
		txManager: txManager,
		logger:    logger,
	}
}

// Execute replaces a plan's module list. Every tenant subscribed to the plan
// is affected, so the whole projection is rebuilt and all caches are
// invalidated rather than tracking the affected tenants individually.
func (uc *UpdatePlanModulesUseCase) Execute(ctx context.Context, cmd UpdatePlanModulesCommand) (*subscription.Plan, error) {
	modules, err := catalog.ParseModuleIDs(cmd.Modules)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	plan, err := uc.resolvePlan(ctx, cmd)
	if err != nil {
		return nil, err
	}

	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := plan.SetModules(modules); err != nil {
			return apperrors.NewValidationError(err.Error())
		}
		if err := uc.planRepo.Update(txCtx, plan); err != nil {
			return fmt.Errorf("failed to update plan: %w", err)
		}
		return uc.refresher.Rebuild(txCtx, nil)
	})
	if err != nil {
		uc.logger.Errorw("failed to update plan modules",
			"error", err, "plan_id", plan.ID())
		return nil, err
	}

	uc.refresher.InvalidateScope(ctx, nil)

	uc.logger.Infow("plan modules updated",
		"plan_sid", plan.SID(), "modules", plan.Modules())
	return plan, nil
}

func (uc *UpdatePlanModulesUseCase) resolvePlan(ctx context.Context, cmd UpdatePlanModulesCommand) (*subscription.Plan, error) {
	var plan *subscription.Plan
	var err error

	if cmd.PlanSID != "" {
		plan, err = uc.planRepo.GetBySID(ctx, cmd.PlanSID)
	} else {
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
