package usecases

import (
	"context"
	"fmt"

	"scholara/internal/domain/subscription"
	apperrors "scholara/internal/shared/errors"
	"scholara/internal/shared/logger"
)

type DeactivatePlanCommand struct {
	PlanID  uint   // internal ID (used if PlanSID is empty)
	PlanSID string // takes precedence over PlanID
}

type DeactivatePlanUseCase struct {
	planRepo subscription.PlanRepository
	logger   logger.Interface
}

func NewDeactivatePlanUseCase(planRepo subscription.PlanRepository, logger logger.Interface) *DeactivatePlanUseCase {
	return &DeactivatePlanUseCase{
		planRepo: planRepo,
		logger:   logger,
	}
}

// Execute hides the plan from new subscriptions. Existing subscriptions keep
// resolving against it, so no projection rebuild is needed.
func (uc *DeactivatePlanUseCase) Execute(ctx context.Context, cmd DeactivatePlanCommand) error {
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
		return fmt.Errorf("failed to get plan: %w", err)
	}
	if plan == nil {
		return apperrors.NewNotFoundError("plan not found")
	}

	plan.Deactivate()
	if err := uc.planRepo.Update(ctx, plan); err != nil {
		uc.logger.Errorw("failed to deactivate plan", "error", err, "plan_id", plan.ID())
		return fmt.Errorf("failed to deactivate plan: %w", err)
	}

	uc.logger.Infow("plan deactivated", "plan_sid", plan.SID())
	return nil
}
