package usecases

import (
	"context"
	"fmt"

	"scholara/internal/domain/subscription"
	apperrors "scholara/internal/shared/errors"
	"scholara/internal/shared/logger"
)

type GetPlanQuery struct {
	PlanID   uint   // internal ID (used if PlanSID and Slug are empty)
	PlanSID  string // takes precedence over PlanID
	PlanSlug string // used when PlanSID is empty
}

type GetPlanUseCase struct {
	planRepo subscription.PlanRepository
	logger   logger.Interface
}

func NewGetPlanUseCase(planRepo subscription.PlanRepository, logger logger.Interface) *GetPlanUseCase {
	return &GetPlanUseCase{
		planRepo: planRepo,
		logger:   logger,
	}
}

func (uc *GetPlanUseCase) Execute(ctx context.Context, q GetPlanQuery) (*subscription.Plan, error) {
	var plan *subscription.Plan
	var err error

	switch {
	case q.PlanSID != "":
		plan, err = uc.planRepo.GetBySID(ctx, q.PlanSID)
	case q.PlanSlug != "":
		plan, err = uc.planRepo.GetBySlug(ctx, q.PlanSlug)
	default:
		plan, err = uc.planRepo.GetByID(ctx, q.PlanID)
	}
	if err != nil {
		uc.logger.Errorw("failed to get plan", "error", err,
			"plan_id", q.PlanID, "plan_sid", q.PlanSID, "plan_slug", q.PlanSlug)
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	if plan == nil {
		return nil, apperrors.NewNotFoundError("plan not found")
	}
	return plan, nil
}
