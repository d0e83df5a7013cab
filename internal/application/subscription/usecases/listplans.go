package usecases

import (
	"context"
	"fmt"

	"scholara/internal/domain/subscription"
	"scholara/internal/shared/logger"
)

type ListPlansQuery struct {
	ActiveOnly bool
}

type ListPlansUseCase struct {
	planRepo subscription.PlanRepository
	logger   logger.Interface
}

func NewListPlansUseCase(planRepo subscription.PlanRepository, logger logger.Interface) *ListPlansUseCase {
	return &ListPlansUseCase{
		planRepo: planRepo,
		logger:   logger,
	}
}

func (uc *ListPlansUseCase) Execute(ctx context.Context, q ListPlansQuery) ([]*subscription.Plan, error) {
	var plans []*subscription.Plan
	var err error

	if q.ActiveOnly {
		plans, err = uc.planRepo.ListActive(ctx)
	} else {
		plans, err = uc.planRepo.List(ctx)
	}
	if err != nil {
		uc.logger.Errorw("failed to list plans", "error", err)
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return plans, nil
}
