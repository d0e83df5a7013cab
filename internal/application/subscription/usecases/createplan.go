package usecases

import (
	"context"
	"fmt"

	"scholara/internal/domain/catalog"
	"scholara/internal/domain/subscription"
	apperrors "scholara/internal/shared/errors"
	"scholara/internal/shared/logger"
)

type CreatePlanCommand struct {
	Name        string
	Slug        string
	Description string
	Modules     []string
}

type CreatePlanUseCase struct {
	planRepo subscription.PlanRepository
	logger   logger.Interface
}

func NewCreatePlanUseCase(planRepo subscription.PlanRepository, logger logger.Interface) *CreatePlanUseCase {
	return &CreatePlanUseCase{
		planRepo: planRepo,
		logger:   logger,
	}
}

// Execute creates a plan. Module names are validated against the catalog and
// the slug must be unique. No projection rebuild happens here: a brand new
// plan has no subscribers yet.
func (uc *CreatePlanUseCase) Execute(ctx context.Context, cmd CreatePlanCommand) (*subscription.Plan, error) {
	modules, err := catalog.ParseModuleIDs(cmd.Modules)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	existing, err := uc.planRepo.GetBySlug(ctx, cmd.Slug)
	if err != nil {
		uc.logger.Errorw("failed to check plan slug", "error", err, "slug", cmd.Slug)
		return nil, fmt.Errorf("failed to check plan slug: %w", err)
	}
	if existing != nil {
		return nil, apperrors.NewConflictError(fmt.Sprintf("plan slug %q is already in use", cmd.Slug))
	}

	plan, err := subscription.NewPlan(cmd.Name, cmd.Slug, cmd.Description, modules)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if err := uc.planRepo.Create(ctx, plan); err != nil {
		uc.logger.Errorw("failed to create plan", "error", err, "slug", cmd.Slug)
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}

	uc.logger.Infow("plan created", "plan_sid", plan.SID(), "slug", plan.Slug())
	return plan, nil
}
