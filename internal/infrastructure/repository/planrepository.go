package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"scholara/internal/domain/catalog"
	"scholara/internal/domain/subscription"
	"scholara/internal/infrastructure/persistence/models"
	"scholara/internal/shared/db"
	"scholara/internal/shared/logger"
)

type PlanRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewPlanRepository(db *gorm.DB, logger logger.Interface) subscription.PlanRepository {
	return &PlanRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *PlanRepositoryImpl) Create(ctx context.Context, plan *subscription.Plan) error {
	model := r.toModel(plan)

	if err := db.GetTxFromContext(ctx, r.db).WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create plan", "error", err, "slug", plan.Slug())
		return fmt.Errorf("failed to create plan: %w", err)
	}

	if err := plan.SetID(model.ID); err != nil {
		return err
	}

	r.logger.Infow("plan created", "plan_id", model.ID, "slug", plan.Slug())
	return nil
}

func (r *PlanRepositoryImpl) Update(ctx context.Context, plan *subscription.Plan) error {
	conn := db.GetTxFromContext(ctx, r.db).WithContext(ctx)
	model := r.toModel(plan)

	result := conn.Model(&models.PlanModel{}).
		Where("id = ?", plan.ID()).
		Updates(map[string]interface{}{
			"name":        model.Name,
			"description": model.Description,
			"status":      model.Status,
			"sort_order":  model.SortOrder,
			"version":     model.Version,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update plan", "error", result.Error, "plan_id", plan.ID())
		return fmt.Errorf("failed to update plan: %w", result.Error)
	}

	// Replace the module join rows wholesale; a plan has at most a handful.
	if err := conn.Where("plan_id = ?", plan.ID()).Delete(&models.PlanModuleModel{}).Error; err != nil {
		return fmt.Errorf("failed to clear plan modules: %w", err)
	}
	rows := make([]models.PlanModuleModel, 0, len(plan.Modules()))
	for _, moduleID := range plan.Modules() {
		rows = append(rows, models.PlanModuleModel{PlanID: plan.ID(), ModuleID: string(moduleID)})
	}
	if len(rows) > 0 {
		if err := conn.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to insert plan modules: %w", err)
		}
	}

	return nil
}

func (r *PlanRepositoryImpl) GetByID(ctx context.Context, planID uint) (*subscription.Plan, error) {
	var model models.PlanModel
	err := db.GetTxFromContext(ctx, r.db).WithContext(ctx).
		Preload("Modules").First(&model, planID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get plan by ID", "error", err, "plan_id", planID)
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return r.toEntity(&model)
}

func (r *PlanRepositoryImpl) GetBySID(ctx context.Context, sid string) (*subscription.Plan, error) {
	var model models.PlanModel
	err := db.GetTxFromContext(ctx, r.db).WithContext(ctx).
		Preload("Modules").Where("sid = ?", sid).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get plan by SID", "error", err, "sid", sid)
		return nil, fmt.Errorf("failed to get plan by SID: %w", err)
	}
	return r.toEntity(&model)
}

func (r *PlanRepositoryImpl) GetBySlug(ctx context.Context, slug string) (*subscription.Plan, error) {
	var model models.PlanModel
	err := db.GetTxFromContext(ctx, r.db).WithContext(ctx).
		Preload("Modules").Where("slug = ?", slug).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get plan by slug", "error", err, "slug", slug)
		return nil, fmt.Errorf("failed to get plan by slug: %w", err)
	}
	return r.toEntity(&model)
}

func (r *PlanRepositoryImpl) ListActive(ctx context.Context) ([]*subscription.Plan, error) {
	var planModels []*models.PlanModel
	err := db.GetTxFromContext(ctx, r.db).WithContext(ctx).
		Preload("Modules").
		Where("status = ?", string(subscription.PlanStatusActive)).
		Order("sort_order ASC, id ASC").
		Find(&planModels).Error
	if err != nil {
		r.logger.Errorw("failed to list active plans", "error", err)
		return nil, fmt.Errorf("failed to list active plans: %w", err)
	}
	return r.toEntities(planModels)
}

func (r *PlanRepositoryImpl) List(ctx context.Context) ([]*subscription.Plan, error) {
	var planModels []*models.PlanModel
	err := db.GetTxFromContext(ctx, r.db).WithContext(ctx).
		Preload("Modules").
		Order("sort_order ASC, id ASC").
		Find(&planModels).Error
	if err != nil {
		r.logger.Errorw("failed to list plans", "error", err)
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return r.toEntities(planModels)
}

func (r *PlanRepositoryImpl) toModel(plan *subscription.Plan) *models.PlanModel {
	moduleRows := make([]models.PlanModuleModel, 0, len(plan.Modules()))
	for _, moduleID := range plan.Modules() {
		moduleRows = append(moduleRows, models.PlanModuleModel{ModuleID: string(moduleID)})
	}

	return &models.PlanModel{
		ID:          plan.ID(),
		SID:         plan.SID(),
		Name:        plan.Name(),
		Slug:        plan.Slug(),
		Description: plan.Description(),
		Status:      string(plan.Status()),
		SortOrder:   plan.SortOrder(),
		Version:     plan.Version(),
		CreatedAt:   plan.CreatedAt(),
		UpdatedAt:   plan.UpdatedAt(),
		Modules:     moduleRows,
	}
}

func (r *PlanRepositoryImpl) toEntity(model *models.PlanModel) (*subscription.Plan, error) {
	modules := make([]catalog.ModuleID, 0, len(model.Modules))
	for _, row := range model.Modules {
		modules = append(modules, catalog.ModuleID(row.ModuleID))
	}

	return subscription.ReconstructPlan(
		model.ID,
		model.SID,
		model.Name,
		model.Slug,
		model.Description,
		modules,
		subscription.PlanStatus(model.Status),
		model.SortOrder,
		model.Version,
		model.CreatedAt,
		model.UpdatedAt,
	)
}

func (r *PlanRepositoryImpl) toEntities(planModels []*models.PlanModel) ([]*subscription.Plan, error) {
	plans := make([]*subscription.Plan, 0, len(planModels))
	for _, model := range planModels {
		plan, err := r.toEntity(model)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}
