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

type ModuleGrantRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewModuleGrantRepository(db *gorm.DB, logger logger.Interface) subscription.ModuleGrantRepository {
	return &ModuleGrantRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *ModuleGrantRepositoryImpl) Create(ctx context.Context, grant *subscription.ModuleGrant) error {
	model := r.toModel(grant)

	if err := db.GetTxFromContext(ctx, r.db).WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create module grant", "error", err,
			"subscription_id", grant.SubscriptionID(), "module", grant.ModuleID())
		return fmt.Errorf("failed to create module grant: %w", err)
	}

	if err := grant.SetID(model.ID); err != nil {
		return err
	}

	return nil
}

func (r *ModuleGrantRepositoryImpl) Update(ctx context.Context, grant *subscription.ModuleGrant) error {
	model := r.toModel(grant)

	result := db.GetTxFromContext(ctx, r.db).WithContext(ctx).
		Model(&models.ModuleGrantModel{}).
		Where("id = ?", grant.ID()).
		Updates(map[string]interface{}{
			"granted_at": model.GrantedAt,
			"granted_by": model.GrantedBy,
			"revoked_at": model.RevokedAt,
			"revoked_by": model.RevokedBy,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update module grant", "error", result.Error, "grant_id", grant.ID())
		return fmt.Errorf("failed to update module grant: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("module grant %d not found", grant.ID())
	}
	return nil
}

func (r *ModuleGrantRepositoryImpl) GetBySubscriptionAndModule(ctx context.Context, subscriptionID uint, moduleID catalog.ModuleID) (*subscription.ModuleGrant, error) {
	var model models.ModuleGrantModel
	err := db.GetTxFromContext(ctx, r.db).WithContext(ctx).
		Where("subscription_id = ? AND module_id = ?", subscriptionID, string(moduleID)).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get module grant", "error", err,
			"subscription_id", subscriptionID, "module", moduleID)
		return nil, fmt.Errorf("failed to get module grant: %w", err)
	}
	return r.toEntity(&model)
}

func (r *ModuleGrantRepositoryImpl) ListBySubscription(ctx context.Context, subscriptionID uint) ([]*subscription.ModuleGrant, error) {
	var grantModels []*models.ModuleGrantModel
	err := db.GetTxFromContext(ctx, r.db).WithContext(ctx).
		Where("subscription_id = ?", subscriptionID).
		Order("id ASC").
		Find(&grantModels).Error
	if err != nil {
		r.logger.Errorw("failed to list module grants", "error", err, "subscription_id", subscriptionID)
		return nil, fmt.Errorf("failed to list module grants: %w", err)
	}
	return r.toEntities(grantModels)
}

func (r *ModuleGrantRepositoryImpl) ListGrantedBySubscription(ctx context.Context, subscriptionID uint) ([]*subscription.ModuleGrant, error) {
	var grantModels []*models.ModuleGrantModel
	err := db.GetTxFromContext(ctx, r.db).WithContext(ctx).
		Where("subscription_id = ? AND revoked_at IS NULL", subscriptionID).
		Order("id ASC").
		Find(&grantModels).Error
	if err != nil {
		r.logger.Errorw("failed to list granted modules", "error", err, "subscription_id", subscriptionID)
		return nil, fmt.Errorf("failed to list granted modules: %w", err)
	}
	return r.toEntities(grantModels)
}

func (r *ModuleGrantRepositoryImpl) toModel(grant *subscription.ModuleGrant) *models.ModuleGrantModel {
	return &models.ModuleGrantModel{
		ID:             grant.ID(),
		SubscriptionID: grant.SubscriptionID(),
		ModuleID:       string(grant.ModuleID()),
		GrantedAt:      grant.GrantedAt(),
		GrantedBy:      grant.GrantedBy(),
		RevokedAt:      grant.RevokedAt(),
		RevokedBy:      grant.RevokedBy(),
		CreatedAt:      grant.CreatedAt(),
		UpdatedAt:      grant.UpdatedAt(),
	}
}

func (r *ModuleGrantRepositoryImpl) toEntity(model *models.ModuleGrantModel) (*subscription.ModuleGrant, error) {
	return subscription.ReconstructModuleGrant(
		model.ID,
		model.SubscriptionID,
		catalog.ModuleID(model.ModuleID),
		model.GrantedAt,
		model.GrantedBy,
		model.RevokedAt,
		model.RevokedBy,
		model.CreatedAt,
		model.UpdatedAt,
	)
}

func (r *ModuleGrantRepositoryImpl) toEntities(grantModels []*models.ModuleGrantModel) ([]*subscription.ModuleGrant, error) {
	grants := make([]*subscription.ModuleGrant, 0, len(grantModels))
	for _, model := range grantModels {
		grant, err := r.toEntity(model)
		if err != nil {
			return nil, err
		}
		grants = append(grants, grant)
	}
	return grants, nil
}
