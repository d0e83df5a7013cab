package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"scholara/internal/domain/catalog"
	"scholara/internal/domain/entitlement"
	"scholara/internal/infrastructure/persistence/models"
	"scholara/internal/shared/db"
	"scholara/internal/shared/logger"
)

// TenantModuleRepositoryImpl persists the materialized entitlement
// projection. Rows are plain read-model records, not aggregates, so this
// repository maps structs directly without a Reconstruct step.
type TenantModuleRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewTenantModuleRepository(db *gorm.DB, logger logger.Interface) entitlement.TenantModuleRepository {
	return &TenantModuleRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *TenantModuleRepositoryImpl) DeleteByTenant(ctx context.Context, tenantID uint) error {
	err := db.GetTxFromContext(ctx, r.db).WithContext(ctx).
		Scopes(db.ForTenant(tenantID)).
		Delete(&models.TenantModuleModel{}).Error
	if err != nil {
		r.logger.Errorw("failed to delete tenant modules", "error", err, "tenant_id", tenantID)
		return fmt.Errorf("failed to delete tenant modules: %w", err)
	}
	return nil
}

func (r *TenantModuleRepositoryImpl) DeleteAll(ctx context.Context) error {
	err := db.GetTxFromContext(ctx, r.db).WithContext(ctx).
		Where("1 = 1").
		Delete(&models.TenantModuleModel{}).Error
	if err != nil {
		r.logger.Errorw("failed to clear tenant modules", "error", err)
		return fmt.Errorf("failed to clear tenant modules: %w", err)
	}
	return nil
}

func (r *TenantModuleRepositoryImpl) BulkInsert(ctx context.Context, rows []entitlement.TenantModule) error {
	if len(rows) == 0 {
		return nil
	}

	rowModels := make([]models.TenantModuleModel, 0, len(rows))
	for _, row := range rows {
		rowModels = append(rowModels, models.TenantModuleModel{
			TenantID:       row.TenantID,
			ModuleID:       string(row.ModuleID),
			SubscriptionID: row.SubscriptionID,
			GrantedAt:      row.GrantedAt,
			IsActive:       row.IsActive,
			UpdatedAt:      row.UpdatedAt,
		})
	}

	err := db.GetTxFromContext(ctx, r.db).WithContext(ctx).
		CreateInBatches(&rowModels, 500).Error
	if err != nil {
		r.logger.Errorw("failed to insert tenant modules", "error", err, "rows", len(rows))
		return fmt.Errorf("failed to insert tenant modules: %w", err)
	}
	return nil
}

func (r *TenantModuleRepositoryImpl) ListActiveByTenant(ctx context.Context, tenantID uint) ([]entitlement.TenantModule, error) {
	var rowModels []models.TenantModuleModel
	err := db.GetTxFromContext(ctx, r.db).WithContext(ctx).
		Scopes(db.ForTenant(tenantID)).
		Where("is_active = ?", true).
		Find(&rowModels).Error
	if err != nil {
		r.logger.Errorw("failed to list tenant modules", "error", err, "tenant_id", tenantID)
		return nil, fmt.Errorf("failed to list tenant modules: %w", err)
	}

	rows := make([]entitlement.TenantModule, 0, len(rowModels))
	for _, model := range rowModels {
		rows = append(rows, entitlement.TenantModule{
			TenantID:       model.TenantID,
			ModuleID:       catalog.ModuleID(model.ModuleID),
			SubscriptionID: model.SubscriptionID,
			GrantedAt:      model.GrantedAt,
			IsActive:       model.IsActive,
			UpdatedAt:      model.UpdatedAt,
		})
	}
	return rows, nil
}

func (r *TenantModuleRepositoryImpl) HasActiveModule(ctx context.Context, tenantID uint, moduleID catalog.ModuleID) (bool, error) {
	var count int64
	err := db.GetTxFromContext(ctx, r.db).WithContext(ctx).
		Model(&models.TenantModuleModel{}).
		Scopes(db.ForTenant(tenantID)).
		Where("module_id = ? AND is_active = ?", string(moduleID), true).
		Count(&count).Error
	if err != nil {
		r.logger.Errorw("failed to check tenant module", "error", err,
			"tenant_id", tenantID, "module", moduleID)
		return false, fmt.Errorf("failed to check tenant module: %w", err)
	}
	return count > 0, nil
}
