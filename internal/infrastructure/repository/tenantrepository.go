package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"scholara/internal/domain/tenant"
	"scholara/internal/infrastructure/persistence/models"
	"scholara/internal/shared/db"
	"scholara/internal/shared/logger"
)

type TenantRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewTenantRepository(db *gorm.DB, logger logger.Interface) tenant.Repository {
	return &TenantRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *TenantRepositoryImpl) Create(ctx context.Context, t *tenant.Tenant) error {
	model := r.toModel(t)

	if err := db.GetTxFromContext(ctx, r.db).WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create tenant", "error", err)
		return fmt.Errorf("failed to create tenant: %w", err)
	}

	if err := t.SetID(model.ID); err != nil {
		return err
	}

	r.logger.Infow("tenant created", "tenant_id", model.ID, "sid", t.SID())
	return nil
}

func (r *TenantRepositoryImpl) GetByID(ctx context.Context, tenantID uint) (*tenant.Tenant, error) {
	var model models.TenantModel
	err := db.GetTxFromContext(ctx, r.db).WithContext(ctx).First(&model, tenantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get tenant by ID", "error", err, "tenant_id", tenantID)
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return r.toEntity(&model)
}

func (r *TenantRepositoryImpl) GetBySID(ctx context.Context, sid string) (*tenant.Tenant, error) {
	var model models.TenantModel
	err := db.GetTxFromContext(ctx, r.db).WithContext(ctx).Where("sid = ?", sid).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get tenant by SID", "error", err, "sid", sid)
		return nil, fmt.Errorf("failed to get tenant by SID: %w", err)
	}
	return r.toEntity(&model)
}

func (r *TenantRepositoryImpl) GetByEmail(ctx context.Context, email string) (*tenant.Tenant, error) {
	var model models.TenantModel
	err := db.GetTxFromContext(ctx, r.db).WithContext(ctx).Where("email = ?", email).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get tenant by email", "error", err)
		return nil, fmt.Errorf("failed to get tenant by email: %w", err)
	}
	return r.toEntity(&model)
}

func (r *TenantRepositoryImpl) ListIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := db.GetTxFromContext(ctx, r.db).WithContext(ctx).
		Model(&models.TenantModel{}).
		Order("id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		r.logger.Errorw("failed to list tenant IDs", "error", err)
		return nil, fmt.Errorf("failed to list tenant IDs: %w", err)
	}
	return ids, nil
}

func (r *TenantRepositoryImpl) toModel(t *tenant.Tenant) *models.TenantModel {
	return &models.TenantModel{
		ID:        t.ID(),
		SID:       t.SID(),
		Name:      t.Name(),
		Email:     t.Email(),
		Status:    string(t.Status()),
		CreatedAt: t.CreatedAt(),
		UpdatedAt: t.UpdatedAt(),
	}
}

func (r *TenantRepositoryImpl) toEntity(model *models.TenantModel) (*tenant.Tenant, error) {
	return tenant.ReconstructTenant(
		model.ID,
		model.SID,
		model.Name,
		model.Email,
		tenant.Status(model.Status),
		model.CreatedAt,
		model.UpdatedAt,
	)
}
