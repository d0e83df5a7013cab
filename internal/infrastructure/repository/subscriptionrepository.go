package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"scholara/internal/domain/subscription"
	vo "scholara/internal/domain/subscription/valueobjects"
	"scholara/internal/infrastructure/persistence/models"
	"scholara/internal/shared/db"
	"scholara/internal/shared/logger"
)

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewSubscriptionRepository(db *gorm.DB, logger logger.Interface) subscription.Repository {
	return &SubscriptionRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *SubscriptionRepositoryImpl) Create(ctx context.Context, sub *subscription.Subscription) error {
	model := r.toModel(sub)

	if err := db.GetTxFromContext(ctx, r.db).WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create subscription", "error", err, "tenant_id", sub.TenantID())
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	if err := sub.SetID(model.ID); err != nil {
		return err
	}

	return nil
}

func (r *SubscriptionRepositoryImpl) Update(ctx context.Context, sub *subscription.Subscription) error {
	model := r.toModel(sub)

	result := db.GetTxFromContext(ctx, r.db).WithContext(ctx).
		Model(&models.SubscriptionModel{}).
		Where("id = ?", sub.ID()).
		Updates(map[string]interface{}{
			"plan_id":       model.PlanID,
			"status":        model.Status,
			"start_date":    model.StartDate,
			"end_date":      model.EndDate,
			"price":         model.Price,
			"currency":      model.Currency,
			"cancelled_at":  model.CancelledAt,
			"cancel_reason": model.CancelReason,
			"version":       model.Version,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update subscription", "error", result.Error, "subscription_id", sub.ID())
		return fmt.Errorf("failed to update subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("subscription %d not found", sub.ID())
	}
	return nil
}

func (r *SubscriptionRepositoryImpl) GetByID(ctx context.Context, subscriptionID uint) (*subscription.Subscription, error) {
	var model models.SubscriptionModel
	err := db.GetTxFromContext(ctx, r.db).WithContext(ctx).First(&model, subscriptionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get subscription by ID", "error", err, "subscription_id", subscriptionID)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return r.toEntity(&model)
}

func (r *SubscriptionRepositoryImpl) GetBySID(ctx context.Context, sid string) (*subscription.Subscription, error) {
	var model models.SubscriptionModel
	err := db.GetTxFromContext(ctx, r.db).WithContext(ctx).Where("sid = ?", sid).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get subscription by SID", "error", err, "sid", sid)
		return nil, fmt.Errorf("failed to get subscription by SID: %w", err)
	}
	return r.toEntity(&model)
}

func (r *SubscriptionRepositoryImpl) ListActiveByTenant(ctx context.Context, tenantID uint) ([]*subscription.Subscription, error) {
	var subModels []*models.SubscriptionModel
	err := db.GetTxFromContext(ctx, r.db).WithContext(ctx).
		Scopes(db.ForTenant(tenantID)).
		Where("status = ?", string(vo.StatusActive)).
		Order("start_date DESC").
		Find(&subModels).Error
	if err != nil {
		r.logger.Errorw("failed to list active subscriptions", "error", err, "tenant_id", tenantID)
		return nil, fmt.Errorf("failed to list active subscriptions: %w", err)
	}
	return r.toEntities(subModels)
}

func (r *SubscriptionRepositoryImpl) ListByTenant(ctx context.Context, tenantID uint) ([]*subscription.Subscription, error) {
	var subModels []*models.SubscriptionModel
	err := db.GetTxFromContext(ctx, r.db).WithContext(ctx).
		Scopes(db.ForTenant(tenantID)).
		Order("start_date DESC").
		Find(&subModels).Error
	if err != nil {
		r.logger.Errorw("failed to list subscriptions", "error", err, "tenant_id", tenantID)
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return r.toEntities(subModels)
}

func (r *SubscriptionRepositoryImpl) ListAll(ctx context.Context) ([]*subscription.Subscription, error) {
	var subModels []*models.SubscriptionModel
	err := db.GetTxFromContext(ctx, r.db).WithContext(ctx).
		Order("tenant_id ASC, start_date DESC").
		Find(&subModels).Error
	if err != nil {
		r.logger.Errorw("failed to list all subscriptions", "error", err)
		return nil, fmt.Errorf("failed to list all subscriptions: %w", err)
	}
	return r.toEntities(subModels)
}

func (r *SubscriptionRepositoryImpl) toModel(sub *subscription.Subscription) *models.SubscriptionModel {
	return &models.SubscriptionModel{
		ID:           sub.ID(),
		SID:          sub.SID(),
		TenantID:     sub.TenantID(),
		Type:         string(sub.Type()),
		PlanID:       sub.PlanID(),
		Status:       string(sub.Status()),
		StartDate:    sub.StartDate(),
		EndDate:      sub.EndDate(),
		Price:        sub.Price(),
		Currency:     sub.Currency(),
		CancelledAt:  sub.CancelledAt(),
		CancelReason: sub.CancelReason(),
		Version:      sub.Version(),
		CreatedAt:    sub.CreatedAt(),
		UpdatedAt:    sub.UpdatedAt(),
	}
}

func (r *SubscriptionRepositoryImpl) toEntity(model *models.SubscriptionModel) (*subscription.Subscription, error) {
	return subscription.ReconstructSubscription(subscription.SubscriptionReconstructParams{
		ID:           model.ID,
		SID:          model.SID,
		TenantID:     model.TenantID,
		Type:         vo.SubscriptionType(model.Type),
		PlanID:       model.PlanID,
		Status:       vo.SubscriptionStatus(model.Status),
		StartDate:    model.StartDate,
		EndDate:      model.EndDate,
		Price:        model.Price,
		Currency:     model.Currency,
		CancelledAt:  model.CancelledAt,
		CancelReason: model.CancelReason,
		Version:      model.Version,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	})
}

func (r *SubscriptionRepositoryImpl) toEntities(subModels []*models.SubscriptionModel) ([]*subscription.Subscription, error) {
	subs := make([]*subscription.Subscription, 0, len(subModels))
	for _, model := range subModels {
		sub, err := r.toEntity(model)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}
