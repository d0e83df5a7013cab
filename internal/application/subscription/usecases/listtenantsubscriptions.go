package usecases

import (
	"context"
	"fmt"

	"scholara/internal/domain/subscription"
	"scholara/internal/domain/tenant"
	apperrors "scholara/internal/shared/errors"
	"scholara/internal/shared/logger"
)

type ListTenantSubscriptionsQuery struct {
	TenantID  uint   // internal ID (used if TenantSID is empty)
	TenantSID string // takes precedence over TenantID
}

type ListTenantSubscriptionsUseCase struct {
	subscriptionRepo subscription.Repository
	tenantRepo       tenant.Repository
	logger           logger.Interface
}

func NewListTenantSubscriptionsUseCase(
	subscriptionRepo subscription.Repository,
	tenantRepo tenant.Repository,
	logger logger.Interface,
) *ListTenantSubscriptionsUseCase {
	return &ListTenantSubscriptionsUseCase{
		subscriptionRepo: subscriptionRepo,
		tenantRepo:       tenantRepo,
		logger:           logger,
	}
}

// Execute returns the tenant's full subscription history, newest first left
// to the repository's ordering.
func (uc *ListTenantSubscriptionsUseCase) Execute(ctx context.Context, q ListTenantSubscriptionsQuery) ([]*subscription.Subscription, error) {
	tenantID := q.TenantID
	if q.TenantSID != "" {
		target, err := uc.tenantRepo.GetBySID(ctx, q.TenantSID)
		if err != nil {
			uc.logger.Errorw("failed to get tenant", "error", err, "tenant_sid", q.TenantSID)
			return nil, fmt.Errorf("failed to get tenant: %w", err)
		}
		if target == nil {
			return nil, apperrors.NewNotFoundError("tenant not found")
		}
		tenantID = target.ID()
	}

	subs, err := uc.subscriptionRepo.ListByTenant(ctx, tenantID)
	if err != nil {
		uc.logger.Errorw("failed to list subscriptions", "error", err, "tenant_id", tenantID)
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subs, nil
}
