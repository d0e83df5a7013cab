package usecases

import (
	"context"
	"fmt"

	"scholara/internal/domain/tenant"
	apperrors "scholara/internal/shared/errors"
	"scholara/internal/shared/logger"
)

type GetTenantQuery struct {
	TenantID  uint   // internal ID (used if TenantSID is empty)
	TenantSID string // takes precedence over TenantID
}

type GetTenantUseCase struct {
	tenantRepo tenant.Repository
	logger     logger.Interface
}

func NewGetTenantUseCase(tenantRepo tenant.Repository, logger logger.Interface) *GetTenantUseCase {
	return &GetTenantUseCase{
		tenantRepo: tenantRepo,
		logger:     logger,
	}
}

func (uc *GetTenantUseCase) Execute(ctx context.Context, q GetTenantQuery) (*tenant.Tenant, error) {
	var t *tenant.Tenant
	var err error

	if q.TenantSID != "" {
		t, err = uc.tenantRepo.GetBySID(ctx, q.TenantSID)
	} else {
		t, err = uc.tenantRepo.GetByID(ctx, q.TenantID)
	}
	if err != nil {
		uc.logger.Errorw("failed to get tenant", "error", err,
			"tenant_id", q.TenantID, "tenant_sid", q.TenantSID)
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	if t == nil {
		return nil, apperrors.NewNotFoundError("tenant not found")
	}
	return t, nil
}
