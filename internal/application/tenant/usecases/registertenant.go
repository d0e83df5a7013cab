package usecases

import (
	"context"
	"fmt"

	"scholara/internal/domain/tenant"
	apperrors "scholara/internal/shared/errors"
	"scholara/internal/shared/logger"
)

type RegisterTenantCommand struct {
	Name  string
	Email string
}

type RegisterTenantUseCase struct {
	tenantRepo tenant.Repository
	logger     logger.Interface
}

func NewRegisterTenantUseCase(tenantRepo tenant.Repository, logger logger.Interface) *RegisterTenantUseCase {
	return &RegisterTenantUseCase{
		tenantRepo: tenantRepo,
		logger:     logger,
	}
}

// Execute registers a school tenant. A fresh tenant has no subscription and
// resolves to the core package until one is created.
func (uc *RegisterTenantUseCase) Execute(ctx context.Context, cmd RegisterTenantCommand) (*tenant.Tenant, error) {
	existing, err := uc.tenantRepo.GetByEmail(ctx, cmd.Email)
	if err != nil {
		uc.logger.Errorw("failed to check tenant email", "error", err)
		return nil, fmt.Errorf("failed to check tenant email: %w", err)
	}
	if existing != nil {
		return nil, apperrors.NewConflictError("a tenant with this email already exists")
	}

	t, err := tenant.NewTenant(cmd.Name, cmd.Email)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if err := uc.tenantRepo.Create(ctx, t); err != nil {
		uc.logger.Errorw("failed to create tenant", "error", err)
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	uc.logger.Infow("tenant registered", "tenant_sid", t.SID(), "name", t.Name())
	return t, nil
}
