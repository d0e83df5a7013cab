package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholara/internal/domain/catalog"
	"scholara/internal/domain/subscription"
	vo "scholara/internal/domain/subscription/valueobjects"
	"scholara/internal/domain/tenant"
	apperrors "scholara/internal/shared/errors"
	"scholara/internal/shared/logger"
)

type createSubscriptionFixture struct {
	uc        *CreateSubscriptionUseCase
	subs      *memSubscriptionRepo
	plans     *memPlanRepo
	grants    *memGrantRepo
	tenants   *memTenantRepo
	refresher *recordingRefresher
}

func newCreateSubscriptionFixture(t *testing.T) *createSubscriptionFixture {
	t.Helper()

	subs := &memSubscriptionRepo{}
	plans := &memPlanRepo{}
	grants := &memGrantRepo{}
	tenants := &memTenantRepo{}
	refresher := &recordingRefresher{}

	uc := NewCreateSubscriptionUseCase(
		subs, plans, grants, tenants, refresher, passthroughTxRunner{}, logger.NewLogger())

	return &createSubscriptionFixture{
		uc:        uc,
		subs:      subs,
		plans:     plans,
		grants:    grants,
		tenants:   tenants,
		refresher: refresher,
	}
}

func (f *createSubscriptionFixture) seedTenant(t *testing.T) *tenant.Tenant {
	t.Helper()
	owner, err := tenant.NewTenant("Hillcrest Academy", "admin@hillcrest.test")
	require.NoError(t, err)
	require.NoError(t, f.tenants.Create(context.Background(), owner))
	return owner
}

func (f *createSubscriptionFixture) seedPlan(t *testing.T, modules ...catalog.ModuleID) *subscription.Plan {
	t.Helper()
	plan, err := subscription.NewPlan("Standard", "standard", "", modules)
	require.NoError(t, err)
	require.NoError(t, f.plans.Create(context.Background(), plan))
	return plan
}

func TestCreatePredefinedSubscription(t *testing.T) {
	f := newCreateSubscriptionFixture(t)
	owner := f.seedTenant(t)
	plan := f.seedPlan(t, catalog.ModuleEnrollment)

	sub, err := f.uc.Execute(context.Background(), CreateSubscriptionCommand{
		TenantID: owner.ID(),
		Type:     "predefined",
		PlanID:   plan.ID(),
		Currency: "USD",
	})
	require.NoError(t, err)

	assert.Equal(t, vo.TypePredefined, sub.Type())
	assert.Equal(t, vo.StatusActive, sub.Status())
	require.NotNil(t, sub.PlanID())
	assert.Equal(t, plan.ID(), *sub.PlanID())

	// The projection was rebuilt for the tenant and caches invalidated.
	require.Len(t, f.refresher.rebuilt, 1)
	require.NotNil(t, f.refresher.rebuilt[0])
	assert.Equal(t, owner.ID(), *f.refresher.rebuilt[0])
	require.Len(t, f.refresher.invalidated, 1)
}

func TestCreateSubscriptionCancelsPriorActive(t *testing.T) {
	f := newCreateSubscriptionFixture(t)
	owner := f.seedTenant(t)
	plan := f.seedPlan(t, catalog.ModuleEnrollment)

	first, err := f.uc.Execute(context.Background(), CreateSubscriptionCommand{
		TenantID: owner.ID(), Type: "predefined", PlanID: plan.ID(), Currency: "USD",
	})
	require.NoError(t, err)

	second, err := f.uc.Execute(context.Background(), CreateSubscriptionCommand{
		TenantID: owner.ID(), Type: "custom", Currency: "USD",
	})
	require.NoError(t, err)

	assert.Equal(t, vo.StatusCancelled, first.Status())
	assert.Equal(t, vo.StatusActive, second.Status())

	active, err := f.subs.ListActiveByTenant(context.Background(), owner.ID())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, second.ID(), active[0].ID())
}

func TestCreateCustomSubscriptionSeedsCoreGrant(t *testing.T) {
	f := newCreateSubscriptionFixture(t)
	owner := f.seedTenant(t)

	sub, err := f.uc.Execute(context.Background(), CreateSubscriptionCommand{
		TenantID: owner.ID(), Type: "custom", Currency: "USD",
	})
	require.NoError(t, err)

	grants, err := f.grants.ListGrantedBySubscription(context.Background(), sub.ID())
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, catalog.ModuleCore, grants[0].ModuleID())
}

func TestCreateSubscriptionUnknownTenant(t *testing.T) {
	f := newCreateSubscriptionFixture(t)

	_, err := f.uc.Execute(context.Background(), CreateSubscriptionCommand{
		TenantID: 42, Type: "custom", Currency: "USD",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Empty(t, f.refresher.rebuilt)
}

func TestCreateSubscriptionInvalidType(t *testing.T) {
	f := newCreateSubscriptionFixture(t)
	owner := f.seedTenant(t)

	_, err := f.uc.Execute(context.Background(), CreateSubscriptionCommand{
		TenantID: owner.ID(), Type: "trial", Currency: "USD",
	})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
}

func TestCreatePredefinedSubscriptionRejectsInactivePlan(t *testing.T) {
	f := newCreateSubscriptionFixture(t)
	owner := f.seedTenant(t)
	plan := f.seedPlan(t, catalog.ModuleFinance)
	plan.Deactivate()

	_, err := f.uc.Execute(context.Background(), CreateSubscriptionCommand{
		TenantID: owner.ID(), Type: "predefined", PlanID: plan.ID(), Currency: "USD",
	})
	require.Error(t, err)
	assert.Empty(t, f.refresher.rebuilt)
}

func TestCreateSubscriptionDefaultsStartDate(t *testing.T) {
	f := newCreateSubscriptionFixture(t)
	owner := f.seedTenant(t)

	before := time.Now().UTC()
	sub, err := f.uc.Execute(context.Background(), CreateSubscriptionCommand{
		TenantID: owner.ID(), Type: "custom", Currency: "USD",
	})
	require.NoError(t, err)
	assert.False(t, sub.StartDate().Before(before.Add(-time.Second)))
}
