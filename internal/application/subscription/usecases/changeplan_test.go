package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholara/internal/domain/catalog"
	"scholara/internal/domain/subscription"
	apperrors "scholara/internal/shared/errors"
	"scholara/internal/shared/logger"
)

type changePlanFixture struct {
	uc        *ChangePlanUseCase
	cancelUC  *CancelSubscriptionUseCase
	subs      *memSubscriptionRepo
	plans     *memPlanRepo
	refresher *recordingRefresher
}

func newChangePlanFixture(t *testing.T) *changePlanFixture {
	t.Helper()

	subs := &memSubscriptionRepo{}
	plans := &memPlanRepo{}
	refresher := &recordingRefresher{}
	log := logger.NewLogger()

	return &changePlanFixture{
		uc:        NewChangePlanUseCase(subs, plans, refresher, passthroughTxRunner{}, log),
		cancelUC:  NewCancelSubscriptionUseCase(subs, refresher, passthroughTxRunner{}, log),
		subs:      subs,
		plans:     plans,
		refresher: refresher,
	}
}

func (f *changePlanFixture) seedPlan(t *testing.T, slug string, modules ...catalog.ModuleID) *subscription.Plan {
	t.Helper()
	plan, err := subscription.NewPlan(slug, slug, "", modules)
	require.NoError(t, err)
	require.NoError(t, f.plans.Create(context.Background(), plan))
	return plan
}

func (f *changePlanFixture) seedPredefined(t *testing.T, tenantID, planID uint) *subscription.Subscription {
	t.Helper()
	sub, err := subscription.NewPredefinedSubscription(tenantID, planID, time.Now().UTC(), nil, 0, "USD")
	require.NoError(t, err)
	require.NoError(t, f.subs.Create(context.Background(), sub))
	return sub
}

func TestChangePlan(t *testing.T) {
	f := newChangePlanFixture(t)
	basic := f.seedPlan(t, "basic", catalog.ModuleEnrollment)
	premium := f.seedPlan(t, "premium", catalog.ModuleEnrollment, catalog.ModuleFinance)
	sub := f.seedPredefined(t, 1, basic.ID())

	err := f.uc.Execute(context.Background(), ChangePlanCommand{
		SubscriptionID: sub.ID(), NewPlanID: premium.ID(),
	})
	require.NoError(t, err)

	require.NotNil(t, sub.PlanID())
	assert.Equal(t, premium.ID(), *sub.PlanID())

	// Rebuild inside the mutation, invalidation after it.
	require.Len(t, f.refresher.rebuilt, 1)
	require.NotNil(t, f.refresher.rebuilt[0])
	assert.Equal(t, uint(1), *f.refresher.rebuilt[0])
	require.Len(t, f.refresher.invalidated, 1)
}

func TestChangePlanToInactivePlanRejected(t *testing.T) {
	f := newChangePlanFixture(t)
	basic := f.seedPlan(t, "basic", catalog.ModuleEnrollment)
	retired := f.seedPlan(t, "retired", catalog.ModuleFinance)
	retired.Deactivate()
	sub := f.seedPredefined(t, 1, basic.ID())

	err := f.uc.Execute(context.Background(), ChangePlanCommand{
		SubscriptionID: sub.ID(), NewPlanID: retired.ID(),
	})
	require.Error(t, err)
	assert.Empty(t, f.refresher.rebuilt)
}

func TestChangePlanOnCancelledSubscriptionRejected(t *testing.T) {
	f := newChangePlanFixture(t)
	basic := f.seedPlan(t, "basic", catalog.ModuleEnrollment)
	premium := f.seedPlan(t, "premium", catalog.ModuleFinance)
	sub := f.seedPredefined(t, 1, basic.ID())

	require.NoError(t, f.cancelUC.Execute(context.Background(), CancelSubscriptionCommand{
		SubscriptionID: sub.ID(), Reason: "school closed",
	}))

	err := f.uc.Execute(context.Background(), ChangePlanCommand{
		SubscriptionID: sub.ID(), NewPlanID: premium.ID(),
	})
	require.Error(t, err)
}

func TestCancelSubscription(t *testing.T) {
	f := newChangePlanFixture(t)
	basic := f.seedPlan(t, "basic", catalog.ModuleEnrollment)
	sub := f.seedPredefined(t, 3, basic.ID())

	err := f.cancelUC.Execute(context.Background(), CancelSubscriptionCommand{
		SubscriptionID: sub.ID(), Reason: "non-payment",
	})
	require.NoError(t, err)

	assert.False(t, sub.Status().CanUseService())
	require.Len(t, f.refresher.rebuilt, 1)
	require.NotNil(t, f.refresher.rebuilt[0])
	assert.Equal(t, uint(3), *f.refresher.rebuilt[0])
}

func TestCancelUnknownSubscription(t *testing.T) {
	f := newChangePlanFixture(t)

	err := f.cancelUC.Execute(context.Background(), CancelSubscriptionCommand{
		SubscriptionID: 7, Reason: "x",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}
