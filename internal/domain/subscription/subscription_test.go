package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "scholara/internal/domain/subscription/valueobjects"
)

// --- helpers ---

func newPredefined(t *testing.T) *Subscription {
	t.Helper()
	sub, err := NewPredefinedSubscription(1, 10, time.Now().UTC(), nil, 49900, "USD")
	require.NoError(t, err)
	require.NotNil(t, sub)
	return sub
}

func newCustom(t *testing.T) *Subscription {
	t.Helper()
	sub, err := NewCustomSubscription(1, time.Now().UTC(), nil, 0, "USD")
	require.NoError(t, err)
	return sub
}

// --- tests ---

func TestNewPredefinedSubscription_ValidInput(t *testing.T) {
	sub := newPredefined(t)

	assert.NotEmpty(t, sub.SID())
	assert.Equal(t, uint(1), sub.TenantID())
	assert.Equal(t, vo.TypePredefined, sub.Type())
	require.NotNil(t, sub.PlanID())
	assert.Equal(t, uint(10), *sub.PlanID())
	assert.Equal(t, vo.StatusActive, sub.Status())
	assert.Nil(t, sub.EndDate())
	assert.Equal(t, 1, sub.Version())
	assert.Nil(t, sub.CancelledAt())
}

func TestNewPredefinedSubscription_RequiresPlan(t *testing.T) {
	_, err := NewPredefinedSubscription(1, 0, time.Now(), nil, 0, "USD")
	assert.Error(t, err)
}

func TestNewCustomSubscription_HasNoPlan(t *testing.T) {
	sub := newCustom(t)
	assert.Equal(t, vo.TypeCustom, sub.Type())
	assert.Nil(t, sub.PlanID())
}

func TestNewSubscription_RejectsEndBeforeStart(t *testing.T) {
	start := time.Now()
	end := start.Add(-time.Hour)
	_, err := NewPredefinedSubscription(1, 10, start, &end, 0, "USD")
	assert.Error(t, err)
}

func TestNewSubscription_RequiresTenant(t *testing.T) {
	_, err := NewCustomSubscription(0, time.Now(), nil, 0, "USD")
	assert.Error(t, err)
}

func TestCancel(t *testing.T) {
	sub := newPredefined(t)

	require.NoError(t, sub.Cancel("plan swap"))
	assert.Equal(t, vo.StatusCancelled, sub.Status())
	require.NotNil(t, sub.CancelledAt())
	require.NotNil(t, sub.CancelReason())
	assert.Equal(t, "plan swap", *sub.CancelReason())
	assert.Equal(t, 2, sub.Version())

	// cancelling again is a no-op
	require.NoError(t, sub.Cancel("again"))
	assert.Equal(t, "plan swap", *sub.CancelReason())
	assert.Equal(t, 2, sub.Version())
}

func TestCancel_RequiresReason(t *testing.T) {
	sub := newPredefined(t)
	assert.Error(t, sub.Cancel(""))
}

func TestChangePlan(t *testing.T) {
	sub := newPredefined(t)

	require.NoError(t, sub.ChangePlan(20))
	require.NotNil(t, sub.PlanID())
	assert.Equal(t, uint(20), *sub.PlanID())
	assert.Equal(t, 2, sub.Version())

	// same plan is a no-op
	require.NoError(t, sub.ChangePlan(20))
	assert.Equal(t, 2, sub.Version())
}

func TestChangePlan_RejectedForCustom(t *testing.T) {
	sub := newCustom(t)
	assert.Error(t, sub.ChangePlan(20))
}

func TestChangePlan_RejectedWhenCancelled(t *testing.T) {
	sub := newPredefined(t)
	require.NoError(t, sub.Cancel("done"))
	assert.Error(t, sub.ChangePlan(20))
}

func TestIsActive_DateExpiry(t *testing.T) {
	start := time.Now().UTC().Add(-30 * 24 * time.Hour)
	todayStart := time.Now().UTC().Truncate(24 * time.Hour)

	yesterday := todayStart.Add(-time.Hour)
	sub, err := NewPredefinedSubscription(1, 10, start, &yesterday, 0, "USD")
	require.NoError(t, err)
	assert.True(t, sub.IsDateExpired(todayStart))
	assert.False(t, sub.IsActive(todayStart))

	// expiring later today still counts as active
	laterToday := todayStart.Add(time.Hour)
	sub2, err := NewPredefinedSubscription(1, 10, start, &laterToday, 0, "USD")
	require.NoError(t, err)
	assert.False(t, sub2.IsDateExpired(todayStart))
	assert.True(t, sub2.IsActive(todayStart))

	// open-ended never expires
	sub3 := newPredefined(t)
	assert.False(t, sub3.IsDateExpired(todayStart))
}

func TestReconstructSubscription_Validation(t *testing.T) {
	now := time.Now()
	planID := uint(10)

	_, err := ReconstructSubscription(SubscriptionReconstructParams{
		ID: 0, TenantID: 1, Type: vo.TypeCustom, Status: vo.StatusActive, StartDate: now,
	})
	assert.Error(t, err, "zero ID rejected")

	_, err = ReconstructSubscription(SubscriptionReconstructParams{
		ID: 1, TenantID: 1, Type: "trial", Status: vo.StatusActive, StartDate: now,
	})
	assert.Error(t, err, "unknown type rejected")

	_, err = ReconstructSubscription(SubscriptionReconstructParams{
		ID: 1, TenantID: 1, Type: vo.TypePredefined, Status: vo.StatusActive, StartDate: now,
	})
	assert.Error(t, err, "predefined without plan rejected")

	sub, err := ReconstructSubscription(SubscriptionReconstructParams{
		ID: 1, SID: "sub_x", TenantID: 1, Type: vo.TypePredefined, PlanID: &planID,
		Status: vo.StatusActive, StartDate: now, Version: 3, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, sub.Version())
}
