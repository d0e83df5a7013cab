package subscription

import "errors"

var (
	// ErrCoreModuleNotRevocable is returned when an administrator attempts to
	// revoke the mandatory core module grant.
	ErrCoreModuleNotRevocable = errors.New("the core module grant cannot be revoked")

	// ErrSubscriptionNotFound indicates no subscription matched the query.
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrPlanNotFound indicates no plan matched the query.
	ErrPlanNotFound = errors.New("plan not found")

	// ErrNotCustomSubscription is returned when a module grant operation is
	// attempted on a predefined subscription.
	ErrNotCustomSubscription = errors.New("module grants apply only to custom subscriptions")

	// ErrNotPredefinedSubscription is returned when a plan operation is
	// attempted on a custom subscription.
	ErrNotPredefinedSubscription = errors.New("plan changes apply only to predefined subscriptions")
)
