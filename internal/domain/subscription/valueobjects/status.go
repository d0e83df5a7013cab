// Package valueobjects holds subscription value objects.
package valueobjects

// SubscriptionStatus represents the lifecycle state of a subscription.
// Subscriptions are never hard-deleted; cancellation is soft state.
type SubscriptionStatus string

const (
	StatusActive    SubscriptionStatus = "active"
	StatusCancelled SubscriptionStatus = "cancelled"
)

// ValidStatuses is the set of accepted subscription statuses.
var ValidStatuses = map[SubscriptionStatus]bool{
	StatusActive:    true,
	StatusCancelled: true,
}

func (s SubscriptionStatus) String() string {
	return string(s)
}

// IsValid reports whether the status is a known value.
func (s SubscriptionStatus) IsValid() bool {
	return ValidStatuses[s]
}

// CanUseService reports whether a subscription in this status grants access.
func (s SubscriptionStatus) CanUseService() bool {
	return s == StatusActive
}
