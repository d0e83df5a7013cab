package valueobjects

import "fmt"

// SubscriptionType distinguishes plan-driven subscriptions from
// administrator-curated custom ones.
type SubscriptionType string

const (
	// TypePredefined takes its module set from a named plan.
	TypePredefined SubscriptionType = "predefined"
	// TypeCustom takes its module set from explicit module grants.
	TypeCustom SubscriptionType = "custom"
)

var validTypes = map[SubscriptionType]bool{
	TypePredefined: true,
	TypeCustom:     true,
}

// ParseSubscriptionType validates a raw subscription type string.
func ParseSubscriptionType(raw string) (SubscriptionType, error) {
	t := SubscriptionType(raw)
	if !validTypes[t] {
		return "", fmt.Errorf("invalid subscription type: %q", raw)
	}
	return t, nil
}

func (t SubscriptionType) String() string {
	return string(t)
}

// IsValid reports whether the type is a known value.
func (t SubscriptionType) IsValid() bool {
	return validTypes[t]
}
