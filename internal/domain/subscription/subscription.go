package subscription

import (
	"fmt"
	"time"

	vo "scholara/internal/domain/subscription/valueobjects"
	"scholara/internal/shared/id"
)

// Subscription represents the subscription aggregate root. A tenant has at
// most one active subscription; creating a new one cancels prior active rows.
type Subscription struct {
	id           uint
	sid          string
	tenantID     uint
	subType      vo.SubscriptionType
	planID       *uint // set only for predefined subscriptions
	status       vo.SubscriptionStatus
	startDate    time.Time
	endDate      *time.Time // nil means open-ended
	price        uint64     // minor currency units, carried for billing, not computed here
	currency     string
	cancelledAt  *time.Time
	cancelReason *string
	version      int
	createdAt    time.Time
	updatedAt    time.Time
}

// NewPredefinedSubscription creates a plan-driven subscription.
func NewPredefinedSubscription(tenantID, planID uint, startDate time.Time, endDate *time.Time, price uint64, currency string) (*Subscription, error) {
	if planID == 0 {
		return nil, fmt.Errorf("plan ID is required")
	}
	s, err := newSubscription(tenantID, vo.TypePredefined, startDate, endDate, price, currency)
	if err != nil {
		return nil, err
	}
	s.planID = &planID
	return s, nil
}

// NewCustomSubscription creates a subscription whose modules come from
// explicit grants.
func NewCustomSubscription(tenantID uint, startDate time.Time, endDate *time.Time, price uint64, currency string) (*Subscription, error) {
	return newSubscription(tenantID, vo.TypeCustom, startDate, endDate, price, currency)
}

func newSubscription(tenantID uint, subType vo.SubscriptionType, startDate time.Time, endDate *time.Time, price uint64, currency string) (*Subscription, error) {
	if tenantID == 0 {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if startDate.IsZero() {
		return nil, fmt.Errorf("start date is required")
	}
	if endDate != nil && endDate.Before(startDate) {
		return nil, fmt.Errorf("end date must be after start date")
	}
	if currency == "" {
		currency = "USD"
	}

	sid, err := id.NewSubscriptionSID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate subscription SID: %w", err)
	}

	now := time.Now()
	return &Subscription{
		sid:       sid,
		tenantID:  tenantID,
		subType:   subType,
		status:    vo.StatusActive,
		startDate: startDate,
		endDate:   endDate,
		price:     price,
		currency:  currency,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// SubscriptionReconstructParams carries persistence state for reconstruction.
type SubscriptionReconstructParams struct {
	ID           uint
	SID          string
	TenantID     uint
	Type         vo.SubscriptionType
	PlanID       *uint
	Status       vo.SubscriptionStatus
	StartDate    time.Time
	EndDate      *time.Time
	Price        uint64
	Currency     string
	CancelledAt  *time.Time
	CancelReason *string
	Version      int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ReconstructSubscription reconstructs a subscription from persistence.
func ReconstructSubscription(p SubscriptionReconstructParams) (*Subscription, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("subscription ID cannot be zero")
	}
	if p.TenantID == 0 {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if !p.Type.IsValid() {
		return nil, fmt.Errorf("invalid subscription type: %s", p.Type)
	}
	if !p.Status.IsValid() {
		return nil, fmt.Errorf("invalid subscription status: %s", p.Status)
	}
	if p.Type == vo.TypePredefined && (p.PlanID == nil || *p.PlanID == 0) {
		return nil, fmt.Errorf("predefined subscription requires a plan ID")
	}

	return &Subscription{
		id:           p.ID,
		sid:          p.SID,
		tenantID:     p.TenantID,
		subType:      p.Type,
		planID:       p.PlanID,
		status:       p.Status,
		startDate:    p.StartDate,
		endDate:      p.EndDate,
		price:        p.Price,
		currency:     p.Currency,
		cancelledAt:  p.CancelledAt,
		cancelReason: p.CancelReason,
		version:      p.Version,
		createdAt:    p.CreatedAt,
		updatedAt:    p.UpdatedAt,
	}, nil
}

func (s *Subscription) ID() uint                      { return s.id }
func (s *Subscription) SID() string                   { return s.sid }
func (s *Subscription) TenantID() uint                { return s.tenantID }
func (s *Subscription) Type() vo.SubscriptionType     { return s.subType }
func (s *Subscription) PlanID() *uint                 { return s.planID }
func (s *Subscription) Status() vo.SubscriptionStatus { return s.status }
func (s *Subscription) StartDate() time.Time          { return s.startDate }
func (s *Subscription) EndDate() *time.Time           { return s.endDate }
func (s *Subscription) Price() uint64                 { return s.price }
func (s *Subscription) Currency() string              { return s.currency }
func (s *Subscription) CancelledAt() *time.Time       { return s.cancelledAt }
func (s *Subscription) CancelReason() *string         { return s.cancelReason }
func (s *Subscription) Version() int                  { return s.version }
func (s *Subscription) CreatedAt() time.Time          { return s.createdAt }
func (s *Subscription) UpdatedAt() time.Time          { return s.updatedAt }

// SetID sets the subscription ID (only for persistence layer use).
func (s *Subscription) SetID(subscriptionID uint) error {
	if s.id != 0 {
		return fmt.Errorf("subscription ID is already set")
	}
	if subscriptionID == 0 {
		return fmt.Errorf("subscription ID cannot be zero")
	}
	s.id = subscriptionID
	return nil
}

// Cancel cancels the subscription with a reason. Cancelling an already
// cancelled subscription is a no-op.
func (s *Subscription) Cancel(reason string) error {
	if s.status == vo.StatusCancelled {
		return nil
	}
	if reason == "" {
		return fmt.Errorf("cancel reason is required")
	}

	now := time.Now()
	s.status = vo.StatusCancelled
	s.cancelledAt = &now
	s.cancelReason = &reason
	s.updatedAt = now
	s.version++

	return nil
}

// ChangePlan points a predefined subscription at a different plan.
func (s *Subscription) ChangePlan(newPlanID uint) error {
	if s.subType != vo.TypePredefined {
		return fmt.Errorf("cannot change plan on a %s subscription", s.subType)
	}
	if newPlanID == 0 {
		return fmt.Errorf("new plan ID is required")
	}
	if s.status != vo.StatusActive {
		return fmt.Errorf("cannot change plan for subscription with status %s", s.status)
	}
	if s.planID != nil && *s.planID == newPlanID {
		return nil
	}

	s.planID = &newPlanID
	s.updatedAt = time.Now()
	s.version++

	return nil
}

// SetEndDate updates the end date. A nil end date makes the subscription
// open-ended.
func (s *Subscription) SetEndDate(endDate *time.Time) error {
	if endDate != nil && endDate.Before(s.startDate) {
		return fmt.Errorf("end date must be after start date")
	}
	s.endDate = endDate
	s.updatedAt = time.Now()
	s.version++
	return nil
}

// IsDateExpired reports whether the subscription's end date, if any, has
// passed relative to the given day boundary.
func (s *Subscription) IsDateExpired(todayStart time.Time) bool {
	if s.endDate == nil {
		return false
	}
	return s.endDate.Before(todayStart)
}

// IsActive reports whether the subscription currently grants access.
func (s *Subscription) IsActive(todayStart time.Time) bool {
	return s.status.CanUseService() && !s.IsDateExpired(todayStart)
}

// Validate performs domain-level validation.
func (s *Subscription) Validate() error {
	if s.tenantID == 0 {
		return fmt.Errorf("tenant ID is required")
	}
	if !s.subType.IsValid() {
		return fmt.Errorf("invalid subscription type: %s", s.subType)
	}
	if !s.status.IsValid() {
		return fmt.Errorf("invalid status: %s", s.status)
	}
	if s.subType == vo.TypePredefined && (s.planID == nil || *s.planID == 0) {
		return fmt.Errorf("predefined subscription requires a plan ID")
	}
	if s.endDate != nil && s.endDate.Before(s.startDate) {
		return fmt.Errorf("end date must be after start date")
	}
	return nil
}
