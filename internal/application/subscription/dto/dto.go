package dto

import (
	"time"

	"scholara/internal/domain/catalog"
	"scholara/internal/domain/subscription"
)

type PlanDTO struct {
	ID          uint      `json:"id"`
	SID         string    `json:"sid"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Modules     []string  `json:"modules"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type SubscriptionDTO struct {
	ID           uint       `json:"id"`
	SID          string     `json:"sid"`
	TenantID     uint       `json:"tenant_id"`
	Type         string     `json:"type"`
	PlanID       *uint      `json:"plan_id,omitempty"`
	Status       string     `json:"status"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	Price        uint64     `json:"price"`
	Currency     string     `json:"currency"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	CancelReason *string    `json:"cancel_reason,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// SubscriptionDetailsDTO is a subscription together with the plan backing it
// (predefined only) and the effective module packages.
type SubscriptionDetailsDTO struct {
	Subscription *SubscriptionDTO `json:"subscription"`
	Plan         *PlanDTO         `json:"plan,omitempty"`
	Modules      []string         `json:"modules"`
}

// ModuleIDStrings converts module identifiers to their wire representation.
func ModuleIDStrings(ids []catalog.ModuleID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

// ToPlanDTO converts a Plan entity to its presentation form.
func ToPlanDTO(plan *subscription.Plan) *PlanDTO {
	if plan == nil {
		return nil
	}

	return &PlanDTO{
		ID:          plan.ID(),
		SID:         plan.SID(),
		Name:        plan.Name(),
		Slug:        plan.Slug(),
		Description: plan.Description(),
		Status:      string(plan.Status()),
		Modules:     ModuleIDStrings(plan.Modules()),
		SortOrder:   plan.SortOrder(),
		CreatedAt:   plan.CreatedAt(),
		UpdatedAt:   plan.UpdatedAt(),
	}
}

// ToPlanDTOList batch converts plans, skipping nil entries.
func ToPlanDTOList(plans []*subscription.Plan) []*PlanDTO {
	dtos := make([]*PlanDTO, 0, len(plans))
	for _, plan := range plans {
		if plan != nil {
			dtos = append(dtos, ToPlanDTO(plan))
		}
	}
	return dtos
}

// ToSubscriptionDTO converts a Subscription entity to its presentation form.
func ToSubscriptionDTO(sub *subscription.Subscription) *SubscriptionDTO {
	if sub == nil {
		return nil
	}

	return &SubscriptionDTO{
		ID:           sub.ID(),
		SID:          sub.SID(),
		TenantID:     sub.TenantID(),
		Type:         sub.Type().String(),
		PlanID:       sub.PlanID(),
		Status:       sub.Status().String(),
		StartDate:    sub.StartDate(),
		EndDate:      sub.EndDate(),
		Price:        sub.Price(),
		Currency:     sub.Currency(),
		CancelledAt:  sub.CancelledAt(),
		CancelReason: sub.CancelReason(),
		CreatedAt:    sub.CreatedAt(),
		UpdatedAt:    sub.UpdatedAt(),
	}
}

// ToSubscriptionDTOList batch converts subscriptions, skipping nil entries.
func ToSubscriptionDTOList(subs []*subscription.Subscription) []*SubscriptionDTO {
	dtos := make([]*SubscriptionDTO, 0, len(subs))
	for _, sub := range subs {
		if sub != nil {
			dtos = append(dtos, ToSubscriptionDTO(sub))
		}
	}
	return dtos
}
