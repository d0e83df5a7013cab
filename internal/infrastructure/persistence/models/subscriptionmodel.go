package models

import (
	"time"

	"gorm.io/gorm"

	vo "scholara/internal/domain/subscription/valueobjects"
	"scholara/internal/shared/constants"
)

// SubscriptionModel represents the database persistence model for tenant
// subscriptions. This is the anti-corruption layer between domain and
// database.
type SubscriptionModel struct {
	ID           uint   `gorm:"primarykey"`
	SID          string `gorm:"uniqueIndex;not null;size:32"`
	TenantID     uint   `gorm:"not null;index:idx_tenant_status"`
	Type         string `gorm:"not null;size:20"`
	PlanID       *uint  `gorm:"index"`
	Status       string `gorm:"not null;size:20;default:active;index:idx_tenant_status"`
	StartDate    time.Time
	EndDate      *time.Time
	Price        uint64 `gorm:"not null;default:0"`
	Currency     string `gorm:"not null;size:3"`
	CancelledAt  *time.Time
	CancelReason *string `gorm:"size:255"`
	Version      int     `gorm:"not null;default:1"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the table name for GORM
func (SubscriptionModel) TableName() string {
	return constants.TableSubscriptions
}

// BeforeCreate hook for GORM
func (s *SubscriptionModel) BeforeCreate(tx *gorm.DB) error {
	if s.Status == "" {
		s.Status = string(vo.StatusActive)
	}
	if s.Currency == "" {
		s.Currency = constants.DefaultCurrency
	}
	return nil
}
