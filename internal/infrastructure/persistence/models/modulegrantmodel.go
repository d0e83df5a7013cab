package models

import (
	"time"

	"scholara/internal/shared/constants"
)

// ModuleGrantModel represents the database persistence model for module
// grants on custom subscriptions. One row per subscription and module;
// revocation is recorded in place rather than deleting the row.
type ModuleGrantModel struct {
	ID             uint   `gorm:"primarykey"`
	SubscriptionID uint   `gorm:"uniqueIndex:idx_subscription_module;not null;index"`
	ModuleID       string `gorm:"uniqueIndex:idx_subscription_module;not null;size:32"`
	GrantedAt      time.Time
	GrantedBy      *uint
	RevokedAt      *time.Time
	RevokedBy      *uint
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName specifies the table name for GORM
func (ModuleGrantModel) TableName() string {
	return constants.TableModuleGrants
}
