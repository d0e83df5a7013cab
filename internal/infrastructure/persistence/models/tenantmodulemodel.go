package models

import (
	"time"

	"scholara/internal/shared/constants"
)

// TenantModuleModel is one row of the materialized tenant entitlement
// projection. The composite index carries is_active so the synchronous
// capability check resolves with a single index lookup.
type TenantModuleModel struct {
	ID             uint   `gorm:"primarykey"`
	TenantID       uint   `gorm:"uniqueIndex:idx_tenant_module;not null;index:idx_tenant_module_active,priority:1"`
	ModuleID       string `gorm:"uniqueIndex:idx_tenant_module;not null;size:32;index:idx_tenant_module_active,priority:2"`
	SubscriptionID uint   `gorm:"not null;index"`
	GrantedAt      time.Time
	IsActive       bool `gorm:"not null;default:true;index:idx_tenant_module_active,priority:3"`
	UpdatedAt      time.Time
}

// TableName specifies the table name for GORM
func (TenantModuleModel) TableName() string {
	return constants.TableTenantModules
}
