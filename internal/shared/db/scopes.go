package db

import (
	"gorm.io/gorm"
)

// ForTenant scopes a query to one tenant's rows.
func ForTenant(tenantID uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}
