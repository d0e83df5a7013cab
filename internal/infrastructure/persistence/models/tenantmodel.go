package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"scholara/internal/shared/constants"
)

// TenantModel represents the database persistence model for school tenants.
// This is the anti-corruption layer between domain and database.
type TenantModel struct {
	ID        uint   `gorm:"primarykey"`
	SID       string `gorm:"uniqueIndex;not null;size:32"`
	Name      string `gorm:"not null;size:200"`
	Email     string `gorm:"uniqueIndex;not null;size:255"`
	Status    string `gorm:"not null;size:20;default:active"`
	Metadata  datatypes.JSON
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the table name for GORM
func (TenantModel) TableName() string {
	return constants.TableTenants
}

// BeforeCreate hook for GORM
func (t *TenantModel) BeforeCreate(tx *gorm.DB) error {
	if t.Status == "" {
		t.Status = constants.TenantStatusActive
	}
	return nil
}
