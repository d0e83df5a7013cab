package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"scholara/internal/domain/subscription"
	"scholara/internal/shared/constants"
)

// PlanModel represents the database persistence model for subscription plans.
// This is the anti-corruption layer between domain and database. The plan's
// module list lives in plan_modules join rows.
type PlanModel struct {
	ID          uint   `gorm:"primarykey"`
	SID         string `gorm:"uniqueIndex;not null;size:32"`
	Name        string `gorm:"not null;size:100"`
	Slug        string `gorm:"uniqueIndex;not null;size:50"`
	Description string `gorm:"size:500"`
	Status      string `gorm:"not null;size:20;default:active"`
	SortOrder   int    `gorm:"default:0"`
	Metadata    datatypes.JSON
	Version     int `gorm:"not null;default:1"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`

	Modules []PlanModuleModel `gorm:"foreignKey:PlanID"`
}

// TableName specifies the table name for GORM
func (PlanModel) TableName() string {
	return constants.TablePlans
}

// BeforeCreate hook for GORM
func (p *PlanModel) BeforeCreate(tx *gorm.DB) error {
	if p.Status == "" {
		p.Status = string(subscription.PlanStatusActive)
	}
	return nil
}

// PlanModuleModel is one module package included in a plan.
type PlanModuleModel struct {
	ID        uint   `gorm:"primarykey"`
	PlanID    uint   `gorm:"uniqueIndex:idx_plan_module;not null;index"`
	ModuleID  string `gorm:"uniqueIndex:idx_plan_module;not null;size:32"`
	CreatedAt time.Time
}

// TableName specifies the table name for GORM
func (PlanModuleModel) TableName() string {
	return constants.TablePlanModules
}
