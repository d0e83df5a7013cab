package dto

import (
	"time"

	"scholara/internal/domain/tenant"
)

type TenantDTO struct {
	ID        uint      `json:"id"`
	SID       string    `json:"sid"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToTenantDTO converts a Tenant entity to its presentation form.
func ToTenantDTO(t *tenant.Tenant) *TenantDTO {
	if t == nil {
		return nil
	}

	return &TenantDTO{
		ID:        t.ID(),
		SID:       t.SID(),
		Name:      t.Name(),
		Email:     t.Email(),
		Status:    string(t.Status()),
		CreatedAt: t.CreatedAt(),
		UpdatedAt: t.UpdatedAt(),
	}
}
