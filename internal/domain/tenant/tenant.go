// Package tenant holds the minimal tenant contract the entitlement engine
// needs. Tenant provisioning itself lives outside this subsystem.
package tenant

import (
	"fmt"
	"time"

	"scholara/internal/shared/id"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

// Tenant represents a customer school.
type Tenant struct {
	id        uint
	sid       string
	name      string
	email     string
	status    Status
	createdAt time.Time
	updatedAt time.Time
}

// NewTenant creates a new tenant.
func NewTenant(name, email string) (*Tenant, error) {
	if name == "" {
		return nil, fmt.Errorf("tenant name is required")
	}
	if email == "" {
		return nil, fmt.Errorf("tenant email is required")
	}

	sid, err := id.NewTenantSID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate tenant SID: %w", err)
	}

	now := time.Now()
	return &Tenant{
		sid:       sid,
		name:      name,
		email:     email,
		status:    StatusActive,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructTenant reconstructs a tenant from persistence.
func ReconstructTenant(tenantID uint, sid, name, email string, status Status, createdAt, updatedAt time.Time) (*Tenant, error) {
	if tenantID == 0 {
		return nil, fmt.Errorf("tenant ID cannot be zero")
	}
	if sid == "" {
		return nil, fmt.Errorf("tenant SID is required")
	}
	return &Tenant{
		id:        tenantID,
		sid:       sid,
		name:      name,
		email:     email,
		status:    status,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}, nil
}

func (t *Tenant) ID() uint             { return t.id }
func (t *Tenant) SID() string          { return t.sid }
func (t *Tenant) Name() string         { return t.name }
func (t *Tenant) Email() string        { return t.email }
func (t *Tenant) Status() Status       { return t.status }
func (t *Tenant) CreatedAt() time.Time { return t.createdAt }
func (t *Tenant) UpdatedAt() time.Time { return t.updatedAt }

// SetID sets the tenant ID (only for persistence layer use).
func (t *Tenant) SetID(tenantID uint) error {
	if t.id != 0 {
		return fmt.Errorf("tenant ID is already set")
	}
	if tenantID == 0 {
		return fmt.Errorf("tenant ID cannot be zero")
	}
	t.id = tenantID
	return nil
}

// IsActive reports whether the tenant may use the service.
func (t *Tenant) IsActive() bool {
	return t.status == StatusActive
}
