package subscription

import (
	"fmt"
	"time"

	"scholara/internal/domain/catalog"
)

// ModuleGrant records one module granted to a custom subscription. A grant is
// currently effective iff it has not been revoked; revocation is a soft
// delete (the row is kept with a revocation timestamp) and can be undone by
// re-granting.
type ModuleGrant struct {
	id             uint
	subscriptionID uint
	moduleID       catalog.ModuleID
	grantedAt      time.Time
	grantedBy      *uint
	revokedAt      *time.Time
	revokedBy      *uint
	createdAt      time.Time
	updatedAt      time.Time
}

// NewModuleGrant creates a grant of the given module.
func NewModuleGrant(subscriptionID uint, moduleID catalog.ModuleID, grantedBy *uint) (*ModuleGrant, error) {
	if subscriptionID == 0 {
		return nil, fmt.Errorf("subscription ID is required")
	}
	if !moduleID.IsValid() {
		return nil, fmt.Errorf("unknown module package: %s", moduleID)
	}

	now := time.Now()
	return &ModuleGrant{
		subscriptionID: subscriptionID,
		moduleID:       moduleID,
		grantedAt:      now,
		grantedBy:      grantedBy,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// ReconstructModuleGrant reconstructs a grant from persistence.
func ReconstructModuleGrant(grantID, subscriptionID uint, moduleID catalog.ModuleID,
	grantedAt time.Time, grantedBy *uint, revokedAt *time.Time, revokedBy *uint,
	createdAt, updatedAt time.Time) (*ModuleGrant, error) {

	if grantID == 0 {
		return nil, fmt.Errorf("grant ID cannot be zero")
	}
	if subscriptionID == 0 {
		return nil, fmt.Errorf("subscription ID is required")
	}
	if !moduleID.IsValid() {
		return nil, fmt.Errorf("unknown module package: %s", moduleID)
	}

	return &ModuleGrant{
		id:             grantID,
		subscriptionID: subscriptionID,
		moduleID:       moduleID,
		grantedAt:      grantedAt,
		grantedBy:      grantedBy,
		revokedAt:      revokedAt,
		revokedBy:      revokedBy,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}, nil
}

func (g *ModuleGrant) ID() uint                   { return g.id }
func (g *ModuleGrant) SubscriptionID() uint       { return g.subscriptionID }
func (g *ModuleGrant) ModuleID() catalog.ModuleID { return g.moduleID }
func (g *ModuleGrant) GrantedAt() time.Time       { return g.grantedAt }
func (g *ModuleGrant) GrantedBy() *uint           { return g.grantedBy }
func (g *ModuleGrant) RevokedAt() *time.Time      { return g.revokedAt }
func (g *ModuleGrant) RevokedBy() *uint           { return g.revokedBy }
func (g *ModuleGrant) CreatedAt() time.Time       { return g.createdAt }
func (g *ModuleGrant) UpdatedAt() time.Time       { return g.updatedAt }

// SetID sets the grant ID (only for persistence layer use).
func (g *ModuleGrant) SetID(grantID uint) error {
	if g.id != 0 {
		return fmt.Errorf("grant ID is already set")
	}
	if grantID == 0 {
		return fmt.Errorf("grant ID cannot be zero")
	}
	g.id = grantID
	return nil
}

// IsRevoked reports whether the grant has been revoked.
func (g *ModuleGrant) IsRevoked() bool {
	return g.revokedAt != nil
}

// Revoke soft-deletes the grant. The core module grant is never revocable.
// Revoking an already revoked grant is a no-op.
func (g *ModuleGrant) Revoke(revokedBy *uint) error {
	if g.moduleID.IsCore() {
		return ErrCoreModuleNotRevocable
	}
	if g.revokedAt != nil {
		return nil
	}

	now := time.Now()
	g.revokedAt = &now
	g.revokedBy = revokedBy
	g.updatedAt = now

	return nil
}

// Regrant clears a revocation, restoring the grant. Re-granting a live grant
// is a no-op.
func (g *ModuleGrant) Regrant(grantedBy *uint) {
	if g.revokedAt == nil {
		return
	}

	now := time.Now()
	g.revokedAt = nil
	g.revokedBy = nil
	g.grantedAt = now
	g.grantedBy = grantedBy
	g.updatedAt = now
}
