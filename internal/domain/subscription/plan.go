package subscription

import (
	"fmt"
	"time"

	"scholara/internal/domain/catalog"
	"scholara/internal/shared/id"
)

type PlanStatus string

const (
	PlanStatusActive   PlanStatus = "active"
	PlanStatusInactive PlanStatus = "inactive"
)

// Plan is a named bundle of module packages. Plans are administrator-managed
// reference data; the resolver only ever reads them.
type Plan struct {
	id          uint
	sid         string
	name        string
	slug        string
	description string
	modules     []catalog.ModuleID
	status      PlanStatus
	sortOrder   int
	version     int
	createdAt   time.Time
	updatedAt   time.Time
}

// NewPlan creates a new plan. The module list is validated against the
// catalog and always includes core.
func NewPlan(name, slug, description string, modules []catalog.ModuleID) (*Plan, error) {
	if name == "" {
		return nil, fmt.Errorf("plan name is required")
	}
	if slug == "" {
		return nil, fmt.Errorf("plan slug is required")
	}
	for _, m := range modules {
		if !m.IsValid() {
			return nil, fmt.Errorf("unknown module package in plan: %s", m)
		}
	}

	sid, err := id.NewPlanSID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate plan SID: %w", err)
	}

	now := time.Now()
	return &Plan{
		sid:         sid,
		name:        name,
		slug:        slug,
		description: description,
		modules:     catalog.WithCore(modules),
		status:      PlanStatusActive,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructPlan reconstructs a plan from persistence.
func ReconstructPlan(planID uint, sid, name, slug, description string, modules []catalog.ModuleID,
	status PlanStatus, sortOrder, version int, createdAt, updatedAt time.Time) (*Plan, error) {

	if planID == 0 {
		return nil, fmt.Errorf("plan ID cannot be zero")
	}
	if name == "" {
		return nil, fmt.Errorf("plan name is required")
	}

	return &Plan{
		id:          planID,
		sid:         sid,
		name:        name,
		slug:        slug,
		description: description,
		modules:     catalog.WithCore(modules),
		status:      status,
		sortOrder:   sortOrder,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}, nil
}

func (p *Plan) ID() uint             { return p.id }
func (p *Plan) SID() string          { return p.sid }
func (p *Plan) Name() string         { return p.name }
func (p *Plan) Slug() string         { return p.slug }
func (p *Plan) Description() string  { return p.description }
func (p *Plan) Status() PlanStatus   { return p.status }
func (p *Plan) SortOrder() int       { return p.sortOrder }
func (p *Plan) Version() int         { return p.version }
func (p *Plan) CreatedAt() time.Time { return p.createdAt }
func (p *Plan) UpdatedAt() time.Time { return p.updatedAt }

// Modules returns the plan's module packages, core included.
func (p *Plan) Modules() []catalog.ModuleID {
	out := make([]catalog.ModuleID, len(p.modules))
	copy(out, p.modules)
	return out
}

// SetID sets the plan ID (only for persistence layer use).
func (p *Plan) SetID(planID uint) error {
	if p.id != 0 {
		return fmt.Errorf("plan ID is already set")
	}
	if planID == 0 {
		return fmt.Errorf("plan ID cannot be zero")
	}
	p.id = planID
	return nil
}

// SetModules replaces the plan's module list. Core is always retained.
func (p *Plan) SetModules(modules []catalog.ModuleID) error {
	for _, m := range modules {
		if !m.IsValid() {
			return fmt.Errorf("unknown module package: %s", m)
		}
	}
	p.modules = catalog.WithCore(modules)
	p.updatedAt = time.Now()
	p.version++
	return nil
}

// Deactivate hides the plan from new subscriptions. Existing subscriptions
// keep resolving against it.
func (p *Plan) Deactivate() {
	if p.status == PlanStatusInactive {
		return
	}
	p.status = PlanStatusInactive
	p.updatedAt = time.Now()
	p.version++
}

// IsActive reports whether new subscriptions may reference this plan.
func (p *Plan) IsActive() bool {
	return p.status == PlanStatusActive
}
