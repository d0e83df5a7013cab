// Package catalog defines the fixed set of purchasable module packages and
// the permissions each one grants. The catalog is code-defined and immutable;
// persistence stores module IDs as plain strings so new modules can be added
// without a data migration.
package catalog

import (
	"fmt"
	"strings"
)

// ModuleID identifies a module package. It is a closed enumeration: values
// are validated at the catalog boundary, so callers cannot query a module
// that cannot exist.
type ModuleID string

const (
	// ModuleCore is the mandatory package every tenant always has.
	ModuleCore ModuleID = "core"

	ModuleEnrollment ModuleID = "enrollment"
	ModuleHRPayroll  ModuleID = "hr_payroll"
	ModuleFinance    ModuleID = "finance"
	ModuleInventory  ModuleID = "inventory"
)

var validModuleIDs = map[ModuleID]bool{
	ModuleCore:       true,
	ModuleEnrollment: true,
	ModuleHRPayroll:  true,
	ModuleFinance:    true,
	ModuleInventory:  true,
}

// ParseModuleID validates a raw module identifier. Comparison is
// case-insensitive; the canonical lowercase form is returned.
func ParseModuleID(raw string) (ModuleID, error) {
	id := ModuleID(strings.ToLower(strings.TrimSpace(raw)))
	if !validModuleIDs[id] {
		return "", fmt.Errorf("unknown module package: %q", raw)
	}
	return id, nil
}

// ParseModuleIDs validates a list of raw module identifiers.
func ParseModuleIDs(raw []string) ([]ModuleID, error) {
	ids := make([]ModuleID, 0, len(raw))
	for _, r := range raw {
		id, err := ParseModuleID(r)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// String returns the string form of the module ID.
func (m ModuleID) String() string {
	return string(m)
}

// IsValid reports whether the module ID is part of the catalog.
func (m ModuleID) IsValid() bool {
	return validModuleIDs[m]
}

// IsCore reports whether this is the mandatory core package.
func (m ModuleID) IsCore() bool {
	return m == ModuleCore
}
