package catalog

// ModulePackage describes one purchasable feature area and the permissions it
// grants. Packages are immutable and defined at build time.
type ModulePackage struct {
	ID          ModuleID
	Name        string
	Description string
	Permissions []string
	Required    bool // true only for core
}

var packages = []ModulePackage{
	{
		ID:          ModuleCore,
		Name:        "Core",
		Description: "Baseline features available to every tenant",
		Permissions: []string{
			"dashboard.view",
			"profile.view",
			"settings.view",
			"announcements.view",
		},
		Required: true,
	},
	{
		ID:          ModuleEnrollment,
		Name:        "Enrollment",
		Description: "Student admissions, class assignment and records",
		Permissions: []string{
			"students.view",
			"students.manage",
			"admissions.manage",
			"classes.manage",
			"promotions.run",
		},
	},
	{
		ID:          ModuleHRPayroll,
		Name:        "HR & Payroll",
		Description: "Staff records, leave and payroll processing",
		Permissions: []string{
			"staff.view",
			"staff.manage",
			"leave.manage",
			"payroll.view",
			"payroll.run",
		},
	},
	{
		ID:          ModuleFinance,
		Name:        "Finance",
		Description: "Fee collection, invoicing and financial reporting",
		Permissions: []string{
			"fees.view",
			"fees.collect",
			"invoices.view",
			"invoices.manage",
			"reports.finance",
		},
	},
	{
		ID:          ModuleInventory,
		Name:        "Inventory",
		Description: "School assets, stock and supplier management",
		Permissions: []string{
			"inventory.view",
			"inventory.manage",
			"suppliers.manage",
			"stock.adjust",
		},
	},
}

var packagesByID = func() map[ModuleID]ModulePackage {
	m := make(map[ModuleID]ModulePackage, len(packages))
	for _, p := range packages {
		m[p.ID] = p
	}
	return m
}()

// All returns every module package in catalog order.
func All() []ModulePackage {
	out := make([]ModulePackage, len(packages))
	copy(out, packages)
	return out
}

// Get returns the package for the given module ID.
func Get(id ModuleID) (ModulePackage, bool) {
	p, ok := packagesByID[id]
	return p, ok
}

// PermissionsFor returns the union of the permissions granted by the named
// packages plus those of core. Core is always included whether or not it is
// named; this is a hard invariant, not a default.
func PermissionsFor(ids ...ModuleID) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, 16)

	appendPackage := func(id ModuleID) {
		p, ok := packagesByID[id]
		if !ok {
			return
		}
		for _, perm := range p.Permissions {
			if !seen[perm] {
				seen[perm] = true
				out = append(out, perm)
			}
		}
	}

	appendPackage(ModuleCore)
	for _, id := range ids {
		appendPackage(id)
	}
	return out
}

// CorePermissions returns the permissions carried by the core package alone.
func CorePermissions() []string {
	p := packagesByID[ModuleCore]
	out := make([]string, len(p.Permissions))
	copy(out, p.Permissions)
	return out
}

// IsCorePermission reports whether perm is granted by the core package.
func IsCorePermission(perm string) bool {
	for _, p := range packagesByID[ModuleCore].Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// WithCore returns ids with core inserted exactly once, preserving order.
func WithCore(ids []ModuleID) []ModuleID {
	out := make([]ModuleID, 0, len(ids)+1)
	out = append(out, ModuleCore)
	for _, id := range ids {
		if id != ModuleCore {
			out = append(out, id)
		}
	}
	return out
}

// Contains reports whether ids includes the given module.
func Contains(ids []ModuleID, id ModuleID) bool {
	for _, m := range ids {
		if m == id {
			return true
		}
	}
	return false
}
