package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// Tenant status
	TenantStatusActive    = "active"
	TenantStatusSuspended = "suspended"

	// Billing
	DefaultCurrency = "USD"

	// Database table names
	TableTenants       = "tenants"
	TablePlans         = "plans"
	TablePlanModules   = "plan_modules"
	TableSubscriptions = "subscriptions"
	TableModuleGrants  = "module_grants"
	TableTenantModules = "tenant_modules"
)
