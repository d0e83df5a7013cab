package usecases

import "context"

// EntitlementRefresher keeps the materialized tenant_modules projection and
// the entitlement caches in step with subscription mutations. Rebuild must be
// called inside the mutating transaction; InvalidateScope after it commits.
type EntitlementRefresher interface {
	Rebuild(ctx context.Context, tenantID *uint) error
	InvalidateScope(ctx context.Context, tenantID *uint)
}

// TransactionRunner runs a function inside a database transaction.
type TransactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
