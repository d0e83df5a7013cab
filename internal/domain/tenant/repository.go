package tenant

import "context"

// Repository is the identity-to-tenant lookup contract. Implementations
// return (nil, nil) when no tenant matches.
type Repository interface {
	Create(ctx context.Context, t *Tenant) error
	GetByID(ctx context.Context, tenantID uint) (*Tenant, error)
	GetBySID(ctx context.Context, sid string) (*Tenant, error)
	GetByEmail(ctx context.Context, email string) (*Tenant, error)
	ListIDs(ctx context.Context) ([]uint, error)
}
