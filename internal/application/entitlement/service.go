package entitlement

import (
	"context"
	"time"

	"scholara/internal/domain/catalog"
	"scholara/internal/domain/entitlement"
	"scholara/internal/domain/tenant"
	"scholara/internal/infrastructure/cache"
	"scholara/internal/shared/config"
	"scholara/internal/shared/goroutine"
	"scholara/internal/shared/logger"
)

const (
	defaultStoreTimeout = 3 * time.Second

	// sweepInterval paces the removal of expired cache entries. Expired
	// entries are already invisible to readers; the sweep just frees memory.
	sweepInterval = time.Minute
)

// ProjectionRefresher repairs and invalidates the materialized projection.
// Implemented by Refresher.
type ProjectionRefresher interface {
	Refresh(ctx context.Context, tenantID *uint) error
	InvalidateScope(ctx context.Context, tenantID *uint)
}

// Service is the capability facade the rest of the application queries.
// All read methods fail closed: on any error the tenant degrades to the core
// package and boolean checks answer false. The read path never returns an
// error to its caller.
type Service struct {
	cache         *cache.EntitlementCache
	tenantModules entitlement.TenantModuleRepository
	tenants       tenant.Repository
	resolver      *entitlement.Resolver
	refresher     ProjectionRefresher
	populator     *populator
	storeTimeout  time.Duration
	logger        logger.Interface
	sweepStop     chan struct{}
}

// NewService creates the capability facade and starts its background
// population workers. Call Close on shutdown.
func NewService(
	entCache *cache.EntitlementCache,
	tenantModules entitlement.TenantModuleRepository,
	tenants tenant.Repository,
	resolver *entitlement.Resolver,
	refresher ProjectionRefresher,
	cfg config.EntitlementConfig,
	log logger.Interface,
) *Service {
	storeTimeout := defaultStoreTimeout
	if cfg.StoreTimeoutSeconds > 0 {
		storeTimeout = time.Duration(cfg.StoreTimeoutSeconds) * time.Second
	}

	s := &Service{
		cache:         entCache,
		tenantModules: tenantModules,
		tenants:       tenants,
		resolver:      resolver,
		refresher:     refresher,
		storeTimeout:  storeTimeout,
		logger:        log,
		sweepStop:     make(chan struct{}),
	}
	s.populator = newPopulator(cfg.PopulateQueueSize, cfg.PopulateWorkers, s.populate, log)

	goroutine.SafeGo(log, "entitlement-cache-sweeper", func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-s.sweepStop:
				return
			case <-ticker.C:
				if removed := s.cache.SweepExpired(); removed > 0 {
					s.logger.Debugw("swept expired entitlement cache entries", "removed", removed)
				}
			}
		}
	})

	return s
}

// Close stops the background population workers and the cache sweeper.
func (s *Service) Close() {
	s.populator.stop()
	close(s.sweepStop)
}

// ResolveModules returns the modules the tenant may use right now. The cache
// answers first; on a miss the materialized projection is read once, and only
// an empty projection falls through to a full resolution against subscription
// state. Every failure degrades to the core package.
func (s *Service) ResolveModules(ctx context.Context, tenantID uint) []catalog.ModuleID {
	if cached, ok := s.cache.TryGet(tenantID); ok {
		return cached.Modules
	}

	// Snapshot the generation before reading so a concurrent invalidation
	// makes this population a no-op instead of caching stale state.
	gen := s.cache.Generation(tenantID)

	rows, err := s.listActiveRows(ctx, tenantID)
	if err != nil {
		s.logger.Errorw("materialized entitlement read failed, degrading to core",
			"tenant_id", tenantID, "error", err)
		return []catalog.ModuleID{catalog.ModuleCore}
	}

	if len(rows) > 0 {
		modules := modulesFromRows(rows)
		s.cache.Put(tenantID, gen, modules)
		return modules
	}

	// Empty projection. Either the tenant truly has no subscription or the
	// projection is missing its rows; resolve from subscription state and
	// schedule a repair so later reads take the fast path again.
	modules := s.resolver.ResolveActiveModules(ctx, tenantID)
	s.cache.Put(tenantID, gen, modules)
	s.scheduleProjectionRepair(tenantID)
	return modules
}

// ResolvePermissions returns the flattened permission set for the tenant's
// active modules.
func (s *Service) ResolvePermissions(ctx context.Context, tenantID uint) []string {
	if cached, ok := s.cache.TryGet(tenantID); ok {
		return cached.Permissions
	}
	modules := s.ResolveModules(ctx, tenantID)
	return catalog.PermissionsFor(modules...)
}

// ResolveModulesByEmail resolves entitlements for the tenant owning the
// email. An unknown or unreadable identity degrades to the core package.
func (s *Service) ResolveModulesByEmail(ctx context.Context, email string) []catalog.ModuleID {
	t, ok := s.tenantByEmail(ctx, email)
	if !ok {
		return []catalog.ModuleID{catalog.ModuleCore}
	}
	return s.ResolveModules(ctx, t.ID())
}

// ResolvePermissionsByEmail resolves the permission set for the tenant
// owning the email, degrading to core permissions on an unknown identity.
func (s *Service) ResolvePermissionsByEmail(ctx context.Context, email string) []string {
	t, ok := s.tenantByEmail(ctx, email)
	if !ok {
		return catalog.CorePermissions()
	}
	return s.ResolvePermissions(ctx, t.ID())
}

// HasModule answers a synchronous capability check. Core is always granted
// without any lookup. A cache miss falls back to one indexed projection
// lookup and never to a full resolution; instead a background population is
// scheduled so the next check hits the cache.
func (s *Service) HasModule(ctx context.Context, tenantID uint, moduleID catalog.ModuleID) bool {
	if moduleID.IsCore() {
		return true
	}
	if !moduleID.IsValid() {
		return false
	}

	if cached, ok := s.cache.TryGet(tenantID); ok {
		return cached.HasModule(moduleID)
	}
	defer s.populator.enqueue(tenantID)

	has, err := s.hasActiveRow(ctx, tenantID, moduleID)
	if err != nil {
		s.logger.Errorw("module check lookup failed, answering false",
			"tenant_id", tenantID, "module", moduleID, "error", err)
		return false
	}
	return has
}

// HasPermission answers a synchronous permission check. Core permissions are
// always granted; otherwise the permission is mapped back to the package
// granting it and checked like a module.
func (s *Service) HasPermission(ctx context.Context, tenantID uint, perm string) bool {
	if catalog.IsCorePermission(perm) {
		return true
	}

	if cached, ok := s.cache.TryGet(tenantID); ok {
		return cached.HasPermission(perm)
	}

	moduleID, ok := packageGranting(perm)
	if !ok {
		return false
	}
	defer s.populator.enqueue(tenantID)

	has, err := s.hasActiveRow(ctx, tenantID, moduleID)
	if err != nil {
		s.logger.Errorw("permission check lookup failed, answering false",
			"tenant_id", tenantID, "permission", perm, "error", err)
		return false
	}
	return has
}

// HasModuleByEmail is HasModule keyed by the tenant's email. An unknown
// identity answers false for non-core modules.
func (s *Service) HasModuleByEmail(ctx context.Context, email string, moduleID catalog.ModuleID) bool {
	if moduleID.IsCore() {
		return true
	}
	t, ok := s.tenantByEmail(ctx, email)
	if !ok {
		return false
	}
	return s.HasModule(ctx, t.ID(), moduleID)
}

// HasPermissionByEmail is HasPermission keyed by the tenant's email.
func (s *Service) HasPermissionByEmail(ctx context.Context, email string, perm string) bool {
	if catalog.IsCorePermission(perm) {
		return true
	}
	t, ok := s.tenantByEmail(ctx, email)
	if !ok {
		return false
	}
	return s.HasPermission(ctx, t.ID(), perm)
}

// Invalidate drops the tenant's cached entitlements everywhere.
func (s *Service) Invalidate(ctx context.Context, tenantID uint) {
	s.refresher.InvalidateScope(ctx, &tenantID)
}

// InvalidateAll drops all cached entitlements everywhere.
func (s *Service) InvalidateAll(ctx context.Context) {
	s.refresher.InvalidateScope(ctx, nil)
}

// populate runs on the background workers after a synchronous check missed
// the cache. Errors are logged only; a failed population just means the next
// check misses again.
func (s *Service) populate(ctx context.Context, tenantID uint) {
	gen := s.cache.Generation(tenantID)

	rows, err := s.listActiveRows(ctx, tenantID)
	if err != nil {
		s.logger.Warnw("background entitlement population failed",
			"tenant_id", tenantID, "error", err)
		return
	}

	var modules []catalog.ModuleID
	if len(rows) > 0 {
		modules = modulesFromRows(rows)
	} else {
		modules = s.resolver.ResolveActiveModules(ctx, tenantID)
	}
	s.cache.Put(tenantID, gen, modules)
}

func (s *Service) listActiveRows(ctx context.Context, tenantID uint) ([]entitlement.TenantModule, error) {
	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	return s.tenantModules.ListActiveByTenant(sctx, tenantID)
}

func (s *Service) hasActiveRow(ctx context.Context, tenantID uint, moduleID catalog.ModuleID) (bool, error) {
	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	return s.tenantModules.HasActiveModule(sctx, tenantID, moduleID)
}

func (s *Service) tenantByEmail(ctx context.Context, email string) (*tenant.Tenant, bool) {
	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	t, err := s.tenants.GetByEmail(sctx, email)
	if err != nil {
		s.logger.Errorw("tenant lookup by email failed", "error", err)
		return nil, false
	}
	if t == nil {
		return nil, false
	}
	return t, true
}

func (s *Service) scheduleProjectionRepair(tenantID uint) {
	if s.refresher == nil {
		return
	}
	goroutine.SafeGo(s.logger, "entitlement-projection-repair", func() {
		ctx, cancel := context.WithTimeout(context.Background(), populateTimeout)
		defer cancel()
		if err := s.refresher.Refresh(ctx, &tenantID); err != nil {
			s.logger.Warnw("projection repair failed", "tenant_id", tenantID, "error", err)
		}
	})
}

func modulesFromRows(rows []entitlement.TenantModule) []catalog.ModuleID {
	ids := make([]catalog.ModuleID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ModuleID)
	}
	return catalog.WithCore(ids)
}

// packageGranting maps a permission back to the single package that grants
// it. Core permissions are handled before this is consulted.
func packageGranting(perm string) (catalog.ModuleID, bool) {
	for _, pkg := range catalog.All() {
		for _, p := range pkg.Permissions {
			if p == perm {
				return pkg.ID, true
			}
		}
	}
	return "", false
}
