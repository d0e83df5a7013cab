package entitlement

import (
	"context"
	"sync"
	"time"

	"scholara/internal/shared/goroutine"
	"scholara/internal/shared/logger"
)

const (
	defaultPopulateQueueSize = 256
	defaultPopulateWorkers   = 2
	populateTimeout          = 10 * time.Second
)

// populator runs fire-and-forget cache populations on a bounded worker pool.
// Synchronous capability checks enqueue a tenant on a cache miss so the next
// check hits the cache; they never wait for the result. A bounded queue with
// per-tenant dedup keeps a cache-miss storm from spawning unbounded work.
type populator struct {
	queue   chan uint
	resolve func(ctx context.Context, tenantID uint)
	logger  logger.Interface

	mu      sync.Mutex
	pending map[uint]bool

	stopOnce sync.Once
	done     chan struct{}
}

func newPopulator(queueSize, workers int, resolve func(ctx context.Context, tenantID uint), log logger.Interface) *populator {
	if queueSize <= 0 {
		queueSize = defaultPopulateQueueSize
	}
	if workers <= 0 {
		workers = defaultPopulateWorkers
	}

	p := &populator{
		queue:   make(chan uint, queueSize),
		resolve: resolve,
		logger:  log,
		pending: make(map[uint]bool),
		done:    make(chan struct{}),
	}

	for i := 0; i < workers; i++ {
		goroutine.SafeGo(log, "entitlement-cache-populator", p.work)
	}

	return p
}

// enqueue schedules a background population for the tenant. Duplicate and
// overflow requests are dropped; the caller has already degraded gracefully
// and the entry will be populated by a later miss if this one is lost.
func (p *populator) enqueue(tenantID uint) {
	p.mu.Lock()
	if p.pending[tenantID] {
		p.mu.Unlock()
		return
	}
	p.pending[tenantID] = true
	p.mu.Unlock()

	select {
	case p.queue <- tenantID:
	default:
		p.mu.Lock()
		delete(p.pending, tenantID)
		p.mu.Unlock()
		p.logger.Debugw("population queue full, dropping request", "tenant_id", tenantID)
	}
}

func (p *populator) work() {
	for {
		select {
		case <-p.done:
			return
		case tenantID := <-p.queue:
			p.mu.Lock()
			delete(p.pending, tenantID)
			p.mu.Unlock()

			// The population outlives the request that triggered it,
			// bounded only by its own timeout.
			ctx, cancel := context.WithTimeout(context.Background(), populateTimeout)
			p.resolve(ctx, tenantID)
			cancel()
		}
	}
}

// stop terminates the workers. Queued populations are discarded.
func (p *populator) stop() {
	p.stopOnce.Do(func() {
		close(p.done)
	})
}
