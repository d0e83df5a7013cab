package cache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"scholara/internal/shared/goroutine"
	"scholara/internal/shared/logger"
)

const (
	// invalidationChannel carries tenant IDs whose in-process cache entries
	// must be dropped, or the wildcard for a full clear.
	invalidationChannel = "entitlement:invalidate"
	wildcardPayload     = "*"
)

// InvalidationBus propagates cache invalidations across application
// instances over Redis pub/sub. Each instance holds its own in-process
// EntitlementCache; without the bus a mutation handled by one instance would
// leave the others stale for up to the cache TTL.
//
// The bus is strictly best-effort: publish and subscribe failures are logged
// and never fail the mutation that triggered them; the TTL remains the hard
// bound on staleness.
type InvalidationBus struct {
	client *redis.Client
	cache  *EntitlementCache
	logger logger.Interface
	cancel context.CancelFunc
}

// NewInvalidationBus creates a bus over the given Redis client.
func NewInvalidationBus(client *redis.Client, cache *EntitlementCache, logger logger.Interface) *InvalidationBus {
	return &InvalidationBus{
		client: client,
		cache:  cache,
		logger: logger,
	}
}

// Publish broadcasts an invalidation for one tenant, or for all tenants when
// tenantID is nil.
func (b *InvalidationBus) Publish(ctx context.Context, tenantID *uint) error {
	payload := wildcardPayload
	if tenantID != nil {
		payload = strconv.FormatUint(uint64(*tenantID), 10)
	}

	if err := b.client.Publish(ctx, invalidationChannel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish cache invalidation: %w", err)
	}

	b.logger.Debugw("cache invalidation published", "payload", payload)
	return nil
}

// Start subscribes to the invalidation channel and applies received
// invalidations to the local cache until Stop is called.
func (b *InvalidationBus) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel

	pubsub := b.client.Subscribe(ctx, invalidationChannel)

	goroutine.SafeGo(b.logger, "entitlement-invalidation-bus", func() {
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					b.logger.Warnw("invalidation subscription channel closed")
					return
				}
				b.apply(msg.Payload)
			}
		}
	})
}

// Stop tears down the subscription.
func (b *InvalidationBus) Stop() {
	if b.cancel != nil {
		b.cancel()
	}
}

func (b *InvalidationBus) apply(payload string) {
	if payload == wildcardPayload {
		b.cache.InvalidateAll()
		b.logger.Debugw("cache cleared via invalidation bus")
		return
	}

	tenantID, err := strconv.ParseUint(payload, 10, 64)
	if err != nil {
		b.logger.Warnw("ignoring malformed invalidation payload", "payload", payload)
		return
	}

	b.cache.Invalidate(uint(tenantID))
	b.logger.Debugw("cache entry invalidated via bus", "tenant_id", tenantID)
}
