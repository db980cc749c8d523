package chain

import (
	"context"
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/sync/singleflight"

	"github.com/nao1215/joinscan/internal/model"
)

// Cache sizing defaults.
const (
	// DefaultCacheCapacity bounds the number of memoized prevouts. A
	// corpus transaction has at most 25 inputs, so this comfortably covers
	// tens of thousands of transactions.
	DefaultCacheCapacity = 1 << 20

	// DefaultCacheTTL expires memoized prevouts after an hour. Confirmed
	// outputs never change, so the TTL only bounds memory held by
	// long-running scans.
	DefaultCacheTTL = time.Hour
)

// CachingResolver decorates a PrevOutResolver with a concurrency-safe
// memoizing cache keyed by (txid, index). Concurrent requests for the same
// prevout are collapsed into a single upstream call, so a corpus scan hits
// the node once per distinct prevout no matter how many workers share the
// resolver.
type CachingResolver struct {
	inner PrevOutResolver
	cache *ttlcache.Cache[string, model.Output]
	group singleflight.Group
}

// CachingResolverOption configures a CachingResolver.
type CachingResolverOption func(*cachingResolverConfig)

type cachingResolverConfig struct {
	capacity uint64
	ttl      time.Duration
}

// WithCacheCapacity overrides the maximum number of memoized prevouts.
func WithCacheCapacity(n uint64) CachingResolverOption {
	return func(c *cachingResolverConfig) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithCacheTTL overrides how long memoized prevouts are kept.
func WithCacheTTL(ttl time.Duration) CachingResolverOption {
	return func(c *cachingResolverConfig) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// NewCachingResolver wraps inner with a memoizing cache.
func NewCachingResolver(inner PrevOutResolver, opts ...CachingResolverOption) *CachingResolver {
	cfg := cachingResolverConfig{
		capacity: DefaultCacheCapacity,
		ttl:      DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	cache := ttlcache.New(
		ttlcache.WithTTL[string, model.Output](cfg.ttl),
		ttlcache.WithCapacity[string, model.Output](cfg.capacity),
	)
	go cache.Start()

	return &CachingResolver{
		inner: inner,
		cache: cache,
	}
}

// Close stops the cache's expiration worker.
func (r *CachingResolver) Close() {
	r.cache.Stop()
}

// ResolveOutput implements PrevOutResolver. Cache hits never touch the
// upstream resolver; misses for the same key share one in-flight call.
// Errors are not memoized, so a transient upstream failure does not poison
// the cache.
func (r *CachingResolver) ResolveOutput(ctx context.Context, txid string, index uint32) (model.Output, error) {
	key := fmt.Sprintf("%s:%d", txid, index)

	if item := r.cache.Get(key); item != nil {
		return item.Value(), nil
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		// Re-check under the flight: another goroutine may have populated
		// the cache between our miss and this call.
		if item := r.cache.Get(key); item != nil {
			return item.Value(), nil
		}
		out, err := r.inner.ResolveOutput(ctx, txid, index)
		if err != nil {
			return model.Output{}, err
		}
		r.cache.Set(key, out, ttlcache.DefaultTTL)
		return out, nil
	})
	if err != nil {
		return model.Output{}, err
	}
	return v.(model.Output), nil
}
