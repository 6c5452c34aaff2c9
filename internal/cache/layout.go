// Package cache provides the Redis-backed read-through cache for
// rendered layout details.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/davilat/bus-inventory/internal/config"
	"github.com/davilat/bus-inventory/internal/model"
)

// LayoutCache stores the JSON body of layout detail responses keyed by
// layout reference. Writers invalidate inline after a commit and the
// queue consumer invalidates again from events, so a crashed writer
// cannot leave a stale entry past the TTL.
//
// A nil *LayoutCache is valid and disables caching, which keeps the
// handlers free of Redis availability checks.
type LayoutCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewLayoutCache returns the cache, or nil when disabled or when no
// Redis client is available.
func NewLayoutCache(cfg config.LayoutCacheConfig, rdb *redis.Client) *LayoutCache {
	if !cfg.Enabled || rdb == nil {
		return nil
	}
	return &LayoutCache{rdb: rdb, ttl: cfg.TTL, prefix: cfg.Prefix}
}

// Get returns the cached body for ref, if any.
func (c *LayoutCache) Get(ctx context.Context, ref model.LayoutRef) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	b, err := c.rdb.Get(ctx, c.key(ref)).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

// Set stores body for ref. Errors are swallowed; the cache is an
// optimization, never a source of truth.
func (c *LayoutCache) Set(ctx context.Context, ref model.LayoutRef, body []byte) {
	if c == nil {
		return
	}
	_ = c.rdb.Set(ctx, c.key(ref), body, c.ttl).Err()
}

// Invalidate drops the cached bodies for the given refs.
func (c *LayoutCache) Invalidate(ctx context.Context, refs ...model.LayoutRef) {
	if c == nil || len(refs) == 0 {
		return
	}
	keys := make([]string, 0, len(refs))
	for _, ref := range refs {
		keys = append(keys, c.key(ref))
	}
	_ = c.rdb.Del(ctx, keys...).Err()
}

func (c *LayoutCache) key(ref model.LayoutRef) string {
	return fmt.Sprintf("%s:%s:%d", c.prefix, ref.Kind, ref.ID)
}
