// Package cache defines the event read cache consumed by the lifecycle
// services.  The core depends only on the EventCache interface injected at
// construction; the concrete backend is Redis when configured and a no-op
// otherwise.  Cached snapshots are advisory: every status-mutating
// operation reads the event fresh from the store under the per-event lock
// and invalidates the cache after commit.
package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dang0801205/volunteerhub-sub000/internal/model"
)

// EventCache stores short-lived event snapshots for read endpoints.
type EventCache interface {
	// Get returns the cached event and true on a hit.
	Get(ctx context.Context, id uint64) (*model.Event, bool)
	// Set stores a snapshot; errors are swallowed.
	Set(ctx context.Context, ev *model.Event)
	// Invalidate drops the snapshot for id.
	Invalidate(ctx context.Context, id uint64)
}

// RedisEventCache implements EventCache on a Redis client with JSON values.
type RedisEventCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedis returns a Redis-backed EventCache.  The client must be non-nil;
// callers with no Redis connection should use NewNoop instead.
func NewRedis(rdb *redis.Client, ttl time.Duration, prefix string) *RedisEventCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if prefix == "" {
		prefix = "event"
	}
	return &RedisEventCache{rdb: rdb, ttl: ttl, prefix: prefix}
}

func (c *RedisEventCache) key(id uint64) string {
	return c.prefix + ":" + strconv.FormatUint(id, 10)
}

// Get returns the cached event and true on a hit.  Any Redis or decode
// error is treated as a miss.
func (c *RedisEventCache) Get(ctx context.Context, id uint64) (*model.Event, bool) {
	raw, err := c.rdb.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		return nil, false
	}
	var ev model.Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, false
	}
	return &ev, true
}

// Set stores the event snapshot with the configured TTL.
func (c *RedisEventCache) Set(ctx context.Context, ev *model.Event) {
	raw, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, c.key(ev.ID), raw, c.ttl).Err()
}

// Invalidate drops the snapshot for id.
func (c *RedisEventCache) Invalidate(ctx context.Context, id uint64) {
	_ = c.rdb.Del(ctx, c.key(id)).Err()
}

// noopCache satisfies EventCache without storing anything.
type noopCache struct{}

func (noopCache) Get(context.Context, uint64) (*model.Event, bool) { return nil, false }
func (noopCache) Set(context.Context, *model.Event)                {}
func (noopCache) Invalidate(context.Context, uint64)               {}

// NewNoop returns an EventCache that never hits.  Used when Redis is not
// configured and in tests.
func NewNoop() EventCache { return noopCache{} }
