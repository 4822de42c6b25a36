// Package cache provides a Redis-backed get-or-compute cache with per-key
// TTLs, kept separate from the business logic that uses it so callers can be
// tested without the external dependency.
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"conflictradar-processing/internal/common/logger"
	"conflictradar-processing/internal/common/metrics"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	client *redis.Client
	name   string
	ttl    time.Duration
	logger logger.Logger
}

// New creates a named cache. The name prefixes every key and labels metrics.
func New(client *redis.Client, name string, ttl time.Duration, log logger.Logger) *Cache {
	return &Cache{
		client: client,
		name:   name,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"cache": name}),
	}
}

// Key normalizes a lookup term into a cache key.
func (c *Cache) Key(term string) string {
	return c.name + ":" + strings.ToLower(strings.TrimSpace(term))
}

// GetOrCompute returns the cached value for term, computing and storing it on
// a miss. dest must be a pointer. Redis failures degrade to computing without
// caching; a compute error is returned as-is and nothing is stored.
func (c *Cache) GetOrCompute(ctx context.Context, term string, dest interface{}, compute func(context.Context) (interface{}, error)) error {
	key := c.Key(term)

	if raw, err := c.client.Get(ctx, key).Result(); err == nil {
		if err := json.Unmarshal([]byte(raw), dest); err == nil {
			metrics.GeoCacheHits.WithLabelValues(c.name, "hit").Inc()
			return nil
		}
		// Corrupt entry, fall through and recompute.
		c.client.Del(ctx, key)
	} else if err != redis.Nil {
		c.logger.Warn("cache read failed", map[string]interface{}{"key": key, "error": err})
	}

	metrics.GeoCacheHits.WithLabelValues(c.name, "miss").Inc()

	value, err := compute(ctx)
	if err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return err
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", map[string]interface{}{"key": key, "error": err})
	}

	return nil
}

// Invalidate removes a single entry.
func (c *Cache) Invalidate(ctx context.Context, term string) error {
	return c.client.Del(ctx, c.Key(term)).Err()
}
