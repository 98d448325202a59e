// Package cache is a small JSON read-through cache on top of redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// EntityCache caches single entities under "<prefix>:<id>".
//
// A nil *EntityCache or a zero TTL disables caching; every method is then a no-op
// miss, so callers never need to branch on whether redis is configured.
type EntityCache[T any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewEntityCache[T any](client *redis.Client, prefix string, ttl time.Duration) *EntityCache[T] {
	if client == nil || ttl <= 0 {
		return nil
	}
	return &EntityCache[T]{client: client, prefix: prefix, ttl: ttl}
}

func (c *EntityCache[T]) key(id int64) string {
	return fmt.Sprintf("%s:%d", c.prefix, id)
}

// Get returns the cached entity and whether it was found.
func (c *EntityCache[T]) Get(ctx context.Context, id int64) (T, bool, error) {
	var zero T
	if c == nil {
		return zero, false, nil
	}

	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("cache get %s: %w", c.key(id), err)
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return zero, false, fmt.Errorf("cache decode %s: %w", c.key(id), err)
	}

	return v, true, nil
}

func (c *EntityCache[T]) Set(ctx context.Context, id int64, v T) error {
	if c == nil {
		return nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", c.key(id), err)
	}

	if err := c.client.Set(ctx, c.key(id), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", c.key(id), err)
	}
	return nil
}

func (c *EntityCache[T]) Delete(ctx context.Context, id int64) error {
	if c == nil {
		return nil
	}

	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		return fmt.Errorf("cache delete %s: %w", c.key(id), err)
	}
	return nil
}
