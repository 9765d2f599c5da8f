package cache

import (
	"context"
	"encoding/json"
	"time"

	"shadospace/internal/middleware"
	"shadospace/internal/observability"

	"github.com/redis/go-redis/v9"
)

// GetJSON fetches a key and unmarshals it into dest. Returns false on
// miss or any Redis/decode failure.
func GetJSON(ctx context.Context, rdb *redis.Client, key string, dest any) bool {
	if rdb == nil {
		return false
	}
	raw, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			middleware.Logger.WarnContext(ctx, "cache get failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		middleware.Logger.WarnContext(ctx, "cache decode failed", "key", key, "error", err)
		return false
	}
	return true
}

// SetJSON marshals value and stores it under key with the given TTL.
// Failures are logged and swallowed.
func SetJSON(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) {
	if rdb == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "cache encode failed", "key", key, "error", err)
		return
	}
	if err := rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache set failed", "key", key, "error", err)
	}
}

// Aside implements the cache-aside pattern: return the cached value if
// present, otherwise load from the source of truth and populate the
// cache. Load errors pass through untouched.
func Aside[T any](ctx context.Context, rdb *redis.Client, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	var cached T
	if GetJSON(ctx, rdb, key, &cached) {
		observability.CacheRequests.WithLabelValues("hit").Inc()
		return cached, nil
	}
	observability.CacheRequests.WithLabelValues("miss").Inc()

	fresh, err := load()
	if err != nil {
		return fresh, err
	}
	SetJSON(ctx, rdb, key, fresh, ttl)
	return fresh, nil
}
