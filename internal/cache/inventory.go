package cache

import (
	"context"
	"fmt"
	"time"

	"shadospace/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// Cache key builders and TTLs. Keys are namespaced by entity so
// invalidation can stay targeted.
const (
	PostTTL = 5 * time.Minute
	UserTTL = 15 * time.Minute

	// BlacklistPrefix namespaces revoked JWT IDs.
	BlacklistPrefix = "jwt:blacklist:"
)

// PostKey returns the cache key for a single post.
func PostKey(id uint) string {
	return fmt.Sprintf("post:%d", id)
}

// UserKey returns the cache key for a single user.
func UserKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

// InvalidatePost drops the cached copy of a post. Best effort; errors
// are logged, never surfaced, since the database remains authoritative.
func InvalidatePost(ctx context.Context, rdb *redis.Client, id uint) {
	if rdb == nil {
		return
	}
	if err := rdb.Del(ctx, PostKey(id)).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidation failed", "key", PostKey(id), "error", err)
	}
}

// InvalidateUser drops the cached copy of a user.
func InvalidateUser(ctx context.Context, rdb *redis.Client, id uint) {
	if rdb == nil {
		return
	}
	if err := rdb.Del(ctx, UserKey(id)).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidation failed", "key", UserKey(id), "error", err)
	}
}

// MarkViewed records that a visitor has viewed a post within the dedup
// window. Returns true if this is the first view inside the window.
// With a nil client or Redis failure it reports true so views are never
// silently dropped.
func MarkViewed(ctx context.Context, rdb *redis.Client, postID uint, visitorKey string, window time.Duration) bool {
	if rdb == nil || window <= 0 {
		return true
	}
	key := fmt.Sprintf("viewed:%d:%s", postID, visitorKey)
	ok, err := rdb.SetNX(ctx, key, 1, window).Result()
	if err != nil {
		middleware.Logger.WarnContext(ctx, "view dedup check failed", "key", key, "error", err)
		return true
	}
	return ok
}

// BlacklistToken marks a JWT ID as revoked until the token would have
// expired anyway.
func BlacklistToken(ctx context.Context, rdb *redis.Client, jti string, ttl time.Duration) error {
	if rdb == nil {
		return fmt.Errorf("redis unavailable")
	}
	if ttl <= 0 {
		return nil
	}
	return rdb.Set(ctx, BlacklistPrefix+jti, 1, ttl).Err()
}

// IsTokenBlacklisted reports whether a JWT ID has been revoked. Redis
// errors fail open: an unreachable cache must not lock every user out.
func IsTokenBlacklisted(ctx context.Context, rdb *redis.Client, jti string) bool {
	if rdb == nil || jti == "" {
		return false
	}
	n, err := rdb.Exists(ctx, BlacklistPrefix+jti).Result()
	if err != nil {
		middleware.Logger.WarnContext(ctx, "blacklist check failed", "error", err)
		return false
	}
	return n > 0
}
