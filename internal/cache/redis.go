// Package cache wraps the Redis client used for read-through caching,
// view deduplication and token revocation.
package cache

import (
	"context"
	"fmt"
	"net"
	"time"

	"shadospace/internal/config"
	"shadospace/internal/middleware"
	"shadospace/internal/observability"

	"github.com/redis/go-redis/v9"
)

// RedisClient is the shared Redis client. It is nil when Redis is not
// configured; callers must treat a nil client as "cache disabled".
var RedisClient *redis.Client

// metricsHook records Redis command errors in Prometheus.
type metricsHook struct{}

func (metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			observability.RedisErrors.WithLabelValues("dial").Inc()
		}
		return conn, err
	}
}

func (metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && err != redis.Nil {
			observability.RedisErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && err != redis.Nil {
			observability.RedisErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// InitRedis connects the shared client using the given configuration.
// A failed ping is returned as an error; callers decide whether the
// application can run degraded without a cache.
func InitRedis(cfg *config.Config) error {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		// Plain host:port form
		opts = &redis.Options{Addr: cfg.RedisURL}
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	client.AddHook(metricsHook{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	RedisClient = client
	middleware.Logger.Info("connected to redis", "addr", opts.Addr, "db", opts.DB)
	return nil
}

// CloseRedis closes the shared client if one was initialized.
func CloseRedis() error {
	if RedisClient == nil {
		return nil
	}
	err := RedisClient.Close()
	RedisClient = nil
	return err
}
