// Package bootstrap wires together the runtime dependencies shared by
// the server and the seeder commands.
package bootstrap

import (
	"context"
	"fmt"

	"shadospace/internal/cache"
	"shadospace/internal/config"
	"shadospace/internal/database"
	"shadospace/internal/middleware"
	"shadospace/internal/observability"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Runtime holds the initialized shared dependencies.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client

	tracingShutdown func(context.Context) error
}

// InitRuntime connects the database, Redis and tracing. Redis being
// unreachable is not fatal; the application runs degraded without cache,
// view dedup or token revocation.
func InitRuntime(cfg *config.Config) (*Runtime, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := cache.InitRedis(cfg); err != nil {
		middleware.Logger.Warn("redis unavailable, running without cache", "error", err)
	}

	tracingShutdown, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "shadospace-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExport,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}

	return &Runtime{
		DB:              db,
		Redis:           cache.RedisClient,
		tracingShutdown: tracingShutdown,
	}, nil
}

// Shutdown closes Redis and flushes tracing. The database connection is
// closed by the server's own shutdown path.
func (r *Runtime) Shutdown(ctx context.Context) error {
	if err := cache.CloseRedis(); err != nil {
		middleware.Logger.Warn("error closing redis", "error", err)
	}
	if r.tracingShutdown != nil {
		return r.tracingShutdown(ctx)
	}
	return nil
}
