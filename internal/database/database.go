// Package database handles the PostgreSQL connection and schema migration.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"shadospace/internal/config"
	"shadospace/internal/middleware"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// CustomGormLogger bridges GORM logging into slog so database logs share
// the structured pipeline with the rest of the application.
type CustomGormLogger struct {
	SlowThreshold time.Duration
	LogLevel      logger.LogLevel
}

func (l *CustomGormLogger) LogMode(level logger.LogLevel) logger.Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

func (l *CustomGormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= logger.Info {
		middleware.Logger.InfoContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *CustomGormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= logger.Warn {
		middleware.Logger.WarnContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *CustomGormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= logger.Error {
		middleware.Logger.ErrorContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *CustomGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	attrs := []slog.Attr{
		slog.Duration("elapsed", elapsed),
		slog.Int64("rows", rows),
		slog.String("sql", sql),
	}

	switch {
	case err != nil && err != gorm.ErrRecordNotFound && l.LogLevel >= logger.Error:
		attrs = append(attrs, slog.Any("error", err))
		middleware.Logger.LogAttrs(ctx, slog.LevelError, "database query failed", attrs...)
	case l.SlowThreshold > 0 && elapsed > l.SlowThreshold && l.LogLevel >= logger.Warn:
		middleware.Logger.LogAttrs(ctx, slog.LevelWarn, "slow database query", attrs...)
	case l.LogLevel >= logger.Info:
		middleware.Logger.LogAttrs(ctx, slog.LevelDebug, "database query", attrs...)
	}
}

// Connect opens the PostgreSQL connection, configures the pool and runs
// schema migration outside production.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)

	gormLogger := &CustomGormLogger{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      logger.Warn,
	}
	if cfg.Env == "development" {
		gormLogger.LogLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	// Production schemas change through reviewed migrations, not on boot.
	if cfg.Env != "production" && cfg.Env != "prod" {
		if err := Migrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	middleware.Logger.Info("connected to database", "host", cfg.DBHost, "name", cfg.DBName)
	return db, nil
}

// Migrate runs AutoMigrate for every registered model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(RegisteredModels()...)
}
