package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/vcscsvcscs/healthwise/apps/backend/internal/config"
	"github.com/vcscsvcscs/healthwise/apps/backend/internal/security"
	"go.uber.org/zap"
)

// Open builds the configured backend and wraps it with encryption and caching
func Open(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (DocumentStore, error) {
	var store DocumentStore

	switch cfg.Backend {
	case "memory":
		store = NewMemoryStore(logger)
	case "sqlite":
		s, err := NewSQLiteStore(cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		store = s
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		s := NewPostgresStore(pool, cfg.Table, logger)
		if err := s.Migrate(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		store = s
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		store = NewRedisStore(client, cfg.RedisPrefix, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}

	if cfg.EncryptionKey != "" {
		encryptor, err := security.NewEncryptorFromBase64(cfg.EncryptionKey)
		if err != nil {
			store.Close()
			return nil, err
		}
		store = NewEncryptedStore(store, encryptor)
	}

	// The in-memory backend gains nothing from a cache.
	if cfg.CacheTTL > 0 && cfg.Backend != "memory" {
		store = NewCachedStore(store, cfg.CacheTTL)
	}

	logger.Info("document store ready",
		zap.String("backend", cfg.Backend),
		zap.Bool("encrypted", cfg.EncryptionKey != ""),
		zap.Duration("cache_ttl", cfg.CacheTTL),
	)
	return store, nil
}
