package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/asclepius/internal/config"
	"github.com/redis/go-redis/v9"
)

// Backend names accepted by NewRepository.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// NewRepository builds the session state store selected in the configuration.
// The returned close function releases the underlying connections.
func NewRepository(ctx context.Context, cfg config.StateConfig, log *slog.Logger) (Interface, func(), error) {
	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemoryRepository(), func() {}, nil
	case BackendPostgres:
		db := cfg.Database
		pool, err := NewDatabase(db.Host, db.Port, db.User, db.Password, db.Name)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		repo := NewPostgresRepository(pool, log)
		if err = repo.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repo, pool.Close, nil
	case BackendRedis:
		options, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse redis url: %w", err)
		}
		client := redis.NewClient(options)
		if err = client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return NewRedisRepository(client, cfg.RedisPrefix), func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported state backend: %s", cfg.Backend)
	}
}
