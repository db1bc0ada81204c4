package repository

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/redis/go-redis/v9"
)

// RedisRepository keeps the state of each session in one hash under
// <prefix>/sessions/<sessionID>/state.
type RedisRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisRepository creates a Redis backed store with the given key prefix.
func NewRedisRepository(client *redis.Client, prefix string) *RedisRepository {
	return &RedisRepository{client: client, prefix: prefix}
}

func (r *RedisRepository) stateKey(sessionID string) string {
	return path.Join(r.prefix, "sessions", sessionID, "state")
}

func (r *RedisRepository) SaveState(ctx context.Context, sessionID, key, value string) error {
	if err := r.client.HSet(ctx, r.stateKey(sessionID), key, value).Err(); err != nil {
		return fmt.Errorf("failed to save session state in redis: %w", err)
	}

	return nil
}

func (r *RedisRepository) LoadState(ctx context.Context, sessionID, key string) (string, error) {
	value, err := r.client.HGet(ctx, r.stateKey(sessionID), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrStateNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load session state from redis: %w", err)
	}

	return value, nil
}

func (r *RedisRepository) DeleteSession(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.stateKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session state in redis: %w", err)
	}

	return nil
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
