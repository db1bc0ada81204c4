//go:build integration

package repository_test

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/UnknownOlympus/asclepius/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	rediscon "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

func exerciseRepository(t *testing.T, repo repository.Interface) {
	t.Helper()
	ctx := t.Context()

	require.NoError(t, repo.Ping(ctx))

	_, err := repo.LoadState(ctx, "session-1", "pharmacies")
	require.ErrorIs(t, err, repository.ErrStateNotFound)

	require.NoError(t, repo.SaveState(ctx, "session-1", "pharmacies", "CVS at 500 Castro St"))
	require.NoError(t, repo.SaveState(ctx, "session-1", "pharmacies", "Walgreens at 1 Main St"))

	value, err := repo.LoadState(ctx, "session-1", "pharmacies")
	require.NoError(t, err)
	assert.Equal(t, "Walgreens at 1 Main St", value)

	require.NoError(t, repo.DeleteSession(ctx, "session-1"))
	_, err = repo.LoadState(ctx, "session-1", "pharmacies")
	require.ErrorIs(t, err, repository.ErrStateNotFound)
}

func TestPostgresRepository_Integration(t *testing.T) {
	ctx := t.Context()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("asclepius"),
		postgres.WithUsername("asclepius"),
		postgres.WithPassword("asclepius"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, testcontainers.TerminateContainer(container))
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	repo := repository.NewPostgresRepository(pool, slog.Default())
	require.NoError(t, repo.Migrate(ctx))
	require.NoError(t, repo.Migrate(ctx), "migration must be repeatable")

	exerciseRepository(t, repo)
}

func TestRedisRepository_Integration(t *testing.T) {
	ctx := t.Context()

	container, err := rediscon.Run(ctx, "redis:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, testcontainers.TerminateContainer(container))
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	options, err := redis.ParseURL(uri)
	require.NoError(t, err)

	client := redis.NewClient(options)
	t.Cleanup(func() { _ = client.Close() })

	exerciseRepository(t, repository.NewRedisRepository(client, fmt.Sprintf("test-%d", time.Now().Unix())))
}
