package repository_test

import (
	"sync"
	"testing"

	"github.com/UnknownOlympus/asclepius/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository(t *testing.T) {
	ctx := t.Context()
	repo := repository.NewMemoryRepository()

	_, err := repo.LoadState(ctx, "session-1", "pharmacies")
	require.ErrorIs(t, err, repository.ErrStateNotFound)

	require.NoError(t, repo.SaveState(ctx, "session-1", "pharmacies", "first"))
	require.NoError(t, repo.SaveState(ctx, "session-1", "pharmacies", "second"))
	require.NoError(t, repo.SaveState(ctx, "session-2", "pharmacies", "other"))

	value, err := repo.LoadState(ctx, "session-1", "pharmacies")
	require.NoError(t, err)
	assert.Equal(t, "second", value)

	require.NoError(t, repo.DeleteSession(ctx, "session-1"))
	_, err = repo.LoadState(ctx, "session-1", "pharmacies")
	require.ErrorIs(t, err, repository.ErrStateNotFound)

	value, err = repo.LoadState(ctx, "session-2", "pharmacies")
	require.NoError(t, err)
	assert.Equal(t, "other", value)

	assert.NoError(t, repo.Ping(ctx))
}

func TestMemoryRepository_Concurrent(t *testing.T) {
	ctx := t.Context()
	repo := repository.NewMemoryRepository()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.SaveState(ctx, "session", "key", string(rune('a'+i%26)))
			_, _ = repo.LoadState(ctx, "session", "key")
		}()
	}
	wg.Wait()

	_, err := repo.LoadState(ctx, "session", "key")
	assert.NoError(t, err)
}
