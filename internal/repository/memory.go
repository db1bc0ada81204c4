package repository

import (
	"context"
	"sync"
)

// MemoryRepository keeps session state in process memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	storage map[string]map[string]string
}

// NewMemoryRepository creates an empty in-memory store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{storage: make(map[string]map[string]string)}
}

func (m *MemoryRepository) SaveState(_ context.Context, sessionID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.storage[sessionID]
	if !ok {
		state = make(map[string]string)
		m.storage[sessionID] = state
	}
	state[key] = value

	return nil
}

func (m *MemoryRepository) LoadState(_ context.Context, sessionID, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.storage[sessionID][key]
	if !ok {
		return "", ErrStateNotFound
	}

	return value, nil
}

func (m *MemoryRepository) DeleteSession(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.storage, sessionID)

	return nil
}

func (m *MemoryRepository) Ping(_ context.Context) error {
	return nil
}
