package storage

import (
	"context"
	"sync"
)

// MemoryAdapter keeps snapshots and guards in process memory. It backs
// single-instance deployments and tests.
type MemoryAdapter struct {
	mu     sync.Mutex
	carts  map[string][]byte
	guards map[string]struct{}
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		carts:  make(map[string][]byte),
		guards: make(map[string]struct{}),
	}
}

func (m *MemoryAdapter) Load(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.carts[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

func (m *MemoryAdapter) Save(ctx context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryAdapter) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, key)
	return nil
}

// Has reports whether key is stored.
func (m *MemoryAdapter) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.carts[key]
	return ok
}

func (m *MemoryAdapter) Acquire(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, held := m.guards[key]; held {
		return false, nil
	}
	m.guards[key] = struct{}{}
	return true, nil
}

func (m *MemoryAdapter) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.guards, key)
	return nil
}
