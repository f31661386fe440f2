package service

import (
	"context"
	"errors"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/rl1809/storefront/internal/core/domain"
)

// Mock OrderGateway
type mockOrders struct {
	mock.Mock
}

func (m *mockOrders) CreateOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.OrderResult), args.Error(1)
}

// failingStore rejects every operation.
type failingStore struct{}

var errStoreDown = errors.New("store down")

func (failingStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, errStoreDown
}

func (failingStore) Save(ctx context.Context, key string, data []byte) error { return errStoreDown }

func (failingStore) Delete(ctx context.Context, key string) error { return errStoreDown }

// stubGuard reports a fixed outcome and counts releases.
type stubGuard struct {
	mu       sync.Mutex
	held     bool
	err      error
	released int
}

func (g *stubGuard) Acquire(ctx context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.held, g.err
}

func (g *stubGuard) Release(ctx context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.released++
	return nil
}

type recordingSink struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (s *recordingSink) Enqueue(n domain.Notification) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
	return true
}

func (s *recordingSink) Sent() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Notification(nil), s.sent...)
}

func line(id, name string, price float64, qty, max int) domain.CartLine {
	return domain.CartLine{
		ProductID:    id,
		Name:         name,
		CurrencyCode: "KES",
		UnitPrice:    price,
		Quantity:     qty,
		MaxQuantity:  max,
	}
}

// memoryStore is a CartStore that fails once its context is done, like the
// network-backed stores.
type memoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string][]byte)}
}

func (m *memoryStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[key]
	return append([]byte(nil), data...), ok, nil
}

func (m *memoryStore) Save(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *memoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memoryStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}
