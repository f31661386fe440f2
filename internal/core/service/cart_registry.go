package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/rl1809/storefront/internal/port"
)

const storageKeyPrefix = "shopping_cart"

// StorageKey returns the persistence key of a session's cart.
func StorageKey(sessionID string) string {
	return storageKeyPrefix + ":" + sessionID
}

// CartRegistry owns the carts of all live sessions.
// TODO: evict idle carts once session expiry is reported by the storefront.
type CartRegistry struct {
	store  port.CartStore
	logger *zap.Logger

	mu    sync.Mutex
	carts map[string]*Cart
}

func NewCartRegistry(store port.CartStore, logger *zap.Logger) *CartRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartRegistry{
		store:  store,
		logger: logger.Named("cart"),
		carts:  make(map[string]*Cart),
	}
}

// Cart returns the session's cart, loading it from storage on first use.
func (r *CartRegistry) Cart(ctx context.Context, sessionID string) *Cart {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.carts[sessionID]; ok {
		return c
	}
	c := NewCart(ctx, r.store, StorageKey(sessionID), r.logger.With(zap.String("session_id", sessionID)))
	r.carts[sessionID] = c
	return c
}

// Forget drops the in-memory cart; the persisted snapshot is kept.
func (r *CartRegistry) Forget(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, sessionID)
}

func (r *CartRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.carts)
}
