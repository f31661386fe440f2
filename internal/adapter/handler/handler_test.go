package handler

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
)

type fakeOrders struct {
	mu     sync.Mutex
	calls  int
	last   domain.OrderRequest
	result domain.OrderResult
	err    error
}

func (f *fakeOrders) CreateOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = req
	return f.result, f.err
}

func (f *fakeOrders) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeTenants struct{}

func (fakeTenants) GetTenant(ctx context.Context, clientID string) (domain.Tenant, error) {
	return domain.Tenant{ID: clientID, Code: "ACME", MessagingHandle: "https://wa.me/6281234"}, nil
}

type testStack struct {
	store    *storage.MemoryAdapter
	carts    *service.CartRegistry
	checkout *service.CheckoutService
	orders   *fakeOrders
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	store := storage.NewMemoryAdapter()
	carts := service.NewCartRegistry(store, zap.NewNop())
	orders := &fakeOrders{result: domain.OrderResult{ID: "1", OrderNumber: "ORD-1001"}}
	checkout := service.NewCheckoutService(carts, fakeTenants{}, service.CheckoutDeps{
		Orders: orders,
		Guard:  store,
		Messages: service.MessageBuilder{
			DefaultCurrency: "IDR",
		},
	})
	return &testStack{store: store, carts: carts, checkout: checkout, orders: orders}
}

func (s *testStack) seed(t *testing.T, sessionID string, lines ...domain.CartLine) {
	t.Helper()
	cart := s.carts.Cart(context.Background(), sessionID)
	for _, l := range lines {
		cart.Add(context.Background(), l)
	}
}

func sampleLine(id string, price float64, qty int) domain.CartLine {
	return domain.CartLine{
		ProductID:    id,
		Name:         "Product " + id,
		CurrencyCode: "IDR",
		UnitPrice:    price,
		Quantity:     qty,
		MaxQuantity:  10,
	}
}
