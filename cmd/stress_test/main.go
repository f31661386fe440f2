package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
	"github.com/rl1809/storefront/internal/port"
)

const (
	redisAddr     = "localhost:6379"
	productID     = "promo-item"
	stockCeiling  = 20
	totalAdds     = 50
	totalSubmits  = 50
	gatewayDelay  = 200 * time.Millisecond
	stressSession = "stress-session"
)

// slowGateway accepts every order after a delay and counts the calls.
type slowGateway struct {
	calls atomic.Int32
}

func (g *slowGateway) CreateOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error) {
	n := g.calls.Add(1)
	time.Sleep(gatewayDelay)
	return domain.OrderResult{ID: uuid.NewString(), OrderNumber: fmt.Sprintf("STRESS-%d", n)}, nil
}

type backend interface {
	port.CartStore
	port.SubmitGuard
}

func main() {
	ctx := context.Background()
	log := zap.NewNop()

	store, cleanup := openBackend(ctx)
	defer cleanup()

	// Clear previous test data
	_ = store.Delete(ctx, service.StorageKey(stressSession))

	carts := service.NewCartRegistry(store, log)
	gateway := &slowGateway{}
	checkout := service.NewCheckoutService(carts, nil, service.CheckoutDeps{
		Orders:   gateway,
		Guard:    store,
		Messages: service.MessageBuilder{DefaultCurrency: "KES"},
		Logger:   log,
	})

	cart := carts.Cart(ctx, stressSession)

	// Concurrent adds of one product
	var wg sync.WaitGroup
	start := time.Now()
	for i := 0; i < totalAdds; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cart.Add(ctx, domain.CartLine{
				ProductID:   productID,
				Name:        "Flash Sale Item",
				UnitPrice:   9.99,
				Quantity:    1,
				MaxQuantity: stockCeiling,
			})
		}()
	}
	wg.Wait()
	addElapsed := time.Since(start)
	addedCount := cart.Count()

	if err := checkout.UpdateCustomer(ctx, stressSession, domain.Customer{
		Name:    "Stress Tester",
		Email:   "stress@example.com",
		Phone:   "0700000000",
		Address: "1 Load Street",
	}); err != nil {
		fmt.Printf("FAIL: could not prepare checkout: %v\n", err)
		os.Exit(1)
	}

	// Concurrent submits of the same checkout
	var successCount, inProgressCount, otherCount atomic.Int32
	start = time.Now()
	for i := 0; i < totalSubmits; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := checkout.Submit(ctx, stressSession, "")
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, service.ErrSubmissionInProgress), errors.Is(err, service.ErrCheckoutClosed), errors.Is(err, service.ErrEmptyCart):
				inProgressCount.Add(1)
			default:
				otherCount.Add(1)
			}
		}()
	}
	wg.Wait()
	submitElapsed := time.Since(start)

	// Results
	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Concurrent Adds:    %d (ceiling %d)\n", totalAdds, stockCeiling)
	fmt.Printf("Cart Quantity:      %d\n", addedCount)
	fmt.Printf("Add Duration:       %v\n", addElapsed)
	fmt.Printf("Concurrent Submits: %d\n", totalSubmits)
	fmt.Printf("Successful:         %d\n", successCount.Load())
	fmt.Printf("Rejected:           %d\n", inProgressCount.Load())
	fmt.Printf("Unexpected Errors:  %d\n", otherCount.Load())
	fmt.Printf("Gateway Calls:      %d\n", gateway.calls.Load())
	fmt.Printf("Submit Duration:    %v\n", submitElapsed)
	fmt.Println("==========================================")

	// Assertions
	failed := false
	if addedCount == stockCeiling {
		fmt.Printf("PASS: Cart quantity clamped to %d\n", stockCeiling)
	} else {
		fmt.Printf("FAIL: Expected cart quantity %d, got %d\n", stockCeiling, addedCount)
		failed = true
	}

	if successCount.Load() == 1 && gateway.calls.Load() == 1 {
		fmt.Println("PASS: Exactly 1 order placed")
	} else {
		fmt.Printf("FAIL: Expected 1 order and 1 gateway call, got %d/%d\n", successCount.Load(), gateway.calls.Load())
		failed = true
	}

	if _, ok, _ := store.Load(ctx, service.StorageKey(stressSession)); !ok && cart.Empty() {
		fmt.Println("PASS: Cart cleared after checkout")
	} else {
		fmt.Println("FAIL: Cart still present after checkout")
		failed = true
	}

	if failed {
		os.Exit(1)
	}
}

// openBackend prefers a local Redis and falls back to process memory.
func openBackend(ctx context.Context) (backend, func()) {
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		fmt.Printf("redis unavailable (%v), using in-memory store\n", err)
		rdb.Close()
		return storage.NewMemoryAdapter(), func() {}
	}
	return storage.NewRedisAdapter(rdb, time.Hour, 30*time.Second, "stress-"+uuid.NewString()), func() { rdb.Close() }
}
