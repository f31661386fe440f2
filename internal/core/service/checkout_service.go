package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// CheckoutService keeps one checkout flow per session.
type CheckoutService struct {
	carts   *CartRegistry
	tenants port.TenantDirectory
	deps    CheckoutDeps
	logger  *zap.Logger

	mu    sync.Mutex
	flows map[string]*Checkout
}

func NewCheckoutService(carts *CartRegistry, tenants port.TenantDirectory, deps CheckoutDeps) *CheckoutService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	deps.Logger = deps.Logger.Named("checkout")
	return &CheckoutService{
		carts:   carts,
		tenants: tenants,
		deps:    deps,
		logger:  deps.Logger,
		flows:   make(map[string]*Checkout),
	}
}

// Begin enters checkout for a session. An empty cart returns ErrEmptyCart
// and the storefront sends the customer back to the catalog. An unfinished
// flow is resumed with its form intact.
func (s *CheckoutService) Begin(ctx context.Context, sessionID string) (*Checkout, error) {
	cart := s.carts.Cart(ctx, sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	flow, ok := s.flows[sessionID]
	if cart.Empty() {
		if ok && flow.State() != domain.CheckoutSubmitting {
			delete(s.flows, sessionID)
		}
		return nil, ErrEmptyCart
	}
	if ok && flow.State() != domain.CheckoutSucceeded {
		return flow, nil
	}

	flow = NewCheckout(sessionID, cart, s.deps)
	s.flows[sessionID] = flow
	return flow, nil
}

// Flow returns the session's current flow, if any.
func (s *CheckoutService) Flow(sessionID string) (*Checkout, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	flow, ok := s.flows[sessionID]
	return flow, ok
}

// UpdateCustomer stores the form contents on the session's flow.
func (s *CheckoutService) UpdateCustomer(ctx context.Context, sessionID string, customer domain.Customer) error {
	flow, err := s.Begin(ctx, sessionID)
	if err != nil {
		return err
	}
	return flow.SetCustomer(customer)
}

// Submit places the session's order on behalf of clientID.
func (s *CheckoutService) Submit(ctx context.Context, sessionID, clientID string) (domain.Confirmation, error) {
	flow, err := s.Begin(ctx, sessionID)
	if err != nil {
		return domain.Confirmation{}, err
	}
	return flow.Submit(ctx, s.resolveTenant(ctx, clientID))
}

// CatalogPath is the catalog page of clientID's storefront.
func (s *CheckoutService) CatalogPath(ctx context.Context, clientID string) string {
	return CatalogPath(s.resolveTenant(ctx, clientID))
}

// resolveTenant looks the client up for its messaging handle and code. The
// lookup only feeds the best-effort confirmation, so failures fall back to
// the bare ID.
func (s *CheckoutService) resolveTenant(ctx context.Context, clientID string) domain.Tenant {
	fallback := domain.Tenant{ID: clientID}
	if s.tenants == nil || clientID == "" {
		return fallback
	}
	tenant, err := s.tenants.GetTenant(ctx, clientID)
	if err != nil {
		s.logger.Warn("client lookup failed", zap.String("client_id", clientID), zap.Error(err))
		return fallback
	}
	return tenant
}
