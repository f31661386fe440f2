package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrSubmissionInProgress = errors.New("order submission already in progress")
	ErrCheckoutClosed       = errors.New("checkout already completed")
	ErrCustomerLocked       = errors.New("customer details cannot change while submitting")
)

const genericOrderFailure = "Failed to place order. Please try again."

var customerFieldMessages = map[string]string{
	"Name":    "Please enter your name",
	"Email":   "Please enter your email",
	"Phone":   "Please enter your phone number",
	"Address": "Please enter your address",
}

// ValidationError is a client-side rejection raised before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// OrderError is a failed order submission. Message is safe to show to the
// customer.
type OrderError struct {
	Message string
	Err     error
}

func (e *OrderError) Error() string { return fmt.Sprintf("%s: %v", e.Message, e.Err) }

func (e *OrderError) Unwrap() error { return e.Err }

type notificationSink interface {
	Enqueue(n domain.Notification) bool
}

// CheckoutDeps are the collaborators shared by every checkout flow.
type CheckoutDeps struct {
	Orders        port.OrderGateway
	Guard         port.SubmitGuard // optional
	Notifications notificationSink // optional
	Messages      MessageBuilder
	Logger        *zap.Logger
	Now           func() time.Time
}

// Checkout turns one session's cart and customer details into a submitted
// order.
type Checkout struct {
	sessionID string
	flowID    uuid.UUID
	cart      *Cart
	deps      CheckoutDeps
	validate  *validator.Validate
	logger    *zap.Logger

	mu       sync.Mutex
	state    domain.CheckoutState
	customer domain.Customer
}

// NewCheckout starts a flow in the filling state. Callers check the entry
// guard (non-empty cart) first.
func NewCheckout(sessionID string, cart *Cart, deps CheckoutDeps) *Checkout {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Checkout{
		sessionID: sessionID,
		flowID:    uuid.New(),
		cart:      cart,
		deps:      deps,
		validate:  validator.New(),
		logger:    deps.Logger.With(zap.String("session_id", sessionID)),
		state:     domain.CheckoutFilling,
	}
}

func (c *Checkout) State() domain.CheckoutState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Checkout) Customer() domain.Customer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.customer
}

// SetCustomer replaces the form contents.
func (c *Checkout) SetCustomer(customer domain.Customer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.state == domain.CheckoutSucceeded:
		return ErrCheckoutClosed
	case !c.state.Editable():
		return ErrCustomerLocked
	}
	c.customer = customer
	return nil
}

// Submit validates the form and places the order. A second call while the
// first is in flight returns ErrSubmissionInProgress without a network call.
func (c *Checkout) Submit(ctx context.Context, tenant domain.Tenant) (domain.Confirmation, error) {
	c.mu.Lock()
	switch c.state {
	case domain.CheckoutSubmitting:
		c.mu.Unlock()
		return domain.Confirmation{}, ErrSubmissionInProgress
	case domain.CheckoutSucceeded:
		c.mu.Unlock()
		return domain.Confirmation{}, ErrCheckoutClosed
	}

	customer := c.customer.Trimmed()
	if err := c.validateCustomer(customer); err != nil {
		c.mu.Unlock()
		return domain.Confirmation{}, err
	}
	lines := c.cart.Items()
	if len(lines) == 0 {
		c.mu.Unlock()
		return domain.Confirmation{}, &ValidationError{Field: "cart", Message: "Your cart is empty"}
	}

	if !c.acquireGuard(ctx) {
		c.mu.Unlock()
		return domain.Confirmation{}, ErrSubmissionInProgress
	}
	c.transition(domain.CheckoutSubmitting)
	c.mu.Unlock()

	req := domain.NewOrderRequest(lines, customer)
	req.IdempotencyKey = c.idempotencyKey(req)
	result, err := c.deps.Orders.CreateOrder(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.releaseGuard()

	if err != nil {
		c.transition(domain.CheckoutFailed)
		c.logger.Error("order failed", zap.Error(err))
		return domain.Confirmation{}, &OrderError{Message: orderFailureMessage(err), Err: err}
	}

	placedAt := c.deps.Now()
	message := c.deps.Messages.Build(OrderSummary{
		OrderNumber: result.OrderNumber,
		PlacedAt:    placedAt,
		Customer:    customer,
		Lines:       lines,
	})
	link := DeepLink(tenant.MessagingHandle, message)
	if link == "" {
		c.logger.Warn("tenant has no messaging handle, skipping deep link", zap.String("client_id", tenant.ID))
	}

	// Cleanup runs even if the caller has gone away.
	c.cart.Consume(context.WithoutCancel(ctx), lines)
	c.customer = domain.Customer{}
	c.transition(domain.CheckoutSucceeded)

	c.logger.Info("order placed",
		zap.String("order_number", result.OrderNumber),
		zap.Int("lines", len(lines)),
	)

	if c.deps.Notifications != nil {
		c.deps.Notifications.Enqueue(domain.Notification{
			SessionID:   c.sessionID,
			Tenant:      tenant,
			Customer:    customer,
			OrderNumber: result.OrderNumber,
			Lines:       lines,
			Message:     message,
			DeepLink:    link,
			PlacedAt:    placedAt,
		})
	}

	return domain.Confirmation{
		OrderNumber:  result.OrderNumber,
		Message:      message,
		DeepLink:     link,
		RedirectPath: CatalogPath(tenant),
		PlacedAt:     placedAt,
	}, nil
}

// validateCustomer reports the first missing field only.
func (c *Checkout) validateCustomer(customer domain.Customer) error {
	err := c.validate.Struct(customer)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		field := fieldErrs[0].Field()
		return &ValidationError{Field: field, Message: customerFieldMessages[field]}
	}
	return &ValidationError{Field: "customer", Message: err.Error()}
}

func (c *Checkout) transition(next domain.CheckoutState) {
	if !c.state.CanTransition(next) {
		c.logger.Error("invalid checkout transition",
			zap.Stringer("from", c.state),
			zap.Stringer("to", next),
		)
		return
	}
	c.state = next
}

// idempotencyKey is identical for identical resubmissions within one flow.
func (c *Checkout) idempotencyKey(req domain.OrderRequest) string {
	payload, err := json.Marshal(req)
	if err != nil {
		return uuid.NewString()
	}
	return uuid.NewSHA1(c.flowID, append([]byte(c.sessionID+"\n"), payload...)).String()
}

func (c *Checkout) guardKey() string {
	return "checkout:" + c.sessionID
}

// acquireGuard consults the shared submit guard. The guard is cooperative:
// if it cannot be reached the submission goes ahead.
func (c *Checkout) acquireGuard(ctx context.Context) bool {
	if c.deps.Guard == nil {
		return true
	}
	ok, err := c.deps.Guard.Acquire(ctx, c.guardKey())
	if err != nil {
		c.logger.Warn("submit guard unavailable", zap.Error(err))
		return true
	}
	return ok
}

func (c *Checkout) releaseGuard() {
	if c.deps.Guard == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.deps.Guard.Release(ctx, c.guardKey()); err != nil {
		c.logger.Warn("failed to release submit guard", zap.Error(err))
	}
}

func orderFailureMessage(err error) string {
	var remote *domain.RemoteError
	if errors.As(err, &remote) && remote.Message != "" {
		return remote.Message
	}
	return genericOrderFailure
}
