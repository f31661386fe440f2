package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
)

func newTestRouter(s *testStack) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHTTPHandler(s.carts, s.checkout, zap.NewNop()).Register(r)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, sessionID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set(SessionHeader, sessionID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type cartEnvelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    CartResponse `json:"data"`
}

func decodeCart(t *testing.T, w *httptest.ResponseRecorder) cartEnvelope {
	t.Helper()
	var env cartEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestHealthCheck(t *testing.T) {
	r := newTestRouter(newTestStack(t))

	w := doJSON(t, r, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestSession_IssuedWhenMissing(t *testing.T) {
	r := newTestRouter(newTestStack(t))

	w := doJSON(t, r, http.MethodGet, "/api/cart", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(SessionHeader))

	w = doJSON(t, r, http.MethodGet, "/api/cart", "sess-1", nil)
	assert.Equal(t, "sess-1", w.Header().Get(SessionHeader))
}

func TestAddItem_MergesAndTotals(t *testing.T) {
	s := newTestStack(t)
	r := newTestRouter(s)

	body := AddItemRequest{ProductID: "p1", Name: "Coffee", UnitPrice: 12.5, Quantity: 2, MaxQuantity: 3}
	w := doJSON(t, r, http.MethodPost, "/api/cart/items", "sess-1", body)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/cart/items", "sess-1", body)
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeCart(t, w)
	assert.True(t, env.Success)
	require.Len(t, env.Data.Items, 1)
	assert.Equal(t, 3, env.Data.Items[0].Quantity)
	assert.Equal(t, 3, env.Data.Count)
	assert.Equal(t, "37.50", env.Data.Total)
	assert.True(t, s.store.Has(service.StorageKey("sess-1")))
}

func TestAddItem_InvalidBody(t *testing.T) {
	r := newTestRouter(newTestStack(t))

	w := doJSON(t, r, http.MethodPost, "/api/cart/items", "sess-1", map[string]any{"name": "no id", "quantity": 1})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateQuantity(t *testing.T) {
	s := newTestStack(t)
	s.seed(t, "sess-1", sampleLine("p1", 100, 1))
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodPut, "/api/cart/items/p1", "sess-1", UpdateQuantityRequest{Quantity: 4})
	env := decodeCart(t, w)
	assert.True(t, env.Success)
	assert.Equal(t, "400.00", env.Data.Total)

	w = doJSON(t, r, http.MethodPut, "/api/cart/items/p1", "sess-1", UpdateQuantityRequest{Quantity: 11})
	env = decodeCart(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, 4, env.Data.Count)

	w = doJSON(t, r, http.MethodPut, "/api/cart/items/p1", "sess-1", UpdateQuantityRequest{Quantity: 0})
	env = decodeCart(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, 4, env.Data.Count)
}

func TestRemoveAndClear(t *testing.T) {
	s := newTestStack(t)
	s.seed(t, "sess-1", sampleLine("p1", 10, 1), sampleLine("p2", 20, 1))
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodDelete, "/api/cart/items/p1", "sess-1", nil)
	env := decodeCart(t, w)
	require.Len(t, env.Data.Items, 1)
	assert.Equal(t, "p2", env.Data.Items[0].ProductID)

	w = doJSON(t, r, http.MethodDelete, "/api/cart", "sess-1", nil)
	env = decodeCart(t, w)
	assert.Empty(t, env.Data.Items)
	assert.Equal(t, "0.00", env.Data.Total)
	assert.False(t, s.store.Has(service.StorageKey("sess-1")))
}

func TestBeginCheckout_EmptyCart(t *testing.T) {
	r := newTestRouter(newTestStack(t))

	w := doJSON(t, r, http.MethodPost, "/api/checkout/begin", "sess-1", nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Please add items to your cart before checking out", resp.Message)
	assert.Equal(t, "/product-list", resp.RedirectPath)
}

func TestBeginCheckout_EmptyCartScopedToTenant(t *testing.T) {
	r := newTestRouter(newTestStack(t))

	req := httptest.NewRequest(http.MethodPost, "/api/checkout/begin", nil)
	req.Header.Set(SessionHeader, "sess-1")
	req.Header.Set(ClientHeader, "client-9")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "/product-list?clientCode=ACME", resp.RedirectPath)
}

func TestBeginCheckout_CartEmptiedAfterStart(t *testing.T) {
	s := newTestStack(t)
	s.seed(t, "sess-1", sampleLine("p1", 10, 1))
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodPost, "/api/checkout/begin", "sess-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/api/cart/items/p1", "sess-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/checkout/begin", "sess-1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetCheckout_NotStarted(t *testing.T) {
	r := newTestRouter(newTestStack(t))

	w := doJSON(t, r, http.MethodGet, "/api/checkout", "sess-1", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitOrder_ValidationError(t *testing.T) {
	s := newTestStack(t)
	s.seed(t, "sess-1", sampleLine("p1", 10, 1))
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodPut, "/api/checkout/customer", "sess-1", domain.Customer{
		Name: "  ", Email: "a@b.c", Phone: "1", Address: "x",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/checkout/submit", "sess-1", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Please enter your name", resp.Message)
	assert.Equal(t, 0, s.orders.Calls())
}

func TestSubmitOrder_Success(t *testing.T) {
	s := newTestStack(t)
	s.seed(t, "sess-1", sampleLine("p1", 10, 2), sampleLine("p2", 5, 1))
	r := newTestRouter(s)

	doJSON(t, r, http.MethodPut, "/api/checkout/customer", "sess-1", domain.Customer{
		Name: "Budi", Email: "budi@example.com", Phone: "0812", Address: "Jl. Merdeka 1",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/checkout/submit", nil)
	req.Header.Set(SessionHeader, "sess-1")
	req.Header.Set(ClientHeader, "client-9")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success      bool                `json:"success"`
		RedirectPath string              `json:"redirectPath"`
		Data         domain.Confirmation `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "/product-list?clientCode=ACME", resp.RedirectPath)
	assert.Equal(t, "ORD-1001", resp.Data.OrderNumber)
	assert.True(t, strings.HasPrefix(resp.Data.DeepLink, "https://wa.me/6281234?text="))
	assert.Contains(t, resp.Data.Message, "25.00")

	w = doJSON(t, r, http.MethodGet, "/api/cart", "sess-1", nil)
	assert.Empty(t, decodeCart(t, w).Data.Items)
	assert.Equal(t, 1, s.orders.Calls())
}

func TestSubmitOrder_BackendFailure(t *testing.T) {
	s := newTestStack(t)
	s.orders.err = &domain.RemoteError{StatusCode: http.StatusBadRequest, Message: "Product p1 is out of stock"}
	s.seed(t, "sess-1", sampleLine("p1", 10, 1))
	r := newTestRouter(s)

	doJSON(t, r, http.MethodPut, "/api/checkout/customer", "sess-1", domain.Customer{
		Name: "Budi", Email: "budi@example.com", Phone: "0812", Address: "Jl. Merdeka 1",
	})
	w := doJSON(t, r, http.MethodPost, "/api/checkout/submit", "sess-1", nil)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Product p1 is out of stock", resp.Message)

	w = doJSON(t, r, http.MethodGet, "/api/checkout", "sess-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var flow struct {
		Data CheckoutResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &flow))
	assert.Equal(t, "failed", flow.Data.State)
	assert.Equal(t, "Budi", flow.Data.Customer.Name)
	assert.Len(t, flow.Data.Cart.Items, 1)
}

func TestCheckoutErrorResponse(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"in progress", service.ErrSubmissionInProgress, http.StatusConflict},
		{"closed", service.ErrCheckoutClosed, http.StatusConflict},
		{"validation", &service.ValidationError{Field: "Email", Message: "Please enter your email"}, http.StatusUnprocessableEntity},
		{"order", &service.OrderError{Message: "nope", Err: errors.New("boom")}, http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := checkoutErrorResponse(tt.err)
			assert.Equal(t, tt.status, status)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

type closeNotifyingRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool

	mu       sync.Mutex
	deadline *time.Time
}

func (r *closeNotifyingRecorder) SetWriteDeadline(d time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deadline = &d
	return nil
}

func (r *closeNotifyingRecorder) CloseNotify() <-chan bool {
	return r.closed
}

func TestCartEvents_ReplaysLatestSnapshot(t *testing.T) {
	s := newTestStack(t)
	s.seed(t, "sess-1", sampleLine("p1", 10, 2))
	r := newTestRouter(s)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/cart/events", nil).WithContext(ctx)
	req.Header.Set(SessionHeader, "sess-1")
	w := &closeNotifyingRecorder{ResponseRecorder: httptest.NewRecorder(), closed: make(chan bool, 1)}

	done := make(chan struct{})
	go func() {
		defer close(done)
		r.ServeHTTP(w, req)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("event stream did not stop after the client went away")
	}

	w.mu.Lock()
	require.NotNil(t, w.deadline)
	assert.True(t, w.deadline.IsZero())
	w.mu.Unlock()

	body := w.Body.String()
	assert.Contains(t, body, "event:cart")
	assert.Contains(t, body, `"productId":"p1"`)
	assert.Contains(t, body, `"total":"20.00"`)
}
