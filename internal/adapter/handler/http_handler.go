package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
)

const (
	SessionHeader = "X-Session-Id"
	ClientHeader  = "X-Client-Id"

	sessionKey = "session_id"
)

type HTTPHandler struct {
	carts    *service.CartRegistry
	checkout *service.CheckoutService
	logger   *zap.Logger
}

type Response struct {
	Success      bool   `json:"success"`
	Message      string `json:"message,omitempty"`
	RedirectPath string `json:"redirectPath,omitempty"`
	Data         any    `json:"data,omitempty"`
}

type CartResponse struct {
	Items []domain.CartLine `json:"items"`
	Count int               `json:"count"`
	Total string            `json:"total"`
}

type AddItemRequest struct {
	ProductID     string  `json:"productId" binding:"required"`
	Name          string  `json:"name" binding:"required"`
	Description   string  `json:"description"`
	Image         string  `json:"image"`
	UnitOfMeasure string  `json:"unitOfMeasure"`
	CurrencyCode  string  `json:"currencyCode"`
	UnitPrice     float64 `json:"unitPrice" binding:"gte=0"`
	Quantity      int     `json:"quantity" binding:"required,gte=1"`
	MaxQuantity   int     `json:"maxQuantity" binding:"gte=0"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CheckoutResponse struct {
	State    string          `json:"state"`
	Customer domain.Customer `json:"customer"`
	Cart     CartResponse    `json:"cart"`
}

func NewHTTPHandler(carts *service.CartRegistry, checkout *service.CheckoutService, logger *zap.Logger) *HTTPHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPHandler{carts: carts, checkout: checkout, logger: logger.Named("http")}
}

// Register mounts every route on r.
func (h *HTTPHandler) Register(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)

	api := r.Group("/api", h.Session)
	api.GET("/cart", h.GetCart)
	api.POST("/cart/items", h.AddItem)
	api.PUT("/cart/items/:productId", h.UpdateQuantity)
	api.DELETE("/cart/items/:productId", h.RemoveItem)
	api.DELETE("/cart", h.ClearCart)
	api.GET("/cart/events", h.CartEvents)

	api.GET("/checkout", h.GetCheckout)
	api.POST("/checkout/begin", h.BeginCheckout)
	api.PUT("/checkout/customer", h.UpdateCustomer)
	api.POST("/checkout/submit", h.SubmitOrder)
}

// Session resolves the caller's session, issuing a new one when absent.
func (h *HTTPHandler) Session(c *gin.Context) {
	sessionID := c.GetHeader(SessionHeader)
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	c.Header(SessionHeader, sessionID)
	c.Set(sessionKey, sessionID)
	c.Next()
}

func (h *HTTPHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HTTPHandler) GetCart(c *gin.Context) {
	cart := h.cart(c)
	c.JSON(http.StatusOK, Response{Success: true, Data: cartResponse(cart)})
}

func (h *HTTPHandler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http add item validation failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: "invalid request body"})
		return
	}

	cart := h.cart(c)
	cart.Add(c.Request.Context(), domain.CartLine{
		ProductID:     req.ProductID,
		Name:          req.Name,
		Description:   req.Description,
		Image:         req.Image,
		UnitOfMeasure: req.UnitOfMeasure,
		CurrencyCode:  req.CurrencyCode,
		UnitPrice:     req.UnitPrice,
		Quantity:      req.Quantity,
		MaxQuantity:   req.MaxQuantity,
	})

	c.JSON(http.StatusOK, Response{Success: true, Data: cartResponse(cart)})
}

func (h *HTTPHandler) UpdateQuantity(c *gin.Context) {
	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: "invalid request body"})
		return
	}

	cart := h.cart(c)
	if !cart.UpdateQuantity(c.Request.Context(), c.Param("productId"), req.Quantity) {
		c.JSON(http.StatusOK, Response{Success: false, Message: "quantity unchanged", Data: cartResponse(cart)})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: cartResponse(cart)})
}

func (h *HTTPHandler) RemoveItem(c *gin.Context) {
	cart := h.cart(c)
	cart.Remove(c.Request.Context(), c.Param("productId"))
	c.JSON(http.StatusOK, Response{Success: true, Data: cartResponse(cart)})
}

func (h *HTTPHandler) ClearCart(c *gin.Context) {
	cart := h.cart(c)
	cart.Clear(c.Request.Context())
	c.JSON(http.StatusOK, Response{Success: true, Data: cartResponse(cart)})
}

// CartEvents streams cart snapshots as server-sent events until the client
// goes away.
func (h *HTTPHandler) CartEvents(c *gin.Context) {
	// The server's write timeout would otherwise cut the stream.
	if err := http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{}); err != nil {
		h.logger.Debug("http event stream keeps server write deadline", zap.Error(err))
	}

	snapshots, cancel := h.cart(c).Subscribe()
	defer cancel()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case lines, ok := <-snapshots:
			if !ok {
				return false
			}
			c.SSEvent("cart", snapshotResponse(lines))
			return true
		}
	})
}

func (h *HTTPHandler) GetCheckout(c *gin.Context) {
	flow, ok := h.checkout.Flow(sessionID(c))
	if !ok {
		c.JSON(http.StatusNotFound, Response{Success: false, Message: "checkout not started"})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: h.checkoutResponse(c, flow)})
}

func (h *HTTPHandler) BeginCheckout(c *gin.Context) {
	flow, err := h.checkout.Begin(c.Request.Context(), sessionID(c))
	if err != nil {
		h.writeCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: h.checkoutResponse(c, flow)})
}

func (h *HTTPHandler) UpdateCustomer(c *gin.Context) {
	var req domain.Customer
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: "invalid request body"})
		return
	}

	if err := h.checkout.UpdateCustomer(c.Request.Context(), sessionID(c), req); err != nil {
		h.writeCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

func (h *HTTPHandler) SubmitOrder(c *gin.Context) {
	confirmation, err := h.checkout.Submit(c.Request.Context(), sessionID(c), clientID(c))
	if err != nil {
		h.writeCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success:      true,
		Message:      "Order Placed Successfully!",
		RedirectPath: confirmation.RedirectPath,
		Data:         confirmation,
	})
}

func (h *HTTPHandler) writeCheckoutError(c *gin.Context, err error) {
	status, resp := checkoutErrorResponse(err)
	if errors.Is(err, service.ErrEmptyCart) {
		resp.RedirectPath = h.checkout.CatalogPath(c.Request.Context(), clientID(c))
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("http checkout failed", zap.String("session_id", sessionID(c)), zap.Error(err))
	}
	c.JSON(status, resp)
}

func checkoutErrorResponse(err error) (int, Response) {
	var validationErr *service.ValidationError
	var orderErr *service.OrderError

	switch {
	case errors.Is(err, service.ErrEmptyCart):
		return http.StatusConflict, Response{
			Message:      "Please add items to your cart before checking out",
			RedirectPath: service.CatalogPath(domain.Tenant{}),
		}
	case errors.Is(err, service.ErrSubmissionInProgress):
		return http.StatusConflict, Response{Message: "order submission already in progress"}
	case errors.Is(err, service.ErrCheckoutClosed), errors.Is(err, service.ErrCustomerLocked):
		return http.StatusConflict, Response{Message: err.Error()}
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity, Response{Message: validationErr.Message}
	case errors.As(err, &orderErr):
		return http.StatusBadGateway, Response{Message: orderErr.Message}
	default:
		return http.StatusInternalServerError, Response{Message: "internal error"}
	}
}

func (h *HTTPHandler) cart(c *gin.Context) *service.Cart {
	return h.carts.Cart(c.Request.Context(), sessionID(c))
}

func (h *HTTPHandler) checkoutResponse(c *gin.Context, flow *service.Checkout) CheckoutResponse {
	return CheckoutResponse{
		State:    flow.State().String(),
		Customer: flow.Customer(),
		Cart:     cartResponse(h.cart(c)),
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}

func clientID(c *gin.Context) string {
	if id := c.GetHeader(ClientHeader); id != "" {
		return id
	}
	return c.Query("clientId")
}

func cartResponse(cart *service.Cart) CartResponse {
	return snapshotResponse(cart.Items())
}

func snapshotResponse(lines []domain.CartLine) CartResponse {
	return CartResponse{
		Items: lines,
		Count: domain.SumQuantity(lines),
		Total: domain.SumTotal(lines).StringFixed(2),
	}
}
