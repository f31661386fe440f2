package orderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/storefront/internal/core/domain"
)

// maxResponseSize caps how much of a backend response is read (1MB)
const maxResponseSize = 1 << 20

var (
	ErrUnavailable  = errors.New("orderapi: backend unavailable")
	ErrBadResponse  = errors.New("orderapi: malformed response")
	ErrClientNotSet = errors.New("orderapi: client id is empty")
)

// Client talks to the storefront REST backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	newKey     func() string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		newKey:     func() string { return uuid.New().String() },
	}
}

// envelope is the backend's response wrapper. Fields are optional.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type orderData struct {
	ID          flexString `json:"id"`
	OrderNumber flexString `json:"orderNumber"`
}

type clientData struct {
	ID          flexString `json:"id"`
	ClientCode  string     `json:"clientCode"`
	Name        string     `json:"name"`
	WhatsappAcc string     `json:"whatsappAcc"`
}

// CreateOrder posts the order once. The Idempotency-Key header carries
// req.IdempotencyKey, or a fresh key when the caller set none.
func (c *Client) CreateOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return domain.OrderResult{}, fmt.Errorf("orderapi: encode order: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/order", bytes.NewReader(body))
	if err != nil {
		return domain.OrderResult{}, fmt.Errorf("orderapi: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	key := req.IdempotencyKey
	if key == "" {
		key = c.newKey()
	}
	httpReq.Header.Set("Idempotency-Key", key)

	raw, err := c.do(httpReq)
	if err != nil {
		return domain.OrderResult{}, err
	}

	// The order is accepted at this point; an unexpected body only costs the number.
	var env envelope
	var data orderData
	if json.Unmarshal(raw, &env) == nil && len(env.Data) > 0 {
		_ = json.Unmarshal(env.Data, &data)
	}
	return domain.OrderResult{ID: string(data.ID), OrderNumber: string(data.OrderNumber)}, nil
}

// GetTenant fetches a client record.
func (c *Client) GetTenant(ctx context.Context, clientID string) (domain.Tenant, error) {
	if clientID == "" {
		return domain.Tenant{}, ErrClientNotSet
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/clients/"+url.PathEscape(clientID), nil)
	if err != nil {
		return domain.Tenant{}, fmt.Errorf("orderapi: create request: %w", err)
	}

	raw, err := c.do(httpReq)
	if err != nil {
		return domain.Tenant{}, err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return domain.Tenant{}, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	var data clientData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return domain.Tenant{}, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	id := string(data.ID)
	if id == "" {
		id = clientID
	}
	return domain.Tenant{
		ID:              id,
		Code:            data.ClientCode,
		Name:            data.Name,
		MessagingHandle: data.WhatsappAcc,
	}, nil
}

// do sends req and returns the body of a 2xx response. Other statuses become
// a *domain.RemoteError carrying the backend's message when it sent one.
func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("orderapi: read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var env envelope
		_ = json.Unmarshal(raw, &env)
		return nil, &domain.RemoteError{StatusCode: resp.StatusCode, Message: env.Message}
	}
	return raw, nil
}

// flexString accepts both JSON strings and numbers.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}
