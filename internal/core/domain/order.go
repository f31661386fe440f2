package domain

import "strings"

type Customer struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	Address string `json:"address" validate:"required"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (c Customer) Trimmed() Customer {
	return Customer{
		Name:    strings.TrimSpace(c.Name),
		Email:   strings.TrimSpace(c.Email),
		Phone:   strings.TrimSpace(c.Phone),
		Address: strings.TrimSpace(c.Address),
	}
}

// Tenant is the client company a storefront session belongs to.
type Tenant struct {
	ID              string `json:"id"`
	Code            string `json:"clientCode"`
	Name            string `json:"name"`
	MessagingHandle string `json:"whatsappAcc"`
}

type OrderProduct struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// OrderRequest is the body sent to the order creation endpoint. Prices are
// resolved by the backend.
type OrderRequest struct {
	Products        []OrderProduct `json:"products"`
	CustomerEmail   string         `json:"customerEmail"`
	CustomerName    string         `json:"customerName"`
	CustomerPhone   string         `json:"customerPhone"`
	CustomerAddress string         `json:"customerAddress"`

	// IdempotencyKey travels as a request header, not in the body.
	IdempotencyKey string `json:"-"`
}

// NewOrderRequest builds the submission payload from cart lines and a trimmed customer.
func NewOrderRequest(lines []CartLine, c Customer) OrderRequest {
	products := make([]OrderProduct, 0, len(lines))
	for _, l := range lines {
		products = append(products, OrderProduct{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return OrderRequest{
		Products:        products,
		CustomerEmail:   c.Email,
		CustomerName:    c.Name,
		CustomerPhone:   c.Phone,
		CustomerAddress: c.Address,
	}
}

type OrderResult struct {
	ID          string
	OrderNumber string
}
