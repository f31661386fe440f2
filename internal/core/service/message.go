package service

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
)

const (
	messageDivider   = "━━━━━━━━━━━━━━━━━━━━━"
	messageTimestamp = "Monday, 2 January 2006 at 15:04"
	missingOrderNo   = "N/A"
)

// OrderSummary is the data an order confirmation message is composed from.
type OrderSummary struct {
	OrderNumber string
	PlacedAt    time.Time
	Customer    domain.Customer
	Lines       []domain.CartLine
}

// MessageBuilder renders the order summary handed to the tenant's messaging
// channel.
type MessageBuilder struct {
	Location        *time.Location
	DefaultCurrency string
	Footer          string
}

func (b MessageBuilder) Build(s OrderSummary) string {
	placedAt := s.PlacedAt
	if b.Location != nil {
		placedAt = placedAt.In(b.Location)
	}
	orderNumber := s.OrderNumber
	if orderNumber == "" {
		orderNumber = missingOrderNo
	}

	var sb strings.Builder
	sb.WriteString("🛒 *NEW ORDER RECEIVED*\n\n")

	writeSection(&sb, "📋 *ORDER DETAILS*")
	fmt.Fprintf(&sb, "Order Number: %s\n", orderNumber)
	fmt.Fprintf(&sb, "Date & Time: %s\n\n", placedAt.Format(messageTimestamp))

	writeSection(&sb, "👤 *CUSTOMER INFORMATION*")
	fmt.Fprintf(&sb, "Name: %s\n", s.Customer.Name)
	fmt.Fprintf(&sb, "Phone: %s\n", s.Customer.Phone)
	fmt.Fprintf(&sb, "Email: %s\n", s.Customer.Email)
	fmt.Fprintf(&sb, "Delivery Address: %s\n\n", s.Customer.Address)

	writeSection(&sb, fmt.Sprintf("📦 *ORDER ITEMS (%d)*", len(s.Lines)))
	items := make([]string, 0, len(s.Lines))
	for i, l := range s.Lines {
		currency := b.currency(l.CurrencyCode)
		items = append(items, fmt.Sprintf("%d. %s\n   Qty: %d × %s %s = %s %s",
			i+1, l.Name, l.Quantity,
			currency, decimal.NewFromFloat(l.UnitPrice).StringFixed(2),
			currency, l.LineTotal().StringFixed(2),
		))
	}
	sb.WriteString(strings.Join(items, "\n\n"))
	sb.WriteString("\n\n")

	writeSection(&sb, "💰 *PAYMENT SUMMARY*")
	fmt.Fprintf(&sb, "Total Amount: %s %s\n\n", b.totalCurrency(s.Lines), domain.SumTotal(s.Lines).StringFixed(2))

	sb.WriteString(messageDivider + "\n")
	sb.WriteString("🚚 Status: Pending Confirmation")
	if b.Footer != "" {
		sb.WriteString("\n\n" + b.Footer)
	}

	return strings.TrimSpace(sb.String())
}

func (b MessageBuilder) currency(code string) string {
	if code != "" {
		return code
	}
	return b.DefaultCurrency
}

func (b MessageBuilder) totalCurrency(lines []domain.CartLine) string {
	if len(lines) > 0 {
		return b.currency(lines[0].CurrencyCode)
	}
	return b.DefaultCurrency
}

func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(messageDivider + "\n")
	sb.WriteString(title + "\n")
	sb.WriteString(messageDivider + "\n")
}

// DeepLink appends the percent-encoded message to the tenant's messaging
// handle. An empty handle yields an empty link.
func DeepLink(handle, message string) string {
	if handle == "" {
		return ""
	}
	encoded := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return handle + "?text=" + encoded
}

// CatalogPath is where the storefront returns after checkout.
func CatalogPath(tenant domain.Tenant) string {
	if tenant.Code == "" {
		return "/product-list"
	}
	return "/product-list?clientCode=" + url.QueryEscape(tenant.Code)
}
