package domain

import "github.com/shopspring/decimal"

// DefaultMaxQuantity is used when the catalog snapshot carries no stock ceiling.
const DefaultMaxQuantity = 999

type CartLine struct {
	ProductID     string  `json:"productId"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Image         string  `json:"image"`
	UnitOfMeasure string  `json:"unitOfMeasure"`
	CurrencyCode  string  `json:"currencyCode"`
	UnitPrice     float64 `json:"unitPrice"`
	Quantity      int     `json:"quantity"`
	MaxQuantity   int     `json:"maxQuantity"` // stock ceiling at add time
}

// LineTotal returns UnitPrice × Quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return decimal.NewFromFloat(l.UnitPrice).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// ClampQuantity forces q into [1, MaxQuantity].
func (l CartLine) ClampQuantity(q int) int {
	if q > l.MaxQuantity {
		q = l.MaxQuantity
	}
	if q < 1 {
		q = 1
	}
	return q
}

// SumQuantity returns the number of units across lines.
func SumQuantity(lines []CartLine) int {
	total := 0
	for _, l := range lines {
		total += l.Quantity
	}
	return total
}

// SumTotal recomputes the cart total from line data.
func SumTotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal())
	}
	return total
}
