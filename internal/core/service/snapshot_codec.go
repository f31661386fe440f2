package service

import (
	"encoding/json"
	"fmt"

	"github.com/rl1809/storefront/internal/core/domain"
)

func encodeSnapshot(lines []domain.CartLine) ([]byte, error) {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return nil, fmt.Errorf("encode cart snapshot: %w", err)
	}
	return data, nil
}

// decodeSnapshot parses a persisted snapshot and restores the cart invariants:
// lines without a product are dropped, duplicates merged, quantities clamped.
func decodeSnapshot(data []byte) ([]domain.CartLine, error) {
	var raw []domain.CartLine
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode cart snapshot: %w", err)
	}

	lines := make([]domain.CartLine, 0, len(raw))
	index := make(map[string]int, len(raw))
	for _, l := range raw {
		if l.ProductID == "" || l.Quantity <= 0 {
			continue
		}
		if l.MaxQuantity <= 0 {
			l.MaxQuantity = domain.DefaultMaxQuantity
		}
		if i, ok := index[l.ProductID]; ok {
			lines[i].Quantity = lines[i].ClampQuantity(lines[i].Quantity + l.Quantity)
			continue
		}
		l.Quantity = l.ClampQuantity(l.Quantity)
		index[l.ProductID] = len(lines)
		lines = append(lines, l)
	}
	return lines, nil
}
