package service

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// Cart is the authoritative cart state of one storefront session. Every
// mutation persists the full snapshot and then notifies subscribers.
type Cart struct {
	key    string
	store  port.CartStore
	logger *zap.Logger

	mu    sync.Mutex
	lines []domain.CartLine
	feed  *snapshotFeed
}

// NewCart loads the snapshot stored under key. A missing or unreadable
// snapshot yields an empty cart; the failure is only logged.
func NewCart(ctx context.Context, store port.CartStore, key string, logger *zap.Logger) *Cart {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Cart{
		key:    key,
		store:  store,
		logger: logger.With(zap.String("cart_key", key)),
	}
	c.lines = c.load(ctx)
	c.feed = newSnapshotFeed(cloneLines(c.lines))
	return c
}

func (c *Cart) load(ctx context.Context) []domain.CartLine {
	empty := []domain.CartLine{}

	data, ok, err := c.store.Load(ctx, c.key)
	if err != nil {
		c.logger.Error("failed to load cart from storage", zap.Error(err))
		return empty
	}
	if !ok {
		return empty
	}

	lines, err := decodeSnapshot(data)
	if err != nil {
		c.logger.Error("failed to load cart from storage", zap.Error(err))
		return empty
	}
	return lines
}

// Items returns the current snapshot in insertion order.
func (c *Cart) Items() []domain.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneLines(c.lines)
}

// Count returns the number of units in the cart.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.SumQuantity(c.lines)
}

// Total returns Σ unitPrice × quantity, recomputed on every call.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.SumTotal(c.lines)
}

func (c *Cart) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines) == 0
}

// Add merges line into the cart. Quantities above the stock ceiling are
// clamped and the excess is dropped without an error.
func (c *Cart) Add(ctx context.Context, line domain.CartLine) {
	if line.ProductID == "" {
		c.logger.Warn("ignoring cart line without product id")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(line.ProductID); i >= 0 {
		existing := &c.lines[i]
		requested := existing.Quantity + line.Quantity
		existing.Quantity = existing.ClampQuantity(requested)
		if requested > existing.Quantity {
			// TODO: surface the dropped quantity to the storefront once product decides on overflow UX.
			c.logger.Info("cart quantity clamped to stock ceiling",
				zap.String("product_id", line.ProductID),
				zap.Int("requested", requested),
				zap.Int("max_quantity", existing.MaxQuantity),
			)
		}
	} else {
		if line.MaxQuantity <= 0 {
			line.MaxQuantity = domain.DefaultMaxQuantity
		}
		line.Quantity = line.ClampQuantity(line.Quantity)
		c.lines = append(c.lines, line)
	}

	c.commitLocked(ctx)
}

// UpdateQuantity sets the quantity of productID. It is a no-op unless
// 0 < quantity <= maxQuantity; the return value reports whether it applied.
func (c *Cart) UpdateQuantity(ctx context.Context, productID string, quantity int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	if quantity <= 0 || quantity > c.lines[i].MaxQuantity {
		return false
	}

	c.lines[i].Quantity = quantity
	c.commitLocked(ctx)
	return true
}

// Remove deletes productID from the cart if present.
func (c *Cart) Remove(ctx context.Context, productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.lines[:0:0]
	for _, l := range c.lines {
		if l.ProductID != productID {
			kept = append(kept, l)
		}
	}
	c.lines = kept
	c.commitLocked(ctx)
}

// Clear empties the cart and deletes the persisted key rather than storing
// an empty list.
func (c *Cart) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.clearLocked(ctx)
}

// Consume takes ordered quantities out of the cart. Lines added or raised
// after the order snapshot was taken keep the difference; a cart left empty
// is cleared like Clear.
func (c *Cart) Consume(ctx context.Context, ordered []domain.CartLine) {
	orderedQty := make(map[string]int, len(ordered))
	for _, l := range ordered {
		orderedQty[l.ProductID] += l.Quantity
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	kept := make([]domain.CartLine, 0, len(c.lines))
	for _, l := range c.lines {
		if q, ok := orderedQty[l.ProductID]; ok {
			l.Quantity -= q
			if l.Quantity <= 0 {
				continue
			}
		}
		kept = append(kept, l)
	}

	if len(kept) == 0 {
		c.clearLocked(ctx)
		return
	}
	c.lines = kept
	c.commitLocked(ctx)
}

// Subscribe streams cart snapshots, starting with the current one. Call
// cancel to stop receiving; the channel is closed afterwards.
func (c *Cart) Subscribe() (<-chan []domain.CartLine, func()) {
	return c.feed.subscribe()
}

func (c *Cart) indexOf(productID string) int {
	for i, l := range c.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) clearLocked(ctx context.Context) {
	c.lines = []domain.CartLine{}
	if err := c.store.Delete(ctx, c.key); err != nil {
		c.logger.Error("failed to delete cart from storage", zap.Error(err))
	}
	c.feed.publish(cloneLines(c.lines))
}

func (c *Cart) commitLocked(ctx context.Context) {
	snapshot := cloneLines(c.lines)

	data, err := encodeSnapshot(snapshot)
	if err != nil {
		c.logger.Error("failed to save cart to storage", zap.Error(err))
	} else if err := c.store.Save(ctx, c.key, data); err != nil {
		c.logger.Error("failed to save cart to storage", zap.Error(err))
	}

	c.feed.publish(snapshot)
}
