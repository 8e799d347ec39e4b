package orderbook

import (
	"fmt"
	"sort"
	"sync"
	"time"

	orderbookv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/orderbook/v1"
	orderv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/order/v1"
	"github.com/shopspring/decimal"
)

// Book is one trading pair's order book: two collections of price levels
// ordered by price-time priority. Limit orders only rest here; market orders
// never enter the book.
type Book struct {
	mu   sync.RWMutex
	pair string

	// price levels keyed by normalized price string
	bidLimits map[string]*orderbookv1.Limit
	askLimits map[string]*orderbookv1.Limit
	orders    map[string]*orderv1.Order
}

// NewBook creates an empty book for the given pair.
func NewBook(pair string) *Book {
	return &Book{
		pair:      pair,
		bidLimits: make(map[string]*orderbookv1.Limit),
		askLimits: make(map[string]*orderbookv1.Limit),
		orders:    make(map[string]*orderv1.Order),
	}
}

// Pair returns the pair symbol the book belongs to.
func (b *Book) Pair() string {
	return b.pair
}

// Insert places a resting limit order into its side of the book.
func (b *Book) Insert(order *orderv1.Order) error {
	if order == nil {
		return fmt.Errorf("order cannot be nil")
	}
	if order.Price == nil {
		return fmt.Errorf("market order cannot rest in the book")
	}
	if !order.Remaining().IsPositive() {
		return fmt.Errorf("order has no remaining amount")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.orders[order.ID]; exists {
		return fmt.Errorf("order with ID %s already in book", order.ID)
	}

	limits := b.sideLimits(order.Side)
	key := order.Price.String()
	limit, exists := limits[key]
	if !exists {
		limit = orderbookv1.NewLimit(*order.Price)
		limits[key] = limit
	}

	if err := limit.AddOrder(order); err != nil {
		return err
	}
	b.orders[order.ID] = order

	return nil
}

// Remove takes an order out of the book, dropping its price level when empty.
func (b *Book) Remove(orderID string) (*orderv1.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	order, exists := b.orders[orderID]
	if !exists {
		return nil, fmt.Errorf("order with ID %s not in book", orderID)
	}

	limits := b.sideLimits(order.Side)
	key := order.Price.String()
	if limit, ok := limits[key]; ok {
		if err := limit.RemoveOrder(orderID); err != nil {
			return nil, err
		}
		if limit.IsEmpty() {
			delete(limits, key)
		}
	}
	delete(b.orders, orderID)

	return order, nil
}

// Get returns the resting order with the given id, or nil.
func (b *Book) Get(orderID string) *orderv1.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.orders[orderID]
}

// BestBid returns the highest-priced bid level, or nil when the side is empty.
func (b *Book) BestBid() *orderbookv1.Limit {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return bestLimit(b.bidLimits, true)
}

// BestAsk returns the lowest-priced ask level, or nil when the side is empty.
func (b *Book) BestAsk() *orderbookv1.Limit {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return bestLimit(b.askLimits, false)
}

// PeekCrossable returns the best resting order the incoming side would match,
// or nil when nothing crosses. A nil limit price crosses unconditionally
// (market order); a buy crosses an ask priced at or below its limit, a sell
// crosses a bid priced at or above it.
func (b *Book) PeekCrossable(incoming orderv1.Side, limitPrice *decimal.Decimal) *orderv1.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var best *orderbookv1.Limit
	if incoming == orderv1.SideBuy {
		best = bestLimit(b.askLimits, false)
		if best == nil {
			return nil
		}
		if limitPrice != nil && limitPrice.Cmp(best.Price) < 0 {
			return nil
		}
	} else {
		best = bestLimit(b.bidLimits, true)
		if best == nil {
			return nil
		}
		if limitPrice != nil && limitPrice.Cmp(best.Price) > 0 {
			return nil
		}
	}

	return best.Peek()
}

// Depth returns an aggregated snapshot of up to levels price levels per side.
// levels <= 0 means all levels.
func (b *Book) Depth(levels int) *orderbookv1.Depth {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return &orderbookv1.Depth{
		Pair:      b.pair,
		Bids:      depthLevels(sortedLimits(b.bidLimits, true), levels),
		Asks:      depthLevels(sortedLimits(b.askLimits, false), levels),
		Timestamp: time.Now().UTC(),
	}
}

// Restore rebuilds the book from persisted open orders, e.g. after restart.
// Orders are inserted in the given sequence; price-time priority holds as
// long as the caller provides them sorted by creation time.
func (b *Book) Restore(orders []*orderv1.Order) error {
	b.mu.Lock()
	b.bidLimits = make(map[string]*orderbookv1.Limit)
	b.askLimits = make(map[string]*orderbookv1.Limit)
	b.orders = make(map[string]*orderv1.Order)
	b.mu.Unlock()

	for _, order := range orders {
		if !order.IsOpen() {
			continue
		}
		if err := b.Insert(order); err != nil {
			return fmt.Errorf("failed to restore order %s: %w", order.ID, err)
		}
	}

	return nil
}

// Size returns the number of resting orders.
func (b *Book) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.orders)
}

func (b *Book) sideLimits(side orderv1.Side) map[string]*orderbookv1.Limit {
	if side == orderv1.SideBuy {
		return b.bidLimits
	}
	return b.askLimits
}

// bestLimit scans for the best price level: highest for bids, lowest for asks.
func bestLimit(limits map[string]*orderbookv1.Limit, descending bool) *orderbookv1.Limit {
	var best *orderbookv1.Limit
	for _, limit := range limits {
		if best == nil {
			best = limit
			continue
		}
		cmp := limit.Price.Cmp(best.Price)
		if descending && cmp > 0 {
			best = limit
		}
		if !descending && cmp < 0 {
			best = limit
		}
	}
	return best
}

// sortedLimits returns the price levels best-first.
func sortedLimits(limits map[string]*orderbookv1.Limit, descending bool) []*orderbookv1.Limit {
	out := make([]*orderbookv1.Limit, 0, len(limits))
	for _, limit := range limits {
		out = append(out, limit)
	}
	sort.Slice(out, func(i, j int) bool {
		if descending {
			return out[i].Price.Cmp(out[j].Price) > 0
		}
		return out[i].Price.Cmp(out[j].Price) < 0
	})
	return out
}

func depthLevels(limits []*orderbookv1.Limit, max int) []orderbookv1.DepthLevel {
	out := make([]orderbookv1.DepthLevel, 0, len(limits))
	for i, limit := range limits {
		if max > 0 && i >= max {
			break
		}
		out = append(out, orderbookv1.DepthLevel{
			Price:  limit.Price,
			Amount: limit.TotalRemaining(),
			Orders: limit.OrderCount(),
		})
	}
	return out
}
