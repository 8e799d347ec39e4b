package orderbookv1

import (
	"errors"
	"sort"

	orderv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/order/v1"
	"github.com/shopspring/decimal"
)

var (
	// ErrNilOrder is returned when a nil order is passed to a limit.
	ErrNilOrder = errors.New("order cannot be nil")
	// ErrOrderNotFound is returned when an order is not present at the limit.
	ErrOrderNotFound = errors.New("order not found in limit")
)

// Limit is one price level: the resting orders at a single price, kept in
// arrival order. Earlier creation time wins; ids (ulids, time-sortable) break
// equal-timestamp ties deterministically.
type Limit struct {
	Price  decimal.Decimal  `json:"price"`
	Orders []*orderv1.Order `json:"orders"`
}

// NewLimit creates a new Limit at the given price.
func NewLimit(price decimal.Decimal) *Limit {
	return &Limit{
		Price:  price,
		Orders: make([]*orderv1.Order, 0),
	}
}

// AddOrder inserts an order keeping time priority.
func (l *Limit) AddOrder(order *orderv1.Order) error {
	if order == nil {
		return ErrNilOrder
	}

	l.Orders = append(l.Orders, order)
	sort.SliceStable(l.Orders, func(i, j int) bool {
		if l.Orders[i].CreatedAt.Equal(l.Orders[j].CreatedAt) {
			return l.Orders[i].ID < l.Orders[j].ID
		}
		return l.Orders[i].CreatedAt.Before(l.Orders[j].CreatedAt)
	})

	return nil
}

// RemoveOrder removes the order with the given id.
func (l *Limit) RemoveOrder(orderID string) error {
	for i, o := range l.Orders {
		if o.ID == orderID {
			l.Orders = append(l.Orders[:i], l.Orders[i+1:]...)
			return nil
		}
	}

	return ErrOrderNotFound
}

// Peek returns the order with the highest time priority, or nil when empty.
func (l *Limit) Peek() *orderv1.Order {
	if len(l.Orders) == 0 {
		return nil
	}
	return l.Orders[0]
}

// IsEmpty checks if the limit has no orders.
func (l *Limit) IsEmpty() bool {
	return len(l.Orders) == 0
}

// OrderCount returns the number of orders at this limit.
func (l *Limit) OrderCount() int {
	return len(l.Orders)
}

// TotalRemaining returns the unexecuted volume resting at this limit.
func (l *Limit) TotalRemaining() decimal.Decimal {
	total := decimal.Zero
	for _, o := range l.Orders {
		total = total.Add(o.Remaining())
	}
	return total
}
