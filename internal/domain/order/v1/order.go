package orderv1

import (
	"context"
	"time"

	marketv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/market/v1"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// Side represents the side of an order.
type Side string

const (
	// SideBuy represents a buy order.
	SideBuy Side = "buy"
	// SideSell represents a sell order.
	SideSell Side = "sell"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// Type represents the type of order.
type Type string

const (
	// TypeLimit represents a limit order.
	TypeLimit Type = "limit"
	// TypeMarket represents a market order.
	TypeMarket Type = "market"
)

// Status represents the lifecycle state of an order.
type Status string

const (
	// StatusOpen is an admitted order with no fills yet.
	StatusOpen Status = "open"
	// StatusPartiallyFilled is an order with some, but not all, amount executed.
	StatusPartiallyFilled Status = "partially_filled"
	// StatusFilled is a fully executed order, or a market order whose
	// executed portion is final.
	StatusFilled Status = "filled"
	// StatusCancelled is an order removed before full execution.
	StatusCancelled Status = "cancelled"
	// StatusRejected is an order that never entered the book.
	StatusRejected Status = "rejected"
	// StatusNeedsReview is an order pulled from auto-matching after a
	// settlement failure. Terminal until operator intervention.
	StatusNeedsReview Status = "needs_review"
)

// Order represents a buy or sell order. Fee rates are captured from the pair
// at creation time so later fee-schedule changes never touch resting orders.
type Order struct {
	ID     string `json:"id"`
	UserID string `json:"userID"`
	Pair   string `json:"pair"`
	Side   Side   `json:"side"`
	Type   Type   `json:"type"`

	// Price is nil for market orders.
	Price  *decimal.Decimal `json:"price,omitempty"`
	Amount decimal.Decimal  `json:"amount"`
	Filled decimal.Decimal  `json:"filled"`

	MakerFeeRate decimal.Decimal `json:"makerFeeRate"`
	TakerFeeRate decimal.Decimal `json:"takerFeeRate"`

	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SubmitRequest is the engine's order admission contract.
type SubmitRequest struct {
	UserID string `json:"userID"`
	Pair   string `json:"pair"`
	Side   Side   `json:"side"`
	Type   Type   `json:"type"`

	// Price is required for limit orders and absent for market orders.
	Price  *decimal.Decimal `json:"price,omitempty"`
	Amount decimal.Decimal  `json:"amount"`

	// PriceCap is an optional worst-acceptable price for market orders,
	// used to size the funds reservation.
	PriceCap *decimal.Decimal `json:"priceCap,omitempty"`
}

// NewOrder builds an admitted order from a request, capturing the pair's
// current fee schedule.
func NewOrder(req SubmitRequest, pair *marketv1.TradingPair) *Order {
	now := time.Now().UTC()
	return &Order{
		ID:           ulid.Make().String(),
		UserID:       req.UserID,
		Pair:         pair.Symbol,
		Side:         req.Side,
		Type:         req.Type,
		Price:        req.Price,
		Amount:       req.Amount,
		Filled:       decimal.Zero,
		MakerFeeRate: pair.MakerFeeRate,
		TakerFeeRate: pair.TakerFeeRate,
		Status:       StatusOpen,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Remaining returns the unexecuted amount.
func (o *Order) Remaining() decimal.Decimal {
	return o.Amount.Sub(o.Filled)
}

// IsOpen reports whether the order can still match.
func (o *Order) IsOpen() bool {
	return o.Status == StatusOpen || o.Status == StatusPartiallyFilled
}

// CanCancel reports whether a cancellation may be applied.
func (o *Order) CanCancel() bool {
	return o.IsOpen()
}

// ApplyFill records an execution of amount and advances the status.
func (o *Order) ApplyFill(amount decimal.Decimal) {
	o.Filled = o.Filled.Add(amount)
	if o.Remaining().IsZero() {
		o.Status = StatusFilled
	} else {
		o.Status = StatusPartiallyFilled
	}
	o.UpdatedAt = time.Now().UTC()
}

// WithFill returns a copy of the order with the fill applied. Used to stage
// persistence inside a settlement transaction without mutating the book's
// live order until the transaction commits.
func (o *Order) WithFill(amount decimal.Decimal) *Order {
	clone := *o
	clone.ApplyFill(amount)
	return &clone
}

// Filter narrows order listings.
type Filter struct {
	UserID string `json:"userID"`
	Pair   string `json:"pair"`
	Side   Side   `json:"side"`
	Status Status `json:"status"`

	// OpenOnly restricts the listing to open and partially filled orders.
	OpenOnly bool `json:"openOnly"`

	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Repository is the persistence interface for orders.
//
//go:generate mockgen -source=order.go -destination=mock/order_mock.go -package=orderv1_mock
type Repository interface {
	Store(ctx context.Context, order *Order) error
	Update(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, filter Filter) ([]*Order, error)
	// ListOpenByPair returns open and partially filled orders for a pair
	// sorted by creation time then id, the order needed to rebuild a book.
	ListOpenByPair(ctx context.Context, pair string) ([]*Order, error)
}
