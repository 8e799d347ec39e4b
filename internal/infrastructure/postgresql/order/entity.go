package order

import (
	"time"

	orderv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/order/v1"
	"github.com/shopspring/decimal"
)

// row mirrors the orders table. Price is nullable for market orders.
type row struct {
	ID     string
	UserID string
	Pair   string
	Side   string
	Type   string

	Price  *string
	Amount string
	Filled string

	MakerFeeRate string
	TakerFeeRate string

	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r *row) toDomain() (*orderv1.Order, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return nil, err
	}
	filled, err := decimal.NewFromString(r.Filled)
	if err != nil {
		return nil, err
	}
	makerFeeRate, err := decimal.NewFromString(r.MakerFeeRate)
	if err != nil {
		return nil, err
	}
	takerFeeRate, err := decimal.NewFromString(r.TakerFeeRate)
	if err != nil {
		return nil, err
	}

	order := &orderv1.Order{
		ID:           r.ID,
		UserID:       r.UserID,
		Pair:         r.Pair,
		Side:         orderv1.Side(r.Side),
		Type:         orderv1.Type(r.Type),
		Amount:       amount,
		Filled:       filled,
		MakerFeeRate: makerFeeRate,
		TakerFeeRate: takerFeeRate,
		Status:       orderv1.Status(r.Status),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}

	if r.Price != nil {
		price, err := decimal.NewFromString(*r.Price)
		if err != nil {
			return nil, err
		}
		order.Price = &price
	}

	return order, nil
}

// priceArg returns the nullable price column value for an order.
func priceArg(order *orderv1.Order) *string {
	if order.Price == nil {
		return nil
	}
	s := order.Price.String()
	return &s
}
