package trade

import (
	"time"

	tradev1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/trade/v1"
	"github.com/shopspring/decimal"
)

// row mirrors the trades table.
type row struct {
	ID   string
	Pair string

	MakerOrderID string
	TakerOrderID string
	MakerUserID  string
	TakerUserID  string

	Price  string
	Amount string

	MakerFee string
	TakerFee string

	ExecutedAt time.Time
}

func (r *row) toDomain() (*tradev1.Trade, error) {
	price, err := decimal.NewFromString(r.Price)
	if err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return nil, err
	}
	makerFee, err := decimal.NewFromString(r.MakerFee)
	if err != nil {
		return nil, err
	}
	takerFee, err := decimal.NewFromString(r.TakerFee)
	if err != nil {
		return nil, err
	}

	return &tradev1.Trade{
		ID:           r.ID,
		Pair:         r.Pair,
		MakerOrderID: r.MakerOrderID,
		TakerOrderID: r.TakerOrderID,
		MakerUserID:  r.MakerUserID,
		TakerUserID:  r.TakerUserID,
		Price:        price,
		Amount:       amount,
		MakerFee:     makerFee,
		TakerFee:     takerFee,
		ExecutedAt:   r.ExecutedAt,
	}, nil
}
