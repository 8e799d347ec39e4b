package pair

import (
	"time"

	marketv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/market/v1"
	"github.com/shopspring/decimal"
)

// row mirrors the trading_pairs table. Numeric columns travel as strings and
// are converted at the boundary so no float ever touches a price.
type row struct {
	Symbol        string
	BaseCurrency  string
	QuoteCurrency string

	MinPrice    string
	MaxPrice    string
	MinAmount   string
	MinNotional string

	PricePrecision  int32
	AmountPrecision int32

	MakerFeeRate string
	TakerFeeRate string

	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r *row) toDomain() (*marketv1.TradingPair, error) {
	minPrice, err := decimal.NewFromString(r.MinPrice)
	if err != nil {
		return nil, err
	}
	maxPrice, err := decimal.NewFromString(r.MaxPrice)
	if err != nil {
		return nil, err
	}
	minAmount, err := decimal.NewFromString(r.MinAmount)
	if err != nil {
		return nil, err
	}
	minNotional, err := decimal.NewFromString(r.MinNotional)
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

	return &marketv1.TradingPair{
		Symbol:          r.Symbol,
		BaseCurrency:    r.BaseCurrency,
		QuoteCurrency:   r.QuoteCurrency,
		MinPrice:        minPrice,
		MaxPrice:        maxPrice,
		MinAmount:       minAmount,
		MinNotional:     minNotional,
		PricePrecision:  r.PricePrecision,
		AmountPrecision: r.AmountPrecision,
		MakerFeeRate:    makerFeeRate,
		TakerFeeRate:    takerFeeRate,
		Active:          r.Active,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}, nil
}
