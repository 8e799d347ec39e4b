package marketv1

import (
	"context"
	"time"

	"github.com/Salbajnr/blocktradepro-engine/pkg/errors"
	"github.com/shopspring/decimal"
)

// TradingPair holds the administered metadata of one market. It is immutable
// from the engine's point of view; administrative updates go through the
// registry.
type TradingPair struct {
	Symbol        string `json:"symbol"`
	BaseCurrency  string `json:"baseCurrency"`
	QuoteCurrency string `json:"quoteCurrency"`

	MinPrice    decimal.Decimal `json:"minPrice"`
	MaxPrice    decimal.Decimal `json:"maxPrice"`
	MinAmount   decimal.Decimal `json:"minAmount"`
	MinNotional decimal.Decimal `json:"minNotional"`

	PricePrecision  int32 `json:"pricePrecision"`
	AmountPrecision int32 `json:"amountPrecision"`

	MakerFeeRate decimal.Decimal `json:"makerFeeRate"`
	TakerFeeRate decimal.Decimal `json:"takerFeeRate"`

	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ValidateLimit checks a candidate limit order's price, amount and notional
// against the pair bounds. Returns a coded error naming the first violated rule.
func (p *TradingPair) ValidateLimit(price, amount decimal.Decimal) error {
	if !p.Active {
		return errors.NewErrorDetails("trading pair is inactive", string(errors.OrderPairInactive), "pair")
	}
	if !price.IsPositive() {
		return errors.NewErrorDetails("price must be positive", string(errors.OrderPriceOutOfRange), "price")
	}
	if !price.Truncate(p.PricePrecision).Equal(price) {
		return errors.NewErrorDetails("price exceeds pair precision", string(errors.OrderPriceOutOfRange), "price")
	}
	if price.Cmp(p.MinPrice) < 0 || price.Cmp(p.MaxPrice) > 0 {
		return errors.NewErrorDetails("price outside pair bounds", string(errors.OrderPriceOutOfRange), "price")
	}
	if err := p.validateAmount(amount); err != nil {
		return err
	}
	if price.Mul(amount).Cmp(p.MinNotional) < 0 {
		return errors.NewErrorDetails("notional below pair minimum", string(errors.OrderNotionalTooSmall), "amount")
	}
	return nil
}

// ValidateMarket checks a candidate market order's amount against the pair
// bounds. Notional cannot be checked before matching since price is unknown.
func (p *TradingPair) ValidateMarket(amount decimal.Decimal) error {
	if !p.Active {
		return errors.NewErrorDetails("trading pair is inactive", string(errors.OrderPairInactive), "pair")
	}
	return p.validateAmount(amount)
}

func (p *TradingPair) validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return errors.NewErrorDetails("amount must be positive", string(errors.OrderAmountTooSmall), "amount")
	}
	if !amount.Truncate(p.AmountPrecision).Equal(amount) {
		return errors.NewErrorDetails("amount exceeds pair precision", string(errors.OrderAmountTooSmall), "amount")
	}
	if amount.Cmp(p.MinAmount) < 0 {
		return errors.NewErrorDetails("amount below pair minimum", string(errors.OrderAmountTooSmall), "amount")
	}
	return nil
}

// Repository is the persistence interface for trading pairs.
//
//go:generate mockgen -source=pair.go -destination=mock/pair_mock.go -package=marketv1_mock
type Repository interface {
	GetBySymbol(ctx context.Context, symbol string) (*TradingPair, error)
	ListActive(ctx context.Context) ([]*TradingPair, error)
	Store(ctx context.Context, pair *TradingPair) error
	Update(ctx context.Context, pair *TradingPair) error
}
