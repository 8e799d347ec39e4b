package tradev1

import (
	"context"
	"time"

	orderv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/order/v1"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// Trade is the immutable record of one match. The maker is the resting order,
// the taker the incoming one; price is always the maker's price.
type Trade struct {
	ID   string `json:"id"`
	Pair string `json:"pair"`

	MakerOrderID string `json:"makerOrderID"`
	TakerOrderID string `json:"takerOrderID"`
	MakerUserID  string `json:"makerUserID"`
	TakerUserID  string `json:"takerUserID"`

	Price  decimal.Decimal `json:"price"`
	Amount decimal.Decimal `json:"amount"`

	// MakerFee and TakerFee are charged in the currency each side receives:
	// base for the buyer, quote for the seller.
	MakerFee decimal.Decimal `json:"makerFee"`
	TakerFee decimal.Decimal `json:"takerFee"`

	ExecutedAt time.Time `json:"executedAt"`
}

// NewTrade builds the trade for a match of amount between maker and taker at
// the maker's price. Fees use the rates captured on each order at creation.
func NewTrade(maker, taker *orderv1.Order, price, amount decimal.Decimal) *Trade {
	t := &Trade{
		ID:           ulid.Make().String(),
		Pair:         maker.Pair,
		MakerOrderID: maker.ID,
		TakerOrderID: taker.ID,
		MakerUserID:  maker.UserID,
		TakerUserID:  taker.UserID,
		Price:        price,
		Amount:       amount,
		ExecutedAt:   time.Now().UTC(),
	}

	// The buyer receives base, the seller receives quote; each side's fee is
	// taken from what it receives.
	notional := price.Mul(amount)
	if maker.Side == orderv1.SideBuy {
		t.MakerFee = amount.Mul(maker.MakerFeeRate)
		t.TakerFee = notional.Mul(taker.TakerFeeRate)
	} else {
		t.MakerFee = notional.Mul(maker.MakerFeeRate)
		t.TakerFee = amount.Mul(taker.TakerFeeRate)
	}

	return t
}

// Filter narrows trade listings.
type Filter struct {
	Pair   string `json:"pair"`
	UserID string `json:"userID"`

	From *time.Time `json:"from"`
	To   *time.Time `json:"to"`

	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Repository is the persistence interface for trades.
//
//go:generate mockgen -source=trade.go -destination=mock/trade_mock.go -package=tradev1_mock
type Repository interface {
	Store(ctx context.Context, trade *Trade) error
	GetByID(ctx context.Context, id string) (*Trade, error)
	List(ctx context.Context, filter Filter) ([]*Trade, error)
}
