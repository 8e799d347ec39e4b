package settlementv1

import (
	"context"

	marketv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/market/v1"
	orderv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/order/v1"
	tradev1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/trade/v1"
)

// TxRunner runs a function as one atomic unit against the underlying store.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Coordinator settles one trade: both currency legs, fee credits, the trade
// record and both orders' fill state move together or not at all.
//
//go:generate mockgen -source=interface.go -destination=mock/interface_mock.go -package=settlementv1_mock
type Coordinator interface {
	ExecuteTrade(ctx context.Context, trade *tradev1.Trade, maker, taker *orderv1.Order, pair *marketv1.TradingPair) error
}
