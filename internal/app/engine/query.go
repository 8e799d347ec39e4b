package engine

import (
	"context"

	orderv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/order/v1"
	orderbookv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/orderbook/v1"
	tradev1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/trade/v1"
	walletv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/wallet/v1"
	"github.com/shopspring/decimal"
)

// GetOrder returns one order by id.
func (e *Engine) GetOrder(ctx context.Context, orderID string) (*orderv1.Order, error) {
	return e.orders.GetByID(ctx, orderID)
}

// ListOrders lists orders matching the filter.
func (e *Engine) ListOrders(ctx context.Context, filter orderv1.Filter) ([]*orderv1.Order, error) {
	return e.orders.List(ctx, filter)
}

// GetOpenOrders lists a user's open and partially filled orders, optionally
// narrowed to one pair.
func (e *Engine) GetOpenOrders(ctx context.Context, userID, pair string) ([]*orderv1.Order, error) {
	return e.orders.List(ctx, orderv1.Filter{
		UserID:   userID,
		Pair:     pair,
		OpenOnly: true,
	})
}

// GetTrades lists trades matching the filter.
func (e *Engine) GetTrades(ctx context.Context, filter tradev1.Filter) ([]*tradev1.Trade, error) {
	return e.trades.List(ctx, filter)
}

// GetDepth returns the live aggregated depth for a pair.
func (e *Engine) GetDepth(pair string, levels int) (*orderbookv1.Depth, error) {
	worker, err := e.worker(pair)
	if err != nil {
		return nil, err
	}

	worker.mu.Lock()
	defer worker.mu.Unlock()
	return worker.book.Depth(levels), nil
}

// GetWallet returns a user's wallet in one currency, or nil when none exists.
func (e *Engine) GetWallet(ctx context.Context, userID, currency string) (*walletv1.Wallet, error) {
	return e.ledger.Get(ctx, userID, currency)
}

// Deposit credits external funds to a user's wallet.
func (e *Engine) Deposit(ctx context.Context, userID, currency string, amount decimal.Decimal, reference string) error {
	return e.ledger.Deposit(ctx, userID, currency, amount, reference)
}

// Withdraw debits available funds from a user's wallet.
func (e *Engine) Withdraw(ctx context.Context, userID, currency string, amount decimal.Decimal, reference string) error {
	return e.ledger.Withdraw(ctx, userID, currency, amount, reference)
}
