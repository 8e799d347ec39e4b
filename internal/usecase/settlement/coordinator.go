package settlement

import (
	"context"

	marketv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/market/v1"
	orderv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/order/v1"
	settlementv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/settlement/v1"
	tradev1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/trade/v1"
	walletv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/wallet/v1"
	"github.com/Salbajnr/blocktradepro-engine/pkg/errors"
	"github.com/Salbajnr/blocktradepro-engine/pkg/logger"
)

// Coordinator settles trades atomically. Both currency legs, the fee credits,
// the trade record and both orders' fill state commit in one transaction, so a
// failure anywhere leaves wallets and orders exactly as they were.
type Coordinator struct {
	tx        settlementv1.TxRunner
	ledger    walletv1.Ledger
	orders    orderv1.Repository
	trades    tradev1.Repository
	feeUserID string
	logger    logger.Interface
}

var _ settlementv1.Coordinator = (*Coordinator)(nil)

// NewCoordinator creates a coordinator. Collected fees are credited to the
// wallet of feeUserID.
func NewCoordinator(
	tx settlementv1.TxRunner,
	ledger walletv1.Ledger,
	orders orderv1.Repository,
	trades tradev1.Repository,
	feeUserID string,
	log logger.Interface,
) *Coordinator {
	return &Coordinator{
		tx:        tx,
		ledger:    ledger,
		orders:    orders,
		trades:    trades,
		feeUserID: feeUserID,
		logger:    log,
	}
}

// ExecuteTrade settles one match. The quote leg moves trade notional from the
// buyer's reserved balance to the seller, the base leg moves the traded amount
// from the seller's reserved balance to the buyer; each side's fee comes out of
// the currency it receives. The in-memory orders passed in are not mutated;
// staged copies with the fill applied are persisted and the caller applies the
// fill to its live copies only after this returns nil.
func (c *Coordinator) ExecuteTrade(ctx context.Context, trade *tradev1.Trade, maker, taker *orderv1.Order, pair *marketv1.TradingPair) error {
	buyer, seller := maker, taker
	buyerFee, sellerFee := trade.MakerFee, trade.TakerFee
	if maker.Side == orderv1.SideSell {
		buyer, seller = taker, maker
		buyerFee, sellerFee = trade.TakerFee, trade.MakerFee
	}

	notional := trade.Price.Mul(trade.Amount)

	err := c.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := c.ledger.Settle(ctx, walletv1.SettleLeg{
			FromUser:  buyer.UserID,
			ToUser:    seller.UserID,
			FeeUser:   c.feeUserID,
			Currency:  pair.QuoteCurrency,
			Amount:    notional,
			Fee:       sellerFee,
			Reference: trade.ID,
		}); err != nil {
			return err
		}

		if err := c.ledger.Settle(ctx, walletv1.SettleLeg{
			FromUser:  seller.UserID,
			ToUser:    buyer.UserID,
			FeeUser:   c.feeUserID,
			Currency:  pair.BaseCurrency,
			Amount:    trade.Amount,
			Fee:       buyerFee,
			Reference: trade.ID,
		}); err != nil {
			return err
		}

		if err := c.trades.Store(ctx, trade); err != nil {
			return err
		}

		if err := c.orders.Update(ctx, maker.WithFill(trade.Amount)); err != nil {
			return err
		}
		return c.orders.Update(ctx, taker.WithFill(trade.Amount))
	})
	if err != nil {
		c.logger.ErrorContext(ctx, err,
			logger.Field{Key: "tradeID", Value: trade.ID},
			logger.Field{Key: "pair", Value: trade.Pair},
			logger.Field{Key: "makerOrderID", Value: maker.ID},
			logger.Field{Key: "takerOrderID", Value: taker.ID},
		)
		if errors.CodeOf(err) != "" {
			return err
		}
		return errors.NewErrorDetails("trade settlement failed", string(errors.SettlementFailed), "trade")
	}

	return nil
}
