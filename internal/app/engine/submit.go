package engine

import (
	"context"
	"time"

	eventv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/event/v1"
	marketv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/market/v1"
	orderv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/order/v1"
	tradev1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/trade/v1"
	"github.com/Salbajnr/blocktradepro-engine/pkg/errors"
	"github.com/Salbajnr/blocktradepro-engine/pkg/logger"
	"github.com/shopspring/decimal"
)

// reservation tracks the funds earmarked for an order while it matches.
// perUnit is the quote amount reserved per base unit for buys; sells reserve
// base directly and keep perUnit at one.
type reservation struct {
	currency string
	perUnit  decimal.Decimal
}

// SubmitOrder validates, funds and matches one order. The pair's worker lock
// is held for the whole call, so each pair processes submissions one at a
// time in arrival order.
func (e *Engine) SubmitOrder(ctx context.Context, req orderv1.SubmitRequest) (*orderv1.Order, error) {
	pair, err := e.registry.ValidateOrder(req)
	if err != nil {
		return nil, err
	}

	worker, err := e.worker(pair.Symbol)
	if err != nil {
		return nil, err
	}

	worker.mu.Lock()
	defer worker.mu.Unlock()

	// Market orders against an empty opposite side never reach the wallet.
	if req.Type == orderv1.TypeMarket && worker.book.PeekCrossable(req.Side, nil) == nil {
		return nil, errors.NewErrorDetails("no liquidity for market order", string(errors.OrderNoLiquidity), "pair")
	}

	order := orderv1.NewOrder(req, pair)

	res, err := e.reserve(ctx, worker, order, req.PriceCap, pair)
	if err != nil {
		if errors.ErrorCodeEquals(err, errors.InsufficientFunds) {
			order.Status = orderv1.StatusRejected
			order.UpdatedAt = time.Now().UTC()
			if storeErr := e.orders.Store(ctx, order); storeErr != nil {
				e.logger.ErrorContext(ctx, storeErr, logger.Field{
					Key:   "orderID",
					Value: order.ID,
				})
			}
		}
		return nil, err
	}

	if err := e.orders.Store(ctx, order); err != nil {
		e.releaseQuiet(ctx, order.UserID, res.currency, e.reservedFor(order, res), order.ID)
		return nil, err
	}

	e.emit(ctx, eventv1.NewOrderEvent(eventv1.OrderCreated, order))

	if err := e.match(ctx, worker, order, pair, res); err != nil {
		return order, err
	}

	return order, nil
}

// reserve earmarks the order's funds: base for sells, quote at the limit
// price for limit buys, quote at the price cap for market buys. Market buys
// without a caller cap are capped at the best ask padded by the slippage
// buffer.
func (e *Engine) reserve(ctx context.Context, worker *pairWorker, order *orderv1.Order, priceCap *decimal.Decimal, pair *marketv1.TradingPair) (*reservation, error) {
	if order.Side == orderv1.SideSell {
		res := &reservation{currency: pair.BaseCurrency, perUnit: decimal.NewFromInt(1)}
		if err := e.ledger.Reserve(ctx, order.UserID, res.currency, order.Amount, order.ID); err != nil {
			return nil, err
		}
		return res, nil
	}

	var perUnit decimal.Decimal
	switch {
	case order.Type == orderv1.TypeLimit:
		perUnit = *order.Price
	case priceCap != nil:
		if !priceCap.IsPositive() {
			return nil, errors.NewErrorDetails("price cap must be positive", string(errors.OrderInvalidPayload), "priceCap")
		}
		perUnit = *priceCap
	default:
		bestAsk := worker.book.BestAsk()
		if bestAsk == nil {
			return nil, errors.NewErrorDetails("no liquidity for market order", string(errors.OrderNoLiquidity), "pair")
		}
		buffer := decimal.NewFromInt(10000 + e.options.SlippageBufferBps)
		perUnit = bestAsk.Price.Mul(buffer).Div(decimal.NewFromInt(10000))
	}

	res := &reservation{currency: pair.QuoteCurrency, perUnit: perUnit}
	if err := e.ledger.Reserve(ctx, order.UserID, res.currency, perUnit.Mul(order.Amount), order.ID); err != nil {
		return nil, err
	}
	return res, nil
}

// reservedFor returns how much of the reservation the order's remaining
// amount still holds.
func (e *Engine) reservedFor(order *orderv1.Order, res *reservation) decimal.Decimal {
	return res.perUnit.Mul(order.Remaining())
}

// match runs the taker against the book until its amount is exhausted or
// nothing crosses. Each iteration settles one trade atomically; fills touch
// the in-memory orders only after the settlement commits.
func (e *Engine) match(ctx context.Context, worker *pairWorker, taker *orderv1.Order, pair *marketv1.TradingPair, res *reservation) error {
	for taker.Remaining().IsPositive() {
		maker := worker.book.PeekCrossable(taker.Side, e.crossBound(taker, res))
		if maker == nil {
			break
		}

		price := *maker.Price
		amount := decimal.Min(taker.Remaining(), maker.Remaining())
		trade := tradev1.NewTrade(maker, taker, price, amount)

		if err := e.settlement.ExecuteTrade(ctx, trade, maker, taker, pair); err != nil {
			return e.quarantine(ctx, taker, err)
		}

		maker.ApplyFill(amount)
		taker.ApplyFill(amount)

		// A buy taker reserved at its limit (or cap); the trade executed at
		// the maker's price. The improvement goes back to available.
		if taker.Side == orderv1.SideBuy {
			excess := res.perUnit.Sub(price).Mul(amount)
			if excess.IsPositive() {
				e.releaseQuiet(ctx, taker.UserID, res.currency, excess, taker.ID)
			}
		}

		if !maker.Remaining().IsPositive() {
			if _, err := worker.book.Remove(maker.ID); err != nil {
				e.logger.ErrorContext(ctx, err, logger.Field{
					Key:   "orderID",
					Value: maker.ID,
				})
			}
		}

		e.emit(ctx, eventv1.NewTradeEvent(trade))
		e.emit(ctx, eventv1.NewOrderEvent(orderEventType(maker.Status), maker))
	}

	if taker.Remaining().IsPositive() {
		if taker.Type == orderv1.TypeLimit {
			if err := worker.book.Insert(taker); err != nil {
				return err
			}
		} else {
			if err := e.finishMarketResidual(ctx, taker, res); err != nil {
				return err
			}
		}
	}

	if taker.Status != orderv1.StatusOpen {
		e.emit(ctx, eventv1.NewOrderEvent(orderEventType(taker.Status), taker))
	}

	return nil
}

// crossBound returns the price bound matching must respect for the taker: the
// limit price for limit orders, the reservation cap for market buys, none for
// market sells.
func (e *Engine) crossBound(taker *orderv1.Order, res *reservation) *decimal.Decimal {
	if taker.Type == orderv1.TypeLimit {
		return taker.Price
	}
	if taker.Side == orderv1.SideBuy {
		bound := res.perUnit
		return &bound
	}
	return nil
}

// finishMarketResidual closes out the unfilled tail of a market order: the
// leftover reservation is released and the order lands on filled when it
// executed at all, cancelled otherwise.
func (e *Engine) finishMarketResidual(ctx context.Context, taker *orderv1.Order, res *reservation) error {
	leftover := e.reservedFor(taker, res)
	if leftover.IsPositive() {
		e.releaseQuiet(ctx, taker.UserID, res.currency, leftover, taker.ID)
	}

	if taker.Filled.IsPositive() {
		taker.Status = orderv1.StatusFilled
	} else {
		taker.Status = orderv1.StatusCancelled
	}
	taker.UpdatedAt = time.Now().UTC()

	return e.orders.Update(ctx, taker)
}

// quarantine pulls an order out of auto-matching after a settlement failure.
// Its reservation stays in place for operator review.
func (e *Engine) quarantine(ctx context.Context, taker *orderv1.Order, cause error) error {
	taker.Status = orderv1.StatusNeedsReview
	taker.UpdatedAt = time.Now().UTC()

	if err := e.orders.Update(ctx, taker); err != nil {
		e.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "orderID",
			Value: taker.ID,
		})
	}

	e.logger.ErrorContext(ctx, cause,
		logger.Field{Key: "orderID", Value: taker.ID},
		logger.Field{Key: "status", Value: string(orderv1.StatusNeedsReview)},
	)

	return cause
}

// releaseQuiet releases reserved funds and logs instead of failing: by the
// time a release runs the trade or cancellation it belongs to has already
// committed.
func (e *Engine) releaseQuiet(ctx context.Context, userID, currency string, amount decimal.Decimal, reference string) {
	if !amount.IsPositive() {
		return
	}
	if err := e.ledger.Release(ctx, userID, currency, amount, reference); err != nil {
		e.logger.ErrorContext(ctx, err,
			logger.Field{Key: "userID", Value: userID},
			logger.Field{Key: "currency", Value: currency},
			logger.Field{Key: "amount", Value: amount.String()},
		)
	}
}
