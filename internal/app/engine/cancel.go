package engine

import (
	"context"
	"time"

	eventv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/event/v1"
	orderv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/order/v1"
	"github.com/Salbajnr/blocktradepro-engine/pkg/errors"
)

// CancelOrder removes a resting order and releases its remaining reservation.
// Only open and partially filled orders can be cancelled; any terminal state,
// including an earlier cancellation, is refused.
func (e *Engine) CancelOrder(ctx context.Context, userID, orderID string) (*orderv1.Order, error) {
	stored, err := e.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if stored.UserID != userID {
		return nil, errors.NewErrorDetails("order belongs to another user", string(errors.Unauthorized), "orderID")
	}

	worker, err := e.worker(stored.Pair)
	if err != nil {
		return nil, err
	}

	worker.mu.Lock()
	defer worker.mu.Unlock()

	// Absence from the live book means the order reached a terminal state,
	// possibly between the lookup above and taking the lock.
	live := worker.book.Get(orderID)
	if live == nil {
		return nil, errors.NewErrorDetails("order is not open", string(errors.OrderInvalidState), "orderID")
	}

	if _, err := worker.book.Remove(orderID); err != nil {
		return nil, err
	}

	live.Status = orderv1.StatusCancelled
	live.UpdatedAt = time.Now().UTC()
	if err := e.orders.Update(ctx, live); err != nil {
		return nil, err
	}

	remaining := live.Remaining()
	if live.Side == orderv1.SideBuy {
		e.releaseQuiet(ctx, live.UserID, worker.pair.QuoteCurrency, live.Price.Mul(remaining), live.ID)
	} else {
		e.releaseQuiet(ctx, live.UserID, worker.pair.BaseCurrency, remaining, live.ID)
	}

	e.emit(ctx, eventv1.NewOrderEvent(eventv1.OrderCancelled, live))

	return live, nil
}
