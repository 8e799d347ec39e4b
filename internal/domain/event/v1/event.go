package eventv1

import (
	"context"
	"time"

	orderv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/order/v1"
	tradev1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/trade/v1"
	"github.com/oklog/ulid/v2"
)

// Type names an engine event.
type Type string

const (
	// OrderCreated is emitted after an order is admitted.
	OrderCreated Type = "order.created"
	// OrderPartiallyFilled is emitted after a partial fill.
	OrderPartiallyFilled Type = "order.partially_filled"
	// OrderFilled is emitted when an order reaches its terminal filled state.
	OrderFilled Type = "order.filled"
	// OrderCancelled is emitted after a cancellation.
	OrderCancelled Type = "order.cancelled"
	// TradeExecuted is emitted once per settled trade.
	TradeExecuted Type = "trade.executed"
)

// Event carries the full post-mutation record to the notification sink.
// Exactly one of Order and Trade is set, matching the event type.
type Event struct {
	ID   string `json:"id"`
	Type Type   `json:"type"`
	Pair string `json:"pair"`

	Order *orderv1.Order `json:"order,omitempty"`
	Trade *tradev1.Trade `json:"trade,omitempty"`

	OccurredAt time.Time `json:"occurredAt"`
}

// NewOrderEvent builds an order lifecycle event.
func NewOrderEvent(eventType Type, order *orderv1.Order) *Event {
	return &Event{
		ID:         ulid.Make().String(),
		Type:       eventType,
		Pair:       order.Pair,
		Order:      order,
		OccurredAt: time.Now().UTC(),
	}
}

// NewTradeEvent builds a trade execution event.
func NewTradeEvent(trade *tradev1.Trade) *Event {
	return &Event{
		ID:         ulid.Make().String(),
		Type:       TradeExecuted,
		Pair:       trade.Pair,
		Trade:      trade,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher hands events to the external notification sink. Delivery is the
// sink's concern; the engine only emits.
//
//go:generate mockgen -source=event.go -destination=mock/event_mock.go -package=eventv1_mock
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}
