package eventpublisher

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"testing"
	"time"

	eventv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/event/v1"
	orderv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/order/v1"
	"github.com/Salbajnr/blocktradepro-engine/pkg/logger"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	writeErr error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.writeErr != nil {
		return w.writeErr
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func setupPublisher(t *testing.T, writer *fakeWriter) *Publisher {
	log, err := logger.NewLogger()
	require.NoError(t, err)

	return &Publisher{
		kafkaWriter: writer,
		logger:      log,
	}
}

func testEvent() *eventv1.Event {
	price := decimal.RequireFromString("50000")
	return eventv1.NewOrderEvent(eventv1.OrderCreated, &orderv1.Order{
		ID:        "order-1",
		UserID:    "alice",
		Pair:      "BTC-USDT",
		Side:      orderv1.SideBuy,
		Type:      orderv1.TypeLimit,
		Price:     &price,
		Amount:    decimal.RequireFromString("1"),
		Filled:    decimal.Zero,
		Status:    orderv1.StatusOpen,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	})
}

func TestPublishKeysByPair(t *testing.T) {
	writer := &fakeWriter{}
	publisher := setupPublisher(t, writer)

	event := testEvent()
	require.NoError(t, publisher.Publish(context.Background(), event))

	require.Len(t, writer.messages, 1)
	msg := writer.messages[0]
	assert.Equal(t, "BTC-USDT", string(msg.Key))

	var decoded eventv1.Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event.ID, decoded.ID)
	assert.Equal(t, eventv1.OrderCreated, decoded.Type)
	require.NotNil(t, decoded.Order)
	assert.Equal(t, "order-1", decoded.Order.ID)
}

func TestPublishWriterFailure(t *testing.T) {
	writer := &fakeWriter{writeErr: goerrors.New("broker unreachable")}
	publisher := setupPublisher(t, writer)

	err := publisher.Publish(context.Background(), testEvent())
	assert.Error(t, err)
	assert.Empty(t, writer.messages)
}

func TestPublisherClose(t *testing.T) {
	writer := &fakeWriter{}
	publisher := setupPublisher(t, writer)

	require.NoError(t, publisher.Close())
	assert.True(t, writer.closed)
}
