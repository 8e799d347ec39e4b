package eventpublisher

import (
	"context"
	"encoding/json"

	eventv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/event/v1"
	"github.com/Salbajnr/blocktradepro-engine/pkg/errors"
	"github.com/Salbajnr/blocktradepro-engine/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// Config holds the Kafka sink settings.
type Config struct {
	Brokers []string
	Topic   string
}

// messageWriter is the slice of kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher publishes engine events to Kafka. Messages are keyed by pair so
// consumers see each pair's events in order.
type Publisher struct {
	kafkaWriter messageWriter
	logger      logger.Interface
}

var _ eventv1.Publisher = (*Publisher)(nil)

// NewPublisher creates a Kafka publisher for engine events.
func NewPublisher(config Config, log logger.Interface) *Publisher {
	kafkaWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers: config.Brokers,
		Topic:   config.Topic,
	})

	return &Publisher{
		kafkaWriter: kafkaWriter,
		logger:      log,
	}
}

// Publish writes one event to the topic.
func (p *Publisher) Publish(ctx context.Context, event *eventv1.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.NewTracer("failed to encode event").Wrap(err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Pair),
		Value: payload,
	}

	if err := p.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		p.logger.ErrorContext(ctx, err,
			logger.Field{Key: "eventID", Value: event.ID},
			logger.Field{Key: "eventType", Value: string(event.Type)},
			logger.Field{Key: "pair", Value: event.Pair},
		)
		return errors.NewTracer("failed to publish event")
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.kafkaWriter.Close()
}
