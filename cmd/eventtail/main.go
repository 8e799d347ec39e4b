package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	eventv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/event/v1"
	"github.com/Salbajnr/blocktradepro-engine/pkg/config"
	"github.com/Salbajnr/blocktradepro-engine/pkg/logger"
	"github.com/segmentio/kafka-go"
)

var cfg *config.Config
var log *logger.Logger

func init() {
	cfg = &config.Config{}
	if err := config.Load(cfg); err != nil {
		panic(err)
	}

	l, err := logger.NewLogger(logger.WithLoggingLevel(logger.Level(cfg.LogLevel)))
	if err != nil {
		panic(err)
	}
	log = l
}

// eventtail follows the engine's event topic and logs every event. Useful for
// watching a running engine during development and incident review.
func main() {
	var (
		group = flag.String("group", "eventtail", "Kafka consumer group id")
		pair  = flag.String("pair", "", "only show events for this pair")
	)
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: *group,
	})
	defer reader.Close()

	log.Info("Tailing event topic",
		logger.Field{Key: "topic", Value: cfg.Kafka.Topic},
		logger.Field{Key: "group", Value: *group},
	)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("Event tail stopped")
				return
			}
			log.Error(err, logger.Field{Key: "action", Value: "read_message"})
			continue
		}

		var event eventv1.Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error(err, logger.Field{Key: "offset", Value: msg.Offset})
			continue
		}

		if *pair != "" && event.Pair != *pair {
			continue
		}

		fields := []logger.Field{
			{Key: "type", Value: string(event.Type)},
			{Key: "pair", Value: event.Pair},
			{Key: "eventID", Value: event.ID},
		}
		if event.Order != nil {
			fields = append(fields,
				logger.Field{Key: "orderID", Value: event.Order.ID},
				logger.Field{Key: "status", Value: string(event.Order.Status)},
				logger.Field{Key: "filled", Value: event.Order.Filled.String()},
			)
		}
		if event.Trade != nil {
			fields = append(fields,
				logger.Field{Key: "tradeID", Value: event.Trade.ID},
				logger.Field{Key: "price", Value: event.Trade.Price.String()},
				logger.Field{Key: "amount", Value: event.Trade.Amount.String()},
			)
		}
		log.Info("Event", fields...)
	}
}
