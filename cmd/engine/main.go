package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	app "github.com/Salbajnr/blocktradepro-engine/internal/app/engine"
	ledgerentryrepo "github.com/Salbajnr/blocktradepro-engine/internal/infrastructure/postgresql/ledgerentry"
	orderrepo "github.com/Salbajnr/blocktradepro-engine/internal/infrastructure/postgresql/order"
	pairrepo "github.com/Salbajnr/blocktradepro-engine/internal/infrastructure/postgresql/pair"
	traderepo "github.com/Salbajnr/blocktradepro-engine/internal/infrastructure/postgresql/trade"
	walletrepo "github.com/Salbajnr/blocktradepro-engine/internal/infrastructure/postgresql/wallet"
	"github.com/Salbajnr/blocktradepro-engine/internal/usecase/depth"
	"github.com/Salbajnr/blocktradepro-engine/internal/usecase/eventpublisher"
	"github.com/Salbajnr/blocktradepro-engine/internal/usecase/ledger"
	"github.com/Salbajnr/blocktradepro-engine/internal/usecase/registry"
	"github.com/Salbajnr/blocktradepro-engine/internal/usecase/settlement"
	"github.com/Salbajnr/blocktradepro-engine/pkg/config"
	"github.com/Salbajnr/blocktradepro-engine/pkg/logger"
	"github.com/Salbajnr/blocktradepro-engine/pkg/postgresql"
	"github.com/Salbajnr/blocktradepro-engine/pkg/redis"
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

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	db, err := postgresql.NewClient(ctx, cfg.Postgres)
	if err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "connect_postgres"})
		return
	}
	defer db.Close()

	rclient := redis.NewClient(log, &cfg.Redis)
	if err := rclient.Connect(ctx); err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "connect_redis"})
		return
	}
	defer rclient.Close()

	txRunner := postgresql.NewTxRunner(db)

	pairs := pairrepo.NewRepository(db, log)
	orders := orderrepo.NewRepository(db, log)
	trades := traderepo.NewRepository(db, log)
	wallets := walletrepo.NewRepository(db, log)
	entries := ledgerentryrepo.NewRepository(db, log)

	walletLedger := ledger.NewLedger(txRunner, wallets, entries, log)
	coordinator := settlement.NewCoordinator(txRunner, walletLedger, orders, trades, cfg.Engine.FeeUserID, log)

	pairRegistry := registry.NewRegistry(pairs, log)
	if err := pairRegistry.Load(ctx); err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "load_pairs"})
		return
	}

	publisher := eventpublisher.NewPublisher(eventpublisher.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
	}, log)
	defer publisher.Close()

	depthStore := depth.NewStore(rclient, log)

	engine := app.NewEngine(
		pairRegistry,
		orders,
		trades,
		walletLedger,
		coordinator,
		publisher,
		depthStore,
		log,
		app.OptionsFromConfig(cfg.Engine),
	)

	if err := engine.Start(ctx); err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "start_engine"})
		return
	}

	log.Info("Engine service started")

	sig := <-sigChan
	log.Info("Received shutdown signal", logger.Field{
		Key:   "signal",
		Value: sig.String(),
	})

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := engine.Stop(shutdownCtx); err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "stop_engine"})
	}

	log.Info("Engine service shutdown complete")
}
