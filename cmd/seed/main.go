package main

import (
	"context"
	"time"

	marketv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/market/v1"
	ledgerentryrepo "github.com/Salbajnr/blocktradepro-engine/internal/infrastructure/postgresql/ledgerentry"
	pairrepo "github.com/Salbajnr/blocktradepro-engine/internal/infrastructure/postgresql/pair"
	walletrepo "github.com/Salbajnr/blocktradepro-engine/internal/infrastructure/postgresql/wallet"
	"github.com/Salbajnr/blocktradepro-engine/internal/usecase/ledger"
	"github.com/Salbajnr/blocktradepro-engine/pkg/config"
	"github.com/Salbajnr/blocktradepro-engine/pkg/logger"
	"github.com/Salbajnr/blocktradepro-engine/pkg/postgresql"
	"github.com/shopspring/decimal"
)

// seed inserts a development set of trading pairs and funds a few dev wallets.
func main() {
	cfg := &config.Config{}
	if err := config.Load(cfg); err != nil {
		panic(err)
	}

	log, err := logger.NewLogger()
	if err != nil {
		panic(err)
	}

	ctx := context.Background()

	db, err := postgresql.NewClient(ctx, cfg.Postgres)
	if err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "connect_postgres"})
		return
	}
	defer db.Close()

	pairs := pairrepo.NewRepository(db, log)

	now := time.Now().UTC()
	seedPairs := []*marketv1.TradingPair{
		{
			Symbol:          "BTC-USDT",
			BaseCurrency:    "BTC",
			QuoteCurrency:   "USDT",
			MinPrice:        decimal.RequireFromString("0.01"),
			MaxPrice:        decimal.RequireFromString("10000000"),
			MinAmount:       decimal.RequireFromString("0.0001"),
			MinNotional:     decimal.RequireFromString("10"),
			PricePrecision:  2,
			AmountPrecision: 8,
			MakerFeeRate:    decimal.RequireFromString("0.001"),
			TakerFeeRate:    decimal.RequireFromString("0.002"),
			Active:          true,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
		{
			Symbol:          "ETH-USDT",
			BaseCurrency:    "ETH",
			QuoteCurrency:   "USDT",
			MinPrice:        decimal.RequireFromString("0.01"),
			MaxPrice:        decimal.RequireFromString("1000000"),
			MinAmount:       decimal.RequireFromString("0.001"),
			MinNotional:     decimal.RequireFromString("10"),
			PricePrecision:  2,
			AmountPrecision: 8,
			MakerFeeRate:    decimal.RequireFromString("0.001"),
			TakerFeeRate:    decimal.RequireFromString("0.002"),
			Active:          true,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
		{
			Symbol:          "ETH-BTC",
			BaseCurrency:    "ETH",
			QuoteCurrency:   "BTC",
			MinPrice:        decimal.RequireFromString("0.000001"),
			MaxPrice:        decimal.RequireFromString("100"),
			MinAmount:       decimal.RequireFromString("0.001"),
			MinNotional:     decimal.RequireFromString("0.0001"),
			PricePrecision:  6,
			AmountPrecision: 8,
			MakerFeeRate:    decimal.RequireFromString("0.001"),
			TakerFeeRate:    decimal.RequireFromString("0.002"),
			Active:          true,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
	}

	for _, pair := range seedPairs {
		existing, err := pairs.GetBySymbol(ctx, pair.Symbol)
		if err != nil {
			log.Error(err, logger.Field{Key: "pair", Value: pair.Symbol})
			return
		}
		if existing != nil {
			log.Info("Pair already seeded", logger.Field{Key: "pair", Value: pair.Symbol})
			continue
		}

		if err := pairs.Store(ctx, pair); err != nil {
			log.Error(err, logger.Field{Key: "pair", Value: pair.Symbol})
			return
		}
		log.Info("Pair seeded", logger.Field{Key: "pair", Value: pair.Symbol})
	}

	txRunner := postgresql.NewTxRunner(db)
	wallets := walletrepo.NewRepository(db, log)
	entries := ledgerentryrepo.NewRepository(db, log)
	walletLedger := ledger.NewLedger(txRunner, wallets, entries, log)

	deposits := []struct {
		userID   string
		currency string
		amount   string
	}{
		{"dev-alice", "USDT", "100000"},
		{"dev-alice", "BTC", "2"},
		{"dev-bob", "USDT", "100000"},
		{"dev-bob", "ETH", "50"},
	}

	for _, d := range deposits {
		existing, err := walletLedger.Get(ctx, d.userID, d.currency)
		if err != nil {
			log.Error(err, logger.Field{Key: "user", Value: d.userID})
			return
		}
		if existing != nil {
			log.Info("Wallet already seeded",
				logger.Field{Key: "user", Value: d.userID},
				logger.Field{Key: "currency", Value: d.currency},
			)
			continue
		}

		amount := decimal.RequireFromString(d.amount)
		if err := walletLedger.Deposit(ctx, d.userID, d.currency, amount, "seed"); err != nil {
			log.Error(err, logger.Field{Key: "user", Value: d.userID})
			return
		}
		log.Info("Wallet seeded",
			logger.Field{Key: "user", Value: d.userID},
			logger.Field{Key: "currency", Value: d.currency},
			logger.Field{Key: "amount", Value: d.amount},
		)
	}
}
