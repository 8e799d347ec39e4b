package pair

import (
	"context"

	marketv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/market/v1"
	"github.com/Salbajnr/blocktradepro-engine/pkg/errors"
	"github.com/Salbajnr/blocktradepro-engine/pkg/logger"
	"github.com/Salbajnr/blocktradepro-engine/pkg/postgresql"
	"github.com/jackc/pgx/v5"
)

const pairColumns = `symbol, base_currency, quote_currency, min_price, max_price, min_amount, min_notional, price_precision, amount_precision, maker_fee_rate, taker_fee_rate, active, created_at, updated_at`

type repository struct {
	db     postgresql.Client
	logger logger.Interface
}

var _ marketv1.Repository = (*repository)(nil)

// NewRepository creates the trading pair repository.
func NewRepository(db postgresql.Client, logger logger.Interface) *repository {
	return &repository{
		db:     db,
		logger: logger,
	}
}

// GetBySymbol returns the pair, or nil when none exists.
func (r *repository) GetBySymbol(ctx context.Context, symbol string) (*marketv1.TradingPair, error) {
	query := `SELECT ` + pairColumns + ` FROM trading_pairs WHERE symbol = $1`

	var entity row
	err := r.db.QueryRow(ctx, query, symbol).Scan(
		&entity.Symbol,
		&entity.BaseCurrency,
		&entity.QuoteCurrency,
		&entity.MinPrice,
		&entity.MaxPrice,
		&entity.MinAmount,
		&entity.MinNotional,
		&entity.PricePrecision,
		&entity.AmountPrecision,
		&entity.MakerFeeRate,
		&entity.TakerFeeRate,
		&entity.Active,
		&entity.CreatedAt,
		&entity.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.TracerFromError(err)
	}

	return entity.toDomain()
}

// ListActive returns all active pairs.
func (r *repository) ListActive(ctx context.Context) ([]*marketv1.TradingPair, error) {
	query := `SELECT ` + pairColumns + ` FROM trading_pairs WHERE active ORDER BY symbol`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, errors.TracerFromError(err)
	}
	defer rows.Close()

	pairs := []*marketv1.TradingPair{}
	for rows.Next() {
		var entity row
		err := rows.Scan(
			&entity.Symbol,
			&entity.BaseCurrency,
			&entity.QuoteCurrency,
			&entity.MinPrice,
			&entity.MaxPrice,
			&entity.MinAmount,
			&entity.MinNotional,
			&entity.PricePrecision,
			&entity.AmountPrecision,
			&entity.MakerFeeRate,
			&entity.TakerFeeRate,
			&entity.Active,
			&entity.CreatedAt,
			&entity.UpdatedAt,
		)
		if err != nil {
			return nil, errors.TracerFromError(err)
		}

		pair, err := entity.toDomain()
		if err != nil {
			return nil, errors.TracerFromError(err)
		}
		pairs = append(pairs, pair)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.TracerFromError(err)
	}

	return pairs, nil
}

// Store inserts a pair.
func (r *repository) Store(ctx context.Context, pair *marketv1.TradingPair) error {
	query := `INSERT INTO trading_pairs (` + pairColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	cmd, err := r.db.Exec(ctx, query,
		pair.Symbol,
		pair.BaseCurrency,
		pair.QuoteCurrency,
		pair.MinPrice.String(),
		pair.MaxPrice.String(),
		pair.MinAmount.String(),
		pair.MinNotional.String(),
		pair.PricePrecision,
		pair.AmountPrecision,
		pair.MakerFeeRate.String(),
		pair.TakerFeeRate.String(),
		pair.Active,
		pair.CreatedAt,
		pair.UpdatedAt,
	)
	if err != nil {
		return errors.TracerFromError(err)
	}

	r.logger.Info("Inserted trading pair", logger.Field{
		Key:   "commandTag",
		Value: cmd.String(),
	})

	return nil
}

// Update rewrites a pair's administered fields.
func (r *repository) Update(ctx context.Context, pair *marketv1.TradingPair) error {
	query := `UPDATE trading_pairs SET min_price = $1, max_price = $2, min_amount = $3, min_notional = $4, price_precision = $5, amount_precision = $6, maker_fee_rate = $7, taker_fee_rate = $8, active = $9, updated_at = now() WHERE symbol = $10`

	_, err := r.db.Exec(ctx, query,
		pair.MinPrice.String(),
		pair.MaxPrice.String(),
		pair.MinAmount.String(),
		pair.MinNotional.String(),
		pair.PricePrecision,
		pair.AmountPrecision,
		pair.MakerFeeRate.String(),
		pair.TakerFeeRate.String(),
		pair.Active,
		pair.Symbol,
	)
	if err != nil {
		return errors.TracerFromError(err)
	}

	return nil
}
