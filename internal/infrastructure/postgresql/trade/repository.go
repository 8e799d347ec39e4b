package trade

import (
	"context"
	"fmt"

	tradev1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/trade/v1"
	"github.com/Salbajnr/blocktradepro-engine/pkg/errors"
	"github.com/Salbajnr/blocktradepro-engine/pkg/logger"
	"github.com/Salbajnr/blocktradepro-engine/pkg/postgresql"
	"github.com/jackc/pgx/v5"
)

const tradeColumns = `id, pair, maker_order_id, taker_order_id, maker_user_id, taker_user_id, price, amount, maker_fee, taker_fee, executed_at`

type repository struct {
	db     postgresql.Client
	logger logger.Interface
}

var _ tradev1.Repository = (*repository)(nil)

// NewRepository creates the trade repository.
func NewRepository(db postgresql.Client, logger logger.Interface) *repository {
	return &repository{
		db:     db,
		logger: logger,
	}
}

// Store inserts a trade.
func (r *repository) Store(ctx context.Context, trade *tradev1.Trade) error {
	query := `INSERT INTO trades (` + tradeColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.Exec(ctx, query,
		trade.ID,
		trade.Pair,
		trade.MakerOrderID,
		trade.TakerOrderID,
		trade.MakerUserID,
		trade.TakerUserID,
		trade.Price.String(),
		trade.Amount.String(),
		trade.MakerFee.String(),
		trade.TakerFee.String(),
		trade.ExecutedAt,
	)
	if err != nil {
		return errors.TracerFromError(err)
	}

	return nil
}

// GetByID returns a trade by id, or nil when none exists.
func (r *repository) GetByID(ctx context.Context, id string) (*tradev1.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE id = $1`

	var entity row
	err := r.db.QueryRow(ctx, query, id).Scan(
		&entity.ID,
		&entity.Pair,
		&entity.MakerOrderID,
		&entity.TakerOrderID,
		&entity.MakerUserID,
		&entity.TakerUserID,
		&entity.Price,
		&entity.Amount,
		&entity.MakerFee,
		&entity.TakerFee,
		&entity.ExecutedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.TracerFromError(err)
	}

	return entity.toDomain()
}

// List lists trades matching the filter, most recent first.
func (r *repository) List(ctx context.Context, filter tradev1.Filter) ([]*tradev1.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE 1=1`
	args := []any{}
	argIndex := 1

	if filter.Pair != "" {
		query += fmt.Sprintf(" AND pair = $%d", argIndex)
		args = append(args, filter.Pair)
		argIndex++
	}

	if filter.UserID != "" {
		query += fmt.Sprintf(" AND (maker_user_id = $%d OR taker_user_id = $%d)", argIndex, argIndex)
		args = append(args, filter.UserID)
		argIndex++
	}

	if filter.From != nil {
		query += fmt.Sprintf(" AND executed_at >= $%d", argIndex)
		args = append(args, *filter.From)
		argIndex++
	}

	if filter.To != nil {
		query += fmt.Sprintf(" AND executed_at <= $%d", argIndex)
		args = append(args, *filter.To)
		argIndex++
	}

	query += " ORDER BY executed_at DESC, id DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, filter.Limit)
		argIndex++
	}

	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, filter.Offset)
		argIndex++
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.TracerFromError(err)
	}
	defer rows.Close()

	trades := []*tradev1.Trade{}
	for rows.Next() {
		var entity row
		err := rows.Scan(
			&entity.ID,
			&entity.Pair,
			&entity.MakerOrderID,
			&entity.TakerOrderID,
			&entity.MakerUserID,
			&entity.TakerUserID,
			&entity.Price,
			&entity.Amount,
			&entity.MakerFee,
			&entity.TakerFee,
			&entity.ExecutedAt,
		)
		if err != nil {
			return nil, errors.TracerFromError(err)
		}

		trade, err := entity.toDomain()
		if err != nil {
			return nil, errors.TracerFromError(err)
		}
		trades = append(trades, trade)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.TracerFromError(err)
	}

	return trades, nil
}
