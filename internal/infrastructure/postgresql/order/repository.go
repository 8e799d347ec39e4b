package order

import (
	"context"
	"fmt"

	orderv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/order/v1"
	"github.com/Salbajnr/blocktradepro-engine/pkg/errors"
	"github.com/Salbajnr/blocktradepro-engine/pkg/logger"
	"github.com/Salbajnr/blocktradepro-engine/pkg/postgresql"
	"github.com/jackc/pgx/v5"
)

const orderColumns = `id, user_id, pair, side, type, price, amount, filled, maker_fee_rate, taker_fee_rate, status, created_at, updated_at`

type repository struct {
	db     postgresql.Client
	logger logger.Interface
}

var _ orderv1.Repository = (*repository)(nil)

// NewRepository creates the order repository.
func NewRepository(db postgresql.Client, logger logger.Interface) *repository {
	return &repository{
		db:     db,
		logger: logger,
	}
}

// Store inserts an order.
func (r *repository) Store(ctx context.Context, order *orderv1.Order) error {
	query := `INSERT INTO orders (` + orderColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.Exec(ctx, query,
		order.ID,
		order.UserID,
		order.Pair,
		string(order.Side),
		string(order.Type),
		priceArg(order),
		order.Amount.String(),
		order.Filled.String(),
		order.MakerFeeRate.String(),
		order.TakerFeeRate.String(),
		string(order.Status),
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return errors.TracerFromError(err)
	}

	return nil
}

// Update rewrites an order's mutable fields.
func (r *repository) Update(ctx context.Context, order *orderv1.Order) error {
	query := `UPDATE orders SET filled = $1, status = $2, updated_at = $3 WHERE id = $4`

	cmd, err := r.db.Exec(ctx, query,
		order.Filled.String(),
		string(order.Status),
		order.UpdatedAt,
		order.ID,
	)
	if err != nil {
		return errors.TracerFromError(err)
	}
	if cmd.RowsAffected() == 0 {
		return errors.NewErrorDetails("order not found", string(errors.OrderNotFound), "id")
	}

	return nil
}

// GetByID returns an order by id.
func (r *repository) GetByID(ctx context.Context, id string) (*orderv1.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var entity row
	err := r.db.QueryRow(ctx, query, id).Scan(
		&entity.ID,
		&entity.UserID,
		&entity.Pair,
		&entity.Side,
		&entity.Type,
		&entity.Price,
		&entity.Amount,
		&entity.Filled,
		&entity.MakerFeeRate,
		&entity.TakerFeeRate,
		&entity.Status,
		&entity.CreatedAt,
		&entity.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, errors.NewErrorDetails("order not found", string(errors.OrderNotFound), "id")
	}
	if err != nil {
		return nil, errors.TracerFromError(err)
	}

	return entity.toDomain()
}

// List lists orders matching the filter.
func (r *repository) List(ctx context.Context, filter orderv1.Filter) ([]*orderv1.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`
	args := []any{}
	argIndex := 1

	if filter.UserID != "" {
		query += fmt.Sprintf(" AND user_id = $%d", argIndex)
		args = append(args, filter.UserID)
		argIndex++
	}

	if filter.Pair != "" {
		query += fmt.Sprintf(" AND pair = $%d", argIndex)
		args = append(args, filter.Pair)
		argIndex++
	}

	if filter.Side != "" {
		query += fmt.Sprintf(" AND side = $%d", argIndex)
		args = append(args, string(filter.Side))
		argIndex++
	}

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, string(filter.Status))
		argIndex++
	}

	if filter.OpenOnly {
		query += " AND status IN ('open', 'partially_filled')"
	}

	query += " ORDER BY created_at DESC, id DESC"

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

	return r.queryOrders(ctx, query, args...)
}

// ListOpenByPair returns open and partially filled orders for a pair in
// creation order, the sequence a book restore needs.
func (r *repository) ListOpenByPair(ctx context.Context, pair string) ([]*orderv1.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE pair = $1 AND status IN ('open', 'partially_filled') ORDER BY created_at ASC, id ASC`

	return r.queryOrders(ctx, query, pair)
}

func (r *repository) queryOrders(ctx context.Context, query string, args ...any) ([]*orderv1.Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.TracerFromError(err)
	}
	defer rows.Close()

	orders := []*orderv1.Order{}
	for rows.Next() {
		var entity row
		err := rows.Scan(
			&entity.ID,
			&entity.UserID,
			&entity.Pair,
			&entity.Side,
			&entity.Type,
			&entity.Price,
			&entity.Amount,
			&entity.Filled,
			&entity.MakerFeeRate,
			&entity.TakerFeeRate,
			&entity.Status,
			&entity.CreatedAt,
			&entity.UpdatedAt,
		)
		if err != nil {
			return nil, errors.TracerFromError(err)
		}

		order, err := entity.toDomain()
		if err != nil {
			return nil, errors.TracerFromError(err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.TracerFromError(err)
	}

	return orders, nil
}
