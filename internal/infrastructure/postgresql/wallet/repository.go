package wallet

import (
	"context"

	walletv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/wallet/v1"
	"github.com/Salbajnr/blocktradepro-engine/pkg/errors"
	"github.com/Salbajnr/blocktradepro-engine/pkg/logger"
	"github.com/Salbajnr/blocktradepro-engine/pkg/postgresql"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const walletColumns = `user_id, currency, available, reserved, created_at, updated_at`

type repository struct {
	db     postgresql.Client
	logger logger.Interface
}

var _ walletv1.Repository = (*repository)(nil)

// NewRepository creates the wallet repository.
func NewRepository(db postgresql.Client, logger logger.Interface) *repository {
	return &repository{
		db:     db,
		logger: logger,
	}
}

// Get returns the wallet, or nil when none exists.
func (r *repository) Get(ctx context.Context, userID, currency string) (*walletv1.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 AND currency = $2`
	return r.queryWallet(ctx, query, userID, currency)
}

// GetForUpdate locks the wallet row for the enclosing transaction. Returns nil
// when no wallet exists.
func (r *repository) GetForUpdate(ctx context.Context, userID, currency string) (*walletv1.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 AND currency = $2 FOR UPDATE`
	return r.queryWallet(ctx, query, userID, currency)
}

// CreateIfAbsent makes sure a zero-balance wallet row exists.
func (r *repository) CreateIfAbsent(ctx context.Context, userID, currency string) error {
	query := `INSERT INTO wallets (user_id, currency, available, reserved, created_at, updated_at)
		VALUES ($1, $2, 0, 0, now(), now())
		ON CONFLICT (user_id, currency) DO NOTHING`

	_, err := r.db.Exec(ctx, query, userID, currency)
	if err != nil {
		return errors.TracerFromError(err)
	}

	return nil
}

// UpdateBalances rewrites both balances. The table's non-negative checks back
// up the application-level invariants.
func (r *repository) UpdateBalances(ctx context.Context, userID, currency string, available, reserved decimal.Decimal) error {
	query := `UPDATE wallets SET available = $1, reserved = $2, updated_at = now() WHERE user_id = $3 AND currency = $4`

	cmd, err := r.db.Exec(ctx, query,
		available.String(),
		reserved.String(),
		userID,
		currency,
	)
	if err != nil {
		return errors.TracerFromError(err)
	}
	if cmd.RowsAffected() == 0 {
		return errors.NewErrorDetails("wallet not found", string(errors.WalletNotFound), "wallet")
	}

	return nil
}

// ListByUser returns all of a user's wallets.
func (r *repository) ListByUser(ctx context.Context, userID string) ([]*walletv1.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 ORDER BY currency`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, errors.TracerFromError(err)
	}
	defer rows.Close()

	wallets := []*walletv1.Wallet{}
	for rows.Next() {
		var entity row
		err := rows.Scan(
			&entity.UserID,
			&entity.Currency,
			&entity.Available,
			&entity.Reserved,
			&entity.CreatedAt,
			&entity.UpdatedAt,
		)
		if err != nil {
			return nil, errors.TracerFromError(err)
		}

		wallet, err := entity.toDomain()
		if err != nil {
			return nil, errors.TracerFromError(err)
		}
		wallets = append(wallets, wallet)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.TracerFromError(err)
	}

	return wallets, nil
}

func (r *repository) queryWallet(ctx context.Context, query string, userID, currency string) (*walletv1.Wallet, error) {
	var entity row
	err := r.db.QueryRow(ctx, query, userID, currency).Scan(
		&entity.UserID,
		&entity.Currency,
		&entity.Available,
		&entity.Reserved,
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
