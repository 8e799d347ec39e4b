package ledgerentry

import (
	"context"
	"fmt"

	walletv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/wallet/v1"
	"github.com/Salbajnr/blocktradepro-engine/pkg/errors"
	"github.com/Salbajnr/blocktradepro-engine/pkg/logger"
	"github.com/Salbajnr/blocktradepro-engine/pkg/postgresql"
	"github.com/shopspring/decimal"
)

const entryColumns = `id, user_id, currency, amount, kind, reason, reference, created_at`

type repository struct {
	db     postgresql.Client
	logger logger.Interface
}

var _ walletv1.EntryRepository = (*repository)(nil)

// NewRepository creates the ledger entry repository.
func NewRepository(db postgresql.Client, logger logger.Interface) *repository {
	return &repository{
		db:     db,
		logger: logger,
	}
}

// Store appends one entry. Entries are never updated or deleted.
func (r *repository) Store(ctx context.Context, entry *walletv1.LedgerEntry) error {
	query := `INSERT INTO ledger_entries (` + entryColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Currency,
		entry.Amount.String(),
		string(entry.Kind),
		string(entry.Reason),
		entry.Reference,
		entry.CreatedAt,
	)
	if err != nil {
		return errors.TracerFromError(err)
	}

	return nil
}

// List lists entries matching the filter, most recent first.
func (r *repository) List(ctx context.Context, filter walletv1.EntryFilter) ([]*walletv1.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE 1=1`
	args := []any{}
	argIndex := 1

	if filter.UserID != "" {
		query += fmt.Sprintf(" AND user_id = $%d", argIndex)
		args = append(args, filter.UserID)
		argIndex++
	}

	if filter.Currency != "" {
		query += fmt.Sprintf(" AND currency = $%d", argIndex)
		args = append(args, filter.Currency)
		argIndex++
	}

	if filter.Reference != "" {
		query += fmt.Sprintf(" AND reference = $%d", argIndex)
		args = append(args, filter.Reference)
		argIndex++
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

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.TracerFromError(err)
	}
	defer rows.Close()

	entries := []*walletv1.LedgerEntry{}
	for rows.Next() {
		var (
			entry  walletv1.LedgerEntry
			amount string
		)
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Currency,
			&amount,
			&entry.Kind,
			&entry.Reason,
			&entry.Reference,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, errors.TracerFromError(err)
		}

		entry.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, errors.TracerFromError(err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.TracerFromError(err)
	}

	return entries, nil
}
