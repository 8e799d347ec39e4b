package ledger

import (
	"context"
	"sort"
	"time"

	walletv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/wallet/v1"
	"github.com/Salbajnr/blocktradepro-engine/pkg/errors"
	"github.com/Salbajnr/blocktradepro-engine/pkg/logger"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// TxRunner runs a function as one atomic unit against the underlying store.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Ledger is the wallet ledger over the relational store. Every mutation locks
// the wallet rows it touches, checks the balance invariants, and writes its
// ledger entries inside the same transaction. Wallets shared across pairs are
// safe under concurrent matching loops because the row lock serializes them.
type Ledger struct {
	tx      TxRunner
	wallets walletv1.Repository
	entries walletv1.EntryRepository
	logger  logger.Interface
}

// Ensure Ledger implements the domain interface.
var _ walletv1.Ledger = (*Ledger)(nil)

// NewLedger creates a ledger over the given repositories.
func NewLedger(tx TxRunner, wallets walletv1.Repository, entries walletv1.EntryRepository, log logger.Interface) *Ledger {
	return &Ledger{
		tx:      tx,
		wallets: wallets,
		entries: entries,
		logger:  log,
	}
}

// Get returns the wallet for (user, currency), or nil when none exists.
func (l *Ledger) Get(ctx context.Context, userID, currency string) (*walletv1.Wallet, error) {
	return l.wallets.Get(ctx, userID, currency)
}

// Deposit credits available balance from an external source, creating the
// wallet on first need.
func (l *Ledger) Deposit(ctx context.Context, userID, currency string, amount decimal.Decimal, reference string) error {
	if !amount.IsPositive() {
		return errors.NewErrorDetails("deposit amount must be positive", string(errors.WalletInvariantViolation), "amount")
	}

	return l.tx.WithTx(ctx, func(ctx context.Context) error {
		wallet, err := l.lockOrCreate(ctx, userID, currency)
		if err != nil {
			return err
		}

		if err := l.wallets.UpdateBalances(ctx, userID, currency, wallet.Available.Add(amount), wallet.Reserved); err != nil {
			return err
		}

		return l.writeEntry(ctx, userID, currency, amount, walletv1.KindAvailable, walletv1.ReasonDeposit, reference)
	})
}

// Withdraw debits available balance toward an external destination.
func (l *Ledger) Withdraw(ctx context.Context, userID, currency string, amount decimal.Decimal, reference string) error {
	if !amount.IsPositive() {
		return errors.NewErrorDetails("withdraw amount must be positive", string(errors.WalletInvariantViolation), "amount")
	}

	return l.tx.WithTx(ctx, func(ctx context.Context) error {
		wallet, err := l.wallets.GetForUpdate(ctx, userID, currency)
		if err != nil {
			return err
		}
		if wallet == nil || wallet.Available.Cmp(amount) < 0 {
			return errors.NewErrorDetails("available balance too low", string(errors.InsufficientFunds), "amount")
		}

		if err := l.wallets.UpdateBalances(ctx, userID, currency, wallet.Available.Sub(amount), wallet.Reserved); err != nil {
			return err
		}

		return l.writeEntry(ctx, userID, currency, amount.Neg(), walletv1.KindAvailable, walletv1.ReasonWithdraw, reference)
	})
}

// Reserve earmarks amount from available to reserved. Fails with
// insufficient_funds when the available balance cannot cover it; the row lock
// guarantees two concurrent reservations never both succeed past the balance.
func (l *Ledger) Reserve(ctx context.Context, userID, currency string, amount decimal.Decimal, reference string) error {
	if !amount.IsPositive() {
		return errors.NewErrorDetails("reserve amount must be positive", string(errors.WalletInvariantViolation), "amount")
	}

	return l.tx.WithTx(ctx, func(ctx context.Context) error {
		wallet, err := l.wallets.GetForUpdate(ctx, userID, currency)
		if err != nil {
			return err
		}
		if wallet == nil || wallet.Available.Cmp(amount) < 0 {
			return errors.NewErrorDetails("available balance too low", string(errors.InsufficientFunds), "amount")
		}

		if err := l.wallets.UpdateBalances(ctx, userID, currency,
			wallet.Available.Sub(amount), wallet.Reserved.Add(amount)); err != nil {
			return err
		}

		if err := l.writeEntry(ctx, userID, currency, amount.Neg(), walletv1.KindAvailable, walletv1.ReasonReserve, reference); err != nil {
			return err
		}
		return l.writeEntry(ctx, userID, currency, amount, walletv1.KindReserved, walletv1.ReasonReserve, reference)
	})
}

// Release moves amount from reserved back to available. A reserved balance
// below amount is an invariant violation: it means an upstream accounting bug,
// not caller input.
func (l *Ledger) Release(ctx context.Context, userID, currency string, amount decimal.Decimal, reference string) error {
	if !amount.IsPositive() {
		return errors.NewErrorDetails("release amount must be positive", string(errors.WalletInvariantViolation), "amount")
	}

	return l.tx.WithTx(ctx, func(ctx context.Context) error {
		wallet, err := l.wallets.GetForUpdate(ctx, userID, currency)
		if err != nil {
			return err
		}
		if wallet == nil || wallet.Reserved.Cmp(amount) < 0 {
			err := errors.NewErrorDetails("reserved balance below release amount", string(errors.WalletInvariantViolation), "amount")
			l.logger.Error(err,
				logger.Field{Key: "userID", Value: userID},
				logger.Field{Key: "currency", Value: currency},
				logger.Field{Key: "amount", Value: amount.String()},
			)
			return err
		}

		if err := l.wallets.UpdateBalances(ctx, userID, currency,
			wallet.Available.Add(amount), wallet.Reserved.Sub(amount)); err != nil {
			return err
		}

		if err := l.writeEntry(ctx, userID, currency, amount, walletv1.KindAvailable, walletv1.ReasonRelease, reference); err != nil {
			return err
		}
		return l.writeEntry(ctx, userID, currency, amount.Neg(), walletv1.KindReserved, walletv1.ReasonRelease, reference)
	})
}

// Settle applies one currency leg of a trade: amount leaves FromUser's
// reserved balance, ToUser receives amount-fee available, FeeUser receives
// the fee. Wallet rows are locked in deterministic order so two legs running
// in opposite directions cannot deadlock.
func (l *Ledger) Settle(ctx context.Context, leg walletv1.SettleLeg) error {
	if !leg.Amount.IsPositive() {
		return errors.NewErrorDetails("settle amount must be positive", string(errors.WalletInvariantViolation), "amount")
	}
	if leg.Fee.IsNegative() || leg.Fee.Cmp(leg.Amount) > 0 {
		return errors.NewErrorDetails("settle fee out of range", string(errors.WalletInvariantViolation), "fee")
	}

	return l.tx.WithTx(ctx, func(ctx context.Context) error {
		users := []string{leg.FromUser, leg.ToUser}
		if leg.Fee.IsPositive() && leg.FeeUser != leg.FromUser && leg.FeeUser != leg.ToUser {
			users = append(users, leg.FeeUser)
		}

		wallets, err := l.lockAll(ctx, users, leg.Currency)
		if err != nil {
			return err
		}

		from := wallets[leg.FromUser]
		if from == nil || from.Reserved.Cmp(leg.Amount) < 0 {
			err := errors.NewErrorDetails("reserved balance below settle amount", string(errors.WalletInvariantViolation), "amount")
			l.logger.Error(err,
				logger.Field{Key: "userID", Value: leg.FromUser},
				logger.Field{Key: "currency", Value: leg.Currency},
				logger.Field{Key: "amount", Value: leg.Amount.String()},
			)
			return err
		}

		from.Reserved = from.Reserved.Sub(leg.Amount)
		wallets[leg.ToUser].Available = wallets[leg.ToUser].Available.Add(leg.Amount.Sub(leg.Fee))
		if leg.Fee.IsPositive() {
			wallets[leg.FeeUser].Available = wallets[leg.FeeUser].Available.Add(leg.Fee)
		}

		for _, user := range users {
			w := wallets[user]
			if err := l.wallets.UpdateBalances(ctx, user, leg.Currency, w.Available, w.Reserved); err != nil {
				return err
			}
		}

		if err := l.writeEntry(ctx, leg.FromUser, leg.Currency, leg.Amount.Neg(), walletv1.KindReserved, walletv1.ReasonSettleDebit, leg.Reference); err != nil {
			return err
		}
		if err := l.writeEntry(ctx, leg.ToUser, leg.Currency, leg.Amount.Sub(leg.Fee), walletv1.KindAvailable, walletv1.ReasonSettleCredit, leg.Reference); err != nil {
			return err
		}
		if leg.Fee.IsPositive() {
			return l.writeEntry(ctx, leg.FeeUser, leg.Currency, leg.Fee, walletv1.KindAvailable, walletv1.ReasonFee, leg.Reference)
		}
		return nil
	})
}

// lockAll locks wallet rows for the given users in sorted order, creating
// missing wallets first.
func (l *Ledger) lockAll(ctx context.Context, users []string, currency string) (map[string]*walletv1.Wallet, error) {
	sorted := append([]string(nil), users...)
	sort.Strings(sorted)

	wallets := make(map[string]*walletv1.Wallet, len(sorted))
	for _, user := range sorted {
		wallet, err := l.lockOrCreate(ctx, user, currency)
		if err != nil {
			return nil, err
		}
		wallets[user] = wallet
	}
	return wallets, nil
}

func (l *Ledger) lockOrCreate(ctx context.Context, userID, currency string) (*walletv1.Wallet, error) {
	if err := l.wallets.CreateIfAbsent(ctx, userID, currency); err != nil {
		return nil, err
	}

	wallet, err := l.wallets.GetForUpdate(ctx, userID, currency)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, errors.NewErrorDetails("wallet missing after create", string(errors.WalletNotFound), "wallet")
	}
	return wallet, nil
}

func (l *Ledger) writeEntry(ctx context.Context, userID, currency string, amount decimal.Decimal, kind walletv1.BalanceKind, reason walletv1.EntryReason, reference string) error {
	return l.entries.Store(ctx, &walletv1.LedgerEntry{
		ID:        ulid.Make().String(),
		UserID:    userID,
		Currency:  currency,
		Amount:    amount,
		Kind:      kind,
		Reason:    reason,
		Reference: reference,
		CreatedAt: time.Now().UTC(),
	})
}
