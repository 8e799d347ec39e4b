package walletv1

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Wallet holds one user's balance in one currency. Available and reserved are
// both non-negative at all times; available+reserved only changes through
// external deposits and withdrawals.
type Wallet struct {
	UserID   string `json:"userID"`
	Currency string `json:"currency"`

	Available decimal.Decimal `json:"available"`
	Reserved  decimal.Decimal `json:"reserved"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Total returns available + reserved.
func (w *Wallet) Total() decimal.Decimal {
	return w.Available.Add(w.Reserved)
}

// BalanceKind names which balance a ledger entry touched.
type BalanceKind string

const (
	// KindAvailable marks a mutation of the available balance.
	KindAvailable BalanceKind = "available"
	// KindReserved marks a mutation of the reserved balance.
	KindReserved BalanceKind = "reserved"
)

// EntryReason names why a balance moved.
type EntryReason string

const (
	// ReasonDeposit is an external credit.
	ReasonDeposit EntryReason = "deposit"
	// ReasonWithdraw is an external debit.
	ReasonWithdraw EntryReason = "withdraw"
	// ReasonReserve earmarks funds against a new order.
	ReasonReserve EntryReason = "reserve"
	// ReasonRelease returns earmarked funds of a cancelled or refunded order.
	ReasonRelease EntryReason = "release"
	// ReasonSettleDebit consumes reserved funds during trade settlement.
	ReasonSettleDebit EntryReason = "settle_debit"
	// ReasonSettleCredit delivers funds during trade settlement.
	ReasonSettleCredit EntryReason = "settle_credit"
	// ReasonFee credits the house account with a trading fee.
	ReasonFee EntryReason = "fee"
)

// LedgerEntry is the append-only record of one balance mutation. Amount is
// signed; Reference carries the order or trade id that caused the move.
type LedgerEntry struct {
	ID       string `json:"id"`
	UserID   string `json:"userID"`
	Currency string `json:"currency"`

	Amount decimal.Decimal `json:"amount"`
	Kind   BalanceKind     `json:"kind"`
	Reason EntryReason     `json:"reason"`

	Reference string    `json:"reference"`
	CreatedAt time.Time `json:"createdAt"`
}

// EntryFilter narrows ledger entry listings.
type EntryFilter struct {
	UserID   string `json:"userID"`
	Currency string `json:"currency"`

	Reference string `json:"reference"`

	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Repository is the persistence interface for wallets.
//
//go:generate mockgen -source=wallet.go -destination=mock/wallet_mock.go -package=walletv1_mock
type Repository interface {
	// Get returns the wallet, or nil when none exists yet.
	Get(ctx context.Context, userID, currency string) (*Wallet, error)
	// GetForUpdate locks the wallet row for the duration of the enclosing
	// transaction. Returns nil when none exists.
	GetForUpdate(ctx context.Context, userID, currency string) (*Wallet, error)
	// CreateIfAbsent makes sure a zero-balance wallet row exists.
	CreateIfAbsent(ctx context.Context, userID, currency string) error
	UpdateBalances(ctx context.Context, userID, currency string, available, reserved decimal.Decimal) error
	ListByUser(ctx context.Context, userID string) ([]*Wallet, error)
}

// EntryRepository is the persistence interface for ledger entries.
type EntryRepository interface {
	Store(ctx context.Context, entry *LedgerEntry) error
	List(ctx context.Context, filter EntryFilter) ([]*LedgerEntry, error)
}

// SettleLeg describes one currency leg of a trade settlement: Amount moves
// out of FromUser's reserved balance; ToUser receives Amount-Fee available;
// FeeUser receives the fee.
type SettleLeg struct {
	FromUser string
	ToUser   string
	FeeUser  string
	Currency string

	Amount decimal.Decimal
	Fee    decimal.Decimal

	// Reference is the trade id the leg belongs to.
	Reference string
}

// Ledger exposes the wallet mutation primitives. Every call is atomic with
// respect to concurrent callers on the same wallet and writes its ledger
// entries in the same unit. Calls join a transaction already present in ctx.
type Ledger interface {
	Deposit(ctx context.Context, userID, currency string, amount decimal.Decimal, reference string) error
	Withdraw(ctx context.Context, userID, currency string, amount decimal.Decimal, reference string) error
	Reserve(ctx context.Context, userID, currency string, amount decimal.Decimal, reference string) error
	Release(ctx context.Context, userID, currency string, amount decimal.Decimal, reference string) error
	Settle(ctx context.Context, leg SettleLeg) error
	Get(ctx context.Context, userID, currency string) (*Wallet, error)
}
