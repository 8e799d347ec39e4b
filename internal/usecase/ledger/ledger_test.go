package ledger

import (
	"context"
	"testing"
	"time"

	walletv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/wallet/v1"
	"github.com/Salbajnr/blocktradepro-engine/pkg/errors"
	"github.com/Salbajnr/blocktradepro-engine/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type passthroughTx struct{}

func (passthroughTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memWalletRepo struct {
	wallets map[string]*walletv1.Wallet
}

func walletKey(userID, currency string) string {
	return userID + "/" + currency
}

func newMemWalletRepo() *memWalletRepo {
	return &memWalletRepo{wallets: make(map[string]*walletv1.Wallet)}
}

func (r *memWalletRepo) Get(_ context.Context, userID, currency string) (*walletv1.Wallet, error) {
	w, ok := r.wallets[walletKey(userID, currency)]
	if !ok {
		return nil, nil
	}
	clone := *w
	return &clone, nil
}

func (r *memWalletRepo) GetForUpdate(ctx context.Context, userID, currency string) (*walletv1.Wallet, error) {
	return r.Get(ctx, userID, currency)
}

func (r *memWalletRepo) CreateIfAbsent(_ context.Context, userID, currency string) error {
	key := walletKey(userID, currency)
	if _, ok := r.wallets[key]; !ok {
		now := time.Now().UTC()
		r.wallets[key] = &walletv1.Wallet{
			UserID:    userID,
			Currency:  currency,
			Available: decimal.Zero,
			Reserved:  decimal.Zero,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	return nil
}

func (r *memWalletRepo) UpdateBalances(_ context.Context, userID, currency string, available, reserved decimal.Decimal) error {
	w, ok := r.wallets[walletKey(userID, currency)]
	if !ok {
		return errors.NewErrorDetails("wallet not found", string(errors.WalletNotFound), "wallet")
	}
	w.Available = available
	w.Reserved = reserved
	w.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memWalletRepo) ListByUser(_ context.Context, userID string) ([]*walletv1.Wallet, error) {
	out := []*walletv1.Wallet{}
	for _, w := range r.wallets {
		if w.UserID == userID {
			clone := *w
			out = append(out, &clone)
		}
	}
	return out, nil
}

type memEntryRepo struct {
	entries []*walletv1.LedgerEntry
}

func (r *memEntryRepo) Store(_ context.Context, entry *walletv1.LedgerEntry) error {
	clone := *entry
	r.entries = append(r.entries, &clone)
	return nil
}

func (r *memEntryRepo) List(_ context.Context, filter walletv1.EntryFilter) ([]*walletv1.LedgerEntry, error) {
	out := []*walletv1.LedgerEntry{}
	for _, e := range r.entries {
		if filter.UserID != "" && e.UserID != filter.UserID {
			continue
		}
		if filter.Currency != "" && e.Currency != filter.Currency {
			continue
		}
		if filter.Reference != "" && e.Reference != filter.Reference {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

type ledgerFixture struct {
	ledger  *Ledger
	wallets *memWalletRepo
	entries *memEntryRepo
}

func setupLedger(t *testing.T) *ledgerFixture {
	log, err := logger.NewLogger()
	require.NoError(t, err)

	wallets := newMemWalletRepo()
	entries := &memEntryRepo{}

	return &ledgerFixture{
		ledger:  NewLedger(passthroughTx{}, wallets, entries, log),
		wallets: wallets,
		entries: entries,
	}
}

func (f *ledgerFixture) balances(t *testing.T, userID, currency string) (decimal.Decimal, decimal.Decimal) {
	w, err := f.ledger.Get(context.Background(), userID, currency)
	require.NoError(t, err)
	require.NotNil(t, w)
	return w.Available, w.Reserved
}

func TestLedgerDepositWithdraw(t *testing.T) {
	ctx := context.Background()
	f := setupLedger(t)

	require.NoError(t, f.ledger.Deposit(ctx, "alice", "USDT", decimal.RequireFromString("1000"), "dep-1"))

	available, reserved := f.balances(t, "alice", "USDT")
	assert.True(t, available.Equal(decimal.RequireFromString("1000")))
	assert.True(t, reserved.IsZero())

	require.NoError(t, f.ledger.Withdraw(ctx, "alice", "USDT", decimal.RequireFromString("400"), "wd-1"))

	available, _ = f.balances(t, "alice", "USDT")
	assert.True(t, available.Equal(decimal.RequireFromString("600")))

	err := f.ledger.Withdraw(ctx, "alice", "USDT", decimal.RequireFromString("601"), "wd-2")
	assert.True(t, errors.ErrorCodeEquals(err, errors.InsufficientFunds))

	entries, err := f.entries.List(ctx, walletv1.EntryFilter{UserID: "alice"})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestLedgerReserveRelease(t *testing.T) {
	ctx := context.Background()
	f := setupLedger(t)

	require.NoError(t, f.ledger.Deposit(ctx, "alice", "USDT", decimal.RequireFromString("100"), "dep-1"))

	require.NoError(t, f.ledger.Reserve(ctx, "alice", "USDT", decimal.RequireFromString("60"), "order-1"))
	available, reserved := f.balances(t, "alice", "USDT")
	assert.True(t, available.Equal(decimal.RequireFromString("40")))
	assert.True(t, reserved.Equal(decimal.RequireFromString("60")))

	// Overdrawing the available balance is refused.
	err := f.ledger.Reserve(ctx, "alice", "USDT", decimal.RequireFromString("41"), "order-2")
	assert.True(t, errors.ErrorCodeEquals(err, errors.InsufficientFunds))

	require.NoError(t, f.ledger.Release(ctx, "alice", "USDT", decimal.RequireFromString("60"), "order-1"))
	available, reserved = f.balances(t, "alice", "USDT")
	assert.True(t, available.Equal(decimal.RequireFromString("100")))
	assert.True(t, reserved.IsZero())

	// Releasing more than is reserved is an accounting bug, not caller input.
	err = f.ledger.Release(ctx, "alice", "USDT", decimal.RequireFromString("1"), "order-1")
	assert.True(t, errors.ErrorCodeEquals(err, errors.WalletInvariantViolation))
}

func TestLedgerReserveWithoutWallet(t *testing.T) {
	f := setupLedger(t)

	err := f.ledger.Reserve(context.Background(), "ghost", "USDT", decimal.RequireFromString("1"), "order-1")
	assert.True(t, errors.ErrorCodeEquals(err, errors.InsufficientFunds))
}

func TestLedgerSettle(t *testing.T) {
	ctx := context.Background()
	f := setupLedger(t)

	require.NoError(t, f.ledger.Deposit(ctx, "alice", "USDT", decimal.RequireFromString("1000"), "dep-1"))
	require.NoError(t, f.ledger.Reserve(ctx, "alice", "USDT", decimal.RequireFromString("500"), "order-1"))

	require.NoError(t, f.ledger.Settle(ctx, walletv1.SettleLeg{
		FromUser:  "alice",
		ToUser:    "bob",
		FeeUser:   "house",
		Currency:  "USDT",
		Amount:    decimal.RequireFromString("500"),
		Fee:       decimal.RequireFromString("1"),
		Reference: "trade-1",
	}))

	aliceAvailable, aliceReserved := f.balances(t, "alice", "USDT")
	assert.True(t, aliceAvailable.Equal(decimal.RequireFromString("500")))
	assert.True(t, aliceReserved.IsZero())

	bobAvailable, _ := f.balances(t, "bob", "USDT")
	assert.True(t, bobAvailable.Equal(decimal.RequireFromString("499")))

	houseAvailable, _ := f.balances(t, "house", "USDT")
	assert.True(t, houseAvailable.Equal(decimal.RequireFromString("1")))

	entries, err := f.entries.List(ctx, walletv1.EntryFilter{Reference: "trade-1"})
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestLedgerSettleInsufficientReserved(t *testing.T) {
	ctx := context.Background()
	f := setupLedger(t)

	require.NoError(t, f.ledger.Deposit(ctx, "alice", "USDT", decimal.RequireFromString("100"), "dep-1"))
	require.NoError(t, f.ledger.Reserve(ctx, "alice", "USDT", decimal.RequireFromString("10"), "order-1"))

	err := f.ledger.Settle(ctx, walletv1.SettleLeg{
		FromUser:  "alice",
		ToUser:    "bob",
		FeeUser:   "house",
		Currency:  "USDT",
		Amount:    decimal.RequireFromString("50"),
		Fee:       decimal.Zero,
		Reference: "trade-1",
	})
	assert.True(t, errors.ErrorCodeEquals(err, errors.WalletInvariantViolation))
}

func TestLedgerConservation(t *testing.T) {
	// Total funds per currency only change through deposits and withdrawals;
	// reserve, release and settle just move them around.
	ctx := context.Background()
	f := setupLedger(t)

	require.NoError(t, f.ledger.Deposit(ctx, "alice", "USDT", decimal.RequireFromString("300"), "dep-1"))
	require.NoError(t, f.ledger.Deposit(ctx, "bob", "USDT", decimal.RequireFromString("200"), "dep-2"))

	require.NoError(t, f.ledger.Reserve(ctx, "alice", "USDT", decimal.RequireFromString("120"), "order-1"))
	require.NoError(t, f.ledger.Settle(ctx, walletv1.SettleLeg{
		FromUser:  "alice",
		ToUser:    "bob",
		FeeUser:   "house",
		Currency:  "USDT",
		Amount:    decimal.RequireFromString("120"),
		Fee:       decimal.RequireFromString("0.24"),
		Reference: "trade-1",
	}))

	total := decimal.Zero
	for _, user := range []string{"alice", "bob", "house"} {
		w, err := f.ledger.Get(ctx, user, "USDT")
		require.NoError(t, err)
		if w != nil {
			total = total.Add(w.Total())
		}
	}
	assert.True(t, total.Equal(decimal.RequireFromString("500")), "total %s", total)
}
