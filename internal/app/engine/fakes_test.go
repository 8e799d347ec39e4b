package engine

import (
	"context"
	goerrors "errors"
	"sort"
	"sync"
	"time"

	eventv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/event/v1"
	marketv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/market/v1"
	orderv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/order/v1"
	orderbookv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/orderbook/v1"
	tradev1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/trade/v1"
	walletv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/wallet/v1"
	"github.com/Salbajnr/blocktradepro-engine/pkg/errors"
	"github.com/shopspring/decimal"
)

// memState backs all the in-memory fakes. Transactions snapshot and restore
// it, mirroring what the database does for the real repositories.
type memState struct {
	wallets map[string]*walletv1.Wallet
	orders  map[string]*orderv1.Order
	trades  []*tradev1.Trade

	failTradeStore bool
}

func newMemState() *memState {
	return &memState{
		wallets: make(map[string]*walletv1.Wallet),
		orders:  make(map[string]*orderv1.Order),
	}
}

func (s *memState) snapshot() *memState {
	clone := newMemState()
	for k, v := range s.wallets {
		w := *v
		clone.wallets[k] = &w
	}
	for k, v := range s.orders {
		o := *v
		clone.orders[k] = &o
	}
	clone.trades = append([]*tradev1.Trade(nil), s.trades...)
	return clone
}

func (s *memState) restore(from *memState) {
	s.wallets = from.wallets
	s.orders = from.orders
	s.trades = from.trades
}

type memTxRunner struct {
	state *memState
	depth int
}

func (m *memTxRunner) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.depth++
	var saved *memState
	if m.depth == 1 {
		saved = m.state.snapshot()
	}

	err := fn(ctx)
	m.depth--

	if err != nil && saved != nil {
		m.state.restore(saved)
	}
	return err
}

func walletKey(userID, currency string) string { return userID + "/" + currency }

type memWalletRepo struct{ state *memState }

func (r *memWalletRepo) Get(_ context.Context, userID, currency string) (*walletv1.Wallet, error) {
	w, ok := r.state.wallets[walletKey(userID, currency)]
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
	if _, ok := r.state.wallets[key]; !ok {
		r.state.wallets[key] = &walletv1.Wallet{
			UserID:    userID,
			Currency:  currency,
			Available: decimal.Zero,
			Reserved:  decimal.Zero,
		}
	}
	return nil
}

func (r *memWalletRepo) UpdateBalances(_ context.Context, userID, currency string, available, reserved decimal.Decimal) error {
	w, ok := r.state.wallets[walletKey(userID, currency)]
	if !ok {
		return errors.NewErrorDetails("wallet not found", string(errors.WalletNotFound), "wallet")
	}
	w.Available = available
	w.Reserved = reserved
	return nil
}

func (r *memWalletRepo) ListByUser(_ context.Context, userID string) ([]*walletv1.Wallet, error) {
	out := []*walletv1.Wallet{}
	for _, w := range r.state.wallets {
		if w.UserID == userID {
			clone := *w
			out = append(out, &clone)
		}
	}
	return out, nil
}

type memEntryRepo struct{ entries []*walletv1.LedgerEntry }

func (r *memEntryRepo) Store(_ context.Context, entry *walletv1.LedgerEntry) error {
	clone := *entry
	r.entries = append(r.entries, &clone)
	return nil
}

func (r *memEntryRepo) List(_ context.Context, filter walletv1.EntryFilter) ([]*walletv1.LedgerEntry, error) {
	out := []*walletv1.LedgerEntry{}
	for _, e := range r.entries {
		if filter.Reference != "" && e.Reference != filter.Reference {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

type memOrderRepo struct{ state *memState }

func (r *memOrderRepo) Store(_ context.Context, order *orderv1.Order) error {
	clone := *order
	r.state.orders[order.ID] = &clone
	return nil
}

func (r *memOrderRepo) Update(_ context.Context, order *orderv1.Order) error {
	if _, ok := r.state.orders[order.ID]; !ok {
		return errors.NewErrorDetails("order not found", string(errors.OrderNotFound), "id")
	}
	clone := *order
	r.state.orders[order.ID] = &clone
	return nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id string) (*orderv1.Order, error) {
	order, ok := r.state.orders[id]
	if !ok {
		return nil, errors.NewErrorDetails("order not found", string(errors.OrderNotFound), "id")
	}
	clone := *order
	return &clone, nil
}

func (r *memOrderRepo) List(_ context.Context, filter orderv1.Filter) ([]*orderv1.Order, error) {
	out := []*orderv1.Order{}
	for _, order := range r.state.orders {
		if filter.UserID != "" && order.UserID != filter.UserID {
			continue
		}
		if filter.Pair != "" && order.Pair != filter.Pair {
			continue
		}
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		if filter.OpenOnly && !order.IsOpen() {
			continue
		}
		clone := *order
		out = append(out, &clone)
	}
	return out, nil
}

func (r *memOrderRepo) ListOpenByPair(_ context.Context, pair string) ([]*orderv1.Order, error) {
	out := []*orderv1.Order{}
	for _, order := range r.state.orders {
		if order.Pair != pair || !order.IsOpen() {
			continue
		}
		clone := *order
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

type memTradeRepo struct{ state *memState }

func (r *memTradeRepo) Store(_ context.Context, trade *tradev1.Trade) error {
	if r.state.failTradeStore {
		return goerrors.New("disk full")
	}
	clone := *trade
	r.state.trades = append(r.state.trades, &clone)
	return nil
}

func (r *memTradeRepo) GetByID(_ context.Context, id string) (*tradev1.Trade, error) {
	for _, trade := range r.state.trades {
		if trade.ID == id {
			clone := *trade
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memTradeRepo) List(_ context.Context, filter tradev1.Filter) ([]*tradev1.Trade, error) {
	out := []*tradev1.Trade{}
	for _, trade := range r.state.trades {
		if filter.Pair != "" && trade.Pair != filter.Pair {
			continue
		}
		if filter.UserID != "" && trade.MakerUserID != filter.UserID && trade.TakerUserID != filter.UserID {
			continue
		}
		clone := *trade
		out = append(out, &clone)
	}
	return out, nil
}

type memPairRepo struct{ pairs map[string]*marketv1.TradingPair }

func (r *memPairRepo) GetBySymbol(_ context.Context, symbol string) (*marketv1.TradingPair, error) {
	return r.pairs[symbol], nil
}

func (r *memPairRepo) ListActive(_ context.Context) ([]*marketv1.TradingPair, error) {
	out := []*marketv1.TradingPair{}
	for _, pair := range r.pairs {
		if pair.Active {
			out = append(out, pair)
		}
	}
	return out, nil
}

func (r *memPairRepo) Store(_ context.Context, pair *marketv1.TradingPair) error {
	r.pairs[pair.Symbol] = pair
	return nil
}

func (r *memPairRepo) Update(_ context.Context, pair *marketv1.TradingPair) error {
	r.pairs[pair.Symbol] = pair
	return nil
}

type memDepthStore struct {
	mu     sync.Mutex
	depths map[string]*orderbookv1.Depth
	stores int
}

func newMemDepthStore() *memDepthStore {
	return &memDepthStore{depths: make(map[string]*orderbookv1.Depth)}
}

func (s *memDepthStore) Store(_ context.Context, depth *orderbookv1.Depth) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.depths[depth.Pair] = depth
	s.stores++
	return nil
}

func (s *memDepthStore) Load(_ context.Context, pair string) (*orderbookv1.Depth, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.depths[pair], nil
}

func (s *memDepthStore) storeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stores
}

type fakePublisher struct{ events []*eventv1.Event }

func (p *fakePublisher) Publish(_ context.Context, event *eventv1.Event) error {
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) ofType(eventType eventv1.Type) []*eventv1.Event {
	out := []*eventv1.Event{}
	for _, event := range p.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

func btcUsdtPair() *marketv1.TradingPair {
	now := time.Now().UTC()
	return &marketv1.TradingPair{
		Symbol:          "BTC-USDT",
		BaseCurrency:    "BTC",
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
	}
}
