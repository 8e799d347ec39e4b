package registry

import (
	"context"
	"sync"

	marketv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/market/v1"
	orderv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/order/v1"
	"github.com/Salbajnr/blocktradepro-engine/pkg/errors"
	"github.com/Salbajnr/blocktradepro-engine/pkg/logger"
)

// Registry is the read-mostly trading pair lookup backing order admission.
// Active pairs are cached in memory; administrative writes go through the
// repository and refresh the cache.
type Registry struct {
	mu     sync.RWMutex
	repo   marketv1.Repository
	pairs  map[string]*marketv1.TradingPair
	logger logger.Interface
}

// NewRegistry creates a registry over the given repository.
func NewRegistry(repo marketv1.Repository, log logger.Interface) *Registry {
	return &Registry{
		repo:   repo,
		pairs:  make(map[string]*marketv1.TradingPair),
		logger: log,
	}
}

// Load caches all active pairs.
func (r *Registry) Load(ctx context.Context) error {
	pairs, err := r.repo.ListActive(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.pairs = make(map[string]*marketv1.TradingPair, len(pairs))
	for _, pair := range pairs {
		r.pairs[pair.Symbol] = pair
	}

	r.logger.Info("Trading pairs loaded", logger.Field{
		Key:   "count",
		Value: len(pairs),
	})

	return nil
}

// Get returns the cached pair for symbol.
func (r *Registry) Get(symbol string) (*marketv1.TradingPair, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pair, ok := r.pairs[symbol]
	if !ok {
		return nil, errors.NewErrorDetails("unknown trading pair", string(errors.OrderInvalidPair), "pair")
	}
	return pair, nil
}

// List returns all cached pairs.
func (r *Registry) List() []*marketv1.TradingPair {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*marketv1.TradingPair, 0, len(r.pairs))
	for _, pair := range r.pairs {
		out = append(out, pair)
	}
	return out
}

// ValidateOrder checks a submit request against its pair's rules before any
// funds are touched. Returns the pair on success.
func (r *Registry) ValidateOrder(req orderv1.SubmitRequest) (*marketv1.TradingPair, error) {
	pair, err := r.Get(req.Pair)
	if err != nil {
		return nil, err
	}

	switch req.Type {
	case orderv1.TypeLimit:
		if req.Price == nil {
			return nil, errors.NewErrorDetails("limit order requires a price", string(errors.OrderInvalidPayload), "price")
		}
		if err := pair.ValidateLimit(*req.Price, req.Amount); err != nil {
			return nil, err
		}
	case orderv1.TypeMarket:
		if req.Price != nil {
			return nil, errors.NewErrorDetails("market order cannot carry a price", string(errors.OrderInvalidPayload), "price")
		}
		if err := pair.ValidateMarket(req.Amount); err != nil {
			return nil, err
		}
	default:
		return nil, errors.NewErrorDetails("unknown order type", string(errors.OrderInvalidPayload), "type")
	}

	if req.Side != orderv1.SideBuy && req.Side != orderv1.SideSell {
		return nil, errors.NewErrorDetails("unknown order side", string(errors.OrderInvalidPayload), "side")
	}

	return pair, nil
}

// Create stores a new pair and caches it when active. Administrative path.
func (r *Registry) Create(ctx context.Context, pair *marketv1.TradingPair) error {
	if err := r.repo.Store(ctx, pair); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if pair.Active {
		r.pairs[pair.Symbol] = pair
	}
	return nil
}

// Deactivate soft-deletes a pair: new orders are rejected, resting state is
// untouched. Pairs are never physically deleted.
func (r *Registry) Deactivate(ctx context.Context, symbol string) error {
	pair, err := r.repo.GetBySymbol(ctx, symbol)
	if err != nil {
		return err
	}
	if pair == nil {
		return errors.NewErrorDetails("unknown trading pair", string(errors.OrderInvalidPair), "pair")
	}

	pair.Active = false
	if err := r.repo.Update(ctx, pair); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pairs, symbol)

	r.logger.Info("Trading pair deactivated", logger.Field{
		Key:   "pair",
		Value: symbol,
	})

	return nil
}
