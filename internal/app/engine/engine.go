package engine

import (
	"context"
	"sync"
	"time"

	eventv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/event/v1"
	marketv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/market/v1"
	orderv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/order/v1"
	orderbookv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/orderbook/v1"
	settlementv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/settlement/v1"
	tradev1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/trade/v1"
	walletv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/wallet/v1"
	"github.com/Salbajnr/blocktradepro-engine/internal/usecase/orderbook"
	"github.com/Salbajnr/blocktradepro-engine/pkg/errors"
	"github.com/Salbajnr/blocktradepro-engine/pkg/logger"
)

// PairRegistry is the trading pair lookup the engine admits orders against.
type PairRegistry interface {
	Get(symbol string) (*marketv1.TradingPair, error)
	List() []*marketv1.TradingPair
	ValidateOrder(req orderv1.SubmitRequest) (*marketv1.TradingPair, error)
}

// pairWorker serializes all mutations of one pair's book. The per-pair mutex
// gives each pair its own matching sequence while wallets stay safe across
// pairs through the ledger's row locks.
type pairWorker struct {
	mu   sync.Mutex
	pair *marketv1.TradingPair
	book *orderbook.Book
}

// Engine is the order matching and settlement engine. It owns one in-memory
// book per active pair; the database is the source of truth for orders,
// trades and wallets, and the books are rebuilt from it on start.
type Engine struct {
	registry   PairRegistry
	orders     orderv1.Repository
	trades     tradev1.Repository
	ledger     walletv1.Ledger
	settlement settlementv1.Coordinator
	publisher  eventv1.Publisher
	depthStore orderbookv1.DepthStore
	logger     logger.Interface
	options    *Options

	mu      sync.RWMutex
	workers map[string]*pairWorker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewEngine creates an engine with the provided dependencies.
func NewEngine(
	registry PairRegistry,
	orders orderv1.Repository,
	trades tradev1.Repository,
	ledger walletv1.Ledger,
	settlement settlementv1.Coordinator,
	publisher eventv1.Publisher,
	depthStore orderbookv1.DepthStore,
	log logger.Interface,
	options *Options,
) *Engine {
	if options == nil {
		options = DefaultOptions()
	}

	return &Engine{
		registry:   registry,
		orders:     orders,
		trades:     trades,
		ledger:     ledger,
		settlement: settlement,
		publisher:  publisher,
		depthStore: depthStore,
		logger:     log,
		options:    options,
		workers:    make(map[string]*pairWorker),
	}
}

// Start rebuilds one book per active pair from persisted open orders and
// launches the depth snapshot loop.
func (e *Engine) Start(ctx context.Context) error {
	e.ctx, e.cancel = context.WithCancel(ctx)

	for _, pair := range e.registry.List() {
		worker := &pairWorker{
			pair: pair,
			book: orderbook.NewBook(pair.Symbol),
		}

		open, err := e.orders.ListOpenByPair(ctx, pair.Symbol)
		if err != nil {
			return err
		}
		if err := worker.book.Restore(open); err != nil {
			return err
		}

		e.mu.Lock()
		e.workers[pair.Symbol] = worker
		e.mu.Unlock()

		e.logger.Info("Order book restored",
			logger.Field{Key: "pair", Value: pair.Symbol},
			logger.Field{Key: "restingOrders", Value: worker.book.Size()},
		)
	}

	e.wg.Add(1)
	go e.runDepthSnapshots()

	e.logger.Info("Engine started", logger.Field{
		Key:   "pairs",
		Value: len(e.workers),
	})

	return nil
}

// Stop shuts the engine down, waiting for background loops up to ctx's deadline.
func (e *Engine) Stop(ctx context.Context) error {
	if e.cancel != nil {
		e.cancel()
	}

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.logger.Info("Engine stopped")
		return nil
	case <-ctx.Done():
		e.logger.Warn("Engine stop timeout exceeded")
		return ctx.Err()
	}
}

// runDepthSnapshots periodically writes each pair's aggregated depth to the
// depth store so read traffic never contends with matching.
func (e *Engine) runDepthSnapshots() {
	defer e.wg.Done()

	if e.depthStore == nil {
		return
	}

	ticker := time.NewTicker(e.options.DepthSnapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.ctx.Done():
			return
		case <-ticker.C:
			e.storeDepthSnapshots()
		}
	}
}

func (e *Engine) storeDepthSnapshots() {
	e.mu.RLock()
	workers := make([]*pairWorker, 0, len(e.workers))
	for _, worker := range e.workers {
		workers = append(workers, worker)
	}
	e.mu.RUnlock()

	for _, worker := range workers {
		// Depth walks resting orders that matching mutates, so it needs the
		// same lock submissions hold.
		worker.mu.Lock()
		depth := worker.book.Depth(e.options.DepthLevels)
		worker.mu.Unlock()

		if err := e.depthStore.Store(e.ctx, depth); err != nil {
			e.logger.ErrorContext(e.ctx, err, logger.Field{
				Key:   "pair",
				Value: worker.book.Pair(),
			})
		}
	}
}

// worker returns the pair's worker, or a coded error for unknown pairs.
func (e *Engine) worker(pair string) (*pairWorker, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	worker, ok := e.workers[pair]
	if !ok {
		return nil, errors.NewErrorDetails("unknown trading pair", string(errors.OrderInvalidPair), "pair")
	}
	return worker, nil
}

// emit publishes an event best-effort. Matching and settlement never fail on
// a publisher error.
func (e *Engine) emit(ctx context.Context, event *eventv1.Event) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "eventType",
			Value: string(event.Type),
		})
	}
}

// orderEventType maps an order's status to its lifecycle event type.
func orderEventType(status orderv1.Status) eventv1.Type {
	switch status {
	case orderv1.StatusFilled:
		return eventv1.OrderFilled
	case orderv1.StatusPartiallyFilled:
		return eventv1.OrderPartiallyFilled
	case orderv1.StatusCancelled:
		return eventv1.OrderCancelled
	default:
		return eventv1.OrderCreated
	}
}
