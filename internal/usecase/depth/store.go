package depth

import (
	"context"
	"encoding/json"

	orderbookv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/orderbook/v1"
	"github.com/Salbajnr/blocktradepro-engine/pkg/errors"
	"github.com/Salbajnr/blocktradepro-engine/pkg/logger"
	"github.com/Salbajnr/blocktradepro-engine/pkg/redis"
)

// Store keeps the latest depth snapshot per pair in Redis so read paths never
// touch the matching loop.
type Store struct {
	redisclient redis.Client
	logger      logger.Interface
}

var _ orderbookv1.DepthStore = (*Store)(nil)

// NewStore creates a depth snapshot store over the given Redis client.
func NewStore(redisclient redis.Client, log logger.Interface) *Store {
	return &Store{
		redisclient: redisclient,
		logger:      log,
	}
}

// Store overwrites the snapshot for the depth's pair.
func (s *Store) Store(ctx context.Context, depth *orderbookv1.Depth) error {
	buf, err := json.Marshal(depth)
	if err != nil {
		return errors.NewTracer("depth_marshal_error").Wrap(err)
	}

	if err := s.redisclient.Set(ctx, s.key(depth.Pair), buf, 0); err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "pair",
			Value: depth.Pair,
		})
		return errors.NewTracer("depth_store_error").Wrap(err)
	}
	return nil
}

// Load returns the latest snapshot for pair, or nil when none was stored yet.
func (s *Store) Load(ctx context.Context, pair string) (*orderbookv1.Depth, error) {
	data, err := s.redisclient.Get(ctx, s.key(pair))
	if err != nil {
		return nil, errors.NewTracer("depth_load_error").Wrap(err)
	}
	if data == "" {
		return nil, nil
	}

	var depth orderbookv1.Depth
	if err := json.Unmarshal([]byte(data), &depth); err != nil {
		return nil, errors.NewTracer("depth_unmarshal_error").Wrap(err)
	}
	return &depth, nil
}

func (s *Store) key(pair string) string {
	return "depth:" + pair
}
