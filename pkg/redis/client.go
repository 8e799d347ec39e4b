package redis

import (
	"context"
	"time"

	"github.com/Salbajnr/blocktradepro-engine/pkg/errors"
	"github.com/Salbajnr/blocktradepro-engine/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// Client is the subset of Redis operations the engine relies on.
//
//go:generate mockgen -source=client.go -destination=mock/client_mock.go -package=redis_mock
type Client interface {
	Connect(ctx context.Context) error
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Close() error
}

type client struct {
	logger  logger.Interface
	config  *Config
	cmdable *redis.Client
}

// NewClient creates a new Redis client with the provided logger and configuration.
func NewClient(log logger.Interface, config *Config) Client {
	return &client{
		logger: log,
		config: config,
	}
}

// Connect establishes the connection and verifies it with a ping.
func (c *client) Connect(ctx context.Context) error {
	if c.config == nil {
		return errors.NewTracer("redis config is nil")
	}
	if c.config.Addr == "" {
		return errors.NewTracer("redis address is empty")
	}

	c.cmdable = redis.NewClient(&redis.Options{
		Addr:            c.config.Addr,
		Username:        c.config.Username,
		Password:        c.config.Password,
		DB:              c.config.DB,
		MaxRetries:      c.config.MaxRetries,
		MinRetryBackoff: c.config.MinRetryBackoff,
		MaxRetryBackoff: c.config.MaxRetryBackoff,
		DialTimeout:     c.config.ConnectTimeout,
		ReadTimeout:     c.config.ConnectTimeout,
		WriteTimeout:    c.config.ConnectTimeout,
		PoolSize:        c.config.PoolSize,
		MinIdleConns:    c.config.MinIdleConns,
	})

	if err := c.cmdable.Ping(ctx).Err(); err != nil {
		return errors.NewTracer("redis ping failed").Wrap(err)
	}

	c.logger.Info("Connected to redis", logger.Field{
		Key:   "addr",
		Value: c.config.Addr,
	})

	return nil
}

// Get returns the value at key. A missing key returns an empty string, not an error.
func (c *client) Get(ctx context.Context, key string) (string, error) {
	val, err := c.cmdable.Get(ctx, c.config.PrefixKey+key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", errors.TracerFromError(err)
	}
	return val, nil
}

// Set stores value at key with the given TTL. Zero TTL means no expiry.
func (c *client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if err := c.cmdable.Set(ctx, c.config.PrefixKey+key, value, ttl).Err(); err != nil {
		return errors.TracerFromError(err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (c *client) Close() error {
	if c.cmdable == nil {
		return nil
	}
	return c.cmdable.Close()
}
