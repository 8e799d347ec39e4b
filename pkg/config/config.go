package config

import (
	"time"

	"github.com/Salbajnr/blocktradepro-engine/pkg/postgresql"
	"github.com/Salbajnr/blocktradepro-engine/pkg/redis"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// MustLoad loads the configuration from environment variables and .env file.
func MustLoad[T any](cfg T) {
	_ = godotenv.Load() // Load environment variables from .env file

	env.Must(cfg, env.Parse(cfg))
}

// Load loads the configuration from environment variables and .env file.
func Load[T any](cfg T) error {
	_ = godotenv.Load()

	if err := env.Parse(cfg); err != nil {
		return err
	}

	return nil
}

// Config holds the configuration for the engine service.
type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Postgres postgresql.Config `envPrefix:"POSTGRES_"`
	Redis    redis.Config      `envPrefix:"REDIS_"`
	Kafka    KafkaConfig       `envPrefix:"KAFKA_"`
	Engine   EngineConfig      `envPrefix:"ENGINE_"`
}

// KafkaConfig holds the configuration for the event stream producer.
type KafkaConfig struct {
	Brokers []string `env:"BROKERS" envDefault:"localhost:9092"`
	Topic   string   `env:"TOPIC" envDefault:"blocktradepro.engine.events"`
}

// EngineConfig holds matching engine tunables.
type EngineConfig struct {
	// FeeUserID is the house account credited with trading fees.
	FeeUserID string `env:"FEE_USER_ID" envDefault:"house"`

	// SlippageBufferBps pads the reservation of market buy orders submitted
	// without a price cap, in basis points over the best ask.
	SlippageBufferBps int64 `env:"SLIPPAGE_BUFFER_BPS" envDefault:"100"`

	// DepthSnapshotInterval controls how often book depth is written to redis.
	DepthSnapshotInterval time.Duration `env:"DEPTH_SNAPSHOT_INTERVAL" envDefault:"2s"`

	// DepthLevels is the number of price levels per side in depth snapshots.
	DepthLevels int `env:"DEPTH_LEVELS" envDefault:"25"`
}
