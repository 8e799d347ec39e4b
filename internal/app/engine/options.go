package engine

import (
	"time"

	"github.com/Salbajnr/blocktradepro-engine/pkg/config"
)

// Options holds the engine tunables.
type Options struct {
	// SlippageBufferBps pads the reservation of market buy orders submitted
	// without a price cap, in basis points over the best ask.
	SlippageBufferBps int64

	// DepthSnapshotInterval controls how often book depth is written to the
	// depth store.
	DepthSnapshotInterval time.Duration

	// DepthLevels is the number of price levels per side in depth snapshots.
	DepthLevels int
}

// DefaultOptions returns the default engine options.
func DefaultOptions() *Options {
	return &Options{
		SlippageBufferBps:     100,
		DepthSnapshotInterval: 2 * time.Second,
		DepthLevels:           25,
	}
}

// OptionsFromConfig maps the engine config section to options.
func OptionsFromConfig(cfg config.EngineConfig) *Options {
	return &Options{
		SlippageBufferBps:     cfg.SlippageBufferBps,
		DepthSnapshotInterval: cfg.DepthSnapshotInterval,
		DepthLevels:           cfg.DepthLevels,
	}
}
