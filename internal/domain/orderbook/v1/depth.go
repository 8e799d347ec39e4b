package orderbookv1

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DepthLevel is one aggregated price level of a depth snapshot.
type DepthLevel struct {
	Price  decimal.Decimal `json:"price"`
	Amount decimal.Decimal `json:"amount"`
	Orders int             `json:"orders"`
}

// Depth is a point-in-time view of one pair's book: bids best-first, asks
// best-first.
type Depth struct {
	Pair      string       `json:"pair"`
	Bids      []DepthLevel `json:"bids"`
	Asks      []DepthLevel `json:"asks"`
	Timestamp time.Time    `json:"timestamp"`
}

// DepthStore persists depth snapshots for downstream readers.
//
//go:generate mockgen -source=depth.go -destination=mock/depth_mock.go -package=orderbookv1_mock
type DepthStore interface {
	Store(ctx context.Context, depth *Depth) error
	Load(ctx context.Context, pair string) (*Depth, error)
}
