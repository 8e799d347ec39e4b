package orderv1

import (
	"testing"

	marketv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/market/v1"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPair() *marketv1.TradingPair {
	return &marketv1.TradingPair{
		Symbol:        "BTC-USDT",
		BaseCurrency:  "BTC",
		QuoteCurrency: "USDT",
		MakerFeeRate:  decimal.RequireFromString("0.001"),
		TakerFeeRate:  decimal.RequireFromString("0.002"),
		Active:        true,
	}
}

func TestNewOrderCapturesFeeSchedule(t *testing.T) {
	price := decimal.RequireFromString("50000")
	pair := testPair()

	order := NewOrder(SubmitRequest{
		UserID: "alice",
		Pair:   "BTC-USDT",
		Side:   SideBuy,
		Type:   TypeLimit,
		Price:  &price,
		Amount: decimal.RequireFromString("0.5"),
	}, pair)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, StatusOpen, order.Status)
	assert.True(t, order.MakerFeeRate.Equal(pair.MakerFeeRate))
	assert.True(t, order.TakerFeeRate.Equal(pair.TakerFeeRate))
	assert.True(t, order.Filled.IsZero())

	// Changing the pair's schedule afterwards must not touch the order.
	pair.MakerFeeRate = decimal.RequireFromString("0.005")
	assert.True(t, order.MakerFeeRate.Equal(decimal.RequireFromString("0.001")))
}

func TestOrderApplyFill(t *testing.T) {
	price := decimal.RequireFromString("100")
	order := NewOrder(SubmitRequest{
		UserID: "alice",
		Side:   SideSell,
		Type:   TypeLimit,
		Price:  &price,
		Amount: decimal.RequireFromString("2"),
	}, testPair())

	order.ApplyFill(decimal.RequireFromString("0.5"))
	assert.Equal(t, StatusPartiallyFilled, order.Status)
	assert.True(t, order.Remaining().Equal(decimal.RequireFromString("1.5")))
	assert.True(t, order.IsOpen())
	assert.True(t, order.CanCancel())

	order.ApplyFill(decimal.RequireFromString("1.5"))
	assert.Equal(t, StatusFilled, order.Status)
	assert.True(t, order.Remaining().IsZero())
	assert.False(t, order.IsOpen())
	assert.False(t, order.CanCancel())
}

func TestOrderWithFillDoesNotMutate(t *testing.T) {
	price := decimal.RequireFromString("100")
	order := NewOrder(SubmitRequest{
		UserID: "alice",
		Side:   SideBuy,
		Type:   TypeLimit,
		Price:  &price,
		Amount: decimal.RequireFromString("2"),
	}, testPair())

	staged := order.WithFill(decimal.RequireFromString("2"))
	require.NotNil(t, staged)

	assert.Equal(t, StatusFilled, staged.Status)
	assert.True(t, staged.Remaining().IsZero())

	// The live order is untouched until the caller applies the fill.
	assert.Equal(t, StatusOpen, order.Status)
	assert.True(t, order.Filled.IsZero())
}

func TestSideOpposite(t *testing.T) {
	assert.Equal(t, SideSell, SideBuy.Opposite())
	assert.Equal(t, SideBuy, SideSell.Opposite())
}
