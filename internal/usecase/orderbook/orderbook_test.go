package orderbook

import (
	"testing"
	"time"

	orderv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/order/v1"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bookOrder(id string, side orderv1.Side, price, amount string, createdAt time.Time) *orderv1.Order {
	p := decimal.RequireFromString(price)
	return &orderv1.Order{
		ID:        id,
		UserID:    "user-" + id,
		Pair:      "BTC-USDT",
		Side:      side,
		Type:      orderv1.TypeLimit,
		Price:     &p,
		Amount:    decimal.RequireFromString(amount),
		Filled:    decimal.Zero,
		Status:    orderv1.StatusOpen,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestBookInsert(t *testing.T) {
	now := time.Now().UTC()
	book := NewBook("BTC-USDT")

	require.NoError(t, book.Insert(bookOrder("a", orderv1.SideBuy, "100", "1", now)))
	assert.Equal(t, 1, book.Size())

	// Duplicate ids are rejected.
	assert.Error(t, book.Insert(bookOrder("a", orderv1.SideBuy, "100", "1", now)))

	// Market orders never rest.
	market := bookOrder("m", orderv1.SideBuy, "100", "1", now)
	market.Price = nil
	assert.Error(t, book.Insert(market))

	// Fully executed orders have nothing to rest.
	done := bookOrder("d", orderv1.SideBuy, "100", "1", now)
	done.Filled = done.Amount
	assert.Error(t, book.Insert(done))
}

func TestBookBestBidAsk(t *testing.T) {
	now := time.Now().UTC()
	book := NewBook("BTC-USDT")

	require.NoError(t, book.Insert(bookOrder("b1", orderv1.SideBuy, "99", "1", now)))
	require.NoError(t, book.Insert(bookOrder("b2", orderv1.SideBuy, "101", "1", now)))
	require.NoError(t, book.Insert(bookOrder("a1", orderv1.SideSell, "105", "1", now)))
	require.NoError(t, book.Insert(bookOrder("a2", orderv1.SideSell, "103", "1", now)))

	assert.True(t, book.BestBid().Price.Equal(decimal.RequireFromString("101")))
	assert.True(t, book.BestAsk().Price.Equal(decimal.RequireFromString("103")))
}

func TestBookRemove(t *testing.T) {
	now := time.Now().UTC()
	book := NewBook("BTC-USDT")

	require.NoError(t, book.Insert(bookOrder("a", orderv1.SideSell, "100", "1", now)))

	removed, err := book.Remove("a")
	require.NoError(t, err)
	assert.Equal(t, "a", removed.ID)
	assert.Equal(t, 0, book.Size())
	assert.Nil(t, book.BestAsk())

	_, err = book.Remove("a")
	assert.Error(t, err)
}

func TestBookPeekCrossable(t *testing.T) {
	now := time.Now().UTC()
	book := NewBook("BTC-USDT")

	require.NoError(t, book.Insert(bookOrder("ask-old", orderv1.SideSell, "100", "1", now)))
	require.NoError(t, book.Insert(bookOrder("ask-new", orderv1.SideSell, "100", "1", now.Add(time.Second))))
	require.NoError(t, book.Insert(bookOrder("ask-high", orderv1.SideSell, "110", "1", now)))
	require.NoError(t, book.Insert(bookOrder("bid", orderv1.SideBuy, "95", "1", now)))

	// Best price wins; time breaks the tie at the best level.
	limit := decimal.RequireFromString("100")
	maker := book.PeekCrossable(orderv1.SideBuy, &limit)
	require.NotNil(t, maker)
	assert.Equal(t, "ask-old", maker.ID)

	// A buy below the best ask does not cross.
	low := decimal.RequireFromString("99")
	assert.Nil(t, book.PeekCrossable(orderv1.SideBuy, &low))

	// A market order crosses unconditionally.
	maker = book.PeekCrossable(orderv1.SideBuy, nil)
	require.NotNil(t, maker)
	assert.Equal(t, "ask-old", maker.ID)

	// A sell crosses the bid at or above its limit.
	sellLimit := decimal.RequireFromString("95")
	maker = book.PeekCrossable(orderv1.SideSell, &sellLimit)
	require.NotNil(t, maker)
	assert.Equal(t, "bid", maker.ID)

	tooHigh := decimal.RequireFromString("96")
	assert.Nil(t, book.PeekCrossable(orderv1.SideSell, &tooHigh))
}

func TestBookDepth(t *testing.T) {
	now := time.Now().UTC()
	book := NewBook("BTC-USDT")

	require.NoError(t, book.Insert(bookOrder("b1", orderv1.SideBuy, "99", "1", now)))
	require.NoError(t, book.Insert(bookOrder("b2", orderv1.SideBuy, "99", "2", now)))
	require.NoError(t, book.Insert(bookOrder("b3", orderv1.SideBuy, "98", "1", now)))
	require.NoError(t, book.Insert(bookOrder("a1", orderv1.SideSell, "101", "3", now)))

	depth := book.Depth(0)
	require.Len(t, depth.Bids, 2)
	require.Len(t, depth.Asks, 1)

	// Bids best-first with per-level aggregation.
	assert.True(t, depth.Bids[0].Price.Equal(decimal.RequireFromString("99")))
	assert.True(t, depth.Bids[0].Amount.Equal(decimal.RequireFromString("3")))
	assert.Equal(t, 2, depth.Bids[0].Orders)

	limited := book.Depth(1)
	assert.Len(t, limited.Bids, 1)
}

func TestBookRestore(t *testing.T) {
	now := time.Now().UTC()
	book := NewBook("BTC-USDT")

	filled := bookOrder("done", orderv1.SideBuy, "99", "1", now)
	filled.Filled = filled.Amount
	filled.Status = orderv1.StatusFilled

	orders := []*orderv1.Order{
		bookOrder("a", orderv1.SideBuy, "100", "1", now),
		bookOrder("b", orderv1.SideSell, "105", "2", now.Add(time.Second)),
		filled,
	}

	require.NoError(t, book.Restore(orders))
	assert.Equal(t, 2, book.Size())
	assert.Nil(t, book.Get("done"))
	assert.NotNil(t, book.Get("a"))
}
