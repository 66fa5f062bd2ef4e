package match

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() (*Engine, *MemoryTradeSink) {
	pool := NewOrderPool(16)
	sink := NewMemoryTradeSink()
	return NewEngine(pool, sink), sink
}

func submit(e *Engine, pool *OrderPool, id uint64, side Side, price string, qty uint32) {
	o := pool.Acquire(id, side, decimal.RequireFromString(price), qty)
	e.OnEvent(o)
}

func TestEngineFullFillAtTheBid(t *testing.T) {
	e, sink := newTestEngine()
	submit(e, e.pool, 1, Buy, "100.00", 10)
	submit(e, e.pool, 2, Sell, "100.00", 10)

	require.Len(t, sink.Trades, 1)
	tr := sink.Trades[0]
	assert.Equal(t, uint64(1), tr.BuyOrderID)
	assert.Equal(t, uint64(2), tr.SellOrderID)
	assert.True(t, tr.Price.Equal(decimal.RequireFromString("100.00")))
	assert.Equal(t, uint32(10), tr.Quantity)

	assert.Equal(t, int64(0), e.book.Bids.orderCount())
	assert.Equal(t, int64(0), e.book.Asks.orderCount())
}

func TestEnginePartialFill(t *testing.T) {
	e, sink := newTestEngine()
	submit(e, e.pool, 1, Buy, "100.00", 10)
	submit(e, e.pool, 2, Sell, "100.00", 4)

	require.Len(t, sink.Trades, 1)
	assert.Equal(t, uint32(4), sink.Trades[0].Quantity)

	assert.Equal(t, int64(1), e.book.Bids.orderCount())
	resting := e.book.Bids.peekHead()
	require.NotNil(t, resting)
	assert.Equal(t, uint32(6), resting.Remaining)
	assert.Equal(t, int64(0), e.book.Asks.orderCount())
}

// Price-time priority: the resting buy is older than the arriving
// sell, so the cross executes at the resting order's price (100.00),
// not the incoming sell's price (99.00).
func TestEnginePriceTimePriorityExecutesAtMakerPrice(t *testing.T) {
	e, sink := newTestEngine()
	submit(e, e.pool, 1, Buy, "100.00", 10)
	submit(e, e.pool, 2, Sell, "101.00", 5)
	submit(e, e.pool, 3, Sell, "99.00", 5)

	require.Len(t, sink.Trades, 1)
	tr := sink.Trades[0]
	assert.True(t, tr.Price.Equal(decimal.RequireFromString("100.00")))
	assert.Equal(t, uint32(5), tr.Quantity)

	assert.Equal(t, int64(1), e.book.Bids.orderCount())
	resting := e.book.Bids.peekHead()
	require.NotNil(t, resting)
	assert.Equal(t, uint32(5), resting.Remaining)

	assert.Equal(t, int64(1), e.book.Asks.orderCount())
	bestAsk, ok := e.book.Asks.bestPrice()
	require.True(t, ok)
	assert.True(t, bestAsk.Equal(decimal.RequireFromString("101.00")))
}

func TestEngineWalkingTheBook(t *testing.T) {
	e, sink := newTestEngine()
	submit(e, e.pool, 1, Sell, "100.00", 3)
	submit(e, e.pool, 2, Sell, "100.50", 4)
	submit(e, e.pool, 3, Sell, "101.00", 5)
	submit(e, e.pool, 4, Buy, "100.75", 5)

	require.Len(t, sink.Trades, 2)
	assert.Equal(t, uint32(3), sink.Trades[0].Quantity)
	assert.True(t, sink.Trades[0].Price.Equal(decimal.RequireFromString("100.00")))
	assert.Equal(t, uint32(2), sink.Trades[1].Quantity)
	assert.True(t, sink.Trades[1].Price.Equal(decimal.RequireFromString("100.50")))

	assert.Equal(t, int64(0), e.book.Bids.orderCount())
	assert.Equal(t, int64(2), e.book.Asks.orderCount())

	level, ok := e.book.Asks.bestPrice()
	require.True(t, ok)
	assert.True(t, level.Equal(decimal.RequireFromString("100.50")))
	assert.Equal(t, uint32(2), e.book.Asks.peekHead().Remaining)
}

func TestEngineNoCrossRestsBothSides(t *testing.T) {
	e, sink := newTestEngine()
	submit(e, e.pool, 1, Buy, "99.00", 10)
	submit(e, e.pool, 2, Sell, "101.00", 10)

	assert.Empty(t, sink.Trades)
	assert.Equal(t, 1, e.book.Bids.levelCount())
	assert.Equal(t, 1, e.book.Asks.levelCount())

	bestBid, ok := e.book.Bids.bestPrice()
	require.True(t, ok)
	assert.True(t, bestBid.Equal(decimal.RequireFromString("99.00")))

	bestAsk, ok := e.book.Asks.bestPrice()
	require.True(t, ok)
	assert.True(t, bestAsk.Equal(decimal.RequireFromString("101.00")))
}

func TestEngineFIFOWithinPriceLevel(t *testing.T) {
	e, sink := newTestEngine()
	submit(e, e.pool, 1, Buy, "100.00", 5) // A
	submit(e, e.pool, 2, Buy, "100.00", 5) // B
	submit(e, e.pool, 3, Sell, "100.00", 5)

	require.Len(t, sink.Trades, 1)
	assert.Equal(t, uint64(1), sink.Trades[0].BuyOrderID)

	assert.Equal(t, int64(1), e.book.Bids.orderCount())
	remaining := e.book.Bids.peekHead()
	require.NotNil(t, remaining)
	assert.Equal(t, uint64(2), remaining.ID)
	assert.Equal(t, uint32(5), remaining.Remaining)
}

func TestEngineLatencyStatsRecordEverySubmission(t *testing.T) {
	e, _ := newTestEngine()
	submit(e, e.pool, 1, Buy, "100.00", 10)
	submit(e, e.pool, 2, Sell, "100.00", 10)

	assert.Equal(t, uint64(2), e.Stats().Count())
}
