package match

import (
	"time"
)

// Engine owns a single instrument's Book and runs price-time-priority
// continuous matching. It implements EventHandler[*Order] so a
// RingBuffer can deliver submissions to it one at a time: every method
// here assumes it is called from exactly one goroutine (the ring
// buffer's consumer) the way a single-threaded command channel would.
type Engine struct {
	book  *Book
	pool  *OrderPool
	sink  TradeSink
	stats *LatencyStats
	depth *DepthView
}

// NewEngine returns an Engine ready to match Limit orders for one
// instrument. sink receives every Trade synchronously as it is
// produced; pool supplies and reclaims Order records.
func NewEngine(pool *OrderPool, sink TradeSink) *Engine {
	return &Engine{
		book:  NewBook(),
		pool:  pool,
		sink:  sink,
		stats: NewLatencyStats(),
		depth: NewDepthView(),
	}
}

// Stats returns the engine's latency histogram.
func (e *Engine) Stats() *LatencyStats { return e.stats }

// Depth returns the engine's off-hot-path aggregated depth view.
func (e *Engine) Depth() *DepthView { return e.depth }

// OnEvent matches one incoming order against the book, in the order
// submissions are delivered. This is the engine's only entry point.
func (e *Engine) OnEvent(order *Order) {
	start := time.Now()
	e.match(order)
	e.stats.Record(uint64(time.Since(start).Nanoseconds()))
}

// match runs continuous price-time-priority matching for order against
// the opposite side of the book, crossing while prices allow, and
// rests whatever remains (if anything) on order's own side.
//
// Execution price is always the resting (opposite-side) order's price.
// Because the book never crosses between submissions, the opposite
// side's head is always the older order whenever a cross happens, so
// "maker's price," "opposite-side price," and "older order's price"
// name the same value here — there is exactly one price a cross can
// execute at, not an ambiguous choice between two.
func (e *Engine) match(order *Order) {
	mySide := e.book.side(order.Side)
	targetSide := e.book.opposite(order.Side)

	for {
		resting := targetSide.peekHead()
		if resting == nil {
			break
		}

		crosses := false
		if order.Side == Buy {
			crosses = order.Price.GreaterThanOrEqual(resting.Price)
		} else {
			crosses = order.Price.LessThanOrEqual(resting.Price)
		}
		if !crosses {
			break
		}

		resting = targetSide.popFront()

		tradeQty := order.Remaining
		if resting.Remaining < tradeQty {
			tradeQty = resting.Remaining
		}

		trade := Trade{
			Price:     resting.Price,
			Quantity:  tradeQty,
			Timestamp: time.Now(),
		}
		if order.Side == Buy {
			trade.BuyOrderID = order.ID
			trade.SellOrderID = resting.ID
		} else {
			trade.BuyOrderID = resting.ID
			trade.SellOrderID = order.ID
		}

		order.Remaining -= tradeQty
		resting.Remaining -= tradeQty

		e.depth.applyMatch(order.Side, resting.Price, tradeQty)
		e.sink.OnTrade(trade)

		if resting.Remaining > 0 {
			// Partial fill of the resting order: it keeps its price-time
			// priority, so it goes back to the front of its level.
			targetSide.insertFront(resting)
		} else {
			e.pool.Release(resting)
		}

		if order.Remaining == 0 {
			e.pool.Release(order)
			return
		}
	}

	mySide.insert(order)
	e.depth.applyOpen(order.Side, order.Price, order.Remaining)
}
