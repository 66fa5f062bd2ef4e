package match

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"
)

// Controller owns the lifecycle of one instrument's matching pipeline:
// an OrderPool, an Engine, the submission RingBuffer that feeds it, and
// the TradeLogQueue draining into whatever TradeSink was installed.
// Callers only ever see Start, Submit/TrySubmit, Stats, Depth,
// OrderCounts and Shutdown — everything upstream of
// the ring buffer's consumer goroutine is private to the Engine.
type Controller struct {
	pool       *OrderPool
	engine     *Engine
	submission *RingBuffer[*Order]
	tradeLog   *TradeLogQueue

	nextOrderID atomic.Uint64
	isShutdown  atomic.Bool

	logWG sync.WaitGroup
}

// NewController wires a fresh pipeline. logSink, if non-nil, receives
// every Trade off the matching worker's hot path via an unbounded
// TradeLogQueue so a slow sink (disk I/O, a downstream connection)
// never backs up into the matcher. submissionCapacity must be a power
// of two; pass DefaultSubmissionQueueCapacity for the usual default.
func NewController(submissionCapacity int64, poolCapacity int, logSink TradeSink) *Controller {
	pool := NewOrderPool(poolCapacity)
	tradeLog := NewTradeLogQueue()

	sink := TradeSink(TradeSinkFunc(func(t Trade) {
		if err := tradeLog.Push(t); err != nil {
			logger.Warn("dropping trade after log queue close", "error", err)
		}
	}))
	engine := NewEngine(pool, sink)

	c := &Controller{
		pool:     pool,
		engine:   engine,
		tradeLog: tradeLog,
	}
	c.submission = NewRingBuffer[*Order](submissionCapacity, engine)

	if logSink != nil {
		c.logWG.Add(1)
		go func() {
			defer c.logWG.Done()
			tradeLog.Run(logSink.OnTrade)
		}()
	} else {
		c.logWG.Add(1)
		go func() {
			defer c.logWG.Done()
			tradeLog.Run(func(Trade) {})
		}()
	}

	return c
}

// Start launches the submission ring buffer's consumer goroutine. Call
// it once, before the first Submit.
func (c *Controller) Start() {
	c.submission.Start()
}

// Submit assigns a fresh order ID, carves an Order out of the pool,
// and hands it to the matching worker. It never blocks waiting for a
// match to complete — only, briefly, on a full submission queue.
func (c *Controller) Submit(side Side, price decimal.Decimal, quantity uint32) (uint64, error) {
	if c.isShutdown.Load() {
		return 0, ErrShutdown
	}
	if quantity == 0 || !price.IsPositive() {
		return 0, ErrInvalidParam
	}

	id := c.nextOrderID.Add(1)
	order := c.pool.Acquire(id, side, price, quantity)
	c.submission.Publish(order)
	return id, nil
}

// TrySubmit behaves like Submit but never blocks on a full submission
// queue: it returns ErrFull immediately instead of spinning for space,
// for callers (e.g. a network connection handler) that must not stall
// indefinitely on a saturated matcher.
func (c *Controller) TrySubmit(side Side, price decimal.Decimal, quantity uint32) (uint64, error) {
	if c.isShutdown.Load() {
		return 0, ErrShutdown
	}
	if quantity == 0 || !price.IsPositive() {
		return 0, ErrInvalidParam
	}

	id := c.nextOrderID.Add(1)
	order := c.pool.Acquire(id, side, price, quantity)
	if err := c.submission.TryPublish(order); err != nil {
		c.pool.Release(order)
		return 0, err
	}
	return id, nil
}

// Stats returns the engine's latency histogram.
func (c *Controller) Stats() *LatencyStats { return c.engine.Stats() }

// Depth returns the engine's aggregated depth view.
func (c *Controller) Depth() *DepthView { return c.engine.Depth() }

// OrderCounts returns the number of resting orders on each side of
// the book, for the stats command.
func (c *Controller) OrderCounts() (bids, asks int64) {
	return c.engine.book.Bids.orderCount(), c.engine.book.Asks.orderCount()
}

// Shutdown stops accepting submissions, drains whatever the ring
// buffer already has claimed, then closes the trade log and waits for
// it to finish writing out whatever it already queued.
func (c *Controller) Shutdown(ctx context.Context) error {
	c.isShutdown.Store(true)

	var errs []error
	if err := c.submission.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}

	c.tradeLog.Close()
	c.logWG.Wait()

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
