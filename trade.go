package match

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is the observable result of a cross: a value type with no shared
// mutable state visible outside whatever TradeSink receives it.
type Trade struct {
	BuyOrderID  uint64
	SellOrderID uint64
	Price       decimal.Decimal
	Quantity    uint32
	Timestamp   time.Time
}

// TradeSink receives every Trade the engine produces. A sink passed to
// NewEngine is invoked synchronously on the matching worker; a sink
// passed as NewController's logSink argument is invoked from the
// trade-log drain goroutine instead, via a TradeLogQueue. It is not
// changed after construction and must not panic (a panicking sink is a
// programming error, not a recoverable condition).
type TradeSink interface {
	OnTrade(Trade)
}

// TradeSinkFunc adapts a plain function to TradeSink.
type TradeSinkFunc func(Trade)

func (f TradeSinkFunc) OnTrade(t Trade) { f(t) }

// MemoryTradeSink collects trades in memory, useful for tests.
type MemoryTradeSink struct {
	Trades []Trade
}

func NewMemoryTradeSink() *MemoryTradeSink {
	return &MemoryTradeSink{Trades: make([]Trade, 0)}
}

func (m *MemoryTradeSink) OnTrade(t Trade) {
	m.Trades = append(m.Trades, t)
}
