package match

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side identifies which book an order belongs to.
type Side int8

const (
	Buy  Side = 1
	Sell Side = 2
)

func (s Side) String() string {
	if s == Buy {
		return "buy"
	}
	return "sell"
}

// Order is the unit of intent submitted to the engine. Identifier
// uniqueness, positive price, and positive-at-submission quantity are
// enforced by whoever submits it (Controller.Submit/TrySubmit, in every
// path this repo ships); OrderPool.Acquire and the engine itself never
// validate them.
//
// Order is pool-owned: it is carved out of an OrderPool by Acquire and
// must be returned via Release exactly once, either when the order is
// fully consumed by matching or when it is torn out of a Book with zero
// remaining quantity. Once inside a Book, only the matching worker
// touches it.
type Order struct {
	ID        uint64
	Side      Side
	Price     decimal.Decimal
	Remaining uint32
	Timestamp time.Time

	// next/prev splice this Order into its price level's FIFO. Nil
	// outside of a Book.
	next *Order
	prev *Order
}
