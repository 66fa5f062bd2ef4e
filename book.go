package match

import (
	"sync/atomic"

	"github.com/huandu/skiplist"
	"github.com/shopspring/decimal"
)

// priceLevel is the FIFO of resting orders at a single price: an
// intrusive doubly-linked list through Order.next/prev plus a running
// total so depth queries don't have to walk the list.
type priceLevel struct {
	head      *Order
	tail      *Order
	count     int64
	totalSize uint32
}

// bookSide is one half of a Book: a skiplist of priceLevel keyed by
// price, ordered so Front() is always the best price for that side.
// There is no by-ID index — this engine never cancels or amends a
// resting order, so nothing ever needs to find one except by walking
// from the best price inward.
type bookSide struct {
	side      Side
	depthList *skiplist.SkipList
	priceList map[string]*skiplist.Element

	// orders is read from outside the matching worker (Controller.
	// OrderCounts), so it's atomic even though every write happens on
	// the worker goroutine.
	orders atomic.Int64
}

func newBookSide(side Side) *bookSide {
	var cmp skiplist.GreaterThanFunc
	if side == Buy {
		// Highest price first.
		cmp = func(lhs, rhs any) int {
			l := lhs.(decimal.Decimal)
			r := rhs.(decimal.Decimal)
			switch {
			case l.LessThan(r):
				return 1
			case l.GreaterThan(r):
				return -1
			default:
				return 0
			}
		}
	} else {
		// Lowest price first.
		cmp = func(lhs, rhs any) int {
			l := lhs.(decimal.Decimal)
			r := rhs.(decimal.Decimal)
			switch {
			case l.GreaterThan(r):
				return 1
			case l.LessThan(r):
				return -1
			default:
				return 0
			}
		}
	}

	return &bookSide{
		side:      side,
		depthList: skiplist.New(cmp),
		priceList: make(map[string]*skiplist.Element),
	}
}

// insert appends order to the tail of its price level's FIFO, creating
// the level if this is the first resting order at that price.
func (b *bookSide) insert(order *Order) {
	key := order.Price.String()
	el, ok := b.priceList[key]
	if ok {
		level := el.Value.(*priceLevel)
		order.prev = level.tail
		order.next = nil
		if level.tail != nil {
			level.tail.next = order
		}
		level.tail = order
		if level.head == nil {
			level.head = order
		}
		level.count++
		level.totalSize += order.Remaining
	} else {
		level := &priceLevel{head: order, tail: order, count: 1, totalSize: order.Remaining}
		order.next = nil
		order.prev = nil
		el := b.depthList.Set(order.Price, level)
		b.priceList[key] = el
	}
	b.orders.Add(1)
}

// insertFront re-admits a partially-filled order to the head of its
// price level, preserving the time priority it already held there.
func (b *bookSide) insertFront(order *Order) {
	key := order.Price.String()
	el, ok := b.priceList[key]
	if ok {
		level := el.Value.(*priceLevel)
		order.next = level.head
		order.prev = nil
		if level.head != nil {
			level.head.prev = order
		}
		level.head = order
		if level.tail == nil {
			level.tail = order
		}
		level.count++
		level.totalSize += order.Remaining
	} else {
		level := &priceLevel{head: order, tail: order, count: 1, totalSize: order.Remaining}
		order.next = nil
		order.prev = nil
		el := b.depthList.Set(order.Price, level)
		b.priceList[key] = el
	}
	b.orders.Add(1)
}

// peekHead returns the oldest order at the best price without removing
// it, or nil if the side is empty.
func (b *bookSide) peekHead() *Order {
	el := b.depthList.Front()
	if el == nil {
		return nil
	}
	return el.Value.(*priceLevel).head
}

// popFront removes and returns the oldest order at the best price,
// tearing down the price level if it was the last order there.
func (b *bookSide) popFront() *Order {
	el := b.depthList.Front()
	if el == nil {
		return nil
	}
	level := el.Value.(*priceLevel)
	order := level.head

	level.head = order.next
	if level.head != nil {
		level.head.prev = nil
	} else {
		level.tail = nil
	}
	order.next = nil
	order.prev = nil
	level.count--
	level.totalSize -= order.Remaining
	b.orders.Add(-1)

	if level.count == 0 {
		b.depthList.RemoveElement(el)
		delete(b.priceList, order.Price.String())
	}
	return order
}

// bestPrice reports the best resting price on this side and whether
// the side is non-empty.
func (b *bookSide) bestPrice() (decimal.Decimal, bool) {
	el := b.depthList.Front()
	if el == nil {
		return decimal.Zero, false
	}
	return el.Key().(decimal.Decimal), true
}

// levelCount returns the number of distinct resting prices on this side.
func (b *bookSide) levelCount() int {
	return b.depthList.Len()
}

// orderCount returns the number of resting orders on this side.
func (b *bookSide) orderCount() int64 {
	return b.orders.Load()
}

// Book holds the two price-ordered sides of a single instrument. It is
// owned exclusively by the matching worker: apart from each side's
// atomic order counter (read by Controller.OrderCounts), nothing else
// touches it while the engine is running (spec's depth-from-the-hot-
// path hazard — see DepthView for aggregated per-price depth).
type Book struct {
	Bids *bookSide // Buy side, descending price
	Asks *bookSide // Sell side, ascending price
}

// NewBook returns an empty order book for one instrument.
func NewBook() *Book {
	return &Book{
		Bids: newBookSide(Buy),
		Asks: newBookSide(Sell),
	}
}

// side returns the book side an order of the given side rests on.
func (b *Book) side(s Side) *bookSide {
	if s == Buy {
		return b.Bids
	}
	return b.Asks
}

// opposite returns the resting side an incoming order of the given
// side would cross against.
func (b *Book) opposite(s Side) *bookSide {
	if s == Buy {
		return b.Asks
	}
	return b.Bids
}
