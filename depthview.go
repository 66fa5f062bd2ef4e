package match

import (
	"sync"

	"github.com/igrmk/treemap/v2"
	"github.com/shopspring/decimal"
)

// DepthView is a read-only aggregated view of resting size per price
// level, kept in sync by the matching worker via applyOpen/applyMatch
// and safe to read from any other goroutine (via Controller.Depth).
// It exists so per-price depth never has to be read from the live
// Book off its own goroutine: sampling depth from inside
// the hot path would either race the matching worker or force it to
// take a lock on every order.
type DepthView struct {
	mu  sync.RWMutex
	bid *treemap.TreeMap[decimal.Decimal, uint32]
	ask *treemap.TreeMap[decimal.Decimal, uint32]
}

// NewDepthView returns an empty depth view for one instrument.
func NewDepthView() *DepthView {
	less := func(a, b decimal.Decimal) bool { return a.LessThan(b) }
	return &DepthView{
		bid: treemap.NewWithKeyCompare[decimal.Decimal, uint32](less),
		ask: treemap.NewWithKeyCompare[decimal.Decimal, uint32](less),
	}
}

func (v *DepthView) sideMap(side Side) *treemap.TreeMap[decimal.Decimal, uint32] {
	if side == Buy {
		return v.bid
	}
	return v.ask
}

// applyOpen records that an incoming order of the given side rested
// on the book at price for quantity.
func (v *DepthView) applyOpen(side Side, price decimal.Decimal, quantity uint32) {
	if quantity == 0 {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	m := v.sideMap(side)
	cur, _ := m.Get(price)
	m.Set(price, cur+quantity)
}

// applyMatch records that quantity was removed from the resting side
// opposite incomingSide, at price, by a cross.
func (v *DepthView) applyMatch(incomingSide Side, price decimal.Decimal, quantity uint32) {
	if quantity == 0 {
		return
	}
	restingSide := Sell
	if incomingSide == Sell {
		restingSide = Buy
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	m := v.sideMap(restingSide)
	cur, ok := m.Get(price)
	if !ok {
		return
	}
	if cur <= quantity {
		m.Del(price)
		return
	}
	m.Set(price, cur-quantity)
}

// Depth returns the aggregated resting size at price on side, and
// whether that price level exists at all.
func (v *DepthView) Depth(side Side, price decimal.Decimal) (uint32, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.sideMap(side).Get(price)
}

// BestBid returns the highest resting bid price and its aggregated
// size, or false if the bid side is empty.
func (v *DepthView) BestBid() (decimal.Decimal, uint32, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	it := v.bid.Reverse()
	if !it.Valid() {
		return decimal.Zero, 0, false
	}
	return it.Key(), it.Value(), true
}

// BestAsk returns the lowest resting ask price and its aggregated
// size, or false if the ask side is empty.
func (v *DepthView) BestAsk() (decimal.Decimal, uint32, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	it := v.ask.Iterator()
	if !it.Valid() {
		return decimal.Zero, 0, false
	}
	return it.Key(), it.Value(), true
}
