package match

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// OrderPool amortizes allocation of Order records behind a preallocated
// free list guarded by a single short-held mutex. The hot-path goal is
// "no heap allocator call during matching": under steady state, Acquire
// pops off the free list and reconstructs in place, and Release pushes
// the same backing record back without ever touching the Go allocator.
//
// On exhaustion the free list doubles, exactly like the original
// MemoryPool<T>::reserve/acquire this is ported from: a fresh pass of
// `new T` for the grown half, then business as usual. Acquisition always
// succeeds; this spec's growth policy is unbounded.
type OrderPool struct {
	mu        sync.Mutex
	free      []*Order
	allocated int // total records ever carved out of the allocator, for doubling
}

// NewOrderPool creates a pool preloaded with initialCapacity Order
// records. initialCapacity <= 0 is treated as 1.
func NewOrderPool(initialCapacity int) *OrderPool {
	p := &OrderPool{}
	p.grow(initialCapacity)
	return p
}

// grow must be called with mu held.
func (p *OrderPool) grow(n int) {
	if n <= 0 {
		n = 1
	}
	for i := 0; i < n; i++ {
		p.free = append(p.free, new(Order))
	}
	p.allocated += n
}

// Acquire pops a record off the free list (growing, doubled, if empty)
// and reconstructs it in place with the given fields. The returned Order
// is owned by the caller until it passes Release.
func (p *OrderPool) Acquire(id uint64, side Side, price decimal.Decimal, quantity uint32) *Order {
	p.mu.Lock()
	if len(p.free) == 0 {
		p.grow(p.allocated) // doubling growth on exhaustion
	}
	n := len(p.free)
	o := p.free[n-1]
	p.free[n-1] = nil
	p.free = p.free[:n-1]
	p.mu.Unlock()

	// Destroy-then-construct in place: the record's address is stable,
	// so any cache warmth from a prior matching pass carries over.
	*o = Order{
		ID:        id,
		Side:      side,
		Price:     price,
		Remaining: quantity,
		Timestamp: time.Now(),
	}
	return o
}

// Release returns an Order to the free list. The caller must not touch
// the Order again after this returns.
func (p *OrderPool) Release(o *Order) {
	*o = Order{}
	p.mu.Lock()
	p.free = append(p.free, o)
	p.mu.Unlock()
}
