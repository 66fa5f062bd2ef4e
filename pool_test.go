package match

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderPoolAcquireReleaseReuse(t *testing.T) {
	p := NewOrderPool(2)

	o1 := p.Acquire(1, Buy, decimal.NewFromInt(10), 5)
	o2 := p.Acquire(2, Sell, decimal.NewFromInt(20), 7)
	assert.NotSame(t, o1, o2)
	assert.Equal(t, uint64(1), o1.ID)
	assert.Equal(t, uint32(5), o1.Remaining)

	p.Release(o1)
	o3 := p.Acquire(3, Buy, decimal.NewFromInt(30), 1)
	assert.Same(t, o1, o3, "released record should be reused before growing")
	assert.Equal(t, uint64(3), o3.ID)
}

func TestOrderPoolGrowsOnExhaustion(t *testing.T) {
	p := NewOrderPool(1)

	first := p.Acquire(1, Buy, decimal.NewFromInt(1), 1)
	second := p.Acquire(2, Buy, decimal.NewFromInt(1), 1)

	assert.NotNil(t, first)
	assert.NotNil(t, second)
	assert.NotSame(t, first, second)
}

func TestOrderPoolReleaseClearsFields(t *testing.T) {
	p := NewOrderPool(1)
	o := p.Acquire(1, Buy, decimal.NewFromInt(10), 5)
	o.next = &Order{}
	o.prev = &Order{}

	p.Release(o)
	assert.Nil(t, o.next)
	assert.Nil(t, o.prev)
	assert.Equal(t, uint64(0), o.ID)
}
