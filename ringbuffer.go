package match

import (
	"context"
	"runtime"
	"sync/atomic"
)

// EventHandler consumes events popped off a RingBuffer, one at a time,
// from the buffer's single consumer goroutine.
type EventHandler[T any] interface {
	OnEvent(event T)
}

// RingBuffer is a bounded multi-producer single-consumer queue: any
// number of goroutines may Publish concurrently, and exactly one
// consumer goroutine, started by Start, delivers events to handler in
// publish order. Producers that find the buffer full spin rather than
// block, trading CPU for the lowest possible handoff latency.
type RingBuffer[T any] struct {
	// Padding keeps the producer and consumer sequences on separate
	// cache lines; both are written by different goroutines every
	// operation.
	_                [56]byte
	producerSequence atomic.Int64
	_                [56]byte
	consumerSequence atomic.Int64
	_                [56]byte

	buffer     []T
	bufferMask int64
	capacity   int64

	// published[i] holds the sequence number last written to slot i,
	// or -1 if the slot has never been published. The consumer spins
	// on this to know when a claimed slot's write has landed.
	published []int64

	handler EventHandler[T]

	isShutdown atomic.Bool
}

// NewRingBuffer creates a ring buffer of the given capacity, which must
// be a power of two, delivering events to handler.
func NewRingBuffer[T any](capacity int64, handler EventHandler[T]) *RingBuffer[T] {
	if capacity <= 0 || (capacity&(capacity-1)) != 0 {
		panic("match: RingBuffer capacity must be a power of 2")
	}

	rb := &RingBuffer[T]{
		buffer:     make([]T, capacity),
		published:  make([]int64, capacity),
		capacity:   capacity,
		bufferMask: capacity - 1,
		handler:    handler,
	}

	rb.producerSequence.Store(-1)
	rb.consumerSequence.Store(-1)
	for i := range rb.published {
		rb.published[i] = -1
	}

	return rb
}

// Publish hands event to the consumer. It blocks (spinning) only while
// the buffer is full; once Shutdown has been called it silently drops
// the event instead.
func (rb *RingBuffer[T]) Publish(event T) {
	if rb.isShutdown.Load() {
		return
	}

	var nextSeq int64
	for {
		currentProducerSeq := rb.producerSequence.Load()
		nextSeq = currentProducerSeq + 1

		// The producer may not lap the consumer by a full buffer.
		wrapPoint := nextSeq - rb.capacity
		consumerSeq := rb.consumerSequence.Load()
		if wrapPoint > consumerSeq {
			runtime.Gosched()
			continue
		}

		if rb.producerSequence.CompareAndSwap(currentProducerSeq, nextSeq) {
			break
		}
		runtime.Gosched()
	}

	index := nextSeq & rb.bufferMask
	rb.buffer[index] = event
	atomic.StoreInt64(&rb.published[index], nextSeq)
}

// TryPublish attempts to hand event to the consumer without blocking.
// It returns ErrClosed if Shutdown has been called, or ErrFull if the
// buffer has no free slot for a single attempt — callers that can't
// afford Publish's spin-until-space behavior use this instead.
func (rb *RingBuffer[T]) TryPublish(event T) error {
	if rb.isShutdown.Load() {
		return ErrClosed
	}

	currentProducerSeq := rb.producerSequence.Load()
	nextSeq := currentProducerSeq + 1

	wrapPoint := nextSeq - rb.capacity
	consumerSeq := rb.consumerSequence.Load()
	if wrapPoint > consumerSeq {
		return ErrFull
	}

	if !rb.producerSequence.CompareAndSwap(currentProducerSeq, nextSeq) {
		return ErrFull
	}

	index := nextSeq & rb.bufferMask
	rb.buffer[index] = event
	atomic.StoreInt64(&rb.published[index], nextSeq)
	return nil
}

// Start launches the consumer goroutine. Call it once, before the
// first Publish.
func (rb *RingBuffer[T]) Start() {
	go rb.consumerLoop()
}

// Shutdown stops accepting new events and blocks until the consumer
// has drained everything already claimed, or ctx is done.
func (rb *RingBuffer[T]) Shutdown(ctx context.Context) error {
	rb.isShutdown.Store(true)

	for {
		select {
		case <-ctx.Done():
			return ErrTimeout
		default:
			if rb.ConsumerSequence() >= rb.ProducerSequence() {
				return nil
			}
			runtime.Gosched()
		}
	}
}

func (rb *RingBuffer[T]) consumerLoop() {
	nextConsumerSeq := rb.consumerSequence.Load() + 1

	for {
		availableSeq := rb.producerSequence.Load()

		if rb.isShutdown.Load() {
			rb.processRemainingEvents(nextConsumerSeq)
			return
		}

		processed := false
		for nextConsumerSeq <= availableSeq {
			index := nextConsumerSeq & rb.bufferMask

			for atomic.LoadInt64(&rb.published[index]) != nextConsumerSeq {
				runtime.Gosched()
			}

			event := rb.buffer[index]
			rb.handler.OnEvent(event)

			rb.consumerSequence.Store(nextConsumerSeq)
			nextConsumerSeq++
			processed = true
		}

		if !processed {
			runtime.Gosched()
		}
	}
}

func (rb *RingBuffer[T]) processRemainingEvents(nextConsumerSeq int64) {
	availableSeq := rb.producerSequence.Load()

	for nextConsumerSeq <= availableSeq {
		index := nextConsumerSeq & rb.bufferMask

		for atomic.LoadInt64(&rb.published[index]) != nextConsumerSeq {
			runtime.Gosched()
		}

		event := rb.buffer[index]
		rb.handler.OnEvent(event)

		rb.consumerSequence.Store(nextConsumerSeq)
		nextConsumerSeq++
	}
}

// ConsumerSequence reports the sequence number most recently delivered
// to the handler.
func (rb *RingBuffer[T]) ConsumerSequence() int64 {
	return rb.consumerSequence.Load()
}

// ProducerSequence reports the highest sequence number claimed by a
// producer so far.
func (rb *RingBuffer[T]) ProducerSequence() int64 {
	return rb.producerSequence.Load()
}

// PendingEvents reports how many published events are still waiting
// for the consumer.
func (rb *RingBuffer[T]) PendingEvents() int64 {
	return rb.producerSequence.Load() - rb.consumerSequence.Load()
}
