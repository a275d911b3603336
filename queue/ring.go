// Package queue provides a bounded, lock-free ring of pointers that many
// goroutines can put to and get from concurrently.
package queue

import (
	"math"
	"runtime"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/cpu"
)

// Ring is a fixed-capacity FIFO of non-nil pointers.
//
// The ring state is one word holding the read index (high 32 bits) and the
// number of claimed items (low 32 bits). Producers and consumers claim a slot
// by compare-and-swap on that word and retry on contention; the claimed slot
// is then filled or emptied with an atomic pointer operation. A producer that
// claims a slot whose previous item has not been taken yet waits for it to be
// taken, and a consumer that claims a slot not yet filled waits for the fill.
// Items that race for the same slot may be delivered out of order.
type Ring[T any] struct {
	_     cpu.CacheLinePad
	state atomic.Uint64
	_     cpu.CacheLinePad
	slots []atomic.Pointer[T]
	size  uint32
}

// NewRing returns an empty ring able to hold capacity items.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 || capacity > math.MaxInt32 {
		panic(errors.AssertionFailedf("ring capacity %d out of range", capacity))
	}
	return &Ring[T]{
		slots: make([]atomic.Pointer[T], capacity),
		size:  uint32(capacity),
	}
}

func pack(read, count uint32) uint64 {
	return uint64(read)<<32 | uint64(count)
}

func unpack(s uint64) (read, count uint32) {
	return uint32(s >> 32), uint32(s)
}

// Put appends v and reports whether there was room for it.
func (r *Ring[T]) Put(v *T) bool {
	if v == nil {
		panic(errors.AssertionFailedf("nil item put to ring"))
	}
	for {
		s := r.state.Load()
		read, count := unpack(s)
		if count == r.size {
			return false
		}
		if !r.state.CompareAndSwap(s, pack(read, count+1)) {
			continue
		}
		slot := &r.slots[(uint64(read)+uint64(count))%uint64(r.size)]
		for !slot.CompareAndSwap(nil, v) {
			runtime.Gosched()
		}
		return true
	}
}

// Get removes and returns the oldest item, or nil if the ring is empty.
func (r *Ring[T]) Get() *T {
	for {
		s := r.state.Load()
		read, count := unpack(s)
		if count == 0 {
			return nil
		}
		if !r.state.CompareAndSwap(s, pack((read+1)%r.size, count-1)) {
			continue
		}
		slot := &r.slots[read]
		for {
			if v := slot.Swap(nil); v != nil {
				return v
			}
			runtime.Gosched()
		}
	}
}

// Len returns the number of items currently held.
func (r *Ring[T]) Len() int {
	_, count := unpack(r.state.Load())
	return int(count)
}

// Cap returns the capacity of the ring.
func (r *Ring[T]) Cap() int {
	return int(r.size)
}

// Free returns the number of items that can still be put.
func (r *Ring[T]) Free() int {
	return r.Cap() - r.Len()
}
