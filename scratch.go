package gravel

import (
	"github.com/lanrat/gravel/slab"
)

const minScratch = 64

// scratch is a growable decode buffer. While requests fit in one pool page it
// holds a pooled slice; beyond that it grows by doubling from the heap.
type scratch[T any] struct {
	get     func() []T
	put     func([]T)
	pageLen int
	buf     []T
	pooled  bool
}

func byteScratch(p *slab.Pool) scratch[byte] {
	if p == nil {
		return scratch[byte]{}
	}
	return scratch[byte]{get: p.GetBytes, put: p.PutBytes, pageLen: slab.ByteSliceLen}
}

func longScratch(p *slab.Pool) scratch[int64] {
	if p == nil {
		return scratch[int64]{}
	}
	return scratch[int64]{get: p.GetLongs, put: p.PutLongs, pageLen: slab.LongSliceLen}
}

// grow returns the buffer resliced to n elements, replacing it when its
// capacity is short.
func (s *scratch[T]) grow(n int) []T {
	if n <= cap(s.buf) {
		return s.buf[:n]
	}
	if s.get != nil && cap(s.buf) == 0 && n <= s.pageLen {
		s.buf = s.get()
		s.pooled = true
		return s.buf[:n]
	}
	size := max(2*cap(s.buf), minScratch)
	for size < n {
		size *= 2
	}
	s.release()
	s.buf = make([]T, size)
	return s.buf[:n]
}

// release returns a pooled buffer to the pool.
func (s *scratch[T]) release() {
	if s.pooled {
		s.put(s.buf)
		s.pooled = false
	}
	s.buf = nil
}
