package gravel_test

import (
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/lanrat/gravel"
	"github.com/lanrat/gravel/order"
)

// recoverError runs f and returns the error it panicked with.
func recoverError(t *testing.T, f func()) (err error) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a panic")
		}
		var ok bool
		if err, ok = r.(error); !ok {
			t.Fatalf("panic value %v is not an error", r)
		}
	}()
	f()
	return nil
}

func randomInts(rng *rand.Rand, n, limit int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = rng.Intn(limit)
	}
	return s
}

// stuckComparator never moves anything while claiming elements are ordered
// by index, so every partition peels off a single element.
type stuckComparator struct{ n int }

func (c stuckComparator) Len() int             { return c.n }
func (c stuckComparator) Compare(i, j int) int { return order.Compare(i, j) }
func (c stuckComparator) Swap(i, j int)             {}
func (c stuckComparator) Descending() bool        { return false }
func (c stuckComparator) Fork() gravel.Comparator { return c }
func (c stuckComparator) Close()                    {}

// trackingComparator counts forks and closes. Every fork is a new value, as
// for a comparator holding scratch buffers.
type trackingComparator struct {
	gravel.Comparator
	forks, closes *atomic.Int64
	fork          bool
}

func newTracking(c gravel.Comparator) *trackingComparator {
	return &trackingComparator{Comparator: c, forks: new(atomic.Int64), closes: new(atomic.Int64)}
}

func (c *trackingComparator) Fork() gravel.Comparator {
	c.forks.Add(1)
	return &trackingComparator{Comparator: c.Comparator, forks: c.forks, closes: c.closes, fork: true}
}

func (c *trackingComparator) Close() {
	if c.fork {
		c.closes.Add(1)
	}
}

// panicComparator panics on the compare with the given number.
type panicComparator struct {
	gravel.Comparator
	after *atomic.Int64
}

func (c *panicComparator) Compare(i, j int) int {
	if c.after.Add(-1) == 0 {
		panic("comparator exploded")
	}
	return c.Comparator.Compare(i, j)
}

func (c *panicComparator) Fork() gravel.Comparator { return c }
