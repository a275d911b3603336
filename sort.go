package gravel

import (
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/exp/rand"
)

// maxDepth bounds the quicksort recursion. With random pivots a depth beyond
// it means partitioning stopped making progress.
const maxDepth = 100

// bubbleLimit is the range size below which bubble sort is used.
const bubbleLimit = 8

// Sort sorts all elements of c in its direction.
//
// The algorithm is a randomized quicksort. Its worst case is quadratic; random
// pivots taken from the middle half of each range, scan directions that
// alternate with depth and skipping of elements equal to the pivot make that
// unlikely in practice, but only expected-case O(n log n) is promised. The
// sort is not stable. A comparator panic propagates to the caller; use a
// Sorter to turn it into an error.
func Sort(c Comparator) {
	SortRange(c, 0, c.Len())
}

// SortRange sorts the elements in [first, first+n).
func SortRange(c Comparator, first, n int) {
	checkRange(c.Len(), first, n)
	t := newTask(first, first+n-1, clockSeed(), nil)
	t.sort(c, first, n, 0)
}

// SortWindow partially sorts [first, first+n): afterwards every position in
// [minIndex, maxIndex] holds the element a full sort would have put there.
// Elements whose sorted position lies outside the window end up on the
// correct side of it in no particular order. Ranges that cannot contain a
// window position are never partitioned, which makes top-k selection cheaper
// than a full sort.
func SortWindow(c Comparator, first, n, minIndex, maxIndex int) {
	checkRange(c.Len(), first, n)
	checkWindow(minIndex, maxIndex)
	t := newTask(minIndex, maxIndex, clockSeed(), nil)
	t.sort(c, first, n, 0)
}

// IsSorted reports whether c is sorted in its direction.
func IsSorted(c Comparator) bool {
	return IsSortedRange(c, 0, c.Len())
}

// IsSortedRange reports whether [first, first+n) is sorted.
func IsSortedRange(c Comparator, first, n int) bool {
	checkRange(c.Len(), first, n)
	for i := first + 1; i < first+n; i++ {
		if SortCompare(c, i-1, i) > 0 {
			return false
		}
	}
	return true
}

func checkWindow(minIndex, maxIndex int) {
	if maxIndex < minIndex {
		panic(badRange("window [%d,%d] is empty", minIndex, maxIndex))
	}
}

func clockSeed() uint64 {
	return uint64(time.Now().UnixNano())
}

// task is one goroutine's share of a sort: the output window, a private pivot
// source and, for a Sorter, the state shared between forked branches.
type task struct {
	lo, hi int
	rng    *rand.Rand
	par    *parallel
}

func newTask(lo, hi int, seed uint64, par *parallel) *task {
	return &task{lo: lo, hi: hi, rng: rand.New(rand.NewSource(seed)), par: par}
}

// sort sorts [first, first+n) as far as the window requires.
func (t *task) sort(c Comparator, first, n, depth int) {
	if n <= 1 || first > t.hi || first+n-1 < t.lo {
		return
	}
	if depth > maxDepth {
		panic(errors.WithAssertionFailure(errors.Wrapf(ErrDepthExceeded,
			"depth %d sorting [%d,%d)", depth, first, first+n)))
	}
	if t.par != nil && t.par.failed.Load() {
		return
	}
	switch {
	case n == 2:
		if SortCompare(c, first, first+1) > 0 {
			c.Swap(first, first+1)
		}
		return
	case n < bubbleLimit:
		bubble(c, first, n)
		return
	}

	// pivot from the middle half
	quarter := n / 4
	p := first + quarter + t.rng.Intn(n-2*quarter)
	var eqLo, eqHi int
	if depth%2 == 0 {
		eqLo, eqHi = partitionUp(c, first, first+n, p)
	} else {
		eqLo, eqHi = partitionDown(c, first, first+n, p)
	}

	left, right := eqLo-first, first+n-eqHi
	if t.par == nil || n <= t.par.threshold || !t.par.fork(t, c, first, left, depth+1) {
		t.sort(c, first, left, depth+1)
	}
	t.sort(c, eqHi, right, depth+1)
}

func bubble(c Comparator, first, n int) {
	for end := first + n; end > first+1; end-- {
		swapped := false
		for i := first + 1; i < end; i++ {
			if SortCompare(c, i-1, i) > 0 {
				c.Swap(i-1, i)
				swapped = true
			}
		}
		if !swapped {
			return
		}
	}
}

// partitionUp moves the pivot to the front and scans upward, collecting the
// elements that sort before it on the left. The elements equal to the pivot
// are then gathered right after it. It returns the bounds of that equal zone.
func partitionUp(c Comparator, first, end, p int) (eqLo, eqHi int) {
	if p != first {
		c.Swap(first, p)
	}
	store := first + 1
	for i := first + 1; i < end; i++ {
		if SortCompare(c, i, first) < 0 {
			if i != store {
				c.Swap(i, store)
			}
			store++
		}
	}
	pivot := store - 1
	if pivot != first {
		c.Swap(first, pivot)
	}
	eqHi = pivot + 1
	for i := eqHi; i < end; i++ {
		if SortCompare(c, i, pivot) == 0 {
			if i != eqHi {
				c.Swap(i, eqHi)
			}
			eqHi++
		}
	}
	return pivot, eqHi
}

// partitionDown mirrors partitionUp: the pivot goes to the back, the scan runs
// downward collecting the elements that sort after it on the right, and equal
// elements are gathered right before it.
func partitionDown(c Comparator, first, end, p int) (eqLo, eqHi int) {
	last := end - 1
	if p != last {
		c.Swap(last, p)
	}
	store := last - 1
	for i := last - 1; i >= first; i-- {
		if SortCompare(c, i, last) > 0 {
			if i != store {
				c.Swap(i, store)
			}
			store--
		}
	}
	pivot := store + 1
	if pivot != last {
		c.Swap(last, pivot)
	}
	eqLo = pivot
	for i := eqLo - 1; i >= first; i-- {
		if SortCompare(c, i, pivot) == 0 {
			eqLo--
			if i != eqLo {
				c.Swap(i, eqLo)
			}
		}
	}
	return eqLo, pivot + 1
}
