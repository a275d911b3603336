package gravel

import (
	"slices"
)

// mapComparator sorts a permutation instead of the data: element i stands
// for element p[i] of the wrapped comparator and Swap only moves entries of p.
type mapComparator struct {
	c Comparator
	p []int
}

func newMapComparator(c Comparator) *mapComparator {
	return &mapComparator{c: c, p: identity(c.Len())}
}

func identity(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return p
}

func (m *mapComparator) Len() int             { return len(m.p) }
func (m *mapComparator) Compare(i, j int) int { return m.c.Compare(m.p[i], m.p[j]) }
func (m *mapComparator) Swap(i, j int)        { m.p[i], m.p[j] = m.p[j], m.p[i] }
func (m *mapComparator) Descending() bool     { return m.c.Descending() }

// Fork shares the permutation; forked branches work on disjoint ranges of it.
func (m *mapComparator) Fork() Comparator {
	f := m.c.Fork()
	if f == m.c {
		return m
	}
	return &mapComparator{c: f, p: m.p}
}

func (m *mapComparator) Close() { m.c.Close() }

// SortMap returns the permutation p that sorts c: element p[i] of c is the
// i-th in sort order. c itself is not modified, so comparators that cannot
// swap, such as BytesComparator, are sorted this way.
func SortMap(c Comparator) []int {
	m := newMapComparator(c)
	Sort(m)
	return m.p
}

// SortMapWindow returns a permutation whose positions [minIndex, maxIndex]
// match the sort map of c. See SortWindow.
func SortMapWindow(c Comparator, minIndex, maxIndex int) []int {
	m := newMapComparator(c)
	SortWindow(m, 0, len(m.p), minIndex, maxIndex)
	return m.p
}

// SortMapAndCrop returns the first k entries of the sort map of c, the indexes
// of its k smallest elements in order, without fully sorting the rest. k is
// clamped to [0, c.Len()].
func SortMapAndCrop(c Comparator, k int) []int {
	k = clamp(k, 0, c.Len())
	if k == 0 {
		return []int{}
	}
	return SortMapWindow(c, 0, k-1)[:k:k]
}

// SortOrder inverts a sort map: SortOrder(p)[p[i]] == i.
func SortOrder(sortMap []int) []int {
	o := make([]int, len(sortMap))
	for i, j := range sortMap {
		o[j] = i
	}
	return o
}

// Rank returns the dense rank of every element of c given its sort map.
// Equal elements share a rank, and the largest rank plus one is the number of
// distinct values.
func Rank(sortMap []int, c Comparator) []int {
	checkMap(sortMap, c.Len())
	rank := make([]int, len(sortMap))
	r := 0
	for i, j := range sortMap {
		if i > 0 && SortCompare(c, sortMap[i-1], j) != 0 {
			r++
		}
		rank[j] = r
	}
	return rank
}

// Reorder rearranges values in place so that values[i] becomes the old
// values[sortMap[i]]. It copies through a clone of values.
func Reorder[T any](values []T, sortMap []int) []T {
	checkMap(sortMap, len(values))
	orig := slices.Clone(values)
	for i, j := range sortMap {
		values[i] = orig[j]
	}
	return values
}

// IsPermutation reports whether p holds every index in [0, len(p)) exactly
// once.
func IsPermutation(p []int) bool {
	seen := make([]bool, len(p))
	for _, j := range p {
		if j < 0 || j >= len(p) || seen[j] {
			return false
		}
		seen[j] = true
	}
	return true
}

func checkMap(sortMap []int, n int) {
	if len(sortMap) != n {
		panic(badRange("sort map has %d entries for %d elements", len(sortMap), n))
	}
}
