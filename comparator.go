// Package gravel implements in-memory sorting and searching over indexable
// sequences: a randomized quicksort with an optional output window, sort maps
// and ranks built without moving the source data, and a family of binary
// searches with optional start hints.
//
// Sorting works on a Comparator, searching on a Finder. Both address elements
// by index only, so the same engine serves plain slices, several parallel
// columns and records held in a store that must be decoded before they can be
// compared.
package gravel

import (
	"cmp"

	"github.com/cockroachdb/errors"

	"github.com/lanrat/gravel/order"
)

// Comparator compares and swaps the elements of a sequence by index.
//
// Compare reports the ascending order of elements i and j as a negative, zero
// or positive number; the engine applies Descending itself through
// SortCompare. Len must not change while a sort is running.
//
// A Comparator is used by one goroutine at a time. Fork returns a comparator
// over the same data that may be used concurrently with the receiver: the
// receiver itself when it keeps no mutable scratch state, otherwise a copy
// with its own scratch. Close releases pooled scratch and is a no-op for
// comparators that hold none. Whoever forks a comparator closes the fork.
// Fork results are compared with the receiver, so implementations must be
// comparable types such as pointers.
type Comparator interface {
	Len() int
	Compare(i, j int) int
	Swap(i, j int)
	Descending() bool
	Fork() Comparator
	Close()
}

// SortCompare compares elements i and j in the final sort direction of c.
func SortCompare(c Comparator, i, j int) int {
	if c.Descending() {
		return c.Compare(j, i)
	}
	return c.Compare(i, j)
}

// Sequence is an indexable sequence of values.
type Sequence[T any] interface {
	Len() int
	At(i int) T
	Set(i int, v T)
}

// Slice adapts a slice to Sequence.
type Slice[T any] []T

func (s Slice[T]) Len() int       { return len(s) }
func (s Slice[T]) At(i int) T     { return s[i] }
func (s Slice[T]) Set(i int, v T) { s[i] = v }

// SeqComparator orders a Sequence with a comparison function. It holds no
// scratch state, so Fork returns the receiver.
type SeqComparator[T any] struct {
	Seq  Sequence[T]
	Cmp  func(a, b T) int
	Desc bool
}

func (c *SeqComparator[T]) Len() int { return c.Seq.Len() }

func (c *SeqComparator[T]) Compare(i, j int) int {
	return c.Cmp(c.Seq.At(i), c.Seq.At(j))
}

func (c *SeqComparator[T]) Swap(i, j int) {
	a, b := c.Seq.At(i), c.Seq.At(j)
	c.Seq.Set(i, b)
	c.Seq.Set(j, a)
}

func (c *SeqComparator[T]) Descending() bool { return c.Desc }
func (c *SeqComparator[T]) Fork() Comparator { return c }
func (c *SeqComparator[T]) Close()           {}

// Ordered returns a comparator over s in the natural order of T. Integers of
// every width compare without overflow; NaN sorts before all other floats.
func Ordered[T cmp.Ordered](s []T, desc bool) *SeqComparator[T] {
	return &SeqComparator[T]{Seq: Slice[T](s), Cmp: order.Compare[T], Desc: desc}
}

// Func returns a comparator over s ordered by compare, which follows the
// cmp.Compare convention.
func Func[T any](s []T, compare func(a, b T) int, desc bool) *SeqComparator[T] {
	return &SeqComparator[T]{Seq: Slice[T](s), Cmp: compare, Desc: desc}
}

// Strings returns a comparator over s honoring the case policy c.
func Strings(s []string, c order.Case, desc bool) *SeqComparator[string] {
	return Func(s, func(a, b string) int { return order.CompareStrings(a, b, c) }, desc)
}

// Runes returns a comparator over rune strings honoring the case policy c.
func Runes(s [][]rune, c order.Case, desc bool) *SeqComparator[[]rune] {
	return Func(s, func(a, b []rune) int { return order.CompareRunes(a, b, c) }, desc)
}

// ByteSlices returns a comparator ordering s by unsigned lexicographic order.
func ByteSlices(s [][]byte, desc bool) *SeqComparator[[]byte] {
	return Func(s, order.CompareBytes, desc)
}

// cascade orders by its first column, breaking ties with the next one.
type cascade struct {
	cols []Comparator
}

// Cascade returns a comparator ordering by cs[0], then by cs[1] among equal
// elements, and so on. Each column sorts in its own direction. All columns
// must have the same length and must not share storage, since Swap swaps
// every column.
func Cascade(cs ...Comparator) Comparator {
	if len(cs) == 0 {
		panic(errors.AssertionFailedf("cascade needs at least one column"))
	}
	for i, c := range cs[1:] {
		if c.Len() != cs[0].Len() {
			panic(badRange("cascade column %d has length %d, want %d", i+1, c.Len(), cs[0].Len()))
		}
	}
	return &cascade{cols: cs}
}

func (cs *cascade) Len() int { return cs.cols[0].Len() }

func (cs *cascade) Compare(i, j int) int {
	for _, c := range cs.cols {
		if r := SortCompare(c, i, j); r != 0 {
			return r
		}
	}
	return 0
}

func (cs *cascade) Swap(i, j int) {
	for _, c := range cs.cols {
		c.Swap(i, j)
	}
}

// Descending is false; column directions are applied in Compare.
func (cs *cascade) Descending() bool { return false }

// Fork returns the receiver when every column is stateless.
func (cs *cascade) Fork() Comparator {
	cols := make([]Comparator, len(cs.cols))
	stateless := true
	for i, c := range cs.cols {
		cols[i] = c.Fork()
		stateless = stateless && cols[i] == c
	}
	if stateless {
		return cs
	}
	return &cascade{cols: cols}
}

func (cs *cascade) Close() {
	for _, c := range cs.cols {
		c.Close()
	}
}
