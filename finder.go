package gravel

import (
	"cmp"

	"github.com/cockroachdb/errors"

	"github.com/lanrat/gravel/order"
)

// Finder compares a fixed target with the elements of a sorted sequence.
// CompareTo(i) is negative when the target sorts before element i, zero when
// they are equal and positive when it sorts after, already adjusted for the
// direction the sequence is sorted in.
type Finder interface {
	Len() int
	CompareTo(i int) int
}

func directed(c int, desc bool) int {
	if desc {
		return -c
	}
	return c
}

// SeqFinder searches a Sequence sorted by Cmp.
type SeqFinder[T any] struct {
	Seq    Sequence[T]
	Target T
	Cmp    func(a, b T) int
	Desc   bool
}

func (f *SeqFinder[T]) Len() int { return f.Seq.Len() }

func (f *SeqFinder[T]) CompareTo(i int) int {
	return directed(f.Cmp(f.Target, f.Seq.At(i)), f.Desc)
}

// FindOrdered returns a finder for target in s, sorted in the natural order
// of T, descending if desc.
func FindOrdered[T cmp.Ordered](s []T, target T, desc bool) *SeqFinder[T] {
	return &SeqFinder[T]{Seq: Slice[T](s), Target: target, Cmp: order.Compare[T], Desc: desc}
}

// FindFunc returns a finder for target in s sorted by compare.
func FindFunc[T any](s []T, target T, compare func(a, b T) int, desc bool) *SeqFinder[T] {
	return &SeqFinder[T]{Seq: Slice[T](s), Target: target, Cmp: compare, Desc: desc}
}

// FindString returns a finder for target in s sorted under the case policy c.
func FindString(s []string, target string, c order.Case, desc bool) *SeqFinder[string] {
	return FindFunc(s, target, func(a, b string) int { return order.CompareStrings(a, b, c) }, desc)
}

type finderCascade []Finder

// FinderCascade combines finders over the columns of a sequence sorted by
// Cascade: the first column decides unless it reports equal, then the next.
func FinderCascade(fs ...Finder) Finder {
	if len(fs) == 0 {
		panic(errors.AssertionFailedf("finder cascade needs at least one column"))
	}
	for i, f := range fs[1:] {
		if f.Len() != fs[0].Len() {
			panic(badRange("finder cascade column %d has length %d, want %d", i+1, f.Len(), fs[0].Len()))
		}
	}
	return finderCascade(fs)
}

func (fs finderCascade) Len() int { return fs[0].Len() }

func (fs finderCascade) CompareTo(i int) int {
	for _, f := range fs {
		if r := f.CompareTo(i); r != 0 {
			return r
		}
	}
	return 0
}
