package diff

import "fmt"

// Delta represents the type of difference found when comparing two sorted sequences.
// It indicates whether an item is unique to the first sequence (OLD) or the second (NEW).
type Delta int

const (
	// NEW indicates an item that exists only in the second sequence (B).
	// This represents a "new" or "added" item when comparing A to B.
	NEW Delta = iota // +

	// OLD indicates an item that exists only in the first sequence (A).
	// This represents an "old" or "removed" item when comparing A to B.
	OLD // -
)

func (d Delta) String() string {
	switch d {
	case NEW:
		return ">"
	case OLD:
		return "<"
	default:
		return "?"
	}
}

// CompareFunc orders two items, returning <0, 0 or >0 like cmp.Compare.
type CompareFunc[T any] func(a, b T) int

// ResultFunc is called once for each item that appears in only one of the two
// sequences. If it returns an error, the diff stops and returns that error.
type ResultFunc[T any] func(Delta, T) error

// StringResultFunc is the ResultFunc of Strings.
type StringResultFunc func(Delta, string) error

// Result contains statistical information about the differences between two sorted sequences.
type Result struct {
	// ExtraA is the count of items that exist only in A (OLD items)
	ExtraA uint64

	// ExtraB is the count of items that exist only in B (NEW items)
	ExtraB uint64

	// TotalA is the total count of items processed from A
	TotalA uint64

	// TotalB is the total count of items processed from B
	TotalB uint64

	// Common is the count of items that exist in both
	Common uint64
}

func (r *Result) String() string {
	out := fmt.Sprintf("A: %d/%d\tB: %d/%d\tC: %d", r.ExtraA, r.TotalA, r.ExtraB, r.TotalB, r.Common)
	return out
}
