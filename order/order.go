// Package order holds the comparison primitives shared by the comparators and
// finders of gravel: tri-state results, overflow-safe value comparison, and
// case-aware comparison of character data.
package order

import (
	"bytes"
	"cmp"
)

// Result values of a comparison. Any negative, zero or positive int is
// accepted wherever a Result is read; these are the canonical values.
const (
	Less    = -1
	Equal   = 0
	Greater = 1
)

// Sign folds an arbitrary comparison result to Less, Equal or Greater.
func Sign(c int) int {
	switch {
	case c < 0:
		return Less
	case c > 0:
		return Greater
	}
	return Equal
}

// Compare orders two values with explicit branches so full-range integers
// never overflow. NaN sorts before every other float and equals itself.
func Compare[T cmp.Ordered](a, b T) int {
	if a < b {
		return Less
	}
	if a > b {
		return Greater
	}
	if a == b {
		return Equal
	}
	// only NaNs reach this point
	return cmp.Compare(a, b)
}

// Reverse returns the comparison result seen from the other operand.
func Reverse(c int) int {
	return -Sign(c)
}

// CompareBytes orders byte sequences lexicographically as unsigned bytes,
// a shorter prefix first.
func CompareBytes(a, b []byte) int {
	return bytes.Compare(a, b)
}

// CompareInts orders int64 sequences lexicographically, a shorter prefix first.
func CompareInts(a, b []int64) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if c := Compare(a[i], b[i]); c != Equal {
			return c
		}
	}
	return Compare(len(a), len(b))
}
