// Package diff compares two sorted sequences and reports the items found in
// only one of them. Runs of items missing from the other side are skipped
// with a galloping search, so two long sequences that differ in few places
// are compared in far fewer steps than a plain merge needs.
package diff

import (
	"cmp"
	"context"
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/lanrat/gravel"
	"github.com/lanrat/gravel/order"
)

// differ holds the state of one diff between two sorted slices.
type differ[T any] struct {
	ctx        context.Context
	a, b       []T
	fa, fb     gravel.SeqFinder[T]
	resultFunc ResultFunc[T]
	compare    CompareFunc[T]
}

// Generic performs a diff of two slices sorted in ascending order by
// compareFunc and calls resultFunc for each item that exists in only one of
// them. Equal items pair up one to one, so an item repeated more often in A
// than in B is reported as OLD for the surplus.
//
// Returns statistical information about the comparison and any errors encountered.
// The function assumes both slices are sorted according to the comparison function.
// This assumption is not validated for performance reasons.
func Generic[T any](ctx context.Context, a, b []T, compareFunc CompareFunc[T], resultFunc ResultFunc[T]) (r Result, err error) {
	if ctx == nil || compareFunc == nil || resultFunc == nil {
		return Result{}, errors.New("arguments must not be nil")
	}

	d := differ[T]{
		ctx:        ctx,
		a:          a,
		b:          b,
		fa:         gravel.SeqFinder[T]{Seq: gravel.Slice[T](a), Cmp: compareFunc},
		fb:         gravel.SeqFinder[T]{Seq: gravel.Slice[T](b), Cmp: compareFunc},
		resultFunc: resultFunc,
		compare:    compareFunc,
	}
	return d.diff()
}

// report calls resultFunc for items, stopping at the first error.
func (d *differ[T]) report(delta Delta, items []T) error {
	for _, item := range items {
		if err := d.resultFunc(delta, item); err != nil {
			return err
		}
	}
	return nil
}

func (d *differ[T]) diff() (r Result, err error) {
	i, j := 0, 0
	for i < len(d.a) && j < len(d.b) {
		if err = d.ctx.Err(); err != nil {
			return
		}
		c := d.compare(d.a[i], d.b[j])
		if c > 0 {
			// items of B before a[i]
			d.fb.Target = d.a[i]
			k := gravel.FindIndexEqualOrAfterFrom(&d.fb, j, len(d.b)-j, j)
			r.TotalB += uint64(k - j)
			r.ExtraB += uint64(k - j)
			err = d.report(NEW, d.b[j:k])
			if err != nil {
				return
			}
			j = k
		} else if c < 0 {
			// items of A before b[j]
			d.fa.Target = d.b[j]
			k := gravel.FindIndexEqualOrAfterFrom(&d.fa, i, len(d.a)-i, i)
			r.TotalA += uint64(k - i)
			r.ExtraA += uint64(k - i)
			err = d.report(OLD, d.a[i:k])
			if err != nil {
				return
			}
			i = k
		} else {
			// common
			r.Common++
			r.TotalA++
			r.TotalB++
			i++
			j++
		}
	}
	if err = d.ctx.Err(); err != nil {
		return
	}
	// if only A has data left
	r.TotalA += uint64(len(d.a) - i)
	r.ExtraA += uint64(len(d.a) - i)
	if err = d.report(OLD, d.a[i:]); err != nil {
		return
	}
	// if only B has data left
	r.TotalB += uint64(len(d.b) - j)
	r.ExtraB += uint64(len(d.b) - j)
	err = d.report(NEW, d.b[j:])
	return
}

// Ordered performs a diff of two sorted slices of a cmp.Ordered type.
func Ordered[T cmp.Ordered](ctx context.Context, a, b []T, resultFunc ResultFunc[T]) (r Result, err error) {
	return Generic(ctx, a, b, order.Compare[T], resultFunc)
}

// Strings performs a diff of two string slices sorted under the case policy c.
// Strings equal under c count as common.
func Strings(ctx context.Context, a, b []string, c order.Case, resultFunc StringResultFunc) (r Result, err error) {
	if resultFunc == nil {
		return Result{}, errors.New("diff.Strings() arguments must not be nil")
	}
	compare := func(x, y string) int { return order.CompareStrings(x, y, c) }
	return Generic(ctx, a, b, compare, ResultFunc[string](resultFunc))
}

// PrintDiff is a utility function that can be used as a ResultFunc to print
// differences to stdout. It formats each difference with the Delta symbol
// (< for OLD, > for NEW) followed by the item value.
func PrintDiff[T any](d Delta, s T) error {
	_, err := fmt.Printf("%s %v\n", d, s)
	return err
}

// PrintStringDiff satisfies StringResultFunc and can be used as
// resultFunc in diff.Strings().
func PrintStringDiff(d Delta, s string) error {
	_, err := fmt.Printf("%s %s\n", d, s)
	return err
}
