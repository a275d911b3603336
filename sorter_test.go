package gravel_test

import (
	"math/rand"
	"slices"
	"sync/atomic"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/lanrat/gravel"
)

func testSorter(t *testing.T, workers int) *gravel.Sorter {
	return gravel.NewSorter(&gravel.Config{
		NumWorkers:        workers,
		ParallelThreshold: 64,
		Seed:              42,
		Logger:            zaptest.NewLogger(t),
	})
}

func TestSorterParallel(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s := randomInts(rng, 200000, 1<<20)
	want := slices.Clone(s)
	slices.Sort(want)

	c := newTracking(gravel.Ordered(s, false))
	require.NoError(t, testSorter(t, 4).Sort(c))
	require.Equal(t, want, s)
	require.Positive(t, c.forks.Load())
	require.Equal(t, c.forks.Load(), c.closes.Load(), "every fork must be closed")
}

func TestSorterSingleWorker(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	s := randomInts(rng, 10000, 100)
	c := newTracking(gravel.Ordered(s, true))
	require.NoError(t, testSorter(t, 1).Sort(c))
	require.True(t, gravel.IsSorted(c))
	require.Zero(t, c.forks.Load())
}

func TestSorterDefaultConfig(t *testing.T) {
	s := []int{5, 3, 3, 1, 4, 1}
	require.NoError(t, gravel.NewSorter(nil).Sort(gravel.Ordered(s, false)))
	require.Equal(t, []int{1, 1, 3, 3, 4, 5}, s)
}

func TestSorterWindowAndMap(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	s := randomInts(rng, 50000, 1<<30)
	want := slices.Clone(s)
	slices.Sort(want)
	sorter := testSorter(t, 4)

	p, err := sorter.SortMap(gravel.Ordered(s, false))
	require.NoError(t, err)
	require.True(t, gravel.IsPermutation(p))
	for i, j := range p {
		require.Equal(t, want[i], s[j])
	}

	top, err := sorter.SortMapAndCrop(gravel.Ordered(s, false), 1000)
	require.NoError(t, err)
	require.Len(t, top, 1000)
	for i, j := range top {
		require.Equal(t, want[i], s[j])
	}

	require.NoError(t, sorter.SortWindow(gravel.Ordered(s, false), 0, len(s), 0, 99))
	require.Equal(t, want[:100], s[:100])
}

func TestSorterComparatorPanic(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	s := randomInts(rng, 100000, 1000)
	after := new(atomic.Int64)
	after.Store(50000)
	c := &panicComparator{Comparator: gravel.Ordered(s, false), after: after}

	err := testSorter(t, 4).Sort(c)
	require.Error(t, err)
	var se *gravel.SortError
	require.True(t, errors.As(err, &se))
	require.Equal(t, "comparator exploded", se.Cause)
	require.Contains(t, err.Error(), "comparator exploded")
}

func TestSorterPreconditions(t *testing.T) {
	sorter := testSorter(t, 2)
	s := []int{1, 2, 3}

	err := sorter.SortRange(gravel.Ordered(s, false), 1, 3)
	require.ErrorIs(t, err, gravel.ErrBadRange)
	var se *gravel.SortError
	require.True(t, errors.As(err, &se))
	require.Equal(t, "SortRange", se.Context)

	err = sorter.SortWindow(gravel.Ordered(s, false), 0, 3, 2, 0)
	require.ErrorIs(t, err, gravel.ErrBadRange)

	err = sorter.Sort(stuckComparator{n: 500})
	require.ErrorIs(t, err, gravel.ErrDepthExceeded)
	require.True(t, errors.HasAssertionFailure(err))
}
