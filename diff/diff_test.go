package diff_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lanrat/gravel/diff"
	"github.com/lanrat/gravel/order"
)

func collect[T any](out *[]string) diff.ResultFunc[T] {
	return func(d diff.Delta, v T) error {
		*out = append(*out, fmt.Sprintf("%s %v", d, v))
		return nil
	}
}

func TestNil(t *testing.T) {
	r, err := diff.Strings(context.Background(), nil, nil, order.CaseMatters, nil)
	require.Error(t, err)
	require.Zero(t, r.ExtraA+r.ExtraB+r.TotalA+r.TotalB+r.Common)

	_, err = diff.Generic[int](context.Background(), nil, nil, nil, func(diff.Delta, int) error { return nil })
	require.Error(t, err)
}

func TestOneSided(t *testing.T) {
	var out []string
	r, err := diff.Ordered(context.Background(), []string{"Hello A"}, nil, collect[string](&out))
	require.NoError(t, err)
	require.Equal(t, diff.Result{ExtraA: 1, TotalA: 1}, r)
	require.Equal(t, []string{"< Hello A"}, out)

	out = nil
	r, err = diff.Ordered(context.Background(), nil, []string{"Hello B"}, collect[string](&out))
	require.NoError(t, err)
	require.Equal(t, diff.Result{ExtraB: 1, TotalB: 1}, r)
	require.Equal(t, []string{"> Hello B"}, out)
}

func TestCommon(t *testing.T) {
	s := []int{1, 2, 3, 4}
	r, err := diff.Ordered(context.Background(), s, s, func(d diff.Delta, v int) error {
		t.Fatalf("common resultF called for %s %d", d, v)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, diff.Result{TotalA: 4, TotalB: 4, Common: 4}, r)
}

func TestInterleaved(t *testing.T) {
	// 0-29 common, 30-59 split by parity, 60-89 common
	var a, b []int
	for i := 0; i < 90; i++ {
		switch {
		case i < 30 || i >= 60:
			a = append(a, i)
			b = append(b, i)
		case i%2 == 0:
			a = append(a, i)
		default:
			b = append(b, i)
		}
	}
	r, err := diff.Ordered(context.Background(), a, b, func(diff.Delta, int) error { return nil })
	require.NoError(t, err)
	require.Equal(t, diff.Result{ExtraA: 15, ExtraB: 15, TotalA: 75, TotalB: 75, Common: 60}, r)
}

func TestRunsAndDuplicates(t *testing.T) {
	var out []string
	a := []int{1, 2, 2, 2, 3, 10, 11, 12}
	b := []int{0, 2, 4, 5, 6, 12, 13}
	r, err := diff.Ordered(context.Background(), a, b, collect[int](&out))
	require.NoError(t, err)
	require.Equal(t, []string{
		"> 0", "< 1", "< 2", "< 2", "< 3", "> 4", "> 5", "> 6", "< 10", "< 11", "> 13",
	}, out)
	require.Equal(t, diff.Result{ExtraA: 6, ExtraB: 5, TotalA: 8, TotalB: 7, Common: 2}, r)
}

func TestStringsCase(t *testing.T) {
	var out []string
	a := []string{"Apple", "banana", "Cherry"}
	b := []string{"apple", "BANANA", "date"}
	r, err := diff.Strings(context.Background(), a, b, order.IgnoreCase, func(d diff.Delta, s string) error {
		out = append(out, d.String()+" "+s)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"< Cherry", "> date"}, out)
	require.Equal(t, uint64(2), r.Common)

	r, err = diff.Strings(context.Background(), a, b, order.CaseBreaksTies, func(diff.Delta, string) error { return nil })
	require.NoError(t, err)
	require.Zero(t, r.Common)
}

func TestContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := diff.Ordered(ctx, []int{1}, []int{2}, func(diff.Delta, int) error { return nil })
	require.ErrorIs(t, err, context.Canceled)
}

func TestResultFuncError(t *testing.T) {
	testErr := fmt.Errorf("result function error")
	resultF := func(d diff.Delta, s string) error {
		if s == "error" {
			return testErr
		}
		return nil
	}
	_, err := diff.Strings(context.Background(), []string{"a", "error", "z"}, []string{"b"}, order.CaseMatters, resultF)
	require.Equal(t, testErr, err)
}

func TestStringResultChan(t *testing.T) {
	resultFunc, resultChan := diff.StringResultChan()

	go func() {
		defer close(resultChan)
		_, err := diff.Strings(context.Background(), []string{"only_in_a"}, []string{"only_in_b"}, order.CaseMatters, resultFunc)
		if err != nil {
			t.Errorf("diff error: %v", err)
		}
	}()

	var results []*diff.StringChanResult
	for result := range resultChan {
		results = append(results, result)
	}
	require.Equal(t, []*diff.StringChanResult{
		{D: diff.OLD, S: "only_in_a"},
		{D: diff.NEW, S: "only_in_b"},
	}, results)
}

func TestLargeDataset(t *testing.T) {
	const n = 1000000
	a := make([]int, 0, n)
	b := make([]int, 0, n)
	for i := 0; i < n; i++ {
		a = append(a, 2*i)
		if i%1000 != 0 {
			b = append(b, 2*i)
		}
	}
	b = append(b, 2*n+1)
	r, err := diff.Ordered(context.Background(), a, b, func(diff.Delta, int) error { return nil })
	require.NoError(t, err)
	require.Equal(t, uint64(1000), r.ExtraA)
	require.Equal(t, uint64(1), r.ExtraB)
	require.Equal(t, uint64(n-1000), r.Common)
}

func TestPrintDiff(t *testing.T) {
	require.NoError(t, diff.PrintDiff(diff.NEW, 42))
	require.NoError(t, diff.PrintStringDiff(diff.OLD, "x"))
	require.Equal(t, "?", diff.Delta(7).String())
}
