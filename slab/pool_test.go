package slab_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/lanrat/gravel/slab"
)

func testPool(t *testing.T, c *slab.Config) *slab.Pool {
	if c == nil {
		c = &slab.Config{}
	}
	c.Logger = zaptest.NewLogger(t)
	p := slab.New(c)
	t.Cleanup(p.Close)
	return p
}

func recoverError(t *testing.T, f func()) (err error) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic")
		var ok bool
		err, ok = r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
	}()
	f()
	return nil
}

func TestSliceLengths(t *testing.T) {
	p := testPool(t, nil)
	require.Len(t, p.GetBytes(), slab.ByteSliceLen)
	require.Len(t, p.GetChars(), slab.CharSliceLen)
	require.Len(t, p.GetInts(), slab.IntSliceLen)
	require.Len(t, p.GetLongs(), slab.LongSliceLen)
	require.Len(t, p.GetDoubles(), slab.DoubleSliceLen)
	require.Equal(t, uint64(5), p.Stats().Allocs)
}

func TestRoundTripReuses(t *testing.T) {
	p := testPool(t, nil)

	b := p.GetBytes()
	require.Equal(t, byte(0), b[0])
	b[1] = 42
	p.PutBytes(b[:10])

	b2 := p.GetBytes()
	require.Equal(t, byte(0), b2[0], "stamp must be cleared on withdrawal")
	require.Equal(t, byte(42), b2[1], "expected the same slice back")

	l := p.GetLongs()
	p.PutLongs(l)
	p.GetLongs()
	d := p.GetDoubles()
	p.PutDoubles(d)
	p.GetDoubles()
	c := p.GetChars()
	p.PutChars(c)
	p.GetChars()
	i := p.GetInts()
	p.PutInts(i)
	p.GetInts()

	st := p.Stats()
	require.Equal(t, uint64(5), st.Allocs)
	require.Equal(t, uint64(5), st.Reuses)
}

func TestCorruptedSliceRejected(t *testing.T) {
	p := testPool(t, nil)
	b := p.GetBytes()
	p.PutBytes(b)
	// a stale holder writes through the released slice
	b[0] = 7

	err := recoverError(t, func() { p.GetBytes() })
	require.True(t, errors.Is(err, slab.ErrCorrupted), "%v", err)
	require.True(t, errors.HasAssertionFailure(err))
}

func TestWrongSizeRejected(t *testing.T) {
	p := testPool(t, nil)
	err := recoverError(t, func() { p.PutBytes(make([]byte, 100)) })
	require.True(t, errors.Is(err, slab.ErrWrongSize))

	b := p.GetBytes()
	err = recoverError(t, func() { p.PutBytes(b[1:]) })
	require.True(t, errors.Is(err, slab.ErrWrongSize))

	require.Panics(t, func() { p.PutLongs(make([]int64, 3)) })
	require.Panics(t, func() { p.PutDoubles(nil) })
	require.Panics(t, func() { p.PutInts(make([]int32, slab.IntSliceLen+1)) })
	require.Panics(t, func() { p.PutChars(make([]uint16, 1)) })
}

func TestSlabRoundTrip(t *testing.T) {
	p := testPool(t, nil)
	s := p.GetSlab()
	require.Equal(t, slab.SlabSlices, s.Len())
	for i := 0; i < s.Len(); i++ {
		b := s.Slice(i)
		require.Len(t, b, slab.ByteSliceLen)
		require.Equal(t, byte(0), b[0])
	}
	p.PutSlab(s)
	require.Equal(t, s, p.GetSlab())
	require.Equal(t, uint64(1), p.Stats().Allocs)
}

func TestSlabSplitServesSlices(t *testing.T) {
	p := testPool(t, &slab.Config{Peripherals: 1})
	s := p.GetSlab()
	p.PutSlab(s)

	before := p.Stats()
	for i := 0; i < slab.SlabSlices; i++ {
		p.GetBytes()
	}
	after := p.Stats()
	require.Equal(t, before.Allocs, after.Allocs, "slices should come from the split slab")
	require.Equal(t, uint64(1), after.Splits)
}

func TestCoalesceWhenLocalFull(t *testing.T) {
	p := testPool(t, &slab.Config{
		Peripherals: 1,
		LocalSlices: slab.SlabSlices - 1,
		LocalSlabs:  1,
	})
	held := make([][]byte, slab.SlabSlices)
	for i := range held {
		held[i] = p.GetBytes()
	}
	for _, b := range held {
		p.PutBytes(b)
	}
	st := p.Stats()
	require.Equal(t, uint64(1), st.Coalesces)
	require.Equal(t, 1, st.LocalSlabs)
	require.Equal(t, 0, st.LocalSlices)

	// the coalesced slab is split again on demand
	p.GetBytes()
	require.Equal(t, uint64(1), p.Stats().Splits)
}

func TestDropWhenFull(t *testing.T) {
	p := testPool(t, &slab.Config{Peripherals: 1, LocalSlices: 1, CentralSlices: 1})
	a, b, c := p.GetLongs(), p.GetLongs(), p.GetLongs()
	p.PutLongs(a)
	p.PutLongs(b)
	p.PutLongs(c)
	st := p.Stats()
	require.Equal(t, uint64(1), st.Drops)
	require.Equal(t, int64(2*slab.ByteSliceLen), st.AllocatedBytes)
}

func TestDropForeignSliceKeepsBudget(t *testing.T) {
	p := testPool(t, &slab.Config{Peripherals: 1, LocalSlices: 1, CentralSlices: 1})
	for i := 0; i < 3; i++ {
		p.PutBytes(make([]byte, slab.ByteSliceLen))
	}
	st := p.Stats()
	require.Equal(t, uint64(1), st.Drops)
	require.Zero(t, st.AllocatedBytes)
}

func TestReserveDefaults(t *testing.T) {
	require.Equal(t, slab.DefaultConfig().ReserveBytes, testPool(t, &slab.Config{MaxBytes: 1 << 20}).Stats().ReserveBytes)
	require.Zero(t, testPool(t, &slab.Config{ReserveBytes: -1}).Stats().ReserveBytes)
	require.Equal(t, 4096, testPool(t, &slab.Config{ReserveBytes: 4096}).Stats().ReserveBytes)
}

func TestExhaustionIsFatal(t *testing.T) {
	p := testPool(t, &slab.Config{
		MaxBytes:     slab.ByteSliceLen,
		AllocRetries: 2,
		AllocBackoff: time.Millisecond,
	})
	p.GetBytes()
	require.Positive(t, p.Stats().ReserveBytes)

	err := recoverError(t, func() { p.GetBytes() })
	require.True(t, errors.Is(err, slab.ErrExhausted), "%v", err)
	st := p.Stats()
	require.Equal(t, uint64(2), st.Retries)
	require.Zero(t, st.ReserveBytes, "reserve must be shed")
}

func TestExhaustionRecoversWhenSliceReturned(t *testing.T) {
	p := testPool(t, &slab.Config{
		MaxBytes:     slab.ByteSliceLen,
		AllocRetries: 50,
		AllocBackoff: time.Millisecond,
	})
	b := p.GetBytes()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		time.Sleep(5 * time.Millisecond)
		p.PutBytes(b)
	}()
	got := p.GetBytes()
	wg.Wait()
	require.Len(t, got, slab.ByteSliceLen)
	require.Equal(t, uint64(1), p.Stats().Allocs)
}

func TestMaintainTrimsAndMigrates(t *testing.T) {
	p := testPool(t, &slab.Config{
		Peripherals:    1,
		LocalSlabs:     1,
		CentralSlabs:   8,
		HighWaterSlabs: 2,
		LocalKeep:      4,
	})
	slabs := make([]*slab.Slab, 6)
	for i := range slabs {
		slabs[i] = p.GetSlab()
	}
	for _, s := range slabs {
		p.PutSlab(s)
	}
	held := make([][]byte, 10)
	for i := range held {
		held[i] = p.GetBytes()
	}
	for _, b := range held {
		p.PutBytes(b)
	}
	before := p.Stats()
	require.Equal(t, 5, before.CentralSlabs)

	p.Maintain()
	after := p.Stats()
	require.Equal(t, 2, after.CentralSlabs)
	require.Equal(t, uint64(3), after.Trims)
	require.Equal(t, 4, after.LocalSlices)
	require.Equal(t, before.LocalSlices-4, after.CentralSlices-before.CentralSlices)
	require.NotEmpty(t, after.String())
}

func TestRunStopsOnClose(t *testing.T) {
	p := testPool(t, &slab.Config{DrainInterval: time.Millisecond})
	done := make(chan error, 1)
	go func() { done <- p.Run(context.Background()) }()
	time.Sleep(5 * time.Millisecond)
	p.Close()
	p.Close()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, slab.New(nil).Run(ctx), context.Canceled)
}

func TestConcurrentGetPut(t *testing.T) {
	p := testPool(t, &slab.Config{Peripherals: 4, LocalSlices: 8, CentralSlices: 16})
	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				b := p.GetBytes()
				b[1] = byte(g)
				b[2] = byte(i)
				if b[1] != byte(g) {
					t.Errorf("goroutine %d: slice shared with another holder", g)
				}
				p.PutBytes(b)
			}
		}(g)
	}
	wg.Wait()
	st := p.Stats()
	require.Equal(t, st.Allocs, st.Drops+uint64(st.CentralSlices+st.LocalSlices))
}
