package gravel

import (
	"math"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Sorter runs the sort engine on several goroutines. When a partition larger
// than Config.ParallelThreshold splits, its left branch is handed to a worker
// with a forked comparator while the current goroutine continues with the
// right branch. Once Config.NumWorkers goroutines are busy, branches run
// inline. Panics raised by comparators or by the engine's precondition checks
// are recovered and returned as *SortError.
//
// A Sorter holds only configuration and may be shared.
type Sorter struct {
	config *Config
	logger *zap.Logger
}

// NewSorter returns a Sorter. A nil config uses DefaultConfig.
func NewSorter(config *Config) *Sorter {
	cfg := mergeConfig(config)
	return &Sorter{config: cfg, logger: cfg.Logger}
}

// parallel is the state shared by all branches of one Sorter call.
type parallel struct {
	g         errgroup.Group
	threshold int
	logger    *zap.Logger
	failed    atomic.Bool
	forks     atomic.Int64
}

// guard runs f, converting a panic into a SortError and stopping the other
// branches.
func (p *parallel) guard(context string, f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.failed.Store(true)
			err = NewSortError(r, context)
		}
	}()
	f()
	return nil
}

// fork tries to sort [first, first+n) on a worker. It reports false when no
// worker was free.
func (p *parallel) fork(t *task, c Comparator, first, n, depth int) bool {
	if n <= 1 || first > t.hi || first+n-1 < t.lo {
		return false
	}
	child := newTask(t.lo, t.hi, t.rng.Uint64(), p)
	fc := c.Fork()
	ok := p.g.TryGo(func() error {
		defer fc.Close()
		return p.guard("sort branch", func() {
			child.sort(fc, first, n, depth)
		})
	})
	if !ok {
		fc.Close()
		return false
	}
	p.forks.Add(1)
	p.logger.Debug("forked sort branch",
		zap.Int("first", first),
		zap.Int("n", n),
		zap.Int("depth", depth))
	return true
}

func (s *Sorter) seed() uint64 {
	if s.config.Seed != 0 {
		return s.config.Seed
	}
	return clockSeed()
}

// run sorts the window [lo, hi] of [first, first+n) and waits for every
// forked branch.
func (s *Sorter) run(context string, c Comparator, first, n, lo, hi int, check func()) error {
	p := &parallel{threshold: s.config.ParallelThreshold, logger: s.logger}
	if s.config.NumWorkers == 1 {
		p.threshold = math.MaxInt
	}
	// the calling goroutine is one of the workers
	p.g.SetLimit(s.config.NumWorkers - 1)
	err := p.guard(context, func() {
		check()
		newTask(lo, hi, s.seed(), p).sort(c, first, n, 0)
	})
	if werr := p.g.Wait(); err == nil {
		err = werr
	}
	if err != nil {
		s.logger.Error("sort failed", zap.String("op", context), zap.Error(err))
		return err
	}
	s.logger.Debug("sorted",
		zap.String("op", context),
		zap.Int("n", n),
		zap.Int64("forks", p.forks.Load()))
	return nil
}

// Sort sorts all elements of c in its direction.
func (s *Sorter) Sort(c Comparator) error {
	n := c.Len()
	return s.run("Sort", c, 0, n, 0, n-1, func() {})
}

// SortRange sorts the elements in [first, first+n).
func (s *Sorter) SortRange(c Comparator, first, n int) error {
	return s.run("SortRange", c, first, n, first, first+n-1, func() {
		checkRange(c.Len(), first, n)
	})
}

// SortWindow is the parallel form of the package level SortWindow.
func (s *Sorter) SortWindow(c Comparator, first, n, minIndex, maxIndex int) error {
	return s.run("SortWindow", c, first, n, minIndex, maxIndex, func() {
		checkRange(c.Len(), first, n)
		checkWindow(minIndex, maxIndex)
	})
}

// SortMap returns the sort map of c without moving its elements.
func (s *Sorter) SortMap(c Comparator) ([]int, error) {
	m := newMapComparator(c)
	if err := s.Sort(m); err != nil {
		return nil, err
	}
	return m.p, nil
}

// SortMapAndCrop returns the first k entries of the sort map of c.
func (s *Sorter) SortMapAndCrop(c Comparator, k int) ([]int, error) {
	m := newMapComparator(c)
	k = clamp(k, 0, len(m.p))
	if k == 0 {
		return []int{}, nil
	}
	if err := s.SortWindow(m, 0, len(m.p), 0, k-1); err != nil {
		return nil, err
	}
	return m.p[:k:k], nil
}
