package slab

import (
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

var errOverBudget = errors.New("over allocation budget")

// reserveBudget accounts n bytes against MaxBytes and reports whether they
// fit.
func (p *Pool) reserveBudget(n int64) bool {
	if p.cfg.MaxBytes == 0 {
		p.allocated.Add(n)
		return true
	}
	for {
		cur := p.allocated.Load()
		if cur+n > p.cfg.MaxBytes {
			return false
		}
		if p.allocated.CompareAndSwap(cur, cur+n) {
			return true
		}
	}
}

// drop forgets a slice the pool has no room for, leaving it to the garbage
// collector and returning its bytes to the budget. The pool cannot tell its
// own slices from foreign ones of the right size, so the count stops at zero.
func (p *Pool) drop(n int64) {
	for {
		cur := p.allocated.Load()
		if p.allocated.CompareAndSwap(cur, max(cur-n, 0)) {
			break
		}
	}
	p.stats.drops.Add(1)
}

// allocate creates a fresh item of size bytes. While the budget is exhausted
// it waits with exponential backoff, trying to reuse a cached item between
// waits. When every retry fails the emergency reserve is released and the
// call panics with ErrExhausted.
func allocate[A any](p *Pool, kind string, size int64, fresh func() *A, reuse func() *A) *A {
	if p.reserveBudget(size) {
		p.stats.allocs.Add(1)
		return fresh()
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.cfg.AllocBackoff
	b.MaxInterval = 64 * p.cfg.AllocBackoff
	b.MaxElapsedTime = 0
	b.Reset()

	var got *A
	op := func() error {
		if a := reuse(); a != nil {
			p.stats.reuses.Add(1)
			got = a
			return nil
		}
		if p.reserveBudget(size) {
			p.stats.allocs.Add(1)
			got = fresh()
			return nil
		}
		return errOverBudget
	}
	notify := func(err error, wait time.Duration) {
		p.stats.retries.Add(1)
		p.logger.Warn("pool allocation deferred",
			zap.String("kind", kind),
			zap.Int64("allocated", p.allocated.Load()),
			zap.Int64("max", p.cfg.MaxBytes),
			zap.Duration("wait", wait))
	}
	if err := backoff.RetryNotify(op, backoff.WithMaxRetries(b, uint64(p.cfg.AllocRetries)), notify); err != nil {
		p.reserve.Store(nil)
		p.logger.Error("pool allocation failed",
			zap.String("kind", kind),
			zap.Int("retries", p.cfg.AllocRetries),
			zap.Int64("allocated", p.allocated.Load()))
		panic(errors.Wrapf(ErrExhausted, "allocating %s slice of %d bytes after %d retries", kind, size, p.cfg.AllocRetries))
	}
	return got
}
