package slab

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

type counters struct {
	allocs     atomic.Uint64
	reuses     atomic.Uint64
	drops      atomic.Uint64
	splits     atomic.Uint64
	coalesces  atomic.Uint64
	trims      atomic.Uint64
	migrations atomic.Uint64
	retries    atomic.Uint64
}

// Stats is a snapshot of pool activity.
type Stats struct {
	Allocs         uint64 // fresh allocations
	Reuses         uint64 // withdrawals served from a store
	Drops          uint64 // slices released to the garbage collector
	Splits         uint64 // slabs broken into slices
	Coalesces      uint64 // slabs built from slices
	Trims          uint64 // slabs released by Maintain
	Migrations     uint64 // slices moved from peripheral to central stores
	Retries        uint64 // allocation waits under budget pressure
	AllocatedBytes int64  // bytes allocated and not dropped
	CentralSlices  int    // byte slices in the central store
	LocalSlices    int    // byte slices in all peripheral stores
	CentralSlabs   int    // slabs in the central store
	LocalSlabs     int    // slabs in all peripheral stores
	ReserveBytes   int    // emergency reserve still held
}

func (s Stats) String() string {
	return fmt.Sprintf("allocated %s in %s allocs, %s reuses, %s drops; slabs split %d coalesced %d trimmed %d; migrated %s; retries %d; available slices %d/%d slabs %d/%d",
		humanize.IBytes(uint64(max(s.AllocatedBytes, 0))),
		humanize.Comma(int64(s.Allocs)),
		humanize.Comma(int64(s.Reuses)),
		humanize.Comma(int64(s.Drops)),
		s.Splits, s.Coalesces, s.Trims,
		humanize.Comma(int64(s.Migrations)),
		s.Retries,
		s.CentralSlices, s.LocalSlices,
		s.CentralSlabs, s.LocalSlabs)
}

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() Stats {
	s := Stats{
		Allocs:         p.stats.allocs.Load(),
		Reuses:         p.stats.reuses.Load(),
		Drops:          p.stats.drops.Load(),
		Splits:         p.stats.splits.Load(),
		Coalesces:      p.stats.coalesces.Load(),
		Trims:          p.stats.trims.Load(),
		Migrations:     p.stats.migrations.Load(),
		Retries:        p.stats.retries.Load(),
		AllocatedBytes: p.allocated.Load(),
	}
	s.CentralSlices, s.LocalSlices = p.bytes.available()
	s.CentralSlabs, s.LocalSlabs = p.slabs.available()
	if r := p.reserve.Load(); r != nil {
		s.ReserveBytes = len(*r)
	}
	return s
}

// Maintain trims central slabs above the high-water mark and moves
// peripheral slices above LocalKeep to the central stores.
func (p *Pool) Maintain() {
	trimmed := 0
	for p.slabs.central.Len() > p.cfg.HighWaterSlabs {
		if p.slabs.central.Get() == nil {
			break
		}
		p.allocated.Add(-SlabSlices * sliceBytes)
		p.stats.trims.Add(1)
		trimmed++
	}
	migrated := migrate(p, &p.bytes) + migrate(p, &p.chars) + migrate(p, &p.ints) +
		migrate(p, &p.longs) + migrate(p, &p.doubles)
	if trimmed > 0 || migrated > 0 {
		p.logger.Debug("pool maintenance",
			zap.Int("slabs_trimmed", trimmed),
			zap.Int("slices_migrated", migrated))
	}
}

func migrate[A any](p *Pool, t *tier[A]) int {
	moved := 0
	for _, r := range t.local {
		for r.Len() > p.cfg.LocalKeep {
			a := r.Get()
			if a == nil {
				break
			}
			if !t.central.Put(a) {
				p.drop(sliceBytes)
			}
			p.stats.migrations.Add(1)
			moved++
		}
	}
	return moved
}

// Run calls Maintain every DrainInterval until ctx is done or the pool is
// closed.
func (p *Pool) Run(ctx context.Context) error {
	t := time.NewTicker(p.cfg.DrainInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.done:
			return nil
		case <-t.C:
			p.Maintain()
		}
	}
}

// Close stops Run. Calling Close multiple times is safe.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.done)
	})
}
