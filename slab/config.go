package slab

import (
	"runtime"
	"time"

	"go.uber.org/zap"
)

// Config holds the capacities and maintenance settings of a Pool.
type Config struct {
	Peripherals    int           // number of per-goroutine stores, rounded up to a power of two
	LocalSlices    int           // slices of each element type cached per peripheral store
	LocalSlabs     int           // slabs cached per peripheral store
	LocalKeep      int           // slices per peripheral store left in place by Maintain
	CentralSlices  int           // slices of each element type cached centrally
	CentralSlabs   int           // slabs cached centrally
	HighWaterSlabs int           // central slab count above which Maintain trims
	MaxBytes       int64         // allocation budget in bytes, 0 for unbounded
	ReserveBytes   int           // emergency reserve shed before an exhaustion panic, negative for none
	AllocRetries   int           // allocation attempts after the budget is first hit
	AllocBackoff   time.Duration // initial wait between allocation attempts
	DrainInterval  time.Duration // period of the Run maintenance loop
	Logger         *zap.Logger   // nil for no logging
}

// DefaultConfig returns the configuration used when none is provided.
func DefaultConfig() *Config {
	return &Config{
		Peripherals:    runtime.GOMAXPROCS(0),
		LocalSlices:    2 * SlabSlices,
		LocalSlabs:     2,
		LocalKeep:      SlabSlices / 4,
		CentralSlices:  4 * SlabSlices,
		CentralSlabs:   32,
		HighWaterSlabs: 8,
		MaxBytes:       0,
		ReserveBytes:   1 << 20, // 1MiB
		AllocRetries:   10,
		AllocBackoff:   time.Millisecond,
		DrainInterval:  10 * time.Second,
		Logger:         zap.NewNop(),
	}
}

// mergeConfig takes a provided config and replaces any values not set with the defaults
func mergeConfig(c *Config) *Config {
	d := DefaultConfig()
	if c == nil {
		return d
	}
	m := *c
	if m.Peripherals <= 0 {
		m.Peripherals = d.Peripherals
	}
	m.Peripherals = ceilPow2(m.Peripherals)
	if m.LocalSlices <= 0 {
		m.LocalSlices = d.LocalSlices
	}
	if m.LocalSlabs <= 0 {
		m.LocalSlabs = d.LocalSlabs
	}
	if m.LocalKeep <= 0 {
		m.LocalKeep = d.LocalKeep
	}
	if m.CentralSlices <= 0 {
		m.CentralSlices = d.CentralSlices
	}
	if m.CentralSlabs <= 0 {
		m.CentralSlabs = d.CentralSlabs
	}
	if m.HighWaterSlabs <= 0 {
		m.HighWaterSlabs = d.HighWaterSlabs
	}
	if m.MaxBytes < 0 {
		m.MaxBytes = d.MaxBytes
	}
	if m.ReserveBytes == 0 {
		m.ReserveBytes = d.ReserveBytes
	}
	if m.AllocRetries <= 0 {
		m.AllocRetries = d.AllocRetries
	}
	if m.AllocBackoff <= 0 {
		m.AllocBackoff = d.AllocBackoff
	}
	if m.DrainInterval <= 0 {
		m.DrainInterval = d.DrainInterval
	}
	if m.Logger == nil {
		m.Logger = d.Logger
	}
	return &m
}

func ceilPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
