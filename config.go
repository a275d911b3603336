package gravel

import (
	"runtime"

	"go.uber.org/zap"
)

// Config holds configuration settings for a Sorter
type Config struct {
	NumWorkers        int         // maximum number of goroutines sorting at once, including the caller
	ParallelThreshold int         // partitions larger than this fork their left branch onto a worker
	Seed              uint64      // pivot selection seed, 0 picks one from the clock
	Logger            *zap.Logger // nil logs nothing
}

// DefaultConfig returns the default configuration options used if none provided
func DefaultConfig() *Config {
	return &Config{
		NumWorkers:        runtime.GOMAXPROCS(0),
		ParallelThreshold: 1 << 14,
		Seed:              0,
		Logger:            zap.NewNop(),
	}
}

// mergeConfig takes a provided config and returns a copy with any values not
// set replaced by the defaults
func mergeConfig(c *Config) *Config {
	d := DefaultConfig()
	if c == nil {
		return d
	}
	m := *c
	if m.NumWorkers < 1 {
		m.NumWorkers = d.NumWorkers
	}
	if m.ParallelThreshold < 8 {
		m.ParallelThreshold = d.ParallelThreshold
	}
	if m.Logger == nil {
		m.Logger = d.Logger
	}
	// Seed 0 is resolved per sort
	return &m
}
