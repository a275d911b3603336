package main

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/lanrat/gravel"
	"github.com/lanrat/gravel/slab"
)

// fileConfig is the layout of the --config YAML file. Zero values keep the
// library defaults.
type fileConfig struct {
	Sort struct {
		Workers           int    `yaml:"workers"`
		ParallelThreshold int    `yaml:"parallel_threshold"`
		Seed              uint64 `yaml:"seed"`
	} `yaml:"sort"`
	Pool struct {
		Peripherals    int           `yaml:"peripherals"`
		LocalSlices    int           `yaml:"local_slices"`
		CentralSlices  int           `yaml:"central_slices"`
		HighWaterSlabs int           `yaml:"high_water_slabs"`
		MaxBytes       string        `yaml:"max_bytes"`
		ReserveBytes   string        `yaml:"reserve_bytes"`
		AllocRetries   int           `yaml:"alloc_retries"`
		DrainInterval  time.Duration `yaml:"drain_interval"`
	} `yaml:"pool"`
}

func loadConfig(path string) (*fileConfig, error) {
	var fc fileConfig
	if path == "" {
		return &fc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	return &fc, nil
}

func (fc *fileConfig) sorterConfig(logger *zap.Logger) *gravel.Config {
	return &gravel.Config{
		NumWorkers:        fc.Sort.Workers,
		ParallelThreshold: fc.Sort.ParallelThreshold,
		Seed:              fc.Sort.Seed,
		Logger:            logger,
	}
}

func parseSize(field, s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, errors.Wrapf(err, "pool.%s", field)
	}
	return int64(n), nil
}

func (fc *fileConfig) poolConfig(logger *zap.Logger) (*slab.Config, error) {
	maxBytes, err := parseSize("max_bytes", fc.Pool.MaxBytes)
	if err != nil {
		return nil, err
	}
	reserve, err := parseSize("reserve_bytes", fc.Pool.ReserveBytes)
	if err != nil {
		return nil, err
	}
	return &slab.Config{
		Peripherals:    fc.Pool.Peripherals,
		LocalSlices:    fc.Pool.LocalSlices,
		CentralSlices:  fc.Pool.CentralSlices,
		HighWaterSlabs: fc.Pool.HighWaterSlabs,
		MaxBytes:       maxBytes,
		ReserveBytes:   int(reserve),
		AllocRetries:   fc.Pool.AllocRetries,
		DrainInterval:  fc.Pool.DrainInterval,
		Logger:         logger,
	}, nil
}
