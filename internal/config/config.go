// Package config holds startup configuration loaded from YAML and the few
// settings that can change while the game runs.
package config

import (
	"os"

	"cubecity/internal/world"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid")

// ChunkSize is the block footprint of one chunk.
type ChunkSize struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	Z int `yaml:"z"`
}

type Config struct {
	LoadRange          int       `yaml:"load_range"`
	RemoveRange        int       `yaml:"remove_range"`
	Workers            int       `yaml:"workers"`
	QueueCapacity      int       `yaml:"queue_capacity"`
	MaxDispatchPerTick int       `yaml:"max_dispatch_per_tick"`
	ChunkSize          ChunkSize `yaml:"chunk_size"`
	BucketGranularity  int       `yaml:"bucket_granularity"`
	Generator          int       `yaml:"generator"`
	Seed               int64     `yaml:"seed"`
	TickRateHz         int       `yaml:"tick_rate_hz"`
}

// Default returns the stock configuration. Workers of zero means half the CPUs.
func Default() Config {
	return Config{
		LoadRange:          8,
		RemoveRange:        12,
		Workers:            0,
		QueueCapacity:      256,
		MaxDispatchPerTick: 64,
		ChunkSize:          ChunkSize{X: 16, Y: 128, Z: 16},
		BucketGranularity:  1024,
		Generator:          0,
		Seed:               1337,
		TickRateHz:         60,
	}
}

// Load reads path over the defaults, so a file only needs the keys it changes.
func Load(path string) (Config, error) {
	c := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return c, errors.Wrap(err, "config")
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, errors.Wrapf(err, "config %s", path)
	}
	if err := c.Validate(); err != nil {
		return c, errors.Wrapf(err, "config %s", path)
	}
	return c, nil
}

// Validate checks ranges and sizes.
func (c Config) Validate() error {
	switch {
	case c.LoadRange < 0:
		return errors.Wrapf(ErrInvalid, "load_range %d is negative", c.LoadRange)
	case c.RemoveRange < c.LoadRange:
		return errors.Wrapf(ErrInvalid, "remove_range %d below load_range %d", c.RemoveRange, c.LoadRange)
	case c.Workers < 0:
		return errors.Wrapf(ErrInvalid, "workers %d is negative", c.Workers)
	case c.QueueCapacity <= 0:
		return errors.Wrapf(ErrInvalid, "queue_capacity must be positive, got %d", c.QueueCapacity)
	case c.MaxDispatchPerTick <= 0:
		return errors.Wrapf(ErrInvalid, "max_dispatch_per_tick must be positive, got %d", c.MaxDispatchPerTick)
	case !c.Dims().Valid():
		return errors.Wrapf(ErrInvalid, "chunk_size %v", c.Dims())
	case c.BucketGranularity <= 0:
		return errors.Wrapf(ErrInvalid, "bucket_granularity must be positive, got %d", c.BucketGranularity)
	case c.Generator < 0:
		return errors.Wrapf(ErrInvalid, "generator %d is negative", c.Generator)
	case c.TickRateHz <= 0:
		return errors.Wrapf(ErrInvalid, "tick_rate_hz must be positive, got %d", c.TickRateHz)
	}
	return nil
}

// Dims converts ChunkSize to world dimensions.
func (c Config) Dims() world.Dims {
	return world.Dims{X: c.ChunkSize.X, Y: c.ChunkSize.Y, Z: c.ChunkSize.Z}
}
