package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultSamples        = 19
	DefaultTrialsPerFrame = 5000
	DefaultFrameMs        = 500
	DefaultMaxBuckets     = 41
	DefaultSnapshotEvery  = 1000
)

// Display modes. Accumulate keeps growing the histogram across frames;
// refresh rebuilds it from a fresh batch every frame, the way the
// original demo animated.
const (
	ModeAccumulate = "accumulate"
	ModeRefresh    = "refresh"
)

type Config struct {
	Source         string             `yaml:"source"`
	Params         map[string]float64 `yaml:"params,omitempty"`
	Samples        int                `yaml:"samples"`
	TrialsPerFrame int                `yaml:"trials_per_frame"`
	MaxTrials      int                `yaml:"max_trials"`
	Seed           int64              `yaml:"seed"`
	Mode           string             `yaml:"mode"`
	FrameMs        int                `yaml:"frame_ms"`
	Buckets        int                `yaml:"buckets"`
	Theme          string             `yaml:"theme"`
	SnapshotEvery  int                `yaml:"snapshot_every"`
}

func DefaultConfig() *Config {
	return &Config{
		Source:         "coin",
		Samples:        DefaultSamples,
		TrialsPerFrame: DefaultTrialsPerFrame,
		Mode:           ModeAccumulate,
		FrameMs:        DefaultFrameMs,
		Buckets:        DefaultMaxBuckets,
		Theme:          "matrix",
		SnapshotEvery:  DefaultSnapshotEvery,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Source == "" {
		return fmt.Errorf("source must be set")
	}
	if c.Samples < 1 {
		return fmt.Errorf("samples must be at least 1, got %d", c.Samples)
	}
	if c.TrialsPerFrame < 1 {
		return fmt.Errorf("trials_per_frame must be at least 1, got %d", c.TrialsPerFrame)
	}
	if c.MaxTrials < 0 {
		return fmt.Errorf("max_trials must not be negative, got %d", c.MaxTrials)
	}
	if c.FrameMs < 16 {
		return fmt.Errorf("frame_ms must be at least 16, got %d", c.FrameMs)
	}
	if c.Buckets < 3 {
		return fmt.Errorf("buckets must be at least 3, got %d", c.Buckets)
	}
	if c.Mode != ModeAccumulate && c.Mode != ModeRefresh {
		return fmt.Errorf("mode must be %s or %s, got %q", ModeAccumulate, ModeRefresh, c.Mode)
	}
	if c.SnapshotEvery < 0 {
		return fmt.Errorf("snapshot_every must not be negative, got %d", c.SnapshotEvery)
	}
	return nil
}

func (c *Config) FrameInterval() time.Duration {
	return time.Duration(c.FrameMs) * time.Millisecond
}
