// Package config loads engine settings from a TOML file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	hl7 "github.com/gohl7/hl7v2"
)

// Config is the on-disk engine configuration.
type Config struct {
	// Mode is "strict" or "compatibility".
	Mode string `toml:"mode"`

	Validation Validation `toml:"validation"`
	Generation Generation `toml:"generation"`
	Vendor     Vendor     `toml:"vendor"`
	Batch      Batch      `toml:"batch"`
}

// Validation selects the validator's check groups.
type Validation struct {
	Structure bool `toml:"structure"`
	Content   bool `toml:"content"`
	Tables    bool `toml:"tables"`
}

// Generation configures synthetic message output.
type Generation struct {
	// DefaultSeed seeds generation calls that supply none. Zero derives
	// a seed from the clock.
	DefaultSeed int64 `toml:"default_seed"`
}

// Vendor configures vendor detection.
type Vendor struct {
	// ProfileDB is the SQLite path of the vendor-profile registry.
	ProfileDB string `toml:"profile_db"`

	// MinConfidence is the detection no-match threshold.
	MinConfidence float64 `toml:"min_confidence"`
}

// Batch configures bulk operations.
type Batch struct {
	// Workers bounds parallelism; zero means one worker per CPU.
	Workers int `toml:"workers"`

	// Timeout bounds a whole batch; zero means no timeout.
	Timeout time.Duration `toml:"timeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Mode: string(hl7.ModeStrict),
		Validation: Validation{
			Structure: true,
			Content:   true,
			Tables:    true,
		},
		Vendor: Vendor{
			MinConfidence: 0.5,
		},
	}
}

// Load reads a TOML configuration file, filling unset values from Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if !hl7.Mode(cfg.Mode).IsValid() {
		return nil, fmt.Errorf("config: unknown mode %q", cfg.Mode)
	}
	if cfg.Vendor.MinConfidence < 0 || cfg.Vendor.MinConfidence > 1 {
		return nil, fmt.Errorf("config: min_confidence %v outside [0,1]", cfg.Vendor.MinConfidence)
	}
	return cfg, nil
}

// Options converts the configuration into engine options.
func (c *Config) Options() []hl7.Option {
	return []hl7.Option{
		hl7.WithMode(hl7.Mode(c.Mode)),
		hl7.WithStructureValidation(c.Validation.Structure),
		hl7.WithContentValidation(c.Validation.Content),
		hl7.WithTableValidation(c.Validation.Tables),
		hl7.WithWorkerCount(c.Batch.Workers),
		hl7.WithBatchTimeout(c.Batch.Timeout),
		hl7.WithDefaultSeed(c.Generation.DefaultSeed),
		hl7.WithMinVendorConfidence(c.Vendor.MinConfidence),
	}
}
