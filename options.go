package hl7v2

import (
	"runtime"
	"time"
)

// Option configures engine behavior.
type Option func(*Options)

// Options holds all configuration for the engine.
type Options struct {
	// Mode selects strict or compatibility severity grading.
	Mode Mode

	// Validation flags
	ValidateStructure bool
	ValidateContent   bool
	ValidateTables    bool

	// WorkerCount is the worker count for batch operations.
	WorkerCount int

	// BatchTimeout bounds a whole batch operation. Zero means no timeout.
	BatchTimeout time.Duration

	// DefaultSeed seeds generation when the caller supplies none.
	// Zero means derive a seed from the clock.
	DefaultSeed int64

	// MinVendorConfidence is the score below which vendor detection
	// reports no-match.
	MinVendorConfidence float64

	// CollectMetrics enables in-process metric collection.
	CollectMetrics bool
}

// DefaultOptions returns the default configuration.
func DefaultOptions() *Options {
	return &Options{
		Mode:                ModeStrict,
		ValidateStructure:   true,
		ValidateContent:     true,
		ValidateTables:      true,
		WorkerCount:         runtime.NumCPU(),
		BatchTimeout:        0,
		DefaultSeed:         0,
		MinVendorConfidence: 0.5,
		CollectMetrics:      true,
	}
}

// WithMode sets the validation mode.
func WithMode(mode Mode) Option {
	return func(o *Options) {
		if mode.IsValid() {
			o.Mode = mode
		}
	}
}

// WithStructureValidation enables or disables the structural walk.
func WithStructureValidation(enable bool) Option {
	return func(o *Options) {
		o.ValidateStructure = enable
	}
}

// WithContentValidation enables or disables per-field content checks.
func WithContentValidation(enable bool) Option {
	return func(o *Options) {
		o.ValidateContent = enable
	}
}

// WithTableValidation enables or disables code-table membership checks.
func WithTableValidation(enable bool) Option {
	return func(o *Options) {
		o.ValidateTables = enable
	}
}

// WithWorkerCount sets the worker count for batch operations.
// Defaults to runtime.NumCPU().
func WithWorkerCount(count int) Option {
	return func(o *Options) {
		if count > 0 {
			o.WorkerCount = count
		}
	}
}

// WithBatchTimeout bounds batch operations. Zero means no timeout.
func WithBatchTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.BatchTimeout = timeout
	}
}

// WithDefaultSeed sets the seed used when a generation call supplies none.
func WithDefaultSeed(seed int64) Option {
	return func(o *Options) {
		o.DefaultSeed = seed
	}
}

// WithMinVendorConfidence sets the vendor-detection no-match threshold.
func WithMinVendorConfidence(min float64) Option {
	return func(o *Options) {
		if min >= 0 && min <= 1 {
			o.MinVendorConfidence = min
		}
	}
}

// WithMetrics enables or disables metric collection.
func WithMetrics(enable bool) Option {
	return func(o *Options) {
		o.CollectMetrics = enable
	}
}

// StrictOptions returns options for strict conformance checking.
func StrictOptions() []Option {
	return []Option{
		WithMode(ModeStrict),
		WithStructureValidation(true),
		WithContentValidation(true),
		WithTableValidation(true),
	}
}

// CompatibilityOptions returns options tolerant of real-world traffic.
func CompatibilityOptions() []Option {
	return []Option{
		WithMode(ModeCompatibility),
		WithStructureValidation(true),
		WithContentValidation(true),
		WithTableValidation(true),
	}
}
