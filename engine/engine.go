// Package engine wires the definition repository, parser, validator,
// resolver chain, composer, and analyzers behind one type.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	hl7 "github.com/gohl7/hl7v2"
	"github.com/gohl7/hl7v2/analysis"
	"github.com/gohl7/hl7v2/composer"
	"github.com/gohl7/hl7v2/dataset"
	"github.com/gohl7/hl7v2/message"
	"github.com/gohl7/hl7v2/parser"
	"github.com/gohl7/hl7v2/registry"
	"github.com/gohl7/hl7v2/resolver"
	"github.com/gohl7/hl7v2/specs"
	"github.com/gohl7/hl7v2/store"
	"github.com/gohl7/hl7v2/validator"
	"github.com/gohl7/hl7v2/worker"
)

// Engine is the message engine facade.
type Engine struct {
	version  hl7.Version
	options  *hl7.Options
	defs     *registry.Registry
	parser   *parser.Parser
	valid    *validator.Validator
	composer *composer.Composer
	analyzer *analysis.Analyzer
	detector *analysis.Detector
	profiles store.ProfileStore
	metrics  *hl7.Metrics
	log      *slog.Logger
}

// New creates an Engine for an HL7 version using the embedded definition
// set.
func New(version hl7.Version, opts ...hl7.Option) (*Engine, error) {
	if !version.IsValid() {
		return nil, fmt.Errorf("hl7v2: unsupported version %q", version)
	}

	options := hl7.DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	reg, err := specs.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("hl7v2: load definitions: %w", err)
	}
	lib, err := dataset.Load()
	if err != nil {
		return nil, fmt.Errorf("hl7v2: load datasets: %w", err)
	}

	analyzer := analysis.New(reg)
	analyzer.SetWorkers(options.WorkerCount)

	e := &Engine{
		version:  version,
		options:  options,
		defs:     reg,
		parser:   parser.New(reg),
		valid:    validator.NewWithOptions(reg, options),
		composer: composer.New(reg, resolver.Default(reg, lib)),
		analyzer: analyzer,
		detector: analysis.NewDetector(options.MinVendorConfidence),
		metrics:  hl7.NewMetrics(),
		log:      slog.Default(),
	}
	analyzer.SetLogger(e.log)
	return e, nil
}

// SetLogger replaces the engine's logger.
func (e *Engine) SetLogger(log *slog.Logger) {
	if log != nil {
		e.log = log
		e.analyzer.SetLogger(log)
	}
}

// SetProfileStore attaches a vendor-profile registry and loads its profiles
// into the detector.
func (e *Engine) SetProfileStore(ctx context.Context, profiles store.ProfileStore) error {
	stored, err := profiles.ListProfiles(ctx)
	if err != nil {
		return err
	}
	e.profiles = profiles
	for _, p := range stored {
		e.detector.Register(p)
	}
	e.log.Debug("vendor profiles loaded", "count", len(stored))
	return nil
}

// RegisterVendorProfile adds a profile to the detector and, when a store is
// attached, persists it.
func (e *Engine) RegisterVendorProfile(ctx context.Context, profile analysis.VendorProfile) error {
	e.detector.Register(profile)
	if e.profiles != nil {
		return e.profiles.SaveProfile(ctx, profile)
	}
	return nil
}

// Version returns the engine's HL7 version.
func (e *Engine) Version() hl7.Version {
	return e.version
}

// Registry exposes the definition repository.
func (e *Engine) Registry() *registry.Registry {
	return e.defs
}

// Metrics returns the engine's metrics collector.
func (e *Engine) Metrics() *hl7.Metrics {
	return e.metrics
}

// Parse turns wire text into a ParsedMessage.
func (e *Engine) Parse(raw string) (*message.ParsedMessage, error) {
	msg, err := e.parser.Parse(raw)
	if e.options.CollectMetrics {
		e.metrics.RecordParse(err == nil)
	}
	if err != nil {
		e.log.Debug("parse failed", "error", err)
		return nil, err
	}
	return msg, nil
}

// Validate checks a parsed message in the engine's configured mode.
func (e *Engine) Validate(ctx context.Context, msg *message.ParsedMessage) *hl7.ValidationResult {
	return e.ValidateMode(ctx, msg, e.options.Mode)
}

// ValidateMode checks a parsed message in an explicit mode.
func (e *Engine) ValidateMode(ctx context.Context, msg *message.ParsedMessage, mode hl7.Mode) *hl7.ValidationResult {
	result := e.valid.Validate(ctx, msg, mode)
	if e.options.CollectMetrics {
		e.metrics.RecordValidation(result.Elapsed, result.Valid)
		e.metrics.RecordIssues(result.Issues)
	}
	e.log.Debug("message validated",
		"messageType", result.MessageType,
		"mode", mode,
		"valid", result.Valid,
		"issues", len(result.Issues))
	return result
}

// ValidateRaw parses then validates in one call.
func (e *Engine) ValidateRaw(ctx context.Context, raw string) (*hl7.ValidationResult, error) {
	msg, err := e.Parse(raw)
	if err != nil {
		return nil, err
	}
	return e.Validate(ctx, msg), nil
}

// ValidateBatch validates a corpus across the engine's worker pool,
// honoring the configured batch timeout. Results keep submission order.
func (e *Engine) ValidateBatch(ctx context.Context, corpus []string) *worker.BatchResult {
	if e.options.BatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.options.BatchTimeout)
		defer cancel()
	}
	validate := func(ctx context.Context, raw string, mode hl7.Mode) (*hl7.ValidationResult, error) {
		msg, err := e.Parse(raw)
		if err != nil {
			return nil, err
		}
		return e.ValidateMode(ctx, msg, mode), nil
	}
	batch := worker.Batch(ctx, validate, e.options.Mode, corpus, e.options.WorkerCount)
	e.log.Debug("batch validated",
		"messages", batch.TotalJobs,
		"completed", batch.CompletedJobs,
		"failed", batch.FailedJobs)
	return batch
}

// GenerateOptions configures one generation call.
type GenerateOptions struct {
	// Seed makes output reproducible. Zero falls back to the engine's
	// default seed, and failing that to the clock.
	Seed int64

	// Session carries locked field overrides, possibly nil.
	Session *resolver.Session

	// Include lists optional segment codes to instantiate.
	Include []string
}

// Generate composes a synthetic message for a trigger event ("A01" or
// "ADT^A01").
func (e *Engine) Generate(ctx context.Context, event string, opts GenerateOptions) (*hl7.GeneratedMessage, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = e.options.DefaultSeed
	}
	start := time.Now()
	msg, err := e.composer.Compose(ctx, event, composer.Options{
		Seed:    seed,
		Session: opts.Session,
		Include: opts.Include,
	})
	if e.options.CollectMetrics {
		e.metrics.RecordGeneration(err == nil)
	}
	if err != nil {
		e.log.Debug("generation failed", "event", event, "error", err)
		return nil, err
	}
	e.log.Debug("message generated",
		"messageType", msg.MessageType,
		"controlId", msg.ControlID,
		"segments", msg.SegmentCount,
		"elapsed", time.Since(start))
	return msg, nil
}

// Analyze accumulates field population patterns over a corpus.
func (e *Engine) Analyze(ctx context.Context, corpus []string, messageType string) (*analysis.FieldPatterns, error) {
	patterns, err := e.analyzer.AnalyzeCorpus(ctx, corpus, messageType)
	if err != nil {
		return nil, err
	}
	if e.options.CollectMetrics {
		e.metrics.RecordAnalysis(patterns.MessageCount)
	}
	return patterns, nil
}

// Confidence scores a pattern set's statistical reliability.
func (e *Engine) Confidence(patterns *analysis.FieldPatterns) float64 {
	if patterns == nil {
		return 0
	}
	return analysis.Confidence(patterns, patterns.MessageCount)
}

// DetectVendor analyzes a corpus and matches it against the registered
// vendor profiles. Headers come from the first parseable message.
func (e *Engine) DetectVendor(ctx context.Context, corpus []string, messageType string) (analysis.VendorSignature, *analysis.FieldPatterns, error) {
	patterns, err := e.Analyze(ctx, corpus, messageType)
	if err != nil {
		return analysis.VendorSignature{}, nil, err
	}

	var headers analysis.Headers
	for _, raw := range corpus {
		msg, err := e.parser.Parse(raw)
		if err != nil {
			continue
		}
		headers = analysis.Headers{
			SendingApplication: msg.SendingApplication(),
			SendingFacility:    msg.SendingFacility(),
		}
		break
	}

	sig := e.detector.Detect(headers, patterns)
	e.log.Debug("vendor detection",
		"matched", sig.Matched,
		"vendor", sig.Vendor,
		"confidence", sig.Confidence)
	return sig, patterns, nil
}
