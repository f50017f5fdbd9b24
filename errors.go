package hl7v2

import (
	"errors"
	"fmt"
)

// Sentinel errors for the engine's failure taxonomy. Expected domain
// deviations (unknown segments, table mismatches in compatibility mode)
// are reported as Issues in a result payload, never as errors; only
// conditions that make the call itself meaningless surface here.
var (
	// ErrEmptyMessage is returned when parsing empty or whitespace-only input.
	ErrEmptyMessage = errors.New("hl7v2: empty message")

	// ErrMissingHeader is returned when the first segment is not a valid
	// header or its delimiter declaration is malformed.
	ErrMissingHeader = errors.New("hl7v2: missing or malformed message header")

	// ErrUnknownMessageType is returned when a trigger-event code has no
	// definition in the repository.
	ErrUnknownMessageType = errors.New("hl7v2: unknown message type")

	// ErrGenerationFailed is returned when composition cannot complete; no
	// partial message is ever returned alongside it.
	ErrGenerationFailed = errors.New("hl7v2: message generation failed")

	// ErrResolutionFailed reports a resolver-chain invariant violation. The
	// fallback resolver guarantees a value for every field, so seeing this
	// error means a chain was built without its fallback.
	ErrResolutionFailed = errors.New("hl7v2: field resolution failed")

	// ErrAnalysisFailed reports a systemic batch-analysis failure such as
	// cancellation. Individual unparseable corpus messages are skipped, not
	// escalated.
	ErrAnalysisFailed = errors.New("hl7v2: analysis failed")
)

// ParseError describes why a message could not be parsed at all.
type ParseError struct {
	// Err is the sentinel classifying the failure.
	Err error

	// Detail is additional human-readable context.
	Detail string

	// Line is the 1-based segment line where parsing failed, if known.
	Line int
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	msg := e.Err.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" (line %d)", e.Line)
	}
	return msg
}

// Unwrap returns the sentinel for errors.Is comparisons.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a ParseError wrapping one of the parse sentinels.
func NewParseError(sentinel error, detail string, line int) *ParseError {
	return &ParseError{Err: sentinel, Detail: detail, Line: line}
}

// GenerationError describes why composition failed.
type GenerationError struct {
	// Err is the sentinel classifying the failure.
	Err error

	// TriggerEvent is the requested trigger-event code.
	TriggerEvent string

	// Field is the field path under resolution when the failure occurred.
	Field string
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	msg := e.Err.Error()
	if e.TriggerEvent != "" {
		msg += ": " + e.TriggerEvent
	}
	if e.Field != "" {
		msg += " at " + e.Field
	}
	return msg
}

// Unwrap returns the sentinel for errors.Is comparisons.
func (e *GenerationError) Unwrap() error {
	return e.Err
}

// AnalysisError describes a systemic batch-analysis failure.
type AnalysisError struct {
	// Err is the underlying cause (typically context.Canceled).
	Err error

	// Processed is how many messages had been analyzed before the failure.
	Processed int
}

// Error implements the error interface.
func (e *AnalysisError) Error() string {
	return fmt.Sprintf("%v after %d messages: %v", ErrAnalysisFailed, e.Processed, e.Err)
}

// Unwrap returns the underlying cause.
func (e *AnalysisError) Unwrap() error {
	return e.Err
}
