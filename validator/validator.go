// Package validator checks parsed messages for structural and content
// conformance. A validation call always completes and returns every issue
// found; nothing short of a missing header is fatal, and even that produces
// a result rather than an error.
package validator

import (
	"context"
	"time"

	hl7 "github.com/gohl7/hl7v2"
	"github.com/gohl7/hl7v2/message"
	"github.com/gohl7/hl7v2/registry"
)

// Validator validates parsed messages against the definition repository.
type Validator struct {
	defs registry.Provider

	checkStructure bool
	checkContent   bool
	checkTables    bool
}

// New creates a Validator with all check groups enabled.
func New(defs registry.Provider) *Validator {
	return &Validator{
		defs:           defs,
		checkStructure: true,
		checkContent:   true,
		checkTables:    true,
	}
}

// NewWithOptions creates a Validator honoring the engine option flags.
func NewWithOptions(defs registry.Provider, opts *hl7.Options) *Validator {
	return &Validator{
		defs:           defs,
		checkStructure: opts.ValidateStructure,
		checkContent:   opts.ValidateContent,
		checkTables:    opts.ValidateTables,
	}
}

// Validate runs every enabled check group in one pass and returns the
// complete issue list. In strict mode deviations are errors; in
// compatibility mode the same deviations are warnings. A missing or
// malformed header is fatal in both modes.
func (v *Validator) Validate(ctx context.Context, msg *message.ParsedMessage, mode hl7.Mode) *hl7.ValidationResult {
	start := time.Now()
	result := hl7.NewValidationResult(mode)
	result.MessageType = msg.MessageType()
	defer func() {
		result.Elapsed = time.Since(start)
	}()

	if err := ctx.Err(); err != nil {
		result.AddIssue(hl7.FatalIssue(hl7.IssueTypeCancelled).
			Diagnostics("validation cancelled: " + err.Error()).Build())
		return result
	}

	if !v.validateHeader(msg, result) {
		return result
	}

	if v.checkStructure {
		v.validateStructure(msg, result, mode)
	}
	if v.checkContent {
		v.validateContent(msg, result, mode)
	}

	return result
}

// validateHeader enforces the rules that are fatal in both modes: the
// header segment must exist and must declare a message type.
func (v *Validator) validateHeader(msg *message.ParsedMessage, result *hl7.ValidationResult) bool {
	header := msg.Header()
	if header == nil {
		result.AddIssue(hl7.FatalIssue(hl7.IssueTypeRequired).
			Diagnostics("message has no MSH header segment").
			At("MSH").
			Rule("header-present").
			Build())
		result.RecordRule(false)
		return false
	}
	result.RecordRule(true)

	if msg.MessageType() == "" {
		result.AddIssue(hl7.FatalIssue(hl7.IssueTypeRequired).
			Diagnostics("MSH-9 message type is empty").
			At("MSH.9").
			Rule("header-message-type").
			Build())
		result.RecordRule(false)
		return false
	}
	result.RecordRule(true)

	return true
}
