package hl7v2

import "time"

// ValidationResult contains the outcome of validating one message.
// A result always carries the complete issue list for the call; validation
// never stops at the first deviation.
type ValidationResult struct {
	// Valid is true if no error or fatal issues were found (warnings are allowed)
	Valid bool `json:"valid"`

	// Mode is the validation mode the result was produced under
	Mode Mode `json:"mode"`

	// Issues contains every validation issue found, in discovery order
	Issues []Issue `json:"issues,omitempty"`

	// MessageType is the type of the validated message (e.g. "ADT^A01")
	MessageType string `json:"messageType,omitempty"`

	// RulesChecked counts conformance rules evaluated
	RulesChecked int `json:"rulesChecked"`

	// RulesPassed counts rules that passed
	RulesPassed int `json:"rulesPassed"`

	// RulesFailed counts rules that produced an issue
	RulesFailed int `json:"rulesFailed"`

	// Elapsed is the wall-clock validation time
	Elapsed time.Duration `json:"elapsed"`
}

// NewValidationResult creates an empty, valid result for the given mode.
func NewValidationResult(mode Mode) *ValidationResult {
	return &ValidationResult{
		Valid:  true,
		Mode:   mode,
		Issues: make([]Issue, 0, 8),
	}
}

// AddIssue appends an issue and updates validity.
func (r *ValidationResult) AddIssue(issue Issue) {
	r.Issues = append(r.Issues, issue)
	if issue.IsError() {
		r.Valid = false
	}
}

// RecordRule counts one evaluated rule; passed is false when the rule
// produced an issue of any severity.
func (r *ValidationResult) RecordRule(passed bool) {
	r.RulesChecked++
	if passed {
		r.RulesPassed++
	} else {
		r.RulesFailed++
	}
}

// HasErrors returns true if there are any error or fatal issues.
func (r *ValidationResult) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.IsError() {
			return true
		}
	}
	return false
}

// HasFatal returns true if validation was aborted by a fatal issue.
func (r *ValidationResult) HasFatal() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityFatal {
			return true
		}
	}
	return false
}

// ErrorCount returns the number of error and fatal issues.
func (r *ValidationResult) ErrorCount() int {
	count := 0
	for _, issue := range r.Issues {
		if issue.IsError() {
			count++
		}
	}
	return count
}

// WarningCount returns the number of warning issues.
func (r *ValidationResult) WarningCount() int {
	count := 0
	for _, issue := range r.Issues {
		if issue.IsWarning() {
			count++
		}
	}
	return count
}

// Errors returns all error and fatal issues.
func (r *ValidationResult) Errors() []Issue {
	var errors []Issue
	for _, issue := range r.Issues {
		if issue.IsError() {
			errors = append(errors, issue)
		}
	}
	return errors
}

// Warnings returns all warning issues.
func (r *ValidationResult) Warnings() []Issue {
	var warnings []Issue
	for _, issue := range r.Issues {
		if issue.IsWarning() {
			warnings = append(warnings, issue)
		}
	}
	return warnings
}

// Merge combines another result into this one. Rule counts and issues are
// summed; validity is the conjunction.
func (r *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	r.Issues = append(r.Issues, other.Issues...)
	r.RulesChecked += other.RulesChecked
	r.RulesPassed += other.RulesPassed
	r.RulesFailed += other.RulesFailed
	if !other.Valid {
		r.Valid = false
	}
}

// GeneratedMessage is the output of one composition call.
type GeneratedMessage struct {
	// Raw is the complete wire-format message text
	Raw string `json:"raw"`

	// MessageType is the composed type (e.g. "ADT^A01")
	MessageType string `json:"messageType"`

	// ControlID is the MSH-10 value assigned to the message
	ControlID string `json:"controlId"`

	// Seed is the seed the message was generated from
	Seed int64 `json:"seed"`

	// SegmentCount is the number of segments emitted
	SegmentCount int `json:"segmentCount"`
}
