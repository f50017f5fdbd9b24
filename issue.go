package hl7v2

// Severity represents the severity of a validation issue.
type Severity string

const (
	// SeverityFatal indicates the message cannot be processed at all.
	SeverityFatal Severity = "fatal"
	// SeverityError indicates a deviation that makes the message non-conformant.
	SeverityError Severity = "error"
	// SeverityWarning indicates a deviation tolerated in compatibility mode.
	SeverityWarning Severity = "warning"
	// SeverityInformation indicates informational feedback.
	SeverityInformation Severity = "information"
)

// IssueType classifies what kind of conformance rule was violated.
type IssueType string

const (
	// IssueTypeStructure indicates the segment sequence does not match the
	// message structure definition.
	IssueTypeStructure IssueType = "structure"
	// IssueTypeRequired indicates a required segment or field is missing or empty.
	IssueTypeRequired IssueType = "required"
	// IssueTypeCardinality indicates a repetition bound was violated.
	IssueTypeCardinality IssueType = "cardinality"
	// IssueTypeDataType indicates a value does not conform to its data type.
	IssueTypeDataType IssueType = "data-type"
	// IssueTypeLength indicates a value exceeds the field's maximum length.
	IssueTypeLength IssueType = "length"
	// IssueTypeCodeInvalid indicates a coded value is not in its bound table.
	IssueTypeCodeInvalid IssueType = "code-invalid"
	// IssueTypeUnknownSegment indicates a segment code has no definition.
	IssueTypeUnknownSegment IssueType = "unknown-segment"
	// IssueTypeValue indicates an otherwise invalid value.
	IssueTypeValue IssueType = "value"
	// IssueTypeProcessing indicates an internal processing problem.
	IssueTypeProcessing IssueType = "processing"
	// IssueTypeCancelled indicates the operation was cancelled.
	IssueTypeCancelled IssueType = "cancelled"
)

// Issue represents a single validation issue.
type Issue struct {
	// Severity of the issue (fatal, error, warning, information)
	Severity Severity `json:"severity"`

	// Code identifying the type of issue
	Code IssueType `json:"code"`

	// Diagnostics contains human-readable details about the issue
	Diagnostics string `json:"diagnostics,omitempty"`

	// Location is the field path in SEGMENT.POSITION form (e.g. "PID.5")
	Location string `json:"location,omitempty"`

	// SegmentIndex is the zero-based index of the segment in the message
	SegmentIndex int `json:"segmentIndex,omitempty"`

	// Rule names the conformance rule that produced this issue
	Rule string `json:"rule,omitempty"`
}

// IsError returns true if this is an error or fatal issue.
func (i Issue) IsError() bool {
	return i.Severity == SeverityError || i.Severity == SeverityFatal
}

// IsWarning returns true if this is a warning.
func (i Issue) IsWarning() bool {
	return i.Severity == SeverityWarning
}

// String returns a human-readable representation of the issue.
func (i Issue) String() string {
	loc := ""
	if i.Location != "" {
		loc = " at " + i.Location
	}
	return string(i.Severity) + ": " + i.Diagnostics + loc
}

// IssueBuilder provides a fluent API for building issues.
type IssueBuilder struct {
	issue Issue
}

// NewIssue creates a new IssueBuilder.
func NewIssue(severity Severity, code IssueType) *IssueBuilder {
	return &IssueBuilder{
		issue: Issue{
			Severity: severity,
			Code:     code,
		},
	}
}

// ErrorIssue creates an error issue builder.
func ErrorIssue(code IssueType) *IssueBuilder {
	return NewIssue(SeverityError, code)
}

// WarningIssue creates a warning issue builder.
func WarningIssue(code IssueType) *IssueBuilder {
	return NewIssue(SeverityWarning, code)
}

// FatalIssue creates a fatal issue builder.
func FatalIssue(code IssueType) *IssueBuilder {
	return NewIssue(SeverityFatal, code)
}

// Graded creates a builder whose severity follows the validation mode:
// error in strict mode, warning in compatibility mode.
func Graded(mode Mode, code IssueType) *IssueBuilder {
	if mode == ModeCompatibility {
		return WarningIssue(code)
	}
	return ErrorIssue(code)
}

// Diagnostics sets the diagnostic message.
func (b *IssueBuilder) Diagnostics(msg string) *IssueBuilder {
	b.issue.Diagnostics = msg
	return b
}

// At sets the field path location.
func (b *IssueBuilder) At(location string) *IssueBuilder {
	b.issue.Location = location
	return b
}

// Segment sets the segment index within the message.
func (b *IssueBuilder) Segment(index int) *IssueBuilder {
	b.issue.SegmentIndex = index
	return b
}

// Rule sets the conformance rule name.
func (b *IssueBuilder) Rule(rule string) *IssueBuilder {
	b.issue.Rule = rule
	return b
}

// Build returns the constructed issue.
func (b *IssueBuilder) Build() Issue {
	return b.issue
}
