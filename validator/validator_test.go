package validator

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hl7 "github.com/gohl7/hl7v2"
	"github.com/gohl7/hl7v2/parser"
	"github.com/gohl7/hl7v2/specs"
)

const validADT = "MSH|^~\\&|GENHOSP|GENHOSP|LAB1|GENHOSP|20240315133045||ADT^A01|MSG00001|P|2.5\r" +
	"EVN||20240315133045\r" +
	"PID|1||MR123456^^^GENHOSP^MR||Doe^John||19800515|M\r" +
	"PV1|1|I"

func testValidator(t *testing.T) (*Validator, *parser.Parser) {
	t.Helper()
	reg, err := specs.NewRegistry()
	require.NoError(t, err)
	return New(reg), parser.New(reg)
}

func TestValidateCleanMessage(t *testing.T) {
	v, p := testValidator(t)
	msg, err := p.Parse(validADT)
	require.NoError(t, err)

	result := v.Validate(context.Background(), msg, hl7.ModeStrict)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Issues)
	assert.Equal(t, "ADT^A01", result.MessageType)
	assert.Positive(t, result.RulesChecked)
	assert.Equal(t, result.RulesChecked, result.RulesPassed)
}

func TestValidateIsReadOnly(t *testing.T) {
	v, p := testValidator(t)
	msg, err := p.Parse(validADT)
	require.NoError(t, err)

	first := v.Validate(context.Background(), msg, hl7.ModeStrict)
	second := v.Validate(context.Background(), msg, hl7.ModeStrict)
	assert.Equal(t, first.Valid, second.Valid)
	assert.Equal(t, first.Issues, second.Issues)
	assert.Equal(t, first.RulesChecked, second.RulesChecked)
}

func TestValidateMissingRequiredSegment(t *testing.T) {
	v, p := testValidator(t)

	// ADT^A01 without its PID segment.
	raw := "MSH|^~\\&|GENHOSP|GENHOSP|LAB1|GENHOSP|20240315133045||ADT^A01|MSG00002|P|2.5\r" +
		"EVN||20240315133045\r" +
		"PV1|1|I"
	msg, err := p.Parse(raw)
	require.NoError(t, err)

	strict := v.Validate(context.Background(), msg, hl7.ModeStrict)
	assert.False(t, strict.Valid)
	require.NotEmpty(t, strict.Errors())
	found := false
	for _, iss := range strict.Errors() {
		if strings.Contains(iss.Diagnostics, "PID") {
			found = true
		}
	}
	assert.True(t, found, "expected an error naming the missing PID segment")

	compat := v.Validate(context.Background(), msg, hl7.ModeCompatibility)
	assert.True(t, compat.Valid)
	assert.Empty(t, compat.Errors())
	require.NotEmpty(t, compat.Warnings())
	found = false
	for _, iss := range compat.Warnings() {
		if strings.Contains(iss.Diagnostics, "PID") {
			found = true
		}
	}
	assert.True(t, found, "expected a warning naming the missing PID segment")
}

func TestValidateMissingHeaderTypeIsFatal(t *testing.T) {
	v, p := testValidator(t)

	raw := "MSH|^~\\&|GENHOSP|GENHOSP|LAB1|GENHOSP|20240315133045|||MSG00003|P|2.5"
	msg, err := p.Parse(raw)
	require.NoError(t, err)

	for _, mode := range []hl7.Mode{hl7.ModeStrict, hl7.ModeCompatibility} {
		result := v.Validate(context.Background(), msg, mode)
		assert.False(t, result.Valid, "mode %s", mode)
		assert.True(t, result.HasFatal(), "mode %s", mode)
	}
}

func TestValidateRequiredFieldEmpty(t *testing.T) {
	v, p := testValidator(t)

	// PV1-2 Patient Class is required.
	raw := "MSH|^~\\&|GENHOSP|GENHOSP|LAB1|GENHOSP|20240315133045||ADT^A01|MSG00004|P|2.5\r" +
		"EVN||20240315133045\r" +
		"PID|1||MR123456^^^GENHOSP^MR||Doe^John||19800515|M\r" +
		"PV1|1"
	msg, err := p.Parse(raw)
	require.NoError(t, err)

	result := v.Validate(context.Background(), msg, hl7.ModeStrict)
	assert.False(t, result.Valid)
	assertIssueAt(t, result.Errors(), "PV1.2")
}

func TestValidateBadPrimitive(t *testing.T) {
	v, p := testValidator(t)

	// PID-7 date of birth is not a date.
	raw := "MSH|^~\\&|GENHOSP|GENHOSP|LAB1|GENHOSP|20240315133045||ADT^A01|MSG00005|P|2.5\r" +
		"EVN||20240315133045\r" +
		"PID|1||MR123456^^^GENHOSP^MR||Doe^John||NOTADATE|M\r" +
		"PV1|1|I"
	msg, err := p.Parse(raw)
	require.NoError(t, err)

	strict := v.Validate(context.Background(), msg, hl7.ModeStrict)
	assert.False(t, strict.Valid)
	assertIssueAt(t, strict.Errors(), "PID.7")

	// The same deviation degrades to a warning in compatibility mode.
	compat := v.Validate(context.Background(), msg, hl7.ModeCompatibility)
	assert.True(t, compat.Valid)
	assertIssueAt(t, compat.Warnings(), "PID.7")
}

func TestValidateTableMembership(t *testing.T) {
	v, p := testValidator(t)

	// PID-8 sex draws on a user table: bad codes only ever warn. CX-5 in
	// PID-3 draws on an ID-typed binding: bad codes are mode-graded.
	raw := "MSH|^~\\&|GENHOSP|GENHOSP|LAB1|GENHOSP|20240315133045||ADT^A01|MSG00006|P|2.5\r" +
		"EVN||20240315133045\r" +
		"PID|1||MR123456^^^GENHOSP^BOGUS||Doe^John||19800515|X\r" +
		"PV1|1|I"
	msg, err := p.Parse(raw)
	require.NoError(t, err)

	strict := v.Validate(context.Background(), msg, hl7.ModeStrict)
	assert.False(t, strict.Valid)
	assertIssueAt(t, strict.Errors(), "PID.3.5")
	assertIssueAt(t, strict.Warnings(), "PID.8")

	compat := v.Validate(context.Background(), msg, hl7.ModeCompatibility)
	assert.True(t, compat.Valid)
	assertIssueAt(t, compat.Warnings(), "PID.3.5")
	assertIssueAt(t, compat.Warnings(), "PID.8")
}

func TestValidateUnexpectedRepetition(t *testing.T) {
	v, p := testValidator(t)

	// PV1-2 does not repeat.
	raw := "MSH|^~\\&|GENHOSP|GENHOSP|LAB1|GENHOSP|20240315133045||ADT^A01|MSG00007|P|2.5\r" +
		"EVN||20240315133045\r" +
		"PID|1||MR123456^^^GENHOSP^MR||Doe^John||19800515|M\r" +
		"PV1|1|I~O"
	msg, err := p.Parse(raw)
	require.NoError(t, err)

	result := v.Validate(context.Background(), msg, hl7.ModeStrict)
	assert.False(t, result.Valid)
	assertIssueAt(t, result.Errors(), "PV1.2")
}

func TestValidateMaxLength(t *testing.T) {
	v, p := testValidator(t)

	// PID-8 is capped at one character.
	raw := "MSH|^~\\&|GENHOSP|GENHOSP|LAB1|GENHOSP|20240315133045||ADT^A01|MSG00008|P|2.5\r" +
		"EVN||20240315133045\r" +
		"PID|1||MR123456^^^GENHOSP^MR||Doe^John||19800515|MALE\r" +
		"PV1|1|I"
	msg, err := p.Parse(raw)
	require.NoError(t, err)

	result := v.Validate(context.Background(), msg, hl7.ModeStrict)
	assert.False(t, result.Valid)
	found := false
	for _, iss := range result.Errors() {
		if iss.Code == hl7.IssueTypeLength && iss.Location == "PID.8" {
			found = true
		}
	}
	assert.True(t, found, "expected a length error at PID.8")
}

func TestValidateUnknownSegment(t *testing.T) {
	v, p := testValidator(t)

	raw := validADT + "\rZBX|1|custom"
	msg, err := p.Parse(raw)
	require.NoError(t, err)

	strict := v.Validate(context.Background(), msg, hl7.ModeStrict)
	assert.False(t, strict.Valid)

	compat := v.Validate(context.Background(), msg, hl7.ModeCompatibility)
	assert.True(t, compat.Valid)
	assert.NotEmpty(t, compat.Warnings())
}

func TestValidateUnknownStructure(t *testing.T) {
	v, p := testValidator(t)

	raw := "MSH|^~\\&|GENHOSP|GENHOSP|LAB1|GENHOSP|20240315133045||QRY^Q01|MSG00009|P|2.5"
	msg, err := p.Parse(raw)
	require.NoError(t, err)

	strict := v.Validate(context.Background(), msg, hl7.ModeStrict)
	assert.False(t, strict.Valid)

	compat := v.Validate(context.Background(), msg, hl7.ModeCompatibility)
	assert.True(t, compat.Valid)
}

func TestValidateGroupedStructure(t *testing.T) {
	v, p := testValidator(t)

	raw := "MSH|^~\\&|LAB1|GENHOSP|GENHOSP|GENHOSP|20240315140000||ORU^R01|MSG00010|P|2.5\r" +
		"PID|1||MR123456^^^GENHOSP^MR||Doe^John||19800515|M\r" +
		"OBR|1|||24331-1^Gas panel^LN\r" +
		"OBX|1|NM|2744-1^pH^LN||7.4||||||F\r" +
		"OBX|2|NM|2703-7^pO2^LN||85||||||F\r" +
		"OBR|2|||24323-8^CBC^LN\r" +
		"OBX|1|NM|718-7^Hemoglobin^LN||13.5||||||F"
	msg, err := p.Parse(raw)
	require.NoError(t, err)

	result := v.Validate(context.Background(), msg, hl7.ModeStrict)
	assert.True(t, result.Valid, "issues: %v", result.Issues)
}

func TestValidateCancelledContext(t *testing.T) {
	v, p := testValidator(t)
	msg, err := p.Parse(validADT)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := v.Validate(ctx, msg, hl7.ModeStrict)
	assert.False(t, result.Valid)
	assert.True(t, result.HasFatal())
}

func TestValidatorRespectsOptions(t *testing.T) {
	_, p := testValidator(t)
	reg, err := specs.NewRegistry()
	require.NoError(t, err)

	// Structure checks off: the missing PID no longer surfaces; the
	// remaining content checks still run.
	raw := "MSH|^~\\&|GENHOSP|GENHOSP|LAB1|GENHOSP|20240315133045||ADT^A01|MSG00011|P|2.5\r" +
		"EVN||20240315133045\r" +
		"PV1|1|I"
	msg, err := p.Parse(raw)
	require.NoError(t, err)

	opts := hl7.DefaultOptions()
	opts.ValidateStructure = false
	v := NewWithOptions(reg, opts)

	result := v.Validate(context.Background(), msg, hl7.ModeStrict)
	assert.True(t, result.Valid, "issues: %v", result.Issues)
}

func assertIssueAt(t *testing.T, issues []hl7.Issue, location string) {
	t.Helper()
	for _, iss := range issues {
		if iss.Location == location {
			return
		}
	}
	t.Errorf("no issue at %s in %v", location, issues)
}

func TestValidateSegmentCardinalityOverflow(t *testing.T) {
	v, p := testValidator(t)

	// Three PV1 segments where the structure allows exactly one.
	raw := validADT + "\rPV1|2|O\rPV1|3|E"
	msg, err := p.Parse(raw)
	require.NoError(t, err)

	result := v.Validate(context.Background(), msg, hl7.ModeStrict)
	assert.False(t, result.Valid)

	// One cardinality issue carrying the real occurrence count, and no
	// out-of-place reports for the surplus segments.
	var cardinality []hl7.Issue
	for _, iss := range result.Issues {
		switch iss.Rule {
		case "structure-cardinality":
			cardinality = append(cardinality, iss)
		case "structure-sequence":
			t.Errorf("surplus PV1 double-reported as out of place: %v", iss)
		}
	}
	require.Len(t, cardinality, 1)
	assert.Contains(t, cardinality[0].Diagnostics, "occurs 3 times, at most 1 allowed")
}
