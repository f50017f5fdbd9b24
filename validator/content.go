package validator

import (
	"fmt"
	"strings"

	hl7 "github.com/gohl7/hl7v2"
	"github.com/gohl7/hl7v2/datatype"
	"github.com/gohl7/hl7v2/definition"
	"github.com/gohl7/hl7v2/message"
)

// validateContent checks every field of every segment against its
// definition: data-type conformance, required-ness, length bounds,
// repetition bounds, and code-table membership.
func (v *Validator) validateContent(msg *message.ParsedMessage, result *hl7.ValidationResult, mode hl7.Mode) {
	for idx, seg := range msg.Segments() {
		def, ok := v.defs.Segment(seg.Code())
		if !ok {
			result.AddIssue(hl7.Graded(mode, hl7.IssueTypeUnknownSegment).
				Diagnostics(fmt.Sprintf("segment %s has no definition", seg.Code())).
				At(seg.Code()).
				Segment(idx).
				Rule("content-known-segment").
				Build())
			result.RecordRule(false)
			continue
		}
		result.RecordRule(true)

		for _, fd := range def.Fields {
			v.validateField(seg, idx, fd, result, mode)
		}
	}
}

func (v *Validator) validateField(seg *message.Segment, segIdx int, fd definition.FieldDefinition, result *hl7.ValidationResult, mode hl7.Mode) {
	field := seg.Field(fd.Position)
	path := fd.Path(seg.Code())

	if fd.IsRequired() {
		if field.IsEmpty() {
			result.AddIssue(hl7.Graded(mode, hl7.IssueTypeRequired).
				Diagnostics(fmt.Sprintf("required field %s (%s) is empty", path, fd.Name)).
				At(path).
				Segment(segIdx).
				Rule("content-required").
				Build())
			result.RecordRule(false)
			return
		}
		result.RecordRule(true)
	}

	if field.IsEmpty() {
		return
	}

	if fd.Optionality == definition.Withdrawn {
		result.AddIssue(hl7.WarningIssue(hl7.IssueTypeValue).
			Diagnostics(fmt.Sprintf("withdrawn field %s is populated", path)).
			At(path).
			Segment(segIdx).
			Rule("content-withdrawn").
			Build())
		result.RecordRule(false)
	}

	if !fd.Repeating && len(field.Repetitions()) > 1 {
		result.AddIssue(hl7.Graded(mode, hl7.IssueTypeCardinality).
			Diagnostics(fmt.Sprintf("field %s does not repeat but has %d repetitions", path, len(field.Repetitions()))).
			At(path).
			Segment(segIdx).
			Rule("content-repetition").
			Build())
		result.RecordRule(false)
	} else {
		result.RecordRule(true)
	}

	if fd.MaxLength > 0 {
		if len(field.Raw()) > fd.MaxLength {
			result.AddIssue(hl7.Graded(mode, hl7.IssueTypeLength).
				Diagnostics(fmt.Sprintf("field %s is %d chars, max %d", path, len(field.Raw()), fd.MaxLength)).
				At(path).
				Segment(segIdx).
				Rule("content-length").
				Build())
			result.RecordRule(false)
		} else {
			result.RecordRule(true)
		}
	}

	dt, ok := v.defs.DataType(fd.DataType)
	if !ok {
		return
	}
	for _, rep := range field.Repetitions() {
		v.validateValue(rep, dt, fd.Table, path, segIdx, result, mode)
	}
}

// validateValue checks one parsed value (a whole field repetition or one
// component) against its data type and optional bound table.
func (v *Validator) validateValue(val *datatype.Value, dt *definition.DataTypeDefinition, table, path string, segIdx int, result *hl7.ValidationResult, mode hl7.Mode) {
	if val.IsEmpty() {
		return
	}

	if dt.IsComposite() {
		if val.ComponentCount() > len(dt.Components) {
			result.AddIssue(hl7.WarningIssue(hl7.IssueTypeStructure).
				Diagnostics(fmt.Sprintf("%s has %d components, %s defines %d", path, val.ComponentCount(), dt.Code, len(dt.Components))).
				At(path).
				Segment(segIdx).
				Rule("content-components").
				Build())
			result.RecordRule(false)
		} else {
			result.RecordRule(true)
		}

		for _, cd := range dt.Components {
			cv := val.Component(cd.Position)
			if cv.IsEmpty() {
				continue
			}
			cdt, ok := v.defs.DataType(cd.DataType)
			if !ok {
				continue
			}
			v.validateValue(cv, cdt, cd.Table, fmt.Sprintf("%s.%d", path, cd.Position), segIdx, result, mode)
		}

		// A table bound at the field level constrains the composite's
		// first component, the code.
		if table != "" && len(dt.Components) > 0 {
			strict := v.componentKind(dt.Components[0].DataType) == definition.KindCodedStrict
			v.checkTableMembership(val.ComponentText(1), table, strict, path, segIdx, result, mode)
		}
		return
	}

	if err := datatype.ValidateKind(dt.Kind, val.Text()); err != nil {
		result.AddIssue(hl7.Graded(mode, hl7.IssueTypeDataType).
			Diagnostics(fmt.Sprintf("%s: %v", path, err)).
			At(path).
			Segment(segIdx).
			Rule("content-data-type").
			Build())
		result.RecordRule(false)
		return
	}
	result.RecordRule(true)

	if table != "" {
		v.checkTableMembership(val.Text(), table, dt.Kind == definition.KindCodedStrict, path, segIdx, result, mode)
	}
}

// checkTableMembership enforces code-table binding. Strictly-coded values
// (ID) grade with the mode; loosely-coded values (IS) only ever warn. A
// table that is unknown or enumerates nothing (external code systems) is
// not checked.
func (v *Validator) checkTableMembership(code, table string, strict bool, path string, segIdx int, result *hl7.ValidationResult, mode hl7.Mode) {
	if !v.checkTables {
		return
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return
	}

	tbl, ok := v.defs.Table(table)
	if !ok || len(tbl.Entries) == 0 {
		return
	}

	if tbl.Contains(code) {
		result.RecordRule(true)
		return
	}

	builder := hl7.WarningIssue(hl7.IssueTypeCodeInvalid)
	if strict {
		builder = hl7.Graded(mode, hl7.IssueTypeCodeInvalid)
	}
	result.AddIssue(builder.
		Diagnostics(fmt.Sprintf("code %q is not in table %s (%s)", code, table, tbl.Name)).
		At(path).
		Segment(segIdx).
		Rule("content-table").
		Build())
	result.RecordRule(false)
}

func (v *Validator) componentKind(dataType string) definition.PrimitiveKind {
	dt, ok := v.defs.DataType(dataType)
	if !ok {
		return ""
	}
	return dt.Kind
}
