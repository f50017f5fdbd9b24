// Package parser turns raw HL7 v2 wire text into the parsed message model.
// Parsing is lenient by design: unknown segment codes and fields beyond a
// segment's defined count are retained untyped rather than discarded, so
// compatibility-mode validation can still see them.
package parser

import (
	"strings"

	hl7 "github.com/gohl7/hl7v2"
	"github.com/gohl7/hl7v2/datatype"
	"github.com/gohl7/hl7v2/definition"
	"github.com/gohl7/hl7v2/message"
	"github.com/gohl7/hl7v2/registry"
)

// headerCode is the segment that declares the message's delimiters.
const headerCode = "MSH"

// Parser parses raw messages against a definition repository.
type Parser struct {
	defs registry.Provider
}

// New creates a Parser backed by the given definition repository.
func New(defs registry.Provider) *Parser {
	return &Parser{defs: defs}
}

// Parse parses one complete message. The first segment must be a header
// declaring the field separator and encoding characters at fixed offsets;
// every subsequent split uses the declared characters.
//
// Failure modes: ErrEmptyMessage for empty input, ErrMissingHeader when the
// first segment is not a well-formed header. All other deviations are
// preserved in the output for the validator to report.
func (p *Parser) Parse(raw string) (*message.ParsedMessage, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, hl7.NewParseError(hl7.ErrEmptyMessage, "", 0)
	}

	lines := splitSegmentLines(trimmed)
	if len(lines) == 0 {
		return nil, hl7.NewParseError(hl7.ErrEmptyMessage, "", 0)
	}

	header := lines[0]
	if !strings.HasPrefix(header, headerCode) {
		return nil, hl7.NewParseError(hl7.ErrMissingHeader,
			"first segment is "+segmentCode(header)+", want "+headerCode, 1)
	}

	delims, err := datatype.FromHeader(header)
	if err != nil {
		return nil, hl7.NewParseError(hl7.ErrMissingHeader, err.Error(), 1)
	}

	segments := make([]*message.Segment, 0, len(lines))
	for i, line := range lines {
		if i == 0 {
			segments = append(segments, p.parseHeader(line, delims))
			continue
		}
		segments = append(segments, p.parseSegment(line, delims))
	}

	return message.New(segments, delims, raw), nil
}

// parseHeader handles the header's field-numbering quirk: MSH-1 is the
// field separator character itself and MSH-2 the encoding characters, so
// wire tokens after them start at position 3.
func (p *Parser) parseHeader(line string, d datatype.Delimiters) *message.Segment {
	def, _ := p.defs.Segment(headerCode)

	fields := []*message.Field{
		message.NewField(1, string(d.Field), []*datatype.Value{datatype.NewLeaf(string(d.Field))}),
		message.NewField(2, d.Encoding(), []*datatype.Value{datatype.NewLeaf(d.Encoding())}),
	}

	// line[9:] is everything after "MSH|^~\&|". A separator at offset 8
	// with nothing behind it still declares MSH-3 as present-but-empty.
	if len(line) >= 9 {
		tokens := strings.Split(line[9:], string(d.Field))
		for i, tok := range tokens {
			fields = append(fields, p.parseField(def, i+3, tok, d))
		}
	}

	return message.NewSegment(headerCode, fields)
}

func (p *Parser) parseSegment(line string, d datatype.Delimiters) *message.Segment {
	code := segmentCode(line)
	def, known := p.defs.Segment(code)
	if !known {
		def = nil
	}

	var fields []*message.Field
	if len(line) > 3 && line[3] == d.Field {
		tokens := strings.Split(line[4:], string(d.Field))
		fields = make([]*message.Field, 0, len(tokens))
		for i, tok := range tokens {
			fields = append(fields, p.parseField(def, i+1, tok, d))
		}
	}

	return message.NewSegment(code, fields)
}

// parseField parses one wire token. Known positions get their component
// tree; unknown segments and overflow positions stay untyped.
func (p *Parser) parseField(def *definition.SegmentDefinition, position int, raw string, d datatype.Delimiters) *message.Field {
	if def == nil {
		return message.NewUntypedField(position, raw)
	}
	fd, ok := def.Field(position)
	if !ok {
		return message.NewUntypedField(position, raw)
	}
	if _, ok := p.defs.DataType(fd.DataType); !ok {
		return message.NewUntypedField(position, raw)
	}

	reps := splitRepetitions(raw, d)
	values := make([]*datatype.Value, len(reps))
	for i, r := range reps {
		values[i] = datatype.ParseValue(r, d)
	}
	return message.NewField(position, raw, values)
}

func splitRepetitions(raw string, d datatype.Delimiters) []string {
	if strings.IndexByte(raw, d.Repetition) < 0 {
		return []string{raw}
	}
	return strings.Split(raw, string(d.Repetition))
}

// splitSegmentLines splits on the record terminator, tolerating LF and CRLF
// in addition to the standard CR.
func splitSegmentLines(raw string) []string {
	normalized := strings.ReplaceAll(raw, "\r\n", "\r")
	normalized = strings.ReplaceAll(normalized, "\n", "\r")

	var lines []string
	for _, line := range strings.Split(normalized, "\r") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func segmentCode(line string) string {
	if len(line) < 3 {
		return line
	}
	return line[:3]
}
