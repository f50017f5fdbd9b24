// Package message defines the parsed HL7 v2 message model. ParsedMessage,
// Segment, and Field instances are created by the parser (or composer) and
// never mutated afterwards.
package message

import (
	"sort"
	"strconv"
	"strings"

	"github.com/gohl7/hl7v2/datatype"
)

// Field is one field occurrence within a segment. Raw preserves the exact
// wire text with escapes intact; Repetitions holds the parsed component
// trees when a data type definition was resolved for the field.
type Field struct {
	position    int
	raw         string
	typed       bool
	repetitions []*datatype.Value
}

// NewField creates a typed field with parsed repetitions.
func NewField(position int, raw string, repetitions []*datatype.Value) *Field {
	return &Field{position: position, raw: raw, typed: true, repetitions: repetitions}
}

// NewUntypedField creates a field whose data type could not be resolved.
// The raw wire text is retained for lenient processing.
func NewUntypedField(position int, raw string) *Field {
	return &Field{position: position, raw: raw}
}

// Position returns the 1-based field position.
func (f *Field) Position() int { return f.position }

// Raw returns the exact wire text of the field, escapes intact.
func (f *Field) Raw() string { return f.raw }

// Typed returns true when a data type definition was resolved at parse time.
func (f *Field) Typed() bool { return f.typed }

// Value returns the parsed component tree of the first repetition, or nil
// for untyped fields.
func (f *Field) Value() *datatype.Value {
	if f == nil || len(f.repetitions) == 0 {
		return nil
	}
	return f.repetitions[0]
}

// Repetitions returns all parsed repetitions in wire order.
func (f *Field) Repetitions() []*datatype.Value {
	return f.repetitions
}

// IsEmpty returns true when the field carries no content after trimming.
func (f *Field) IsEmpty() bool {
	return f == nil || strings.TrimSpace(f.raw) == ""
}

// Segment is one observed segment: its code plus a sparse position-keyed
// field map. Unset positions are absent; a position present with empty raw
// text means the wire form explicitly included an empty field.
type Segment struct {
	code   string
	fields map[int]*Field
}

// NewSegment creates a segment from its code and fields.
func NewSegment(code string, fields []*Field) *Segment {
	m := make(map[int]*Field, len(fields))
	for _, f := range fields {
		m[f.position] = f
	}
	return &Segment{code: code, fields: m}
}

// Code returns the 3-letter segment code.
func (s *Segment) Code() string { return s.code }

// Field returns the field at a 1-based position, or nil when absent.
func (s *Segment) Field(position int) *Field {
	return s.fields[position]
}

// FieldRaw returns the wire text at a position, or "" when absent.
func (s *Segment) FieldRaw(position int) string {
	if f := s.fields[position]; f != nil {
		return f.raw
	}
	return ""
}

// Has returns true when the position was present on the wire.
func (s *Segment) Has(position int) bool {
	_, ok := s.fields[position]
	return ok
}

// Positions returns the populated positions in ascending order.
func (s *Segment) Positions() []int {
	out := make([]int, 0, len(s.fields))
	for p := range s.fields {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

// MaxPosition returns the highest populated position.
func (s *Segment) MaxPosition() int {
	max := 0
	for p := range s.fields {
		if p > max {
			max = p
		}
	}
	return max
}

// ParsedMessage is an ordered list of segments exactly as observed on the
// wire, plus the delimiters the message declared.
type ParsedMessage struct {
	segments   []*Segment
	delimiters datatype.Delimiters
	raw        string
}

// New creates a ParsedMessage. The segment slice is owned by the message
// after this call.
func New(segments []*Segment, delimiters datatype.Delimiters, raw string) *ParsedMessage {
	return &ParsedMessage{segments: segments, delimiters: delimiters, raw: raw}
}

// Segments returns all segments in source order.
func (m *ParsedMessage) Segments() []*Segment {
	return m.segments
}

// SegmentCount returns the number of segments.
func (m *ParsedMessage) SegmentCount() int {
	return len(m.segments)
}

// Segment returns the first segment with the given code, or nil.
func (m *ParsedMessage) Segment(code string) *Segment {
	for _, s := range m.segments {
		if s.code == code {
			return s
		}
	}
	return nil
}

// AllSegments returns every segment with the given code, in source order.
func (m *ParsedMessage) AllSegments(code string) []*Segment {
	var out []*Segment
	for _, s := range m.segments {
		if s.code == code {
			out = append(out, s)
		}
	}
	return out
}

// Delimiters returns the delimiter set the message declared.
func (m *ParsedMessage) Delimiters() datatype.Delimiters {
	return m.delimiters
}

// Raw returns the original wire text.
func (m *ParsedMessage) Raw() string {
	return m.raw
}

// Header returns the MSH segment, or nil when absent.
func (m *ParsedMessage) Header() *Segment {
	return m.Segment("MSH")
}

// MessageType returns the "ADT^A01" form of MSH-9, or "".
func (m *ParsedMessage) MessageType() string {
	v := m.headerValue(9)
	if v == nil {
		return ""
	}
	code := v.ComponentText(1)
	trigger := v.ComponentText(2)
	if trigger == "" {
		return code
	}
	return code + "^" + trigger
}

// TriggerEvent returns MSH-9.2, the trigger-event code.
func (m *ParsedMessage) TriggerEvent() string {
	return m.headerComponent(9, 2)
}

// SendingApplication returns MSH-3.1.
func (m *ParsedMessage) SendingApplication() string {
	return m.headerComponent(3, 1)
}

// SendingFacility returns MSH-4.1.
func (m *ParsedMessage) SendingFacility() string {
	return m.headerComponent(4, 1)
}

// ControlID returns MSH-10.
func (m *ParsedMessage) ControlID() string {
	return m.headerComponent(10, 1)
}

// Version returns MSH-12.1.
func (m *ParsedMessage) Version() string {
	return m.headerComponent(12, 1)
}

// Get resolves a "SEG.POS[.COMP[.SUB]]" path against the first matching
// segment and returns the addressed text, or "" when absent.
func (m *ParsedMessage) Get(path string) string {
	parts := strings.Split(path, ".")
	if len(parts) < 2 {
		return ""
	}
	seg := m.Segment(strings.ToUpper(parts[0]))
	if seg == nil {
		return ""
	}
	pos, err := strconv.Atoi(parts[1])
	if err != nil {
		return ""
	}
	f := seg.Field(pos)
	if f == nil {
		return ""
	}

	v := f.Value()
	if v == nil {
		// Untyped field: only the whole-field path is addressable
		if len(parts) == 2 {
			return f.Raw()
		}
		return ""
	}
	if len(parts) == 2 {
		return v.Text()
	}

	comp, err := strconv.Atoi(parts[2])
	if err != nil {
		return ""
	}
	cv := v.Component(comp)
	if cv == nil {
		return ""
	}
	if len(parts) == 3 {
		return cv.Text()
	}

	sub, err := strconv.Atoi(parts[3])
	if err != nil {
		return ""
	}
	return cv.ComponentText(sub)
}

func (m *ParsedMessage) headerValue(position int) *datatype.Value {
	h := m.Header()
	if h == nil {
		return nil
	}
	f := h.Field(position)
	if f == nil {
		return nil
	}
	return f.Value()
}

func (m *ParsedMessage) headerComponent(position, component int) string {
	v := m.headerValue(position)
	if v == nil {
		return ""
	}
	return v.ComponentText(component)
}
