// Package definition holds the five reference definition kinds the engine
// is driven by: data types, segments, code tables, trigger events, and
// message structures. Definitions are loaded once at startup and treated as
// immutable for the process lifetime; the kinds are joined only by string
// keys (segment code, data-type code, table number, structure ID) so each
// index can be built independently.
package definition

import "fmt"

// DataTypeDefinition describes a primitive or composite HL7 data type.
type DataTypeDefinition struct {
	// Code is the data-type code (e.g. "ST", "XPN", "CWE").
	Code string `json:"code"`

	// Name is the human-readable name.
	Name string `json:"name"`

	// Kind classifies how primitive values are validated. Empty for
	// composite types.
	Kind PrimitiveKind `json:"kind,omitempty"`

	// Components lists the ordered component slots of a composite type.
	// Empty for primitive types.
	Components []ComponentDefinition `json:"components,omitempty"`
}

// IsComposite returns true if the type decomposes into components.
func (d *DataTypeDefinition) IsComposite() bool {
	return len(d.Components) > 0
}

// PrimitiveKind names a primitive validation rule.
type PrimitiveKind string

// Primitive kinds. CodedStrict (ID) requires table membership; CodedLoose
// (IS) treats the bound table as advisory.
const (
	KindString      PrimitiveKind = "string"       // ST, TX, FT
	KindNumeric     PrimitiveKind = "numeric"      // NM
	KindSequence    PrimitiveKind = "sequence"     // SI
	KindDate        PrimitiveKind = "date"         // DT
	KindTime        PrimitiveKind = "time"         // TM
	KindTimestamp   PrimitiveKind = "timestamp"    // DTM / TS
	KindCodedStrict PrimitiveKind = "coded-strict" // ID
	KindCodedLoose  PrimitiveKind = "coded-loose"  // IS
)

// ComponentDefinition is one slot of a composite data type.
type ComponentDefinition struct {
	// Position is the 1-based component position.
	Position int `json:"position"`

	// Name is the component name (e.g. "Family Name").
	Name string `json:"name"`

	// DataType is the code of the component's own data type.
	DataType string `json:"dataType"`

	// Table is the bound code table number, if any.
	Table string `json:"table,omitempty"`
}

// SegmentDefinition describes one segment and its ordered fields.
type SegmentDefinition struct {
	// Code is the 3-letter segment code (e.g. "PID").
	Code string `json:"code"`

	// Name is the human-readable segment name.
	Name string `json:"name"`

	// Fields are ordered by Position, 1-based and dense.
	Fields []FieldDefinition `json:"fields"`
}

// Field returns the field definition at a 1-based position.
func (s *SegmentDefinition) Field(position int) (FieldDefinition, bool) {
	for _, f := range s.Fields {
		if f.Position == position {
			return f, true
		}
	}
	return FieldDefinition{}, false
}

// FieldCount returns the highest defined field position.
func (s *SegmentDefinition) FieldCount() int {
	max := 0
	for _, f := range s.Fields {
		if f.Position > max {
			max = f.Position
		}
	}
	return max
}

// Optionality describes field-level usage within a segment.
type Optionality string

const (
	// Required fields must be present and non-empty.
	Required Optionality = "R"
	// Optional fields may be absent.
	Optional Optionality = "O"
	// Conditional fields depend on other content.
	Conditional Optionality = "C"
	// Backward fields are retained for compatibility only.
	Backward Optionality = "B"
	// Withdrawn fields should not be populated.
	Withdrawn Optionality = "W"
)

// FieldDefinition describes one field position within a segment.
type FieldDefinition struct {
	// Position is the 1-based field position.
	Position int `json:"position"`

	// Name is the field name (e.g. "Patient Name").
	Name string `json:"name"`

	// DataType is the bound data-type code.
	DataType string `json:"dataType"`

	// Table is the bound code table number, if any.
	Table string `json:"table,omitempty"`

	// Optionality is the field usage code.
	Optionality Optionality `json:"optionality"`

	// Repeating is true when the field may carry repetitions.
	Repeating bool `json:"repeating,omitempty"`

	// MaxLength bounds the formatted value length. Zero means unbounded.
	MaxLength int `json:"maxLength,omitempty"`
}

// IsRequired returns true for required usage.
func (f FieldDefinition) IsRequired() bool {
	return f.Optionality == Required
}

// Path returns the SEGMENT.POSITION path of this field within a segment.
func (f FieldDefinition) Path(segment string) string {
	return fmt.Sprintf("%s.%d", segment, f.Position)
}

// TableSource records where a code table's contents come from.
type TableSource string

const (
	// TableSourceStandard tables are defined by the HL7 standard.
	TableSourceStandard TableSource = "standard"
	// TableSourceUser tables are site- or vendor-defined.
	TableSourceUser TableSource = "user"
	// TableSourceExternal tables reference an external code system.
	TableSourceExternal TableSource = "external"
)

// CodeTableDefinition is an enumerated set of legal codes.
type CodeTableDefinition struct {
	// Number is the 4-digit table number (e.g. "0001").
	Number string `json:"number"`

	// Name is the table name (e.g. "Administrative Sex").
	Name string `json:"name"`

	// Source records the table's provenance.
	Source TableSource `json:"source"`

	// Entries are the legal codes in definition order.
	Entries []CodeEntry `json:"entries"`
}

// CodeEntry is one (code, description) pair in a table.
type CodeEntry struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Contains returns true if code is a member of the table.
func (t *CodeTableDefinition) Contains(code string) bool {
	for _, e := range t.Entries {
		if e.Code == code {
			return true
		}
	}
	return false
}

// Lookup returns the entry for code.
func (t *CodeTableDefinition) Lookup(code string) (CodeEntry, bool) {
	for _, e := range t.Entries {
		if e.Code == code {
			return e, true
		}
	}
	return CodeEntry{}, false
}

// TriggerEventDefinition describes the business event behind a message.
type TriggerEventDefinition struct {
	// Code is the trigger-event code (e.g. "A01").
	Code string `json:"code"`

	// MessageType is the MSH-9.1 message code (e.g. "ADT").
	MessageType string `json:"messageType"`

	// Description is the event description.
	Description string `json:"description"`

	// Structure is the ID of the message structure this event maps to,
	// exactly one per event (e.g. "ADT_A01").
	Structure string `json:"structure"`

	// RequiredSegments lists segment codes required at the business level.
	RequiredSegments []string `json:"requiredSegments"`

	// OptionalSegments lists segment codes allowed but not required.
	OptionalSegments []string `json:"optionalSegments,omitempty"`
}

// TypeAndTrigger returns the combined "ADT^A01" form.
func (t *TriggerEventDefinition) TypeAndTrigger() string {
	return t.MessageType + "^" + t.Code
}

// Usage describes node-level usage within a message structure.
type Usage string

const (
	// UsageRequired nodes must appear.
	UsageRequired Usage = "required"
	// UsageOptional nodes may be absent.
	UsageOptional Usage = "optional"
	// UsageConditional nodes depend on message content.
	UsageConditional Usage = "conditional"
)

// Cardinality bounds how many times a structure node may repeat.
type Cardinality string

const (
	// CardinalityOne is exactly one occurrence.
	CardinalityOne Cardinality = "1"
	// CardinalityZeroOrOne is at most one occurrence.
	CardinalityZeroOrOne Cardinality = "0..1"
	// CardinalityZeroOrMore is any number of occurrences.
	CardinalityZeroOrMore Cardinality = "0..*"
	// CardinalityOneOrMore is at least one occurrence.
	CardinalityOneOrMore Cardinality = "1..*"
)

// Bounds returns the (min, max) occurrence bounds; max of -1 means unbounded.
func (c Cardinality) Bounds() (min, max int) {
	switch c {
	case CardinalityOne:
		return 1, 1
	case CardinalityZeroOrOne:
		return 0, 1
	case CardinalityZeroOrMore:
		return 0, -1
	case CardinalityOneOrMore:
		return 1, -1
	default:
		return 0, -1
	}
}

// MessageStructureDefinition is the ordered tree of segments and groups
// defining a message's wire shape for one trigger event.
type MessageStructureDefinition struct {
	// ID is the structure identifier (e.g. "ADT_A01").
	ID string `json:"id"`

	// Nodes is the ordered top-level node list.
	Nodes []StructureNode `json:"nodes"`
}

// StructureNode is one node of a message structure tree: either a segment
// reference (Segment set, Children empty) or a named group (Group set,
// Children non-empty).
type StructureNode struct {
	// Segment is the referenced segment code for leaf nodes.
	Segment string `json:"segment,omitempty"`

	// Group names a segment group for interior nodes.
	Group string `json:"group,omitempty"`

	// Usage is the node usage.
	Usage Usage `json:"usage"`

	// Cardinality bounds node repetition.
	Cardinality Cardinality `json:"cardinality"`

	// Children are the group members, in wire order.
	Children []StructureNode `json:"children,omitempty"`
}

// IsGroup returns true for group nodes.
func (n *StructureNode) IsGroup() bool {
	return n.Group != ""
}

// Set bundles the five definition kinds for repository construction.
type Set struct {
	DataTypes  []DataTypeDefinition
	Segments   []SegmentDefinition
	Tables     []CodeTableDefinition
	Events     []TriggerEventDefinition
	Structures []MessageStructureDefinition
}
