// Package registry provides the read-only index over loaded reference
// definitions. A Registry is built once from a definition.Set and never
// mutated afterwards, so lookups are safe from any number of goroutines
// without locking.
package registry

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gohl7/hl7v2/definition"
)

// Provider is the lookup surface the parser, validator, resolver chain, and
// composer depend on. Implementations must be safe for concurrent reads.
type Provider interface {
	// DataType returns a data-type definition by code.
	DataType(code string) (*definition.DataTypeDefinition, bool)

	// Segment returns a segment definition by its 3-letter code.
	Segment(code string) (*definition.SegmentDefinition, bool)

	// Field returns a field definition by "SEGMENT.POSITION" path.
	Field(path string) (*definition.FieldDefinition, bool)

	// Table returns a code table by number.
	Table(number string) (*definition.CodeTableDefinition, bool)

	// TriggerEvent returns a trigger-event definition by code (e.g. "A01"
	// or "ADT^A01").
	TriggerEvent(code string) (*definition.TriggerEventDefinition, bool)

	// Structure returns a message structure by ID (e.g. "ADT_A01").
	Structure(id string) (*definition.MessageStructureDefinition, bool)

	// StructureForEvent resolves a trigger event straight to its structure.
	StructureForEvent(code string) (*definition.MessageStructureDefinition, bool)
}

// Registry is the immutable in-memory index of the five definition kinds.
type Registry struct {
	dataTypes  map[string]*definition.DataTypeDefinition
	segments   map[string]*definition.SegmentDefinition
	tables     map[string]*definition.CodeTableDefinition
	events     map[string]*definition.TriggerEventDefinition
	structures map[string]*definition.MessageStructureDefinition
}

// New builds a Registry from a definition set. Definitions are copied into
// internal indexes; the set may be discarded afterwards. Duplicate codes
// within one kind are an error.
func New(set definition.Set) (*Registry, error) {
	r := &Registry{
		dataTypes:  make(map[string]*definition.DataTypeDefinition, len(set.DataTypes)),
		segments:   make(map[string]*definition.SegmentDefinition, len(set.Segments)),
		tables:     make(map[string]*definition.CodeTableDefinition, len(set.Tables)),
		events:     make(map[string]*definition.TriggerEventDefinition, len(set.Events)),
		structures: make(map[string]*definition.MessageStructureDefinition, len(set.Structures)),
	}

	for i := range set.DataTypes {
		d := set.DataTypes[i]
		if _, dup := r.dataTypes[d.Code]; dup {
			return nil, fmt.Errorf("duplicate data type %q", d.Code)
		}
		r.dataTypes[d.Code] = &d
	}
	for i := range set.Segments {
		s := set.Segments[i]
		if _, dup := r.segments[s.Code]; dup {
			return nil, fmt.Errorf("duplicate segment %q", s.Code)
		}
		r.segments[s.Code] = &s
	}
	for i := range set.Tables {
		t := set.Tables[i]
		if _, dup := r.tables[t.Number]; dup {
			return nil, fmt.Errorf("duplicate table %q", t.Number)
		}
		r.tables[t.Number] = &t
	}
	for i := range set.Events {
		e := set.Events[i]
		if _, dup := r.events[e.Code]; dup {
			return nil, fmt.Errorf("duplicate trigger event %q", e.Code)
		}
		r.events[e.Code] = &e
	}
	for i := range set.Structures {
		s := set.Structures[i]
		if _, dup := r.structures[s.ID]; dup {
			return nil, fmt.Errorf("duplicate message structure %q", s.ID)
		}
		r.structures[s.ID] = &s
	}

	return r, nil
}

// DataType returns a data-type definition by code.
func (r *Registry) DataType(code string) (*definition.DataTypeDefinition, bool) {
	d, ok := r.dataTypes[code]
	return d, ok
}

// Segment returns a segment definition by code.
func (r *Registry) Segment(code string) (*definition.SegmentDefinition, bool) {
	s, ok := r.segments[code]
	return s, ok
}

// Field resolves a "SEGMENT.POSITION" path to its field definition.
func (r *Registry) Field(path string) (*definition.FieldDefinition, bool) {
	seg, pos, ok := SplitFieldPath(path)
	if !ok {
		return nil, false
	}
	sd, ok := r.segments[seg]
	if !ok {
		return nil, false
	}
	fd, ok := sd.Field(pos)
	if !ok {
		return nil, false
	}
	return &fd, true
}

// Table returns a code table by number.
func (r *Registry) Table(number string) (*definition.CodeTableDefinition, bool) {
	t, ok := r.tables[number]
	return t, ok
}

// TriggerEvent returns a trigger-event definition. Both the bare event code
// ("A01") and the combined "ADT^A01" form are accepted.
func (r *Registry) TriggerEvent(code string) (*definition.TriggerEventDefinition, bool) {
	if i := strings.IndexByte(code, '^'); i >= 0 {
		code = code[i+1:]
	}
	e, ok := r.events[code]
	return e, ok
}

// Structure returns a message structure by ID.
func (r *Registry) Structure(id string) (*definition.MessageStructureDefinition, bool) {
	s, ok := r.structures[id]
	return s, ok
}

// StructureForEvent resolves a trigger event straight to its structure.
func (r *Registry) StructureForEvent(code string) (*definition.MessageStructureDefinition, bool) {
	e, ok := r.TriggerEvent(code)
	if !ok {
		return nil, false
	}
	return r.Structure(e.Structure)
}

// Counts reports how many definitions of each kind are loaded.
func (r *Registry) Counts() (dataTypes, segments, tables, events, structures int) {
	return len(r.dataTypes), len(r.segments), len(r.tables), len(r.events), len(r.structures)
}

// SplitFieldPath parses "SEGMENT.POSITION" into its parts. Component and
// subcomponent suffixes ("PID.5.1") are tolerated and ignored here.
func SplitFieldPath(path string) (segment string, position int, ok bool) {
	parts := strings.Split(path, ".")
	if len(parts) < 2 || len(parts[0]) != 3 {
		return "", 0, false
	}
	pos, err := strconv.Atoi(parts[1])
	if err != nil || pos < 1 {
		return "", 0, false
	}
	return strings.ToUpper(parts[0]), pos, true
}
