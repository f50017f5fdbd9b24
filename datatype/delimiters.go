// Package datatype implements the HL7 v2 field type system: the delimiter
// set, reversible escaping, the recursive component tree, and primitive
// format validation.
package datatype

import "fmt"

// Delimiters holds the five encoding characters a message declares in its
// header. Every parse and format operation uses a message's declared
// delimiters; nothing downstream assumes the standard set.
type Delimiters struct {
	Field        byte
	Component    byte
	Repetition   byte
	Escape       byte
	Subcomponent byte
}

// Standard returns the conventional delimiter set |^~\&.
func Standard() Delimiters {
	return Delimiters{
		Field:        '|',
		Component:    '^',
		Repetition:   '~',
		Escape:       '\\',
		Subcomponent: '&',
	}
}

// Encoding returns the MSH-2 encoding-characters string (component,
// repetition, escape, subcomponent).
func (d Delimiters) Encoding() string {
	return string([]byte{d.Component, d.Repetition, d.Escape, d.Subcomponent})
}

// FromHeader reads the delimiter declaration from a header segment line:
// the field separator at offset 3 and the four encoding characters at
// offsets 4-7.
func FromHeader(line string) (Delimiters, error) {
	if len(line) < 8 {
		return Delimiters{}, fmt.Errorf("header too short for delimiter declaration: %d chars", len(line))
	}

	d := Delimiters{
		Field:        line[3],
		Component:    line[4],
		Repetition:   line[5],
		Escape:       line[6],
		Subcomponent: line[7],
	}

	// A header may end right after the encoding characters; any further
	// content must open with the field separator terminating MSH-2.
	if len(line) > 8 && line[8] != d.Field {
		return Delimiters{}, fmt.Errorf("encoding characters not terminated by field separator %q", d.Field)
	}

	if err := d.Validate(); err != nil {
		return Delimiters{}, err
	}
	return d, nil
}

// Validate checks the five characters are distinct and printable.
func (d Delimiters) Validate() error {
	chars := []byte{d.Field, d.Component, d.Repetition, d.Escape, d.Subcomponent}
	seen := map[byte]bool{}
	for _, c := range chars {
		if c < 0x21 || c > 0x7e {
			return fmt.Errorf("delimiter %q is not a printable character", c)
		}
		if seen[c] {
			return fmt.Errorf("duplicate delimiter %q", c)
		}
		seen[c] = true
	}
	return nil
}

// IsDelimiter returns true if c is one of the five delimiter characters.
func (d Delimiters) IsDelimiter(c byte) bool {
	switch c {
	case d.Field, d.Component, d.Repetition, d.Escape, d.Subcomponent:
		return true
	default:
		return false
	}
}
