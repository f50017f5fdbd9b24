package resolver

import (
	"strconv"

	"github.com/gohl7/hl7v2/datatype"
	"github.com/gohl7/hl7v2/definition"
)

// The coherence band resolves whole composite fields at once so that their
// components describe a single consistent concept. Resolving components
// independently would let a code pair with another concept's display text,
// or a check digit drift from its base identifier.

// codedElementResolver fills CE and CWE fields bound to a populated table.
// Code, display text, and coding system all come from the same table row.
type codedElementResolver struct{}

func (codedElementResolver) Name() string  { return "coded-element" }
func (codedElementResolver) Priority() int { return 70 }

func (codedElementResolver) Resolve(rc *Context, segment string, fd definition.FieldDefinition) (*datatype.Value, bool) {
	if fd.DataType != "CE" && fd.DataType != "CWE" {
		return nil, false
	}
	if fd.Table == "" {
		return nil, false
	}
	tbl, ok := rc.Defs.Table(fd.Table)
	if !ok || len(tbl.Entries) == 0 {
		return nil, false
	}
	entry := tbl.Entries[rc.Rand.Intn(len(tbl.Entries))]
	return datatype.NewComposite(
		datatype.NewLeaf(entry.Code),
		datatype.NewLeaf(entry.Description),
		datatype.NewLeaf("HL7"+tbl.Number),
	), true
}

// identifierResolver fills CX fields with a generated base number and its
// matching Mod10 check digit.
type identifierResolver struct{}

func (identifierResolver) Name() string  { return "identifier" }
func (identifierResolver) Priority() int { return 70 }

func (identifierResolver) Resolve(rc *Context, segment string, fd definition.FieldDefinition) (*datatype.Value, bool) {
	if fd.DataType != "CX" {
		return nil, false
	}
	base := strconv.Itoa(100000 + rc.Rand.Intn(900000))
	return datatype.NewComposite(
		datatype.NewLeaf(base),
		datatype.NewLeaf(strconv.Itoa(mod10CheckDigit(base))),
		datatype.NewLeaf("M10"),
		datatype.NewLeaf("GENHOSP"),
		datatype.NewLeaf("MR"),
	), true
}

// mod10CheckDigit computes the Luhn check digit over a numeric string.
// Non-digit characters are ignored.
func mod10CheckDigit(s string) int {
	sum := 0
	double := true
	for i := len(s) - 1; i >= 0; i-- {
		c := s[i]
		if c < '0' || c > '9' {
			continue
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return (10 - sum%10) % 10
}

// rangeResolver fills NR fields keeping the low bound at or below the high
// bound.
type rangeResolver struct{}

func (rangeResolver) Name() string  { return "numeric-range" }
func (rangeResolver) Priority() int { return 70 }

func (rangeResolver) Resolve(rc *Context, segment string, fd definition.FieldDefinition) (*datatype.Value, bool) {
	if fd.DataType != "NR" {
		return nil, false
	}
	low := rc.Rand.Intn(100)
	high := low + rc.Rand.Intn(100)
	return datatype.NewComposite(
		datatype.NewLeaf(strconv.Itoa(low)),
		datatype.NewLeaf(strconv.Itoa(high)),
	), true
}
