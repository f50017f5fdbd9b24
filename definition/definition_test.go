package definition

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCardinalityBounds(t *testing.T) {
	cases := []struct {
		card Cardinality
		min  int
		max  int
	}{
		{CardinalityOne, 1, 1},
		{CardinalityZeroOrOne, 0, 1},
		{CardinalityZeroOrMore, 0, -1},
		{CardinalityOneOrMore, 1, -1},
		{Cardinality(""), 0, -1},
	}
	for _, tc := range cases {
		min, max := tc.card.Bounds()
		assert.Equal(t, tc.min, min, "min for %q", tc.card)
		assert.Equal(t, tc.max, max, "max for %q", tc.card)
	}
}

func TestSegmentFieldLookup(t *testing.T) {
	seg := SegmentDefinition{Code: "EVN", Fields: []FieldDefinition{
		{Position: 1, Name: "Event Type Code", DataType: "ID", Table: "0003"},
		{Position: 2, Name: "Recorded Date/Time", DataType: "DTM", Optionality: Required},
	}}

	fd, ok := seg.Field(2)
	assert.True(t, ok)
	assert.True(t, fd.IsRequired())
	assert.Equal(t, "EVN.2", fd.Path("EVN"))

	_, ok = seg.Field(3)
	assert.False(t, ok)
	assert.Equal(t, 2, seg.FieldCount())
}

func TestStructureNodeKind(t *testing.T) {
	leaf := StructureNode{Segment: "PID", Usage: UsageRequired, Cardinality: CardinalityOne}
	group := StructureNode{Group: "PATIENT_RESULT", Usage: UsageRequired, Cardinality: CardinalityOneOrMore,
		Children: []StructureNode{leaf}}

	assert.False(t, leaf.IsGroup())
	assert.True(t, group.IsGroup())
}
