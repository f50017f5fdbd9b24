package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gohl7/hl7v2/definition"
)

func testSet() definition.Set {
	return definition.Set{
		DataTypes: []definition.DataTypeDefinition{
			{Code: "ST", Name: "String Data", Kind: definition.KindString},
			{Code: "XPN", Name: "Extended Person Name", Components: []definition.ComponentDefinition{
				{Position: 1, Name: "Family Name", DataType: "ST"},
				{Position: 2, Name: "Given Name", DataType: "ST"},
			}},
		},
		Segments: []definition.SegmentDefinition{
			{Code: "PID", Name: "Patient Identification", Fields: []definition.FieldDefinition{
				{Position: 1, Name: "Set ID", DataType: "SI", Optionality: definition.Optional},
				{Position: 5, Name: "Patient Name", DataType: "XPN", Optionality: definition.Required, Repeating: true},
				{Position: 8, Name: "Administrative Sex", DataType: "IS", Table: "0001", Optionality: definition.Optional, MaxLength: 1},
			}},
		},
		Tables: []definition.CodeTableDefinition{
			{Number: "0001", Name: "Administrative Sex", Source: definition.TableSourceUser, Entries: []definition.CodeEntry{
				{Code: "F", Description: "Female"},
				{Code: "M", Description: "Male"},
			}},
		},
		Events: []definition.TriggerEventDefinition{
			{Code: "A01", MessageType: "ADT", Structure: "ADT_A01", RequiredSegments: []string{"MSH", "EVN", "PID", "PV1"}},
		},
		Structures: []definition.MessageStructureDefinition{
			{ID: "ADT_A01", Nodes: []definition.StructureNode{
				{Segment: "MSH", Usage: definition.UsageRequired, Cardinality: definition.CardinalityOne},
				{Segment: "PID", Usage: definition.UsageRequired, Cardinality: definition.CardinalityOne},
			}},
		},
	}
}

func TestLookupsByKey(t *testing.T) {
	reg, err := New(testSet())
	require.NoError(t, err)

	dt, ok := reg.DataType("XPN")
	require.True(t, ok)
	assert.True(t, dt.IsComposite())

	seg, ok := reg.Segment("PID")
	require.True(t, ok)
	assert.Equal(t, "Patient Identification", seg.Name)

	tbl, ok := reg.Table("0001")
	require.True(t, ok)
	assert.True(t, tbl.Contains("F"))
	assert.False(t, tbl.Contains("X"))

	_, ok = reg.Segment("ZZZ")
	assert.False(t, ok)
	_, ok = reg.Table("9999")
	assert.False(t, ok)
}

func TestFieldPathLookup(t *testing.T) {
	reg, err := New(testSet())
	require.NoError(t, err)

	fd, ok := reg.Field("PID.5")
	require.True(t, ok)
	assert.Equal(t, "Patient Name", fd.Name)
	assert.True(t, fd.IsRequired())

	// Lowercase segment, component suffix tolerated.
	fd, ok = reg.Field("pid.8.1")
	require.True(t, ok)
	assert.Equal(t, "0001", fd.Table)

	for _, path := range []string{"PID", "PID.", "PID.0", "PID.99", "PATIENT.5"} {
		_, ok := reg.Field(path)
		assert.False(t, ok, "path %q must not resolve", path)
	}
}

func TestTriggerEventBothForms(t *testing.T) {
	reg, err := New(testSet())
	require.NoError(t, err)

	bare, ok := reg.TriggerEvent("A01")
	require.True(t, ok)
	combined, ok := reg.TriggerEvent("ADT^A01")
	require.True(t, ok)
	assert.Same(t, bare, combined)
	assert.Equal(t, "ADT^A01", bare.TypeAndTrigger())

	st, ok := reg.StructureForEvent("ADT^A01")
	require.True(t, ok)
	assert.Equal(t, "ADT_A01", st.ID)

	_, ok = reg.TriggerEvent("Q99")
	assert.False(t, ok)
}

func TestDuplicateDefinitionsRejected(t *testing.T) {
	set := testSet()
	set.Tables = append(set.Tables, definition.CodeTableDefinition{Number: "0001"})
	_, err := New(set)
	assert.ErrorContains(t, err, "0001")
}

func TestCounts(t *testing.T) {
	reg, err := New(testSet())
	require.NoError(t, err)
	dataTypes, segments, tables, events, structures := reg.Counts()
	assert.Equal(t, 2, dataTypes)
	assert.Equal(t, 1, segments)
	assert.Equal(t, 1, tables)
	assert.Equal(t, 1, events)
	assert.Equal(t, 1, structures)
}

func TestSplitFieldPath(t *testing.T) {
	seg, pos, ok := SplitFieldPath("pv1.19")
	require.True(t, ok)
	assert.Equal(t, "PV1", seg)
	assert.Equal(t, 19, pos)

	_, _, ok = SplitFieldPath("PID")
	assert.False(t, ok)
	_, _, ok = SplitFieldPath("PID.x")
	assert.False(t, ok)
}
