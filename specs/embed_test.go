package specs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gohl7/hl7v2/definition"
)

func TestLoadEmbeddedDefinitions(t *testing.T) {
	set, err := Load()
	require.NoError(t, err)

	assert.NotEmpty(t, set.DataTypes)
	assert.NotEmpty(t, set.Segments)
	assert.NotEmpty(t, set.Tables)
	assert.NotEmpty(t, set.Events)
	assert.NotEmpty(t, set.Structures)
}

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	pid, ok := reg.Segment("PID")
	require.True(t, ok)
	assert.Equal(t, "Patient Identification", pid.Name)

	name, ok := pid.Field(5)
	require.True(t, ok)
	assert.Equal(t, "XPN", name.DataType)
	assert.True(t, name.IsRequired())
	assert.True(t, name.Repeating)

	xpn, ok := reg.DataType("XPN")
	require.True(t, ok)
	assert.True(t, xpn.IsComposite())
	assert.Equal(t, "Family Name", xpn.Components[0].Name)

	sex, ok := reg.Table("0001")
	require.True(t, ok)
	assert.True(t, sex.Contains("F"))
	assert.False(t, sex.Contains("X"))
	assert.Equal(t, definition.TableSourceUser, sex.Source)
}

func TestRegistryEventStructureJoin(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	// Both bare and combined trigger-event forms resolve
	a01, ok := reg.TriggerEvent("A01")
	require.True(t, ok)
	assert.Equal(t, "ADT^A01", a01.TypeAndTrigger())

	byCombined, ok := reg.TriggerEvent("ADT^A01")
	require.True(t, ok)
	assert.Equal(t, a01.Code, byCombined.Code)

	st, ok := reg.StructureForEvent("A01")
	require.True(t, ok)
	assert.Equal(t, "ADT_A01", st.ID)

	// A08 shares the A01 structure
	st, ok = reg.StructureForEvent("A08")
	require.True(t, ok)
	assert.Equal(t, "ADT_A01", st.ID)
}

func TestRegistryFieldPath(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	fd, ok := reg.Field("PID.8")
	require.True(t, ok)
	assert.Equal(t, "0001", fd.Table)

	// Component suffix tolerated
	fd, ok = reg.Field("PID.5.1")
	require.True(t, ok)
	assert.Equal(t, "Patient Name", fd.Name)

	_, ok = reg.Field("ZZZ.1")
	assert.False(t, ok)
	_, ok = reg.Field("PID")
	assert.False(t, ok)
}

func TestStructureTreeShape(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	oru, ok := reg.Structure("ORU_R01")
	require.True(t, ok)
	require.Len(t, oru.Nodes, 2)

	pr := oru.Nodes[1]
	assert.True(t, pr.IsGroup())
	assert.Equal(t, "PATIENT_RESULT", pr.Group)

	min, max := pr.Cardinality.Bounds()
	assert.Equal(t, 1, min)
	assert.Equal(t, -1, max)
}
