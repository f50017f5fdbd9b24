package resolver

import (
	"math/rand"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gohl7/hl7v2/dataset"
	"github.com/gohl7/hl7v2/datatype"
	"github.com/gohl7/hl7v2/definition"
	"github.com/gohl7/hl7v2/registry"
	"github.com/gohl7/hl7v2/specs"
)

func testChain(t *testing.T) (*Chain, *registry.Registry) {
	t.Helper()
	reg, err := specs.NewRegistry()
	require.NoError(t, err)
	lib, err := dataset.Load()
	require.NoError(t, err)
	return Default(reg, lib), reg
}

func testContext(reg *registry.Registry, seed int64) *Context {
	return &Context{
		Rand:         rand.New(rand.NewSource(seed)),
		Defs:         reg,
		Delims:       datatype.Standard(),
		Now:          time.Date(2024, 3, 15, 13, 30, 45, 0, time.UTC),
		MessageCode:  "ADT",
		TriggerEvent: "A01",
		StructureID:  "ADT_A01",
		ControlID:    "MSG00001",
		HL7Version:   "2.5",
		SetIndex:     1,
	}
}

func fieldDef(t *testing.T, reg *registry.Registry, path string) definition.FieldDefinition {
	t.Helper()
	fd, ok := reg.Field(path)
	require.True(t, ok, "no field definition at %s", path)
	return *fd
}

func TestChainOrdering(t *testing.T) {
	chain, _ := testChain(t)
	resolvers := chain.Resolvers()
	for i := 1; i < len(resolvers); i++ {
		assert.GreaterOrEqual(t, resolvers[i-1].Priority(), resolvers[i].Priority())
	}
	assert.Equal(t, "session-override", resolvers[0].Name())
	assert.Equal(t, "random", resolvers[len(resolvers)-1].Name())
}

func TestChainNeverFailsToResolve(t *testing.T) {
	chain, reg := testChain(t)

	for _, seg := range []string{"MSH", "EVN", "PID", "NK1", "PV1", "OBR", "OBX", "AL1", "DG1"} {
		def, ok := reg.Segment(seg)
		require.True(t, ok)
		rc := testContext(reg, 7)
		for _, fd := range def.Fields {
			v, err := chain.Resolve(rc, seg, fd)
			require.NoError(t, err, "%s", fd.Path(seg))
			require.NotNil(t, v, "%s", fd.Path(seg))
		}
	}
}

func TestChainIsDeterministic(t *testing.T) {
	chain, reg := testChain(t)

	for _, path := range []string{"PID.5", "PID.3", "PID.10", "PV1.2", "PID.11", "DG1.3"} {
		fd := fieldDef(t, reg, path)
		seg, _, _ := registry.SplitFieldPath(path)

		a, err := chain.Resolve(testContext(reg, 42), seg, fd)
		require.NoError(t, err)
		b, err := chain.Resolve(testContext(reg, 42), seg, fd)
		require.NoError(t, err)
		assert.True(t, a.Equal(b), "%s: %q vs %q", path,
			a.Format(datatype.Standard()), b.Format(datatype.Standard()))
	}
}

func TestSessionLockWinsOverEverything(t *testing.T) {
	chain, reg := testChain(t)

	rc := testContext(reg, 1)
	rc.Session = NewSession()
	rc.Session.Lock("patient.mrn", "MR123456^^^GENHOSP^MR")

	v, err := chain.Resolve(rc, "PID", fieldDef(t, reg, "PID.3"))
	require.NoError(t, err)
	assert.Equal(t, "MR123456", v.ComponentText(1))
	assert.Equal(t, "MR", v.ComponentText(5))
}

func TestSessionClearProducesEmptyValue(t *testing.T) {
	chain, reg := testChain(t)

	rc := testContext(reg, 1)
	rc.Session = NewSession()
	rc.Session.Clear("PID.7")

	v, err := chain.Resolve(rc, "PID", fieldDef(t, reg, "PID.7"))
	require.NoError(t, err)
	assert.True(t, v.IsEmpty())
}

func TestSessionPatternLock(t *testing.T) {
	chain, reg := testChain(t)

	rc := testContext(reg, 1)
	rc.Session = NewSession()
	require.NoError(t, rc.Session.LockPattern("MSH.[34]", "LOCKED"))

	for _, path := range []string{"MSH.3", "MSH.4"} {
		v, err := chain.Resolve(rc, "MSH", fieldDef(t, reg, path))
		require.NoError(t, err)
		assert.Equal(t, "LOCKED", v.Text(), path)
	}

	// Exact locks shadow pattern locks.
	rc.Session.Lock("MSH.3", "EXACT")
	v, err := chain.Resolve(rc, "MSH", fieldDef(t, reg, "MSH.3"))
	require.NoError(t, err)
	assert.Equal(t, "EXACT", v.Text())
}

func TestHeaderFields(t *testing.T) {
	chain, reg := testChain(t)
	rc := testContext(reg, 1)

	v, err := chain.Resolve(rc, "MSH", fieldDef(t, reg, "MSH.9"))
	require.NoError(t, err)
	assert.Equal(t, "ADT", v.ComponentText(1))
	assert.Equal(t, "A01", v.ComponentText(2))
	assert.Equal(t, "ADT_A01", v.ComponentText(3))

	v, err = chain.Resolve(rc, "MSH", fieldDef(t, reg, "MSH.10"))
	require.NoError(t, err)
	assert.Equal(t, "MSG00001", v.Text())

	v, err = chain.Resolve(rc, "MSH", fieldDef(t, reg, "MSH.7"))
	require.NoError(t, err)
	assert.Equal(t, "20240315133045", v.Text())

	v, err = chain.Resolve(rc, "MSH", fieldDef(t, reg, "MSH.12"))
	require.NoError(t, err)
	assert.Equal(t, "2.5", v.Text())
}

func TestTableDrivenCodes(t *testing.T) {
	chain, reg := testChain(t)

	sexTable, ok := reg.Table("0001")
	require.True(t, ok)

	for seed := int64(0); seed < 20; seed++ {
		v, err := chain.Resolve(testContext(reg, seed), "PID", fieldDef(t, reg, "PID.8"))
		require.NoError(t, err)
		assert.True(t, sexTable.Contains(v.Text()), "seed %d produced %q", seed, v.Text())
	}
}

func TestCodedElementCoherence(t *testing.T) {
	chain, reg := testChain(t)

	raceTable, ok := reg.Table("0005")
	require.True(t, ok)

	for seed := int64(0); seed < 20; seed++ {
		v, err := chain.Resolve(testContext(reg, seed), "PID", fieldDef(t, reg, "PID.10"))
		require.NoError(t, err)

		code := v.ComponentText(1)
		entry, ok := raceTable.Lookup(code)
		require.True(t, ok, "code %q not in table 0005", code)
		assert.Equal(t, entry.Description, v.ComponentText(2), "text must match the code's row")
		assert.Equal(t, "HL70005", v.ComponentText(3))
	}
}

func TestIdentifierCheckDigit(t *testing.T) {
	chain, reg := testChain(t)

	for seed := int64(0); seed < 20; seed++ {
		v, err := chain.Resolve(testContext(reg, seed), "PID", fieldDef(t, reg, "PID.3"))
		require.NoError(t, err)

		base := v.ComponentText(1)
		check, convErr := strconv.Atoi(v.ComponentText(2))
		require.NoError(t, convErr)
		assert.Equal(t, mod10CheckDigit(base), check, "check digit for %q", base)
		assert.Equal(t, "M10", v.ComponentText(3))
	}
}

func TestMod10CheckDigit(t *testing.T) {
	// Luhn reference values.
	assert.Equal(t, 3, mod10CheckDigit("7992739871"))
	assert.Equal(t, 0, mod10CheckDigit("0"))
}

func TestRangeLowNeverExceedsHigh(t *testing.T) {
	chain, reg := testChain(t)

	fd := definition.FieldDefinition{
		Position: 1, Name: "Reference Range", DataType: "NR",
		Optionality: definition.Optional,
	}
	for seed := int64(0); seed < 50; seed++ {
		v, err := chain.Resolve(testContext(reg, seed), "OBX", fd)
		require.NoError(t, err)

		low, convErr := strconv.Atoi(v.ComponentText(1))
		require.NoError(t, convErr)
		high, convErr := strconv.Atoi(v.ComponentText(2))
		require.NoError(t, convErr)
		assert.LessOrEqual(t, low, high, "seed %d", seed)
	}
}

func TestDemographicsLookRealistic(t *testing.T) {
	chain, reg := testChain(t)
	rc := testContext(reg, 9)

	name, err := chain.Resolve(rc, "PID", fieldDef(t, reg, "PID.5"))
	require.NoError(t, err)
	assert.NotEmpty(t, name.ComponentText(1))
	assert.NotEmpty(t, name.ComponentText(2))

	addr, err := chain.Resolve(rc, "PID", fieldDef(t, reg, "PID.11"))
	require.NoError(t, err)
	assert.NotEmpty(t, addr.ComponentText(1))
	assert.NotEmpty(t, addr.ComponentText(3))
	assert.Regexp(t, `^\d{5}$`, addr.ComponentText(5))
}

func TestDiagnosisCodesComeFromReferenceData(t *testing.T) {
	chain, reg := testChain(t)

	v, err := chain.Resolve(testContext(reg, 3), "DG1", fieldDef(t, reg, "DG1.3"))
	require.NoError(t, err)
	assert.Regexp(t, `^[A-Z]\d`, v.ComponentText(1))
	assert.NotEmpty(t, v.ComponentText(2))
	assert.Equal(t, "I10", v.ComponentText(3))
}

func TestCanonicalPathAliases(t *testing.T) {
	assert.Equal(t, "PID.3", CanonicalPath("patient.mrn"))
	assert.Equal(t, "PID.3", CanonicalPath("Patient.MRN"))
	assert.Equal(t, "PV1.2", CanonicalPath("visit.class"))
	assert.Equal(t, "PID.99", CanonicalPath("pid.99"))
}
