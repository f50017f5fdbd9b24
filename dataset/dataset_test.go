package dataset

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	lib, err := Load()
	require.NoError(t, err)
	assert.NotEmpty(t, lib.People)
	assert.NotEmpty(t, lib.Addresses)
	assert.NotEmpty(t, lib.AreaCodes)
	assert.NotEmpty(t, lib.Diagnoses)
	assert.NotEmpty(t, lib.Medications)
}

func TestLoadIsCached(t *testing.T) {
	a, err := Load()
	require.NoError(t, err)
	b, err := Load()
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestPicksAreDeterministic(t *testing.T) {
	lib, err := Load()
	require.NoError(t, err)

	a := rand.New(rand.NewSource(42))
	b := rand.New(rand.NewSource(42))

	assert.Equal(t, lib.Person(a), lib.Person(b))
	assert.Equal(t, lib.Address(a), lib.Address(b))
	assert.Equal(t, lib.Phone(a), lib.Phone(b))
	assert.Equal(t, lib.Diagnosis(a), lib.Diagnosis(b))
	assert.Equal(t, lib.Medication(a), lib.Medication(b))
}

func TestRowsAreComplete(t *testing.T) {
	lib, err := Load()
	require.NoError(t, err)

	for _, p := range lib.People {
		assert.NotEmpty(t, p.FamilyName)
		assert.NotEmpty(t, p.GivenName)
	}
	for _, d := range lib.Diagnoses {
		assert.NotEmpty(t, d.Code)
		assert.NotEmpty(t, d.Description)
	}
}
