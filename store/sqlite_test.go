package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gohl7/hl7v2/analysis"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "profiles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testProfile(vendor, system string) analysis.VendorProfile {
	fp := analysis.NewFieldPatterns("ADT^A01")
	fp.Segments["PID"] = map[int]analysis.FieldFrequency{
		5: {Populated: 10, Total: 10},
		7: {Populated: 1, Total: 10},
	}
	fp.MessageCount = 10
	return analysis.VendorProfile{Vendor: vendor, System: system, Fingerprint: fp}
}

func TestSaveAndGetProfile(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	original := testProfile("Epic", "EPICADT")
	require.NoError(t, s.SaveProfile(ctx, original))

	got, found, err := s.GetProfile(ctx, "Epic", "EPICADT")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, original.Vendor, got.Vendor)
	assert.Equal(t, original.System, got.System)
	require.NotNil(t, got.Fingerprint)
	assert.Equal(t, original.Fingerprint.Frequency("PID", 5), got.Fingerprint.Frequency("PID", 5))
}

func TestGetMissingProfile(t *testing.T) {
	s := testStore(t)

	_, found, err := s.GetProfile(context.Background(), "Nobody", "")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSaveProfileUpserts(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveProfile(ctx, testProfile("Epic", "EPICADT")))

	updated := testProfile("Epic", "EPICADT")
	updated.Fingerprint.MessageCount = 99
	require.NoError(t, s.SaveProfile(ctx, updated))

	profiles, err := s.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, 99, profiles[0].Fingerprint.MessageCount)
}

func TestListProfilesOrdered(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveProfile(ctx, testProfile("Meditech", "MAGIC")))
	require.NoError(t, s.SaveProfile(ctx, testProfile("Cerner", "CERNERLAB")))
	require.NoError(t, s.SaveProfile(ctx, testProfile("Epic", "EPICADT")))

	profiles, err := s.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 3)
	assert.Equal(t, "Cerner", profiles[0].Vendor)
	assert.Equal(t, "Epic", profiles[1].Vendor)
	assert.Equal(t, "Meditech", profiles[2].Vendor)
}

func TestDeleteProfile(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveProfile(ctx, testProfile("Epic", "EPICADT")))
	require.NoError(t, s.DeleteProfile(ctx, "Epic", "EPICADT"))

	_, found, err := s.GetProfile(ctx, "Epic", "EPICADT")
	require.NoError(t, err)
	assert.False(t, found)

	// Deleting again is not an error.
	require.NoError(t, s.DeleteProfile(ctx, "Epic", "EPICADT"))
}

func TestSaveProfileRequiresVendor(t *testing.T) {
	s := testStore(t)
	assert.Error(t, s.SaveProfile(context.Background(), analysis.VendorProfile{}))
}

func TestMigrationIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.db")

	s1, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s1.SaveProfile(context.Background(), testProfile("Epic", "EPICADT")))
	require.NoError(t, s1.Close())

	// Reopening migrates again without losing data.
	s2, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer s2.Close()

	profiles, err := s2.ListProfiles(context.Background())
	require.NoError(t, err)
	assert.Len(t, profiles, 1)
}
