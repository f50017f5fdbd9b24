// Package store persists vendor profiles. Profile persistence sits outside
// the engine core; this package is the boundary implementation backed by
// SQLite, reached only through the ProfileStore interface.
package store

import (
	"context"

	"github.com/gohl7/hl7v2/analysis"
)

// ProfileStore is the vendor-profile registry boundary.
type ProfileStore interface {
	// SaveProfile inserts or replaces a profile keyed by vendor+system.
	SaveProfile(ctx context.Context, profile analysis.VendorProfile) error

	// GetProfile fetches one profile, reporting found=false when absent.
	GetProfile(ctx context.Context, vendor, system string) (analysis.VendorProfile, bool, error)

	// ListProfiles returns every stored profile ordered by vendor name.
	ListProfiles(ctx context.Context) ([]analysis.VendorProfile, error)

	// DeleteProfile removes a profile. Deleting an absent profile is not
	// an error.
	DeleteProfile(ctx context.Context, vendor, system string) error

	// Close releases the underlying resources.
	Close() error
}
