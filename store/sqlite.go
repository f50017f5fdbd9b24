package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/gohl7/hl7v2/analysis"
)

// SQLiteStore implements ProfileStore on a local SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (creating if needed) the profile database at path and
// migrates its schema. Use ":memory:" for an ephemeral store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("store: empty database path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("store: create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	// SQLite gains nothing from concurrent writers.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, path: path}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveProfile inserts or replaces a profile. The fingerprint is stored as
// JSON alongside the indexed identity columns.
func (s *SQLiteStore) SaveProfile(ctx context.Context, profile analysis.VendorProfile) error {
	if profile.Vendor == "" {
		return fmt.Errorf("store: profile has no vendor name")
	}
	fingerprint, err := json.Marshal(profile.Fingerprint)
	if err != nil {
		return fmt.Errorf("store: encode fingerprint: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO vendor_profiles (vendor, system, fingerprint, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(vendor, system) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			updated_at  = CURRENT_TIMESTAMP`,
		profile.Vendor, profile.System, string(fingerprint))
	if err != nil {
		return fmt.Errorf("store: save profile %s/%s: %w", profile.Vendor, profile.System, err)
	}
	return nil
}

// GetProfile fetches one profile by identity.
func (s *SQLiteStore) GetProfile(ctx context.Context, vendor, system string) (analysis.VendorProfile, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT vendor, system, fingerprint FROM vendor_profiles
		WHERE vendor = ? AND system = ?`, vendor, system)

	profile, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return analysis.VendorProfile{}, false, nil
	}
	if err != nil {
		return analysis.VendorProfile{}, false, fmt.Errorf("store: get profile %s/%s: %w", vendor, system, err)
	}
	return profile, true, nil
}

// ListProfiles returns every stored profile ordered by vendor then system.
func (s *SQLiteStore) ListProfiles(ctx context.Context) ([]analysis.VendorProfile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT vendor, system, fingerprint FROM vendor_profiles
		ORDER BY vendor, system`)
	if err != nil {
		return nil, fmt.Errorf("store: list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []analysis.VendorProfile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("store: list profiles: %w", err)
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list profiles: %w", err)
	}
	return profiles, nil
}

// DeleteProfile removes a profile; absent profiles are ignored.
func (s *SQLiteStore) DeleteProfile(ctx context.Context, vendor, system string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM vendor_profiles WHERE vendor = ? AND system = ?`, vendor, system)
	if err != nil {
		return fmt.Errorf("store: delete profile %s/%s: %w", vendor, system, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (analysis.VendorProfile, error) {
	var profile analysis.VendorProfile
	var fingerprint string
	if err := row.Scan(&profile.Vendor, &profile.System, &fingerprint); err != nil {
		return analysis.VendorProfile{}, err
	}
	if fingerprint != "" {
		if err := json.Unmarshal([]byte(fingerprint), &profile.Fingerprint); err != nil {
			return analysis.VendorProfile{}, fmt.Errorf("decode fingerprint: %w", err)
		}
	}
	return profile, nil
}
