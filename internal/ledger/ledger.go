// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger keeps a local SQLite record of emitted fingerprints so a
// device's anchors can be listed, re-verified and exported after the run.
// Only the feature summary and digest are stored, never samples.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/neural-ingest/pkg/types"
)

const defaultListLimit = 50

// createdAtLayout is fixed-width so text ordering matches time ordering.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Ledger manages the fingerprint SQLite database.
type Ledger struct {
	db   *sql.DB
	path string
}

// Open opens or creates the ledger at cfg.Path, creating parent
// directories and the schema as needed.
func Open(cfg types.LedgerConfig) (*Ledger, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: ledger.path is empty", types.ErrInvalidConfig)
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	l := &Ledger{db: db, path: cfg.Path}
	if err := l.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return l, nil
}

// Path returns the database file location.
func (l *Ledger) Path() string { return l.path }

// Close releases the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS fingerprints (
			id TEXT PRIMARY KEY,
			hash TEXT NOT NULL,
			hashed_timestamp TEXT NOT NULL,
			device_id TEXT NOT NULL,
			peak_freq REAL NOT NULL,
			alpha REAL,
			beta REAL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fingerprints_device ON fingerprints(device_id)`,
		`CREATE INDEX IF NOT EXISTS idx_fingerprints_created ON fingerprints(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := l.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Append stores rec, replacing any earlier record with the same ID.
func (l *Ledger) Append(ctx context.Context, rec types.Fingerprint) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO fingerprints (id, hash, hashed_timestamp, device_id, peak_freq, alpha, beta, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			hash=excluded.hash, hashed_timestamp=excluded.hashed_timestamp,
			device_id=excluded.device_id, peak_freq=excluded.peak_freq,
			alpha=excluded.alpha, beta=excluded.beta, created_at=excluded.created_at`,
		rec.ID, rec.Hash, rec.Timestamp, rec.DeviceID, rec.PeakFreq, rec.Alpha, rec.Beta,
		rec.CreatedAt.UTC().Format(createdAtLayout),
	)
	if err != nil {
		return fmt.Errorf("appending fingerprint %s: %w", rec.ID, err)
	}
	return nil
}

// ListOptions filters List results.
type ListOptions struct {
	// DeviceID restricts results to one device.
	DeviceID string

	// Limit caps the result count. Zero uses the default (50); negative
	// means no limit.
	Limit int
}

// List returns stored fingerprints, newest first.
func (l *Ledger) List(ctx context.Context, opts ListOptions) ([]types.Fingerprint, error) {
	query := `SELECT id, hash, hashed_timestamp, device_id, peak_freq, alpha, beta, created_at
		FROM fingerprints`
	var args []any
	if opts.DeviceID != "" {
		query += ` WHERE device_id = ?`
		args = append(args, opts.DeviceID)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`

	limit := opts.Limit
	if limit == 0 {
		limit = defaultListLimit
	}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying fingerprints: %w", err)
	}
	defer rows.Close()

	var out []types.Fingerprint
	for rows.Next() {
		var (
			rec       types.Fingerprint
			alpha     sql.NullFloat64
			beta      sql.NullFloat64
			createdAt string
		)
		if err := rows.Scan(&rec.ID, &rec.Hash, &rec.Timestamp, &rec.DeviceID,
			&rec.PeakFreq, &alpha, &beta, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning fingerprint: %w", err)
		}
		rec.Alpha = alpha.Float64
		rec.Beta = beta.Float64
		t, err := time.Parse(createdAtLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at of fingerprint %s: %w", rec.ID, err)
		}
		rec.CreatedAt = t
		out = append(out, rec)
	}
	return out, rows.Err()
}
