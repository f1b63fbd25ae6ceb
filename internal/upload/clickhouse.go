// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package upload

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"github.com/pdiddy/neural-ingest/pkg/types"
)

// FingerprintsTableSQL creates the bci_fingerprints table.
const FingerprintsTableSQL = `
	CREATE TABLE IF NOT EXISTS bci_fingerprints (
		created_at DateTime64(6),
		id String,
		device_id String,
		hash FixedString(64),
		hashed_timestamp String,
		peak_freq Float64,
		alpha Float64,
		beta Float64
	) ENGINE = MergeTree()
	ORDER BY (device_id, created_at)
	PARTITION BY toYYYYMM(created_at)
`

const insertFingerprintSQL = `
	INSERT INTO bci_fingerprints (created_at, id, device_id, hash, hashed_timestamp, peak_freq, alpha, beta)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

// execer is the subset of the ClickHouse driver connection the uploader needs.
type execer interface {
	Exec(ctx context.Context, query string, args ...any) error
	Close() error
}

// ClickHouse inserts fingerprint records into a MergeTree table.
type ClickHouse struct {
	conn execer
	w    io.Writer
}

// DialClickHouse connects, pings, and creates the table if missing.
func DialClickHouse(ctx context.Context, cfg types.ClickHouseConfig, w io.Writer) (*ClickHouse, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout: 5 * time.Second,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("opening ClickHouse at %s: %w", cfg.Addr, err)
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("pinging ClickHouse at %s: %w", cfg.Addr, err)
	}
	slog.Info("connected to clickhouse", "addr", cfg.Addr, "database", cfg.Database)

	ch := &ClickHouse{conn: conn, w: w}
	if err := ch.InitSchema(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return ch, nil
}

// InitSchema creates the fingerprints table if it does not exist.
func (c *ClickHouse) InitSchema(ctx context.Context) error {
	if err := c.conn.Exec(ctx, FingerprintsTableSQL); err != nil {
		return fmt.Errorf("creating bci_fingerprints table: %w", err)
	}
	return nil
}

func (c *ClickHouse) Name() string { return string(types.UploaderClickHouse) }

// Upload inserts one row for rec.
func (c *ClickHouse) Upload(ctx context.Context, rec types.Fingerprint) error {
	fmt.Fprintln(c.w, "--> [PUSH] Inserting into bci_fingerprints...")

	err := c.conn.Exec(ctx, insertFingerprintSQL,
		rec.CreatedAt,
		rec.ID,
		rec.DeviceID,
		rec.Hash,
		rec.Timestamp,
		rec.PeakFreq,
		rec.Alpha,
		rec.Beta,
	)
	if err != nil {
		return fmt.Errorf("inserting fingerprint %s: %w", rec.ID, err)
	}
	return nil
}

// Close releases the connection.
func (c *ClickHouse) Close() error {
	return c.conn.Close()
}
