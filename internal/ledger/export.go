// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/neural-ingest/internal/fingerprint"
	"github.com/pdiddy/neural-ingest/pkg/types"
)

// ExportEntry is a stored fingerprint annotated with its verification result.
type ExportEntry struct {
	types.Fingerprint `yaml:",inline"`
	Verified          bool `json:"verified" yaml:"verified"`
}

// VerifySummary counts the outcome of re-hashing stored records.
type VerifySummary struct {
	Valid    int
	Invalid  int
	Failures []string // IDs of records whose hash does not match
}

// Verify recomputes every matching record's digest from its stored fields.
func (l *Ledger) Verify(ctx context.Context, opts ListOptions) (VerifySummary, error) {
	opts.Limit = -1
	recs, err := l.List(ctx, opts)
	if err != nil {
		return VerifySummary{}, err
	}

	var s VerifySummary
	for _, rec := range recs {
		if fingerprint.Verify(rec) {
			s.Valid++
		} else {
			s.Invalid++
			s.Failures = append(s.Failures, rec.ID)
		}
	}
	return s, nil
}

// ExportYAML writes matching records to path as YAML.
func (l *Ledger) ExportYAML(ctx context.Context, path string, opts ListOptions) error {
	entries, err := l.exportEntries(ctx, opts)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes matching records to path as indented JSON.
func (l *Ledger) ExportJSON(ctx context.Context, path string, opts ListOptions) error {
	entries, err := l.exportEntries(ctx, opts)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (l *Ledger) exportEntries(ctx context.Context, opts ListOptions) ([]ExportEntry, error) {
	if opts.Limit == 0 {
		opts.Limit = -1
	}
	recs, err := l.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(recs))
	for i, rec := range recs {
		entries[i] = ExportEntry{Fingerprint: rec, Verified: fingerprint.Verify(rec)}
	}
	return entries, nil
}
