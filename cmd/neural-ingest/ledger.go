// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/neural-ingest/internal/ledger"
	"github.com/pdiddy/neural-ingest/pkg/types"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect the local fingerprint ledger (list, export, verify)",
	Long: `Ledger reads the SQLite file written by "run --ledger". Use subcommands
to list recorded fingerprints, re-verify their digests, or export them.`,
}

// --- list subcommand ---

var ledgerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded fingerprints, newest first",
	RunE:  runLedgerList,
}

func runLedgerList(cmd *cobra.Command, args []string) error {
	l, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer l.Close()

	recs, err := l.List(context.Background(), listOptsFromFlags(cmd))
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatLedgerList(cmd.OutOrStdout(), recs, jsonOutput)
}

func formatLedgerList(w io.Writer, recs []types.Fingerprint, jsonOutput bool) error {
	if jsonOutput {
		if recs == nil {
			recs = []types.Fingerprint{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	}

	if len(recs) == 0 {
		fmt.Fprintln(w, "No fingerprints recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-26s  %-16s  %-7s  %-16s  %s\n",
		"Timestamp", "Device", "Peak", "Hash", "ID")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for _, r := range recs {
		device := r.DeviceID
		if len(device) > 16 {
			device = device[:13] + "..."
		}
		hash := r.Hash
		if len(hash) > 16 {
			hash = hash[:13] + "..."
		}
		fmt.Fprintf(w, "%-26s  %-16s  %-7.1f  %-16s  %s\n",
			r.Timestamp, device, r.PeakFreq, hash, r.ID)
	}
	fmt.Fprintf(w, "\n%d fingerprints\n", len(recs))
	return nil
}

// --- export subcommand ---

var ledgerExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded fingerprints to YAML or JSON",
	Long: `Export writes the ledger (or one device's records) to a file, marking
each record with whether its digest still verifies.`,
	RunE: runLedgerExport,
}

func runLedgerExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	l, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer l.Close()

	opts := listOptsFromFlags(cmd)
	ctx := context.Background()

	switch format {
	case "yaml", "":
		if output == "" {
			output = "fingerprints.yaml"
		}
		if err := l.ExportYAML(ctx, output, opts); err != nil {
			return err
		}
	case "json":
		if output == "" {
			output = "fingerprints.json"
		}
		if err := l.ExportJSON(ctx, output, opts); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", output)
	return nil
}

// --- verify subcommand ---

var ledgerVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Recompute every recorded digest and report mismatches",
	RunE:  runLedgerVerify,
}

func runLedgerVerify(cmd *cobra.Command, args []string) error {
	l, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer l.Close()

	summary, err := l.Verify(context.Background(), listOptsFromFlags(cmd))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, id := range summary.Failures {
		fmt.Fprintf(out, "MISMATCH %s\n", id)
	}
	fmt.Fprintf(out, "%d valid, %d invalid\n", summary.Valid, summary.Invalid)
	if summary.Invalid > 0 {
		return fmt.Errorf("%d fingerprint(s) failed verification", summary.Invalid)
	}
	return nil
}

// --- shared helpers ---

// openLedger opens the file named by --path, falling back to ledger.path
// from configuration.
func openLedger(cmd *cobra.Command) (*ledger.Ledger, error) {
	path, _ := cmd.Flags().GetString("path")
	if path == "" {
		path = viper.GetString("ledger.path")
	}
	if path == "" {
		return nil, fmt.Errorf("%w: ledger path required: use --path or ledger.path", types.ErrInvalidConfig)
	}
	return ledger.Open(types.LedgerConfig{Path: path})
}

func listOptsFromFlags(cmd *cobra.Command) ledger.ListOptions {
	deviceID, _ := cmd.Flags().GetString("device-id")
	var limit int
	if cmd.Flags().Lookup("limit") != nil {
		limit, _ = cmd.Flags().GetInt("limit")
	}
	return ledger.ListOptions{DeviceID: deviceID, Limit: limit}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	ledgerCmd.PersistentFlags().String("path", "", "ledger SQLite file (default: ledger.path from config)")
	ledgerCmd.PersistentFlags().String("device-id", "", "restrict to one device")

	ledgerListCmd.Flags().Int("limit", 0, "maximum records (0 = default 50, -1 = all)")
	ledgerListCmd.Flags().Bool("json", false, "output records as JSON")

	ledgerExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	ledgerExportCmd.Flags().String("output", "", "output file (default: fingerprints.yaml or fingerprints.json)")
	ledgerExportCmd.Flags().Int("limit", 0, "maximum records to export (0 = all)")

	ledgerCmd.AddCommand(ledgerListCmd)
	ledgerCmd.AddCommand(ledgerExportCmd)
	ledgerCmd.AddCommand(ledgerVerifyCmd)

	rootCmd.AddCommand(ledgerCmd)
}
