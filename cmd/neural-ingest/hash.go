// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/neural-ingest/internal/fingerprint"
	"github.com/pdiddy/neural-ingest/pkg/types"
)

var hashCmd = &cobra.Command{
	Use:   "hash",
	Short: "Print the fingerprint payload and digest for given inputs",
	Long: `Hash computes the SHA-256 fingerprint of a peak frequency, timestamp and
device ID exactly as the ingest loop does, so anchored digests can be
checked by hand. The timestamp defaults to the current local time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		peak, _ := cmd.Flags().GetFloat64("peak")
		ts, _ := cmd.Flags().GetString("timestamp")
		deviceID, _ := cmd.Flags().GetString("device-id")

		if deviceID == "" {
			return fmt.Errorf("%w: --device-id must not be empty", types.ErrInvalidConfig)
		}
		if ts == "" {
			ts = fingerprint.FormatTimestamp(time.Now())
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "payload: %s\n", fingerprint.Payload(peak, ts, deviceID))
		fmt.Fprintf(out, "sha256:  %s\n", fingerprint.Sum(peak, ts, deviceID))
		return nil
	},
}

func init() {
	hashCmd.Flags().Float64("peak", 0, "peak frequency in Hz")
	hashCmd.Flags().String("timestamp", "", "timestamp string as hashed (default: now)")
	hashCmd.Flags().String("device-id", types.DefaultIngestConfig().DeviceID, "device identifier")

	rootCmd.AddCommand(hashCmd)
}
