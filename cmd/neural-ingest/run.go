// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/neural-ingest/internal/fingerprint"
	"github.com/pdiddy/neural-ingest/internal/ingest"
	"github.com/pdiddy/neural-ingest/internal/ledger"
	"github.com/pdiddy/neural-ingest/internal/secrets"
	"github.com/pdiddy/neural-ingest/internal/synth"
	"github.com/pdiddy/neural-ingest/internal/upload"
	"github.com/pdiddy/neural-ingest/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the ingest loop until interrupted",
	Long: `Run synthesizes one buffer per interval, prints the alpha and beta band
power and peak frequency, and on a focused buffer creates a fingerprint and
uploads it. Ctrl-C (SIGINT) or SIGTERM stops the loop after the current
iteration; an upload in progress is allowed to finish.

Set --iterations to stop after a fixed number of buffers.`,
	RunE: runIngest,
}

// ingestFlags maps flag names to the configuration keys they override.
var ingestFlags = map[string]string{
	"device-id":     "device_id",
	"sampling-rate": "synth.sampling_rate",
	"interval":      "interval",
	"seed":          "seed",
	"iterations":    "max_iterations",
	"uploader":      "upload.kind",
	"ledger":        "ledger.path",
}

func addIngestFlags(cmd *cobra.Command) {
	d := types.DefaultIngestConfig()
	cmd.Flags().String("device-id", d.DeviceID, "device identifier included in every fingerprint")
	cmd.Flags().Int("sampling-rate", d.Synth.SamplingRate, "samples per second (Hz)")
	cmd.Flags().Duration("interval", d.Interval, "pause between iterations")
	cmd.Flags().Uint64("seed", 0, "random seed (0 = seed from the clock)")
	cmd.Flags().Int("iterations", 0, "stop after this many iterations (0 = until interrupted)")
	cmd.Flags().String("uploader", string(d.Upload.Kind), "uploader: simulated, mqtt, http, clickhouse")
	cmd.Flags().String("ledger", "", "SQLite ledger file recording every fingerprint (empty = off)")
}

// bindIngestFlags binds the executing command's flags so that only the
// command actually run overrides configuration.
func bindIngestFlags(cmd *cobra.Command) error {
	for flag, key := range ingestFlags {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("binding --%s: %w", flag, err)
		}
	}
	return nil
}

// loadIngestConfig decodes and validates the merged configuration.
func loadIngestConfig(v *viper.Viper) (types.IngestConfig, error) {
	var cfg types.IngestConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := bindIngestFlags(cmd); err != nil {
		return err
	}
	cfg, err := loadIngestConfig(viper.GetViper())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return ingestRun(ctx, cfg, loadedSecrets, os.Stdout)
}

// ingestRun builds the pipeline for cfg and runs it until ctx is done.
func ingestRun(ctx context.Context, cfg types.IngestConfig, sec secrets.Secrets, w io.Writer) error {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	slog.Debug("synthesizer seeded", "seed", seed, "sampling_rate", cfg.Synth.SamplingRate)
	source := synth.NewSeeded(seed, cfg.Synth)

	up, err := upload.New(ctx, cfg.Upload, sec, w)
	if err != nil {
		return fmt.Errorf("creating %s uploader: %w", cfg.Upload.Kind, err)
	}
	defer func() {
		if err := upload.Close(up); err != nil {
			slog.Warn("closing uploader", "uploader", up.Name(), "err", err)
		}
	}()

	opts := ingest.Options{
		Interval:      cfg.Interval,
		MaxIterations: cfg.MaxIterations,
	}
	if cfg.DSP.HighCut > 0 {
		opts.Passband = cfg.DSP.Passband()
	}
	if cfg.Ledger.Path != "" {
		led, err := ledger.Open(cfg.Ledger)
		if err != nil {
			return err
		}
		defer led.Close()
		opts.Ledger = led
		slog.Info("recording fingerprints", "ledger", led.Path())
	}

	runner := ingest.NewRunner(source, fingerprint.NewHasher(cfg.DeviceID), up, ingest.NewReporter(w), opts)
	return runner.Run(ctx)
}

func init() {
	addIngestFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}
