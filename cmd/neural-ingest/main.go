// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the neural-ingest CLI.
//
// Running neural-ingest with no subcommand starts the ingest loop. The run,
// hash, ledger and version subcommands expose the individual stages.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/neural-ingest/internal/logging"
	"github.com/pdiddy/neural-ingest/internal/secrets"
	"github.com/pdiddy/neural-ingest/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets secrets.Secrets

// rootCmd is the base command for the neural-ingest CLI.
var rootCmd = &cobra.Command{
	Use:   "neural-ingest",
	Short: "Synthesize EEG, detect focus and anchor fingerprints",
	Long: `neural-ingest simulates a BCI headset. Each second it synthesizes a
buffer of EEG samples, extracts alpha and beta band power, and when the
buffer shows a focus state it hashes a fingerprint of the features and hands
it to an uploader (simulated, mqtt, http or clickhouse).

Raw samples never leave the process; only the feature summary and its
SHA-256 digest are uploaded.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logCfg := types.LogConfig{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
		}
		if err := logging.Setup(os.Stderr, logCfg.Level, logCfg.Format); err != nil {
			return fmt.Errorf("%w: %v", types.ErrInvalidConfig, err)
		}

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			slog.Info("loaded secrets", "keys", s.Keys())
		}
		return nil
	},
	RunE: runIngest,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./neural-ingest.yaml or ~/.config/neural-ingest/neural-ingest.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: text or json")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	addIngestFlags(rootCmd)
}

func initConfig() {
	// A missing .env is normal; variables may come from the real environment.
	_ = godotenv.Load()

	setDefaults(viper.GetViper(), types.DefaultIngestConfig())

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("neural-ingest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "neural-ingest"))
		}
	}

	bindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// bindEnv maps keys to NEURAL_INGEST_* variables, e.g. synth.sampling_rate
// to NEURAL_INGEST_SYNTH_SAMPLING_RATE.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("NEURAL_INGEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// setDefaults registers every configuration key so AutomaticEnv can
// resolve it during Unmarshal.
func setDefaults(v *viper.Viper, d types.IngestConfig) {
	v.SetDefault("device_id", d.DeviceID)
	v.SetDefault("interval", d.Interval)
	v.SetDefault("max_iterations", d.MaxIterations)
	v.SetDefault("seed", d.Seed)

	v.SetDefault("synth.sampling_rate", d.Synth.SamplingRate)
	v.SetDefault("synth.focus_probability", d.Synth.FocusProbability)
	v.SetDefault("synth.noise_stddev", d.Synth.NoiseStdDev)

	v.SetDefault("dsp.low_cut", d.DSP.LowCut)
	v.SetDefault("dsp.high_cut", d.DSP.HighCut)

	v.SetDefault("upload.kind", string(d.Upload.Kind))
	v.SetDefault("upload.delay", d.Upload.Delay)

	v.SetDefault("upload.mqtt.broker", d.Upload.MQTT.Broker)
	v.SetDefault("upload.mqtt.client_id", d.Upload.MQTT.ClientID)
	v.SetDefault("upload.mqtt.username", d.Upload.MQTT.Username)
	v.SetDefault("upload.mqtt.password", d.Upload.MQTT.Password)
	v.SetDefault("upload.mqtt.topic", d.Upload.MQTT.Topic)
	v.SetDefault("upload.mqtt.publish_timeout", d.Upload.MQTT.PublishTimeout)

	v.SetDefault("upload.http.url", d.Upload.HTTP.URL)
	v.SetDefault("upload.http.api_key", d.Upload.HTTP.APIKey)
	v.SetDefault("upload.http.timeout", d.Upload.HTTP.Timeout)
	v.SetDefault("upload.http.max_retries", d.Upload.HTTP.MaxRetries)
	v.SetDefault("upload.http.user_agent", d.Upload.HTTP.UserAgent)

	v.SetDefault("upload.clickhouse.addr", d.Upload.ClickHouse.Addr)
	v.SetDefault("upload.clickhouse.database", d.Upload.ClickHouse.Database)
	v.SetDefault("upload.clickhouse.username", d.Upload.ClickHouse.Username)
	v.SetDefault("upload.clickhouse.password", d.Upload.ClickHouse.Password)

	v.SetDefault("ledger.path", d.Ledger.Path)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
