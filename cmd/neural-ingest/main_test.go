// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/neural-ingest/internal/fingerprint"
	"github.com/pdiddy/neural-ingest/internal/ledger"
	"github.com/pdiddy/neural-ingest/pkg/types"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	setDefaults(v, types.DefaultIngestConfig())
	bindEnv(v)
	return v
}

func TestLoadIngestConfigDefaults(t *testing.T) {
	cfg, err := loadIngestConfig(newTestViper())
	require.NoError(t, err)
	assert.Equal(t, types.DefaultIngestConfig(), cfg)
}

func TestLoadIngestConfigFromEnv(t *testing.T) {
	t.Setenv("NEURAL_INGEST_DEVICE_ID", "BCI-LAB-7")
	t.Setenv("NEURAL_INGEST_SYNTH_SAMPLING_RATE", "512")
	t.Setenv("NEURAL_INGEST_INTERVAL", "250ms")
	t.Setenv("NEURAL_INGEST_SEED", "42")
	t.Setenv("NEURAL_INGEST_DSP_HIGH_CUT", "40")
	t.Setenv("NEURAL_INGEST_UPLOAD_KIND", "http")
	t.Setenv("NEURAL_INGEST_UPLOAD_HTTP_URL", "https://anchor.example/v1/fingerprints")

	cfg, err := loadIngestConfig(newTestViper())
	require.NoError(t, err)
	assert.Equal(t, "BCI-LAB-7", cfg.DeviceID)
	assert.Equal(t, 512, cfg.Synth.SamplingRate)
	assert.Equal(t, 250*time.Millisecond, cfg.Interval)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, 40.0, cfg.DSP.HighCut)
	assert.Equal(t, 1.0, cfg.DSP.LowCut)
	assert.Equal(t, types.UploaderHTTP, cfg.Upload.Kind)
	assert.Equal(t, "https://anchor.example/v1/fingerprints", cfg.Upload.HTTP.URL)
	assert.Equal(t, 3, cfg.Upload.HTTP.MaxRetries)
}

func TestLoadIngestConfigInvalid(t *testing.T) {
	tests := map[string]string{
		"NEURAL_INGEST_SYNTH_SAMPLING_RATE": "0",
		"NEURAL_INGEST_UPLOAD_KIND":         "carrier-pigeon",
		"NEURAL_INGEST_INTERVAL":            "-1s",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := loadIngestConfig(newTestViper())
			assert.ErrorIs(t, err, types.ErrInvalidConfig)
		})
	}
}

func TestIngestRunWritesLedger(t *testing.T) {
	cfg := types.DefaultIngestConfig()
	cfg.Seed = 42
	cfg.MaxIterations = 3
	cfg.Interval = 0
	cfg.Synth.FocusProbability = 1
	cfg.Upload.Delay = 0
	cfg.Ledger.Path = filepath.Join(t.TempDir(), "ledger", "fingerprints.db")

	var out bytes.Buffer
	require.NoError(t, ingestRun(context.Background(), cfg, nil, &out))

	s := out.String()
	assert.Contains(t, s, "[INIT] Configuring Bandpass Filter (1-50Hz)...\n")
	assert.Contains(t, s, "[INIT] Sampling at 256 Hz, uploader=simulated")
	assert.Equal(t, 3, strings.Count(s, "--> [HASH] "))
	assert.Equal(t, 3, strings.Count(s, "--> [PUSH] Uploading to Lighthouse/Filecoin..."))
	assert.True(t, strings.HasSuffix(s, "[STOP] Ingest Halted.\n"))

	l, err := ledger.Open(cfg.Ledger)
	require.NoError(t, err)
	defer l.Close()

	recs, err := l.List(context.Background(), ledger.ListOptions{})
	require.NoError(t, err)
	require.Len(t, recs, 3)
	for _, rec := range recs {
		assert.Equal(t, "BCI-HEADSET-X9", rec.DeviceID)
		assert.True(t, fingerprint.Verify(rec))
		assert.Contains(t, s, "--> [HASH] "+rec.Hash)
	}
}

func TestIngestRunUnknownUploader(t *testing.T) {
	cfg := types.DefaultIngestConfig()
	cfg.Upload.Kind = "carrier-pigeon"
	err := ingestRun(context.Background(), cfg, nil, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestHashCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"hash",
		"--peak", "10",
		"--timestamp", "2024-01-01T00:00:00",
		"--device-id", "BCI-HEADSET-X9",
	})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t,
		"payload: 10.0000|2024-01-01T00:00:00|BCI-HEADSET-X9\n"+
			"sha256:  e5728c89854a108a347eb5ba222fb451baa81e1f5d04fb9f4a2d0420b1448bab\n",
		out.String())
}

func TestFormatLedgerList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, formatLedgerList(&buf, nil, false))
	assert.Equal(t, "No fingerprints recorded.\n", buf.String())

	buf.Reset()
	require.NoError(t, formatLedgerList(&buf, nil, true))
	assert.Equal(t, "[]\n", buf.String())

	buf.Reset()
	recs := []types.Fingerprint{{
		ID:        "rec-1",
		Hash:      "e5728c89854a108a347eb5ba222fb451baa81e1f5d04fb9f4a2d0420b1448bab",
		Timestamp: "2024-01-01T00:00:00",
		DeviceID:  "BCI-HEADSET-X9",
		PeakFreq:  10,
	}}
	require.NoError(t, formatLedgerList(&buf, recs, false))
	assert.Contains(t, buf.String(), "e5728c89854a1...")
	assert.Contains(t, buf.String(), "rec-1")
	assert.Contains(t, buf.String(), "1 fingerprints")
}
