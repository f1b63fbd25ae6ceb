package types

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned (wrapped with the offending field) when a
// configuration value is out of range.
var ErrInvalidConfig = errors.New("invalid configuration")

// UploaderKind selects the transport that receives fingerprint records.
type UploaderKind string

const (
	UploaderSimulated  UploaderKind = "simulated"
	UploaderMQTT       UploaderKind = "mqtt"
	UploaderHTTP       UploaderKind = "http"
	UploaderClickHouse UploaderKind = "clickhouse"
)

// SynthConfig holds settings for the signal synthesizer.
type SynthConfig struct {
	// SamplingRate is the number of samples per second (Hz). One second of
	// signal is generated per iteration, so this is also the buffer length.
	SamplingRate int `json:"sampling_rate" yaml:"sampling_rate" mapstructure:"sampling_rate"`

	// FocusProbability is the chance that an iteration carries a strong
	// beta component (default 0.3).
	FocusProbability float64 `json:"focus_probability" yaml:"focus_probability" mapstructure:"focus_probability"`

	// NoiseStdDev is the standard deviation of the Gaussian noise added to
	// every sample (default 0.5).
	NoiseStdDev float64 `json:"noise_stddev" yaml:"noise_stddev" mapstructure:"noise_stddev"`
}

// DSPConfig holds feature-extraction settings.
type DSPConfig struct {
	// LowCut and HighCut bound the bandpass filter in Hz (default 1-50).
	// Both zero disables filtering.
	LowCut  float64 `json:"low_cut" yaml:"low_cut" mapstructure:"low_cut"`
	HighCut float64 `json:"high_cut" yaml:"high_cut" mapstructure:"high_cut"`
}

// Passband returns the filter range as a Band.
func (c DSPConfig) Passband() Band {
	return Band{Name: "passband", Low: c.LowCut, High: c.HighCut}
}

// MQTTConfig holds settings for the MQTT uploader.
type MQTTConfig struct {
	Broker   string `json:"broker" yaml:"broker" mapstructure:"broker"`
	ClientID string `json:"client_id" yaml:"client_id" mapstructure:"client_id"`
	Username string `json:"username" yaml:"username" mapstructure:"username"`
	Password string `json:"password,omitempty" yaml:"password,omitempty" mapstructure:"password"`

	// Topic may contain a {device_id} placeholder.
	Topic string `json:"topic" yaml:"topic" mapstructure:"topic"`

	// PublishTimeout bounds the wait for the broker to acknowledge a publish.
	PublishTimeout time.Duration `json:"publish_timeout" yaml:"publish_timeout" mapstructure:"publish_timeout"`
}

// HTTPConfig holds settings for the HTTP uploader.
type HTTPConfig struct {
	// URL is the anchor endpoint that receives the JSON record via POST.
	URL string `json:"url" yaml:"url" mapstructure:"url"`

	// APIKey is sent as a bearer token when set.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// MaxRetries is the number of retries on HTTP 429/503 (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// UserAgent is the User-Agent header sent with requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// ClickHouseConfig holds settings for the ClickHouse uploader.
type ClickHouseConfig struct {
	Addr     string `json:"addr" yaml:"addr" mapstructure:"addr"`
	Database string `json:"database" yaml:"database" mapstructure:"database"`
	Username string `json:"username" yaml:"username" mapstructure:"username"`
	Password string `json:"password,omitempty" yaml:"password,omitempty" mapstructure:"password"`
}

// UploadConfig selects and configures the uploader.
type UploadConfig struct {
	Kind UploaderKind `json:"kind" yaml:"kind" mapstructure:"kind"`

	// Delay is the simulated network latency of the simulated uploader.
	Delay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay"`

	MQTT       MQTTConfig       `json:"mqtt" yaml:"mqtt" mapstructure:"mqtt"`
	HTTP       HTTPConfig       `json:"http" yaml:"http" mapstructure:"http"`
	ClickHouse ClickHouseConfig `json:"clickhouse" yaml:"clickhouse" mapstructure:"clickhouse"`
}

// LedgerConfig holds settings for the local fingerprint ledger.
type LedgerConfig struct {
	// Path is the SQLite file. Empty disables the ledger.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// LogConfig holds diagnostic logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is text or json.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// IngestConfig groups all settings for an ingest run.
type IngestConfig struct {
	// DeviceID identifies the headset and is part of every fingerprint.
	DeviceID string `json:"device_id" yaml:"device_id" mapstructure:"device_id"`

	// Interval is the pause between iterations.
	Interval time.Duration `json:"interval" yaml:"interval" mapstructure:"interval"`

	// MaxIterations stops the run after this many iterations (0 = run until interrupted).
	MaxIterations int `json:"max_iterations" yaml:"max_iterations" mapstructure:"max_iterations"`

	// Seed seeds the random source. Zero seeds from the clock.
	Seed uint64 `json:"seed" yaml:"seed" mapstructure:"seed"`

	Synth  SynthConfig  `json:"synth" yaml:"synth" mapstructure:"synth"`
	DSP    DSPConfig    `json:"dsp" yaml:"dsp" mapstructure:"dsp"`
	Upload UploadConfig `json:"upload" yaml:"upload" mapstructure:"upload"`
	Ledger LedgerConfig `json:"ledger" yaml:"ledger" mapstructure:"ledger"`
	Log    LogConfig    `json:"log" yaml:"log" mapstructure:"log"`
}

// DefaultIngestConfig returns the settings of the original demo headset.
func DefaultIngestConfig() IngestConfig {
	return IngestConfig{
		DeviceID: "BCI-HEADSET-X9",
		Interval: time.Second,
		Synth: SynthConfig{
			SamplingRate:     256,
			FocusProbability: 0.3,
			NoiseStdDev:      0.5,
		},
		DSP: DSPConfig{
			LowCut:  1,
			HighCut: 50,
		},
		Upload: UploadConfig{
			Kind:  UploaderSimulated,
			Delay: 2 * time.Second,
			MQTT: MQTTConfig{
				Broker:         "tcp://localhost:1883",
				ClientID:       "neural-ingest",
				Topic:          "bci/{device_id}/fingerprint",
				PublishTimeout: 5 * time.Second,
			},
			HTTP: HTTPConfig{
				Timeout:    30 * time.Second,
				MaxRetries: 3,
				UserAgent:  "neural-ingest/0.1",
			},
			ClickHouse: ClickHouseConfig{
				Addr:     "localhost:9000",
				Database: "bci",
				Username: "default",
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks that the configuration can drive an ingest run.
func (c IngestConfig) Validate() error {
	if c.DeviceID == "" {
		return fmt.Errorf("%w: device_id must not be empty", ErrInvalidConfig)
	}
	if c.Synth.SamplingRate <= 0 {
		return fmt.Errorf("%w: sampling_rate must be positive, got %d", ErrInvalidConfig, c.Synth.SamplingRate)
	}
	if c.Synth.FocusProbability < 0 || c.Synth.FocusProbability > 1 {
		return fmt.Errorf("%w: focus_probability must be within [0,1], got %g", ErrInvalidConfig, c.Synth.FocusProbability)
	}
	if c.Synth.NoiseStdDev < 0 {
		return fmt.Errorf("%w: noise_stddev must not be negative, got %g", ErrInvalidConfig, c.Synth.NoiseStdDev)
	}
	if c.DSP.LowCut != 0 || c.DSP.HighCut != 0 {
		if c.DSP.LowCut < 0 || c.DSP.HighCut <= c.DSP.LowCut {
			return fmt.Errorf("%w: dsp band must satisfy 0 <= low_cut < high_cut, got %g-%g", ErrInvalidConfig, c.DSP.LowCut, c.DSP.HighCut)
		}
	}
	if c.Interval < 0 {
		return fmt.Errorf("%w: interval must not be negative, got %s", ErrInvalidConfig, c.Interval)
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("%w: max_iterations must not be negative, got %d", ErrInvalidConfig, c.MaxIterations)
	}

	switch c.Upload.Kind {
	case UploaderSimulated, "":
		if c.Upload.Delay < 0 {
			return fmt.Errorf("%w: upload.delay must not be negative", ErrInvalidConfig)
		}
	case UploaderMQTT:
		if c.Upload.MQTT.Broker == "" || c.Upload.MQTT.Topic == "" {
			return fmt.Errorf("%w: upload.mqtt.broker and upload.mqtt.topic are required", ErrInvalidConfig)
		}
	case UploaderHTTP:
		if c.Upload.HTTP.URL == "" {
			return fmt.Errorf("%w: upload.http.url is required", ErrInvalidConfig)
		}
	case UploaderClickHouse:
		if c.Upload.ClickHouse.Addr == "" {
			return fmt.Errorf("%w: upload.clickhouse.addr is required", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown uploader %q", ErrInvalidConfig, c.Upload.Kind)
	}
	return nil
}
