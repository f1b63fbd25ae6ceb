// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Band is a named frequency range in Hz, inclusive on both ends.
type Band struct {
	Name string  `json:"name" yaml:"name"`
	Low  float64 `json:"low" yaml:"low"`
	High float64 `json:"high" yaml:"high"`
}

// Canonical EEG bands.
var (
	BandDelta = Band{Name: "delta", Low: 0.5, High: 4}
	BandTheta = Band{Name: "theta", Low: 4, High: 8}
	BandAlpha = Band{Name: "alpha", Low: 8, High: 12}
	BandBeta  = Band{Name: "beta", Low: 13, High: 30}
)

// Features is the spectral summary of one signal buffer. It is the only
// thing that survives an iteration; the raw samples are discarded.
type Features struct {
	// Alpha is the mean FFT magnitude over the alpha band (8-12 Hz).
	Alpha float64 `json:"alpha" yaml:"alpha"`

	// Beta is the mean FFT magnitude over the beta band (13-30 Hz).
	Beta float64 `json:"beta" yaml:"beta"`

	// Delta is the mean FFT magnitude over the delta band (0.5-4 Hz).
	Delta float64 `json:"delta" yaml:"delta"`

	// Theta is the mean FFT magnitude over the theta band (4-8 Hz).
	Theta float64 `json:"theta" yaml:"theta"`

	// PeakFreq is the frequency of the strongest bin, in [0, fs/2].
	PeakFreq float64 `json:"peak_freq" yaml:"peak_freq"`
}

// Fingerprint is the privacy-preserving record emitted for a focused
// iteration. Hash covers PeakFreq, Timestamp and DeviceID only.
type Fingerprint struct {
	// ID identifies the record for transports and the ledger. It is not hashed.
	ID string `json:"id" yaml:"id"`

	// Hash is the hex-encoded SHA-256 digest (64 characters).
	Hash string `json:"hash" yaml:"hash"`

	// Timestamp is the exact ISO-8601 string that went into the hash.
	Timestamp string `json:"timestamp" yaml:"timestamp"`

	DeviceID string  `json:"device_id" yaml:"device_id"`
	PeakFreq float64 `json:"peak_freq" yaml:"peak_freq"`
	Alpha    float64 `json:"alpha" yaml:"alpha"`
	Beta     float64 `json:"beta" yaml:"beta"`

	// CreatedAt is the wall-clock time the record was made.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
