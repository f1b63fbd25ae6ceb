// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fingerprint computes the neural hash: a SHA-256 digest over the
// peak frequency, a timestamp and the device identifier. No raw signal
// data enters the payload.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/neural-ingest/pkg/types"
)

// Delimiter separates payload fields.
const Delimiter = "|"

// TimestampLayout renders local time as ISO-8601 with microseconds.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// FormatTimestamp renders t with TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// Payload builds the canonical string that is hashed:
// "<peak %.4f>|<timestamp>|<device>".
func Payload(peakFreq float64, timestamp, deviceID string) string {
	return fmt.Sprintf("%.4f%s%s%s%s", peakFreq, Delimiter, timestamp, Delimiter, deviceID)
}

// Sum returns the hex-encoded SHA-256 of the payload. Identical inputs
// always give the identical 64-character digest.
func Sum(peakFreq float64, timestamp, deviceID string) string {
	sum := sha256.Sum256([]byte(Payload(peakFreq, timestamp, deviceID)))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether rec.Hash matches its own fields.
func Verify(rec types.Fingerprint) bool {
	return rec.Hash == Sum(rec.PeakFreq, rec.Timestamp, rec.DeviceID)
}

// Hasher stamps and hashes feature sets for one device.
type Hasher struct {
	DeviceID string

	// Now supplies the timestamp. Defaults to time.Now.
	Now func() time.Time

	// NewID supplies record IDs. Defaults to random UUIDs.
	NewID func() string
}

// NewHasher returns a Hasher for deviceID using the wall clock.
func NewHasher(deviceID string) *Hasher {
	return &Hasher{DeviceID: deviceID}
}

// Create builds the fingerprint record for f.
func (h *Hasher) Create(f types.Features) types.Fingerprint {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	newID := uuid.NewString
	if h.NewID != nil {
		newID = h.NewID
	}

	at := now()
	ts := FormatTimestamp(at)
	return types.Fingerprint{
		ID:        newID(),
		Hash:      Sum(f.PeakFreq, ts, h.DeviceID),
		Timestamp: ts,
		DeviceID:  h.DeviceID,
		PeakFreq:  f.PeakFreq,
		Alpha:     f.Alpha,
		Beta:      f.Beta,
		CreatedAt: at,
	}
}
