// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fingerprint

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/neural-ingest/pkg/types"
)

const (
	goldenDevice = "BCI-HEADSET-X9"
	goldenTime   = "2024-01-01T00:00:00"
	goldenHash   = "e5728c89854a108a347eb5ba222fb451baa81e1f5d04fb9f4a2d0420b1448bab"
)

var hexDigest = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestPayloadGolden(t *testing.T) {
	assert.Equal(t, "10.0000|2024-01-01T00:00:00|BCI-HEADSET-X9", Payload(10.0, goldenTime, goldenDevice))
}

func TestPayloadPrecision(t *testing.T) {
	tests := []struct {
		peak float64
		want string
	}{
		{0, "0.0000|ts|d"},
		{22, "22.0000|ts|d"},
		{10.123456, "10.1235|ts|d"},
		{128, "128.0000|ts|d"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Payload(tt.peak, "ts", "d"))
	}
}

func TestSumGolden(t *testing.T) {
	got := Sum(10.0, goldenTime, goldenDevice)
	assert.Equal(t, goldenHash, got)
	assert.Regexp(t, hexDigest, got)
}

func TestSumPure(t *testing.T) {
	a := Sum(13.5, "2025-06-01T12:00:00.000001", "dev")
	b := Sum(13.5, "2025-06-01T12:00:00.000001", "dev")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestSumAvalanche(t *testing.T) {
	base := Sum(10.0, goldenTime, goldenDevice)

	tests := []struct {
		name string
		got  string
	}{
		{"peak changed", Sum(10.0001, goldenTime, goldenDevice)},
		{"timestamp changed", Sum(10.0, "2024-01-01T00:00:01", goldenDevice)},
		{"device changed", Sum(10.0, goldenTime, "BCI-HEADSET-X8")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, base, tt.got)
			assert.Greater(t, hexDiff(base, tt.got), 32, "expected most hex digits to differ")
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	at := time.Date(2024, 1, 1, 9, 30, 5, 123456789, time.Local)
	assert.Equal(t, "2024-01-01T09:30:05.123456", FormatTimestamp(at))
}

func TestHasherCreate(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	h := &Hasher{
		DeviceID: goldenDevice,
		Now:      func() time.Time { return at },
		NewID:    func() string { return "rec-1" },
	}

	rec := h.Create(types.Features{Alpha: 3, Beta: 9, PeakFreq: 10})

	assert.Equal(t, "rec-1", rec.ID)
	assert.Equal(t, "2024-01-01T00:00:00.000000", rec.Timestamp)
	assert.Equal(t, Sum(10, rec.Timestamp, goldenDevice), rec.Hash)
	assert.Equal(t, goldenDevice, rec.DeviceID)
	assert.Equal(t, 3.0, rec.Alpha)
	assert.Equal(t, 9.0, rec.Beta)
	assert.Equal(t, at, rec.CreatedAt)
	assert.True(t, Verify(rec))
}

func TestHasherDefaults(t *testing.T) {
	h := NewHasher("dev")
	a := h.Create(types.Features{PeakFreq: 22})
	b := h.Create(types.Features{PeakFreq: 22})

	require.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Regexp(t, hexDigest, a.Hash)
}

func TestVerifyDetectsTampering(t *testing.T) {
	rec := types.Fingerprint{PeakFreq: 10, Timestamp: goldenTime, DeviceID: goldenDevice, Hash: goldenHash}
	require.True(t, Verify(rec))

	rec.PeakFreq = 11
	assert.False(t, Verify(rec))
}

func hexDiff(a, b string) int {
	n := 0
	for i := range a {
		if a[i] != b[i] {
			n++
		}
	}
	return n
}
