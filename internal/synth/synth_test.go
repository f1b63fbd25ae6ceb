// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/neural-ingest/pkg/types"
)

func testConfig(fs int) types.SynthConfig {
	return types.SynthConfig{SamplingRate: fs, FocusProbability: 0.3, NoiseStdDev: 0.5}
}

func TestAcquireLength(t *testing.T) {
	for _, fs := range []int{1, 2, 7, 64, 128, 256, 1000} {
		s := NewSeeded(42, testConfig(fs))
		signal, _ := s.Acquire()
		assert.Len(t, signal, fs, "fs=%d", fs)
	}
}

func TestAcquireNonPositiveRate(t *testing.T) {
	for _, fs := range []int{0, -256} {
		s := NewSeeded(1, testConfig(fs))
		signal, focused := s.Acquire()
		assert.Empty(t, signal)
		assert.False(t, focused)
	}
}

func TestAcquireDeterministicForSeed(t *testing.T) {
	a := NewSeeded(7, testConfig(256))
	b := NewSeeded(7, testConfig(256))

	for i := 0; i < 5; i++ {
		sa, fa := a.Acquire()
		sb, fb := b.Acquire()
		require.Equal(t, sa, sb, "iteration %d", i)
		require.Equal(t, fa, fb, "iteration %d", i)
	}
}

func TestAcquireFocusProbability(t *testing.T) {
	tests := []struct {
		name string
		prob float64
		want bool
	}{
		{"never", 0, false},
		{"always", 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(32)
			cfg.FocusProbability = tt.prob
			s := NewSeeded(3, cfg)
			for i := 0; i < 20; i++ {
				_, focused := s.Acquire()
				assert.Equal(t, tt.want, focused)
			}
		})
	}
}

func TestAcquireFocusRate(t *testing.T) {
	s := NewSeeded(99, testConfig(8))
	focused := 0
	const n = 5000
	for i := 0; i < n; i++ {
		if _, f := s.Acquire(); f {
			focused++
		}
	}
	rate := float64(focused) / n
	assert.InDelta(t, 0.3, rate, 0.03)
}

func TestAcquireNoiselessWaveform(t *testing.T) {
	cfg := testConfig(256)
	cfg.NoiseStdDev = 0
	cfg.FocusProbability = 1
	s := NewSeeded(5, cfg)

	signal, focused := s.Acquire()
	require.True(t, focused)

	// At t=0 both sinusoids are zero.
	assert.InDelta(t, 0, signal[0], 1e-12)

	// Peak amplitude cannot exceed alpha max + focused beta.
	for _, v := range signal {
		assert.LessOrEqual(t, math.Abs(v), alphaMax+betaFocused+1e-9)
	}
}
