// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package synth generates synthetic EEG-like waveforms for the ingest loop.
// A buffer is one second of signal: a 10 Hz alpha component with random
// amplitude, a 22 Hz beta component that is strong on "focused" buffers,
// and Gaussian noise.
package synth

import (
	"math"
	"math/rand/v2"

	"github.com/pdiddy/neural-ingest/pkg/types"
)

const (
	alphaHz = 10.0
	betaHz  = 22.0

	alphaMin = 0.5
	alphaMax = 2.0

	betaFocused = 3.0
	betaResting = 0.5
)

// Synthesizer produces signal buffers from an injected random source.
// It is not safe for concurrent use because *rand.Rand is not.
type Synthesizer struct {
	rng *rand.Rand
	cfg types.SynthConfig
}

// New returns a Synthesizer drawing from rng.
func New(rng *rand.Rand, cfg types.SynthConfig) *Synthesizer {
	return &Synthesizer{rng: rng, cfg: cfg}
}

// NewSeeded returns a Synthesizer with a PCG source seeded by seed.
func NewSeeded(seed uint64, cfg types.SynthConfig) *Synthesizer {
	return New(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), cfg)
}

// SamplingRate returns the configured rate in Hz.
func (s *Synthesizer) SamplingRate() int {
	return s.cfg.SamplingRate
}

// Acquire returns one second of signal sampled at t = i/fs for
// i in [0, fs), and whether the buffer carries the focus spike.
// A non-positive sampling rate yields an empty buffer.
func (s *Synthesizer) Acquire() ([]float64, bool) {
	fs := s.cfg.SamplingRate
	if fs <= 0 {
		return []float64{}, false
	}

	alphaAmp := alphaMin + s.rng.Float64()*(alphaMax-alphaMin)

	focused := s.rng.Float64() < s.cfg.FocusProbability
	betaAmp := betaResting
	if focused {
		betaAmp = betaFocused
	}

	signal := make([]float64, fs)
	for i := range signal {
		t := float64(i) / float64(fs)
		v := alphaAmp*math.Sin(2*math.Pi*alphaHz*t) + betaAmp*math.Sin(2*math.Pi*betaHz*t)
		if s.cfg.NoiseStdDev > 0 {
			v += s.rng.NormFloat64() * s.cfg.NoiseStdDev
		}
		signal[i] = v
	}
	return signal, focused
}
