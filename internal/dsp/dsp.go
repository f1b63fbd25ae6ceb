// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dsp extracts spectral features from a signal buffer: band power
// over the canonical EEG bands and the dominant frequency.
package dsp

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"

	"github.com/pdiddy/neural-ingest/pkg/types"
)

// Spectrum holds the magnitude of each real-FFT bin and its frequency.
// Freqs[k] = k*fs/N for k in [0, N/2].
type Spectrum struct {
	Freqs []float64
	Mags  []float64
}

// Len returns the number of bins.
func (s Spectrum) Len() int { return len(s.Mags) }

// Resolution returns the bin width in Hz, or 0 for fewer than two bins.
func (s Spectrum) Resolution() float64 {
	if len(s.Freqs) < 2 {
		return 0
	}
	return s.Freqs[1] - s.Freqs[0]
}

// ComputeSpectrum runs an unnormalised real FFT over signal sampled at fs Hz.
// An empty signal or non-positive fs yields an empty Spectrum.
func ComputeSpectrum(signal []float64, fs int) Spectrum {
	n := len(signal)
	if n == 0 || fs <= 0 {
		return Spectrum{}
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, signal)

	spec := Spectrum{
		Freqs: make([]float64, len(coeffs)),
		Mags:  make([]float64, len(coeffs)),
	}
	for k, c := range coeffs {
		spec.Freqs[k] = fft.Freq(k) * float64(fs)
		spec.Mags[k] = cmplx.Abs(c)
	}
	return spec
}

// BandPower returns the mean magnitude over bins whose frequency lies in
// [low, high]. A band with no bins has power 0.
func BandPower(spec Spectrum, low, high float64) float64 {
	var inBand []float64
	for k, f := range spec.Freqs {
		if f >= low && f <= high {
			inBand = append(inBand, spec.Mags[k])
		}
	}
	if len(inBand) == 0 {
		return 0
	}
	return stat.Mean(inBand, nil)
}

// PeakFrequency returns the frequency of the first bin with the largest
// magnitude, or 0 for an empty spectrum.
func PeakFrequency(spec Spectrum) float64 {
	if spec.Len() == 0 {
		return 0
	}
	best := 0
	for k := 1; k < spec.Len(); k++ {
		if spec.Mags[k] > spec.Mags[best] {
			best = k
		}
	}
	return spec.Freqs[best]
}

// Bandpass returns a copy of spec with every bin outside [low, high]
// zeroed, an ideal filter applied in the frequency domain.
func Bandpass(spec Spectrum, low, high float64) Spectrum {
	out := Spectrum{
		Freqs: append([]float64(nil), spec.Freqs...),
		Mags:  make([]float64, len(spec.Mags)),
	}
	for k, f := range spec.Freqs {
		if f >= low && f <= high {
			out.Mags[k] = spec.Mags[k]
		}
	}
	return out
}

// Extract computes the feature set for one buffer. It is deterministic in
// its inputs.
func Extract(signal []float64, fs int) types.Features {
	return features(ComputeSpectrum(signal, fs))
}

// ExtractFiltered is Extract over the spectrum limited to pass, so DC
// offset and out-of-band noise cannot become the peak.
func ExtractFiltered(signal []float64, fs int, pass types.Band) types.Features {
	return features(Bandpass(ComputeSpectrum(signal, fs), pass.Low, pass.High))
}

func features(spec Spectrum) types.Features {
	return types.Features{
		Alpha:    BandPower(spec, types.BandAlpha.Low, types.BandAlpha.High),
		Beta:     BandPower(spec, types.BandBeta.Low, types.BandBeta.High),
		Delta:    BandPower(spec, types.BandDelta.Low, types.BandDelta.High),
		Theta:    BandPower(spec, types.BandTheta.Low, types.BandTheta.High),
		PeakFreq: PeakFrequency(spec),
	}
}
