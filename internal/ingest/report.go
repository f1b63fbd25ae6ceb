// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"fmt"
	"io"

	"github.com/pdiddy/neural-ingest/pkg/types"
)

// Reporter writes the human-readable console lines of a run.
type Reporter struct {
	w io.Writer
}

// NewReporter returns a Reporter writing to w.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Writer returns the underlying writer so uploaders can print in line.
func (r *Reporter) Writer() io.Writer { return r.w }

// Banner announces the device and pipeline settings. The bandpass line is
// printed only when pass is set.
func (r *Reporter) Banner(deviceID string, samplingRate int, uploader string, pass types.Band) {
	fmt.Fprintf(r.w, "[INIT] Connecting to %s...\n", deviceID)
	if pass.High > 0 {
		fmt.Fprintf(r.w, "[INIT] Configuring Bandpass Filter (%g-%gHz)...\n", pass.Low, pass.High)
	}
	fmt.Fprintf(r.w, "[INIT] Sampling at %d Hz, uploader=%s\n", samplingRate, uploader)
	fmt.Fprintln(r.w, "[READY] Neuro-Link Established. Awaiting Signal...")
}

// Features prints the per-iteration DSP summary.
func (r *Reporter) Features(f types.Features) {
	fmt.Fprintf(r.w, "\n[DSP] Alpha: %.2f | Beta: %.2f | Peak: %.1fHz\n", f.Alpha, f.Beta, f.PeakFreq)
}

// Detected prints the focus detection and the fingerprint digest.
func (r *Reporter) Detected(rec types.Fingerprint) {
	fmt.Fprintln(r.w, "--> [FOCUS DETECTED] Creating Secure Anchor...")
	fmt.Fprintf(r.w, "--> [HASH] %s\n", rec.Hash)
}

// Stopped prints the termination line.
func (r *Reporter) Stopped() {
	fmt.Fprintln(r.w, "\n[STOP] Ingest Halted.")
}
