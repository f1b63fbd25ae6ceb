// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package upload

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/neural-ingest/pkg/types"
)

// Simulated stands in for the Lighthouse/Filecoin anchor: it announces the
// push and blocks for the configured latency. The wait is not cancellable,
// matching an in-flight upload.
type Simulated struct {
	w     io.Writer
	delay time.Duration

	// Sleep blocks for d. Defaults to time.Sleep; tests replace it.
	Sleep func(d time.Duration)
}

// NewSimulated returns a Simulated uploader writing to w.
func NewSimulated(w io.Writer, delay time.Duration) *Simulated {
	return &Simulated{w: w, delay: delay, Sleep: time.Sleep}
}

func (s *Simulated) Name() string { return string(types.UploaderSimulated) }

func (s *Simulated) Upload(_ context.Context, _ types.Fingerprint) error {
	fmt.Fprintln(s.w, "--> [PUSH] Uploading to Lighthouse/Filecoin...")
	if s.delay > 0 {
		s.Sleep(s.delay)
	}
	return nil
}
