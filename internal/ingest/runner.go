// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest drives the acquisition loop: synthesize a buffer, extract
// features, and on a focused buffer hash and upload a fingerprint.
//
// Tick runs one iteration synchronously and never sleeps on its own, so
// tests can step the loop without real delays. Run repeats Tick with a
// periodic wait until the context is cancelled.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/pdiddy/neural-ingest/internal/dsp"
	"github.com/pdiddy/neural-ingest/internal/fingerprint"
	"github.com/pdiddy/neural-ingest/internal/upload"
	"github.com/pdiddy/neural-ingest/pkg/types"
)

// State is the runner lifecycle state.
type State int32

const (
	StateStopped State = iota
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "RUNNING"
	default:
		return "STOPPED"
	}
}

// Source produces signal buffers. *synth.Synthesizer implements it.
type Source interface {
	Acquire() (signal []float64, focused bool)
	SamplingRate() int
}

// Recorder keeps emitted fingerprints. *ledger.Ledger implements it.
type Recorder interface {
	Append(ctx context.Context, rec types.Fingerprint) error
}

// Iteration is the outcome of one Tick. Fingerprint is nil when the buffer
// was not focused.
type Iteration struct {
	Features    types.Features
	Focused     bool
	Fingerprint *types.Fingerprint
}

// Options tune a Runner.
type Options struct {
	// Interval is the pause between iterations.
	Interval time.Duration

	// MaxIterations stops Run after this many ticks (0 = unlimited).
	MaxIterations int

	// Ledger, when set, records every fingerprint.
	Ledger Recorder

	// Passband limits feature extraction to [Low, High] Hz. A zero High
	// disables filtering.
	Passband types.Band
}

// Runner owns one ingest pipeline. It is driven from a single goroutine;
// only State may be read concurrently.
type Runner struct {
	source   Source
	hasher   *fingerprint.Hasher
	uploader upload.Uploader
	report   *Reporter
	opts     Options

	// Wait pauses between iterations and returns early with ctx.Err()
	// when ctx is cancelled. Defaults to SleepContext.
	Wait func(ctx context.Context, d time.Duration) error

	state atomic.Int32
	ticks int
}

// NewRunner wires a pipeline.
func NewRunner(source Source, hasher *fingerprint.Hasher, uploader upload.Uploader, report *Reporter, opts Options) *Runner {
	return &Runner{
		source:   source,
		hasher:   hasher,
		uploader: uploader,
		report:   report,
		opts:     opts,
		Wait:     SleepContext,
	}
}

// State returns the current lifecycle state.
func (r *Runner) State() State {
	return State(r.state.Load())
}

// Ticks returns the number of completed iterations.
func (r *Runner) Ticks() int { return r.ticks }

// Tick runs one iteration. A returned error reports uploader or ledger
// failures; the iteration itself still completed and it is non-nil.
func (r *Runner) Tick(ctx context.Context) (Iteration, error) {
	signal, focused := r.source.Acquire()
	var features types.Features
	if r.opts.Passband.High > 0 {
		features = dsp.ExtractFiltered(signal, r.source.SamplingRate(), r.opts.Passband)
	} else {
		features = dsp.Extract(signal, r.source.SamplingRate())
	}
	r.ticks++

	it := Iteration{Features: features, Focused: focused}
	r.report.Features(features)
	if !focused {
		return it, nil
	}

	rec := r.hasher.Create(features)
	it.Fingerprint = &rec
	r.report.Detected(rec)

	// Once a fingerprint exists its upload and ledger entry complete even if
	// ctx is cancelled meanwhile. Run observes cancellation between ticks.
	sideCtx := context.WithoutCancel(ctx)

	var errs []error
	if err := r.uploader.Upload(sideCtx, rec); err != nil {
		errs = append(errs, fmt.Errorf("uploading via %s: %w", r.uploader.Name(), err))
	}
	if r.opts.Ledger != nil {
		if err := r.opts.Ledger.Append(sideCtx, rec); err != nil {
			errs = append(errs, fmt.Errorf("recording in ledger: %w", err))
		}
	}
	return it, errors.Join(errs...)
}

// Run prints the banner and ticks until ctx is cancelled or MaxIterations
// is reached, then prints the stop line. Cancellation is the normal way to
// end a run and is not reported as an error. An upload in progress is
// allowed to finish.
func (r *Runner) Run(ctx context.Context) error {
	r.state.Store(int32(StateRunning))
	defer func() {
		r.report.Stopped()
		r.state.Store(int32(StateStopped))
	}()

	r.report.Banner(r.hasher.DeviceID, r.source.SamplingRate(), r.uploader.Name(), r.opts.Passband)

	for n := 1; ; n++ {
		if ctx.Err() != nil {
			return nil
		}

		if _, err := r.Tick(ctx); err != nil {
			slog.Warn("iteration side effects failed", "tick", n, "err", err)
		}

		if r.opts.MaxIterations > 0 && n >= r.opts.MaxIterations {
			return nil
		}
		if err := r.Wait(ctx, r.opts.Interval); err != nil {
			return nil
		}
	}
}

// SleepContext blocks for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
