// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package upload delivers fingerprint records to a destination. The
// simulated uploader reproduces the demo's print-and-wait behaviour; the
// MQTT, HTTP and ClickHouse uploaders perform real transport.
package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/neural-ingest/internal/secrets"
	"github.com/pdiddy/neural-ingest/pkg/types"
)

var (
	// ErrUnknownKind is returned by New for an unrecognised uploader kind.
	ErrUnknownKind = errors.New("unknown uploader kind")

	// ErrStatus is returned when a remote endpoint rejects a record.
	ErrStatus = errors.New("upload rejected")
)

// Uploader accepts one fingerprint record per call. Implementations that
// hold connections also implement io.Closer.
type Uploader interface {
	// Name identifies the uploader in console and log output.
	Name() string

	// Upload delivers rec. Errors are reported to the caller; the ingest
	// loop logs them and continues.
	Upload(ctx context.Context, rec types.Fingerprint) error
}

// New builds the uploader selected by cfg.Kind. Credentials missing from
// cfg are taken from sec. Console lines go to w.
func New(ctx context.Context, cfg types.UploadConfig, sec secrets.Secrets, w io.Writer) (Uploader, error) {
	switch cfg.Kind {
	case types.UploaderSimulated, "":
		return NewSimulated(w, cfg.Delay), nil

	case types.UploaderMQTT:
		mc := cfg.MQTT
		mc.Password = sec.Or(secrets.MQTTPassword, mc.Password)
		return DialMQTT(mc, w)

	case types.UploaderHTTP:
		hc := cfg.HTTP
		hc.APIKey = sec.Or(secrets.HTTPAPIKey, hc.APIKey)
		return NewHTTP(&http.Client{Timeout: hc.Timeout}, hc, w), nil

	case types.UploaderClickHouse:
		cc := cfg.ClickHouse
		cc.Password = sec.Or(secrets.ClickHousePassword, cc.Password)
		return DialClickHouse(ctx, cc, w)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
	}
}

// Close releases u if it holds resources.
func Close(u Uploader) error {
	if c, ok := u.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Encode renders rec as the JSON document sent over the wire.
func Encode(rec types.Fingerprint) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encoding fingerprint %s: %w", rec.ID, err)
	}
	return data, nil
}
