// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/pdiddy/neural-ingest/internal/httputil"
	"github.com/pdiddy/neural-ingest/pkg/types"
)

// maxReceiptBytes bounds how much of a response is read for a receipt.
const maxReceiptBytes = 64 << 10

// receipt matches the content identifier returned by anchor services,
// either flat ({"cid": ...}) or Lighthouse style ({"data": {"Hash": ...}}).
type receipt struct {
	CID  string `json:"cid"`
	Data struct {
		Hash string `json:"Hash"`
	} `json:"data"`
}

// parseReceipt returns the content identifier in body, or "" when the
// response carries none.
func parseReceipt(body []byte) string {
	var r receipt
	if err := json.Unmarshal(body, &r); err != nil {
		return ""
	}
	if r.CID != "" {
		return r.CID
	}
	return r.Data.Hash
}

// HTTP POSTs fingerprint records as JSON to an anchor endpoint.
type HTTP struct {
	client *http.Client
	cfg    types.HTTPConfig
	w      io.Writer
}

// NewHTTP returns an HTTP uploader using client.
func NewHTTP(client *http.Client, cfg types.HTTPConfig, w io.Writer) *HTTP {
	return &HTTP{client: client, cfg: cfg, w: w}
}

func (h *HTTP) Name() string { return string(types.UploaderHTTP) }

// Upload sends rec and treats any non-2xx final status as ErrStatus.
func (h *HTTP) Upload(ctx context.Context, rec types.Fingerprint) error {
	body, err := Encode(rec)
	if err != nil {
		return err
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	if h.cfg.UserAgent != "" {
		header.Set("User-Agent", h.cfg.UserAgent)
	}
	if h.cfg.APIKey != "" {
		header.Set("Authorization", "Bearer "+h.cfg.APIKey)
	}

	fmt.Fprintf(h.w, "--> [PUSH] Posting to %s...\n", h.cfg.URL)

	resp, err := httputil.PostWithRetry(ctx, h.client, h.cfg.URL, header, body, h.cfg.MaxRetries)
	if err != nil {
		return fmt.Errorf("posting fingerprint %s: %w", rec.ID, err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxReceiptBytes))
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s returned HTTP %d", ErrStatus, h.cfg.URL, resp.StatusCode)
	}
	if cid := parseReceipt(respBody); cid != "" {
		slog.Debug("anchor receipt", "id", rec.ID, "hash", rec.Hash, "cid", cid)
	}
	return nil
}
