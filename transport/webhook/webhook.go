// Package webhook implements an HTTP POST collector transport.
//
// The announcement, every chunk, and the completion marker are POSTed as
// JSON envelopes to a configurable URL. There are no retries: a non-2xx
// response or network error aborts the session and the image stays on
// flash for the next boot.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/emberware/coredrain/iox"
	"github.com/emberware/coredrain/transport"
	"github.com/emberware/coredrain/types"
	"github.com/emberware/coredrain/uploader"
)

// DefaultTimeout is the default per-request timeout.
const DefaultTimeout = 10 * time.Second

// Config configures the webhook transport.
type Config struct {
	// URL is the HTTP endpoint to POST to (required).
	URL string
	// Headers are custom HTTP headers added to each request.
	Headers map[string]string
	// Timeout is the per-request timeout (default 10s).
	Timeout time.Duration
}

// Transport posts upload envelopes via HTTP.
type Transport struct {
	config Config
	client *http.Client
}

// New creates a webhook transport from the given config.
// Returns an error if the URL is empty.
func New(cfg Config) (*Transport, error) {
	if cfg.URL == "" {
		return nil, errors.New("webhook transport requires a URL")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Transport{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Name implements transport.Transport.
func (t *Transport) Name() string { return "webhook" }

// session tracks the per-upload sequence counter.
type session struct {
	meta transport.Meta
	seq  uint32
	sent uint64
}

// Bind implements transport.Transport.
func (t *Transport) Bind(meta transport.Meta) uploader.Callbacks {
	return uploader.Callbacks{
		Ctx: &session{meta: meta},
		Start: func(ctx any) error {
			s := ctx.(*session)
			return t.post(s.meta.Announcement())
		},
		Write: func(ctx any, data []byte) error {
			s := ctx.(*session)
			s.seq++
			s.sent += uint64(len(data))
			return t.post(&types.ChunkEnvelope{
				Type:     types.EnvelopeChunk,
				DeviceID: s.meta.DeviceID,
				BootID:   s.meta.BootID,
				Seq:      s.seq,
				Data:     data,
			})
		},
		End: func(ctx any) error {
			s := ctx.(*session)
			return t.post(&types.UploadComplete{
				Type:      types.EnvelopeComplete,
				DeviceID:  s.meta.DeviceID,
				BootID:    s.meta.BootID,
				Parts:     s.seq,
				WireBytes: s.sent,
			})
		},
	}
}

// Close implements transport.Transport.
func (t *Transport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}

// StatusError is returned for non-2xx HTTP responses.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// post performs a single JSON POST and returns nil on 2xx.
func (t *Transport) post(v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("webhook: marshal envelope: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), t.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range t.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: request failed: %w", err)
	}
	defer iox.DiscardClose(resp.Body)

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}
