// Package uploader implements the coredump upload engine: reset
// classification, image discovery and chunk geometry, and the chunked
// read/encode/transmit loop with commit-on-success semantics.
//
// The engine is transport-agnostic. It reads the image off the coredump
// partition chunk by chunk, optionally Base64-encodes each chunk, and hands
// the bytes to a host-supplied write callback. The on-flash image is erased
// only after every chunk and every callback succeeded; any failure leaves
// the image in place for the next boot to retry. The engine never retries
// internally.
package uploader

import (
	"github.com/emberware/coredrain/log"
	"github.com/emberware/coredrain/metrics"
	"github.com/emberware/coredrain/platform"
)

// DefaultChunkSize is the raw chunk size used when the caller passes 0.
// 768 = 3*256, so full chunks Base64-encode without internal padding.
const DefaultChunkSize = 768

// DefaultChunkBudget caps the raw chunk size a session will allocate
// buffers for. Geometry beyond the budget fails with ErrOutOfMemory before
// any callback runs.
const DefaultChunkBudget = 1 << 20

// Engine drives coredump uploads against a platform.
//
// An Engine is cheap to construct and holds no per-upload state; one upload
// runs at a time, on the caller's goroutine.
type Engine struct {
	platform    platform.Platform
	logger      *log.Logger
	metrics     *metrics.Collector
	chunkBudget uint32
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets a logger for engine traces. Nil disables logging.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMetrics sets a metrics collector. Nil disables metrics.
func WithMetrics(collector *metrics.Collector) Option {
	return func(e *Engine) { e.metrics = collector }
}

// WithChunkBudget overrides the session buffer budget.
func WithChunkBudget(bytes uint32) Option {
	return func(e *Engine) {
		if bytes > 0 {
			e.chunkBudget = bytes
		}
	}
}

// New creates an Engine bound to the given platform.
func New(p platform.Platform, opts ...Option) *Engine {
	e := &Engine{
		platform:    p,
		chunkBudget: DefaultChunkBudget,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NeedUpload reports whether the last reset indicates a captured image
// should be uploaded. Side-effect free and safe to call before any
// peripheral bring-up; calling it twice returns the same answer.
func (e *Engine) NeedUpload() bool {
	cause := e.platform.LastResetReason()
	e.logInfo("reset reason classified", map[string]any{
		"cause":  string(cause),
		"upload": cause.IsAbnormal(),
	})
	return cause.IsAbnormal()
}

func (e *Engine) logInfo(msg string, fields map[string]any) {
	if e.logger != nil {
		e.logger.Info(msg, fields)
	}
}

func (e *Engine) logDebug(msg string, fields map[string]any) {
	if e.logger != nil {
		e.logger.Debug(msg, fields)
	}
}

func (e *Engine) logWarn(msg string, fields map[string]any) {
	if e.logger != nil {
		e.logger.Warn(msg, fields)
	}
}

func (e *Engine) logError(msg string, fields map[string]any) {
	if e.logger != nil {
		e.logger.Error(msg, fields)
	}
}
