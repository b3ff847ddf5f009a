// Package stream implements a collector transport over any io.Writer,
// typically a raw TCP connection owned by the host.
//
// Envelopes are written as length-prefixed msgpack frames (wire package).
// The transport never dials: the host brings its own connection and keeps
// ownership of its lifetime; Close closes the writer only if it is an
// io.Closer.
package stream

import (
	"errors"
	"io"

	"github.com/emberware/coredrain/transport"
	"github.com/emberware/coredrain/types"
	"github.com/emberware/coredrain/uploader"
	"github.com/emberware/coredrain/wire"
)

// Transport frames upload envelopes onto a byte stream.
type Transport struct {
	w io.Writer
}

// New creates a stream transport over w.
func New(w io.Writer) (*Transport, error) {
	if w == nil {
		return nil, errors.New("stream transport requires a writer")
	}
	return &Transport{w: w}, nil
}

// Name implements transport.Transport.
func (t *Transport) Name() string { return "stream" }

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
			return wire.WriteFrame(t.w, s.meta.Announcement())
		},
		Write: func(ctx any, data []byte) error {
			s := ctx.(*session)
			s.seq++
			s.sent += uint64(len(data))
			return wire.WriteFrame(t.w, &types.ChunkEnvelope{
				Type:     types.EnvelopeChunk,
				DeviceID: s.meta.DeviceID,
				BootID:   s.meta.BootID,
				Seq:      s.seq,
				Data:     data,
			})
		},
		End: func(ctx any) error {
			s := ctx.(*session)
			return wire.WriteFrame(t.w, &types.UploadComplete{
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
	if c, ok := t.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
