// Package transport defines the collector transport boundary.
//
// A Transport turns one upload session into the engine's callback contract:
// Bind produces the callbacks, carrying any per-session state (sequence
// counters, connections) in the opaque context handle. The engine owns the
// callback invocation order; transports own the wire.
//
// Transports must not retry: a failed publish is reported back to the
// engine, which aborts the session and leaves the image for the next boot.
package transport

import (
	"github.com/emberware/coredrain/types"
	"github.com/emberware/coredrain/uploader"
)

// Meta identifies the upload session a transport binds to.
type Meta struct {
	// DeviceID is the stable device identity.
	DeviceID string
	// BootID is unique per boot.
	BootID string
	// ResetCause is the classified reason for this boot.
	ResetCause types.ResetCause
	// Descriptor is the image geometry for this session.
	Descriptor *types.ImageDescriptor
}

// Announcement builds the wire announcement for this session.
func (m Meta) Announcement() *types.UploadAnnouncement {
	return &types.UploadAnnouncement{
		Type:       types.EnvelopeAnnounce,
		DeviceID:   m.DeviceID,
		BootID:     m.BootID,
		ResetCause: string(m.ResetCause),
		Parts:      m.Descriptor.ChunkCount,
		TotalSize:  m.Descriptor.TotalSize,
		WireSize:   m.Descriptor.WireTotalSize(),
		Base64:     m.Descriptor.UseBase64,
	}
}

// Transport delivers one upload session to a collector.
// Implementations are safe for single-use per boot.
type Transport interface {
	// Name identifies the transport for logs and metrics.
	Name() string

	// Bind builds the engine callback contract for the given session.
	Bind(meta Meta) uploader.Callbacks

	// Close releases transport resources.
	Close() error
}
