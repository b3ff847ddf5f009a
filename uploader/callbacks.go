package uploader

import "github.com/emberware/coredrain/types"

// Callbacks is the transport contract the host hands to the engine. Write is
// the only required slot; nil optional slots are skipped. Every slot receives
// the opaque Ctx handle verbatim; the engine never inspects it, never copies
// it, and does not retain it past the upload call.
//
// All callbacks run synchronously on the caller's goroutine, in a fixed
// order per chunk: Write, then Progress. Start (if set) runs before the
// first Write; End (if set) runs after the stream loop whenever Start
// succeeded, including on failure paths.
type Callbacks struct {
	// Start is invoked once before streaming. Use it to open a connection
	// or publish an upload announcement. An error aborts the session
	// immediately: no chunks, no End, no erase.
	Start func(ctx any) error

	// Write delivers one chunk. data is only valid for the duration of the
	// call; transports that queue must copy. Required.
	Write func(ctx any, data []byte) error

	// End is invoked once after the stream loop if Start ran OK, on both
	// success and failure paths. Use it to close the connection or publish
	// a completion marker.
	End func(ctx any) error

	// Progress is invoked after each successful Write with the wire-side
	// byte count for that chunk. Returning an error cancels the upload
	// cooperatively; the image is preserved.
	Progress func(ctx any, desc *types.ImageDescriptor, chunkIndex int, bytesSent int) error

	// Ctx is the opaque user-context handle passed to every slot.
	Ctx any
}
