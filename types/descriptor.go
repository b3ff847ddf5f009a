package types

import "fmt"

// ImageDescriptor describes the on-flash post-mortem image and its chunk
// geometry. Produced once by the sizer and treated as read-only afterwards.
//
// All sizes are byte counts. The Base64 fields are populated only when
// UseBase64 is true; encoding is applied per chunk, so there is no separate
// encoded chunk count.
type ImageDescriptor struct {
	// FlashAddr is the byte offset of the image in the coredump partition.
	FlashAddr uint32
	// TotalSize is the raw image length. Always > 0.
	TotalSize uint32
	// ChunkSize is the raw bytes per chunk, except possibly the last.
	ChunkSize uint32
	// ChunkCount is ceil(TotalSize / ChunkSize). Always >= 1.
	ChunkCount uint32
	// LastChunkSize is the raw size of the final chunk, in (0, ChunkSize].
	LastChunkSize uint32
	// UseBase64 is true when chunks are Base64-encoded before transmission.
	UseBase64 bool
	// B64ChunkSize is the encoded size of a full chunk.
	B64ChunkSize uint32
	// B64LastChunkSize is the encoded size of the final chunk.
	B64LastChunkSize uint32
	// B64TotalSize is the per-chunk encoded sizes summed. This is the byte
	// count the receiver observes on the wire, NOT the encoding of
	// TotalSize as a single block.
	B64TotalSize uint32
}

// Validate checks the descriptor's internal consistency.
func (d *ImageDescriptor) Validate() error {
	if d.TotalSize == 0 {
		return fmt.Errorf("descriptor: total size must be > 0")
	}
	if d.ChunkSize == 0 {
		return fmt.Errorf("descriptor: chunk size must be > 0")
	}
	if d.ChunkCount == 0 {
		return fmt.Errorf("descriptor: chunk count must be >= 1")
	}
	if d.LastChunkSize == 0 || d.LastChunkSize > d.ChunkSize {
		return fmt.Errorf("descriptor: last chunk size %d out of range (0, %d]", d.LastChunkSize, d.ChunkSize)
	}
	if d.ChunkSize*(d.ChunkCount-1)+d.LastChunkSize != d.TotalSize {
		return fmt.Errorf("descriptor: chunk geometry does not cover total size %d", d.TotalSize)
	}
	if d.UseBase64 {
		if d.B64ChunkSize != encodedLen(d.ChunkSize) {
			return fmt.Errorf("descriptor: b64 chunk size %d, want %d", d.B64ChunkSize, encodedLen(d.ChunkSize))
		}
		if d.B64LastChunkSize != encodedLen(d.LastChunkSize) {
			return fmt.Errorf("descriptor: b64 last chunk size %d, want %d", d.B64LastChunkSize, encodedLen(d.LastChunkSize))
		}
		if d.B64TotalSize != d.B64ChunkSize*(d.ChunkCount-1)+d.B64LastChunkSize {
			return fmt.Errorf("descriptor: b64 total size %d inconsistent with per-chunk sum", d.B64TotalSize)
		}
	}
	return nil
}

// RawChunkSize returns the raw byte count of chunk i.
func (d *ImageDescriptor) RawChunkSize(i uint32) uint32 {
	if i == d.ChunkCount-1 {
		return d.LastChunkSize
	}
	return d.ChunkSize
}

// WireChunkSize returns the byte count chunk i occupies on the wire,
// accounting for Base64 expansion when enabled.
func (d *ImageDescriptor) WireChunkSize(i uint32) uint32 {
	if !d.UseBase64 {
		return d.RawChunkSize(i)
	}
	if i == d.ChunkCount-1 {
		return d.B64LastChunkSize
	}
	return d.B64ChunkSize
}

// WireTotalSize returns the total byte count delivered on the wire.
func (d *ImageDescriptor) WireTotalSize() uint32 {
	if d.UseBase64 {
		return d.B64TotalSize
	}
	return d.TotalSize
}

// encodedLen is the RFC 4648 padded output length for n input bytes.
func encodedLen(n uint32) uint32 {
	return (n + 2) / 3 * 4
}
