package uploader

import (
	"errors"
	"fmt"

	"github.com/emberware/coredrain/chunkenc"
	"github.com/emberware/coredrain/platform"
	"github.com/emberware/coredrain/types"
)

// GetInfo locates the captured image and derives its chunk geometry.
//
// desiredChunkSize of 0 selects DefaultChunkSize. When useBase64 is true and
// desiredChunkSize is not a multiple of 3, it is rounded down to the nearest
// multiple of 3 (minimum 3) so that every chunk except the last encodes
// without internal padding.
//
// GetInfo is pure with respect to its inputs: identical arguments against an
// unchanged platform produce identical descriptors.
func (e *Engine) GetInfo(desiredChunkSize uint32, useBase64 bool) (*types.ImageDescriptor, error) {
	addr, size, err := e.platform.ImageLocate()
	if err != nil {
		if errors.Is(err, platform.ErrNoImage) {
			return nil, fmt.Errorf("%w: %v", ErrNoImage, err)
		}
		return nil, fmt.Errorf("%w: locate image: %v", ErrPlatform, err)
	}
	if size == 0 {
		return nil, ErrNoImage
	}

	chunk := desiredChunkSize
	if chunk == 0 {
		chunk = DefaultChunkSize
	}
	if useBase64 && chunk%3 != 0 {
		chunk -= chunk % 3
		if chunk == 0 {
			chunk = 3
		}
	}

	chunkCount := (size + chunk - 1) / chunk
	lastChunkSize := size % chunk
	if lastChunkSize == 0 {
		lastChunkSize = chunk
	}

	desc := &types.ImageDescriptor{
		FlashAddr:     addr,
		TotalSize:     size,
		ChunkSize:     chunk,
		ChunkCount:    chunkCount,
		LastChunkSize: lastChunkSize,
		UseBase64:     useBase64,
	}
	if useBase64 {
		desc.B64ChunkSize = uint32(chunkenc.EncodedLen(int(chunk)))
		desc.B64LastChunkSize = uint32(chunkenc.EncodedLen(int(lastChunkSize)))
		// Per-chunk sum, not the encoding of the whole image: each chunk
		// carries its own padding and that is what the receiver observes.
		desc.B64TotalSize = desc.B64ChunkSize*(chunkCount-1) + desc.B64LastChunkSize
	}

	e.logDebug("image located", map[string]any{
		"flash_addr":  desc.FlashAddr,
		"total_size":  desc.TotalSize,
		"chunk_size":  desc.ChunkSize,
		"chunk_count": desc.ChunkCount,
		"last_chunk":  desc.LastChunkSize,
		"base64":      desc.UseBase64,
	})
	return desc, nil
}
