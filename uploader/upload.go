package uploader

import (
	"fmt"

	"github.com/emberware/coredrain/chunkenc"
	"github.com/emberware/coredrain/types"
)

// session owns the per-upload buffers. Both buffers are sized once, up
// front, and are sufficient for every chunk of the session.
type session struct {
	readBuf []byte
	encBuf  []byte
}

// Upload streams the image described by desc through the given callbacks and
// erases it from flash on full success. A nil desc makes the engine derive
// one itself with the default chunk size and no Base64.
//
// Chunks are delivered strictly in ascending offset order. The engine never
// retries and never partially erases: any failure aborts the session and
// leaves the image intact, except for erase itself failing after a complete
// delivery, which is surfaced as ErrEraseFailed.
func (e *Engine) Upload(cbs Callbacks, desc *types.ImageDescriptor) error {
	if cbs.Write == nil {
		return fmt.Errorf("%w: write callback is required", ErrInvalidArgument)
	}

	if desc == nil {
		var err error
		desc, err = e.GetInfo(0, false)
		if err != nil {
			return err
		}
	}

	e.metrics.IncUploadStarted()
	err := e.runSession(cbs, desc)
	if err != nil {
		e.metrics.IncUploadFailed()
		e.logWarn("upload incomplete, image kept for retry", map[string]any{"error": err.Error()})
		return err
	}
	e.metrics.IncUploadCompleted()
	e.logInfo("upload committed", map[string]any{
		"chunks":     desc.ChunkCount,
		"wire_bytes": desc.WireTotalSize(),
	})
	return nil
}

func (e *Engine) runSession(cbs Callbacks, desc *types.ImageDescriptor) error {
	e.logInfo("starting coredump upload", map[string]any{
		"flash_addr":  desc.FlashAddr,
		"total_size":  desc.TotalSize,
		"chunk_size":  desc.ChunkSize,
		"chunk_count": desc.ChunkCount,
		"last_chunk":  desc.LastChunkSize,
		"base64":      desc.UseBase64,
	})

	sess, err := e.acquireBuffers(desc)
	if err != nil {
		return err
	}

	if cbs.Start != nil {
		if serr := cbs.Start(cbs.Ctx); serr != nil {
			// Start never ran to completion: the stream loop AND the end
			// callback are both skipped.
			e.logError("start callback failed", map[string]any{"error": serr.Error()})
			return fmt.Errorf("%w: %v", ErrStartFailed, serr)
		}
	}

	err = e.streamChunks(cbs, desc, sess)

	if cbs.End != nil {
		if enderr := cbs.End(cbs.Ctx); enderr != nil {
			if err == nil {
				err = fmt.Errorf("%w: %v", ErrEndFailed, enderr)
			} else {
				// The earlier streaming error wins; the end failure is
				// recorded but not surfaced.
				e.logWarn("end callback failed after streaming error", map[string]any{"error": enderr.Error()})
			}
		}
	}

	if err != nil {
		return err
	}

	if eerr := e.platform.ImageErase(); eerr != nil {
		// The collector has the image but the on-flash commit did not
		// happen; the next boot re-sends it.
		e.metrics.IncEraseFailure()
		e.logError("image erase failed", map[string]any{"error": eerr.Error()})
		return fmt.Errorf("%w: %v", ErrEraseFailed, eerr)
	}
	e.logInfo("image erased", nil)
	return nil
}

// acquireBuffers allocates the session's read buffer and, for Base64
// sessions, the encode buffer. Geometry beyond the engine's chunk budget is
// refused before any callback runs.
func (e *Engine) acquireBuffers(desc *types.ImageDescriptor) (*session, error) {
	if desc.ChunkSize > e.chunkBudget {
		return nil, fmt.Errorf("%w: chunk size %d exceeds budget %d", ErrOutOfMemory, desc.ChunkSize, e.chunkBudget)
	}
	sess := &session{readBuf: make([]byte, desc.ChunkSize)}
	if desc.UseBase64 {
		sess.encBuf = make([]byte, desc.B64ChunkSize+1)
	}
	return sess, nil
}

func (e *Engine) streamChunks(cbs Callbacks, desc *types.ImageDescriptor, sess *session) error {
	for i := uint32(0); i < desc.ChunkCount; i++ {
		bytesToRead := desc.RawChunkSize(i)
		read := sess.readBuf[:bytesToRead]

		if rerr := e.platform.FlashRead(desc.FlashAddr+i*desc.ChunkSize, read); rerr != nil {
			e.logError("flash read failed", map[string]any{"chunk": i, "error": rerr.Error()})
			return fmt.Errorf("%w: read chunk %d: %v", ErrPlatform, i, rerr)
		}

		payload := read
		if desc.UseBase64 {
			n, eerr := chunkenc.Encode(sess.encBuf, read)
			if eerr != nil {
				e.logError("chunk encode failed", map[string]any{"chunk": i, "error": eerr.Error()})
				return fmt.Errorf("%w: chunk %d: %v", ErrEncodeFailed, i, eerr)
			}
			payload = sess.encBuf[:n]
		}

		if werr := cbs.Write(cbs.Ctx, payload); werr != nil {
			e.logError("write callback failed", map[string]any{"chunk": i, "error": werr.Error()})
			return fmt.Errorf("%w: chunk %d: %v", ErrWriteFailed, i, werr)
		}

		e.metrics.AddChunk(int(bytesToRead), len(payload))
		e.logDebug("chunk delivered", map[string]any{
			"chunk":      i,
			"raw_bytes":  bytesToRead,
			"wire_bytes": len(payload),
		})

		if cbs.Progress != nil {
			if perr := cbs.Progress(cbs.Ctx, desc, int(i), len(payload)); perr != nil {
				e.logWarn("upload cancelled by progress callback", map[string]any{"chunk": i})
				return fmt.Errorf("%w: chunk %d: %v", ErrCancelled, i, perr)
			}
		}
	}
	return nil
}
