// Package platform defines the device capability boundary the upload engine
// consumes: reset-reason lookup and the coredump partition primitives.
//
// On real hardware these map to the vendor SDK's reset and flash APIs. The
// engine never touches flash directly; implementations own addressing,
// alignment, and cache semantics.
package platform

import (
	"errors"

	"github.com/emberware/coredrain/types"
)

// ErrNoImage is returned by ImageLocate when the coredump partition holds no
// image.
var ErrNoImage = errors.New("platform: no coredump image present")

// Platform is the capability set the upload engine requires from the host
// environment. Implementations must be safe to call from a single goroutine;
// the engine never calls them concurrently.
type Platform interface {
	// LastResetReason returns the cause of the most recent reset.
	// Must be side-effect free and callable before peripheral bring-up.
	LastResetReason() types.ResetCause

	// ImageLocate returns the flash offset and byte length of the captured
	// image. Returns ErrNoImage when the partition is empty.
	ImageLocate() (addr, size uint32, err error)

	// FlashRead reads exactly len(dst) bytes starting at addr into dst.
	// A short read is an error; dst is unspecified on failure.
	FlashRead(addr uint32, dst []byte) error

	// ImageErase retires the captured image. After a successful erase,
	// ImageLocate reports ErrNoImage until the next capture.
	ImageErase() error
}
