// Package mem provides an in-memory platform for the simulator and tests.
//
// The simulated coredump partition is a byte slice; the reset-reason
// register is a plain field. Failure injection knobs let tests drive the
// engine's error paths without hardware.
package mem

import (
	"errors"
	"fmt"

	"github.com/emberware/coredrain/platform"
	"github.com/emberware/coredrain/types"
)

// PartitionSize is the default simulated coredump partition size (64 KiB,
// matching the usual partition table entry on the reference hardware).
const PartitionSize = 64 * 1024

// ImageBase is the offset images are written at within the partition.
const ImageBase = 0x20

// Platform is an in-memory platform implementation.
type Platform struct {
	partition []byte
	imageAddr uint32
	imageSize uint32
	cause     types.ResetCause

	// FailLocate, when set, is returned by ImageLocate.
	FailLocate error
	// FailRead, when set, is returned by FlashRead.
	FailRead error
	// FailErase, when set, is returned by ImageErase.
	FailErase error

	// ReadsBeforeFailure makes FlashRead succeed this many times before
	// FailRead applies. Ignored when FailRead is nil.
	ReadsBeforeFailure int

	reads  int
	erases int
}

// New creates a simulated platform with an empty partition and a power-on
// reset cause.
func New() *Platform {
	return &Platform{
		partition: make([]byte, PartitionSize),
		cause:     types.ResetPowerOn,
	}
}

// SetResetCause sets the simulated reset-reason register.
func (p *Platform) SetResetCause(cause types.ResetCause) { p.cause = cause }

// SetImage writes an image into the partition and records its location.
func (p *Platform) SetImage(data []byte) error {
	if len(data) == 0 {
		return errors.New("mem: image must be non-empty")
	}
	if ImageBase+len(data) > len(p.partition) {
		return fmt.Errorf("mem: image of %d bytes exceeds partition", len(data))
	}
	copy(p.partition[ImageBase:], data)
	p.imageAddr = ImageBase
	p.imageSize = uint32(len(data))
	return nil
}

// Image returns a copy of the stored image, or nil if none is present.
func (p *Platform) Image() []byte {
	if p.imageSize == 0 {
		return nil
	}
	out := make([]byte, p.imageSize)
	copy(out, p.partition[p.imageAddr:])
	return out
}

// EraseCount reports how many times ImageErase succeeded.
func (p *Platform) EraseCount() int { return p.erases }

// LastResetReason implements platform.Platform.
func (p *Platform) LastResetReason() types.ResetCause { return p.cause }

// ImageLocate implements platform.Platform.
func (p *Platform) ImageLocate() (uint32, uint32, error) {
	if p.FailLocate != nil {
		return 0, 0, p.FailLocate
	}
	if p.imageSize == 0 {
		return 0, 0, platform.ErrNoImage
	}
	return p.imageAddr, p.imageSize, nil
}

// FlashRead implements platform.Platform.
func (p *Platform) FlashRead(addr uint32, dst []byte) error {
	if p.FailRead != nil {
		if p.reads >= p.ReadsBeforeFailure {
			return p.FailRead
		}
	}
	p.reads++
	end := int(addr) + len(dst)
	if end > len(p.partition) {
		return fmt.Errorf("mem: read [%d, %d) beyond partition", addr, end)
	}
	copy(dst, p.partition[addr:end])
	return nil
}

// ImageErase implements platform.Platform.
func (p *Platform) ImageErase() error {
	if p.FailErase != nil {
		return p.FailErase
	}
	for i := p.imageAddr; i < p.imageAddr+p.imageSize; i++ {
		p.partition[i] = 0xFF
	}
	p.imageAddr = 0
	p.imageSize = 0
	p.erases++
	return nil
}
