// Package faults fabricates post-mortem images for the simulated platform.
//
// Each fault kind produces a deterministic synthetic image (header, fake
// register dump, stack pattern) and sets the reset cause the real crash
// would leave behind. The simulator uses this to exercise the upload path
// end-to-end without real hardware; the inject CLI command publishes these
// kinds over the command channel.
package faults

import (
	"encoding/binary"
	"fmt"

	"github.com/emberware/coredrain/platform/mem"
	"github.com/emberware/coredrain/types"
)

// Kind identifies a fault scenario.
type Kind string

// Fault kinds. The string values double as command-channel payloads.
const (
	IllegalInstruction Kind = "illegal_instruction"
	LoadProhibited     Kind = "load_prohibited"
	StoreProhibited    Kind = "store_prohibited"
	DivideByZero       Kind = "divide_by_zero"
	StackOverflow      Kind = "stack_overflow"
)

// Kinds lists every fault kind.
func Kinds() []Kind {
	return []Kind{IllegalInstruction, LoadProhibited, StoreProhibited, DivideByZero, StackOverflow}
}

// Parse maps a command payload to a Kind.
func Parse(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("faults: unknown fault kind %q", s)
}

// cause returns the reset cause the platform would record for this fault.
// A stack overflow wedges the offending task, so the task watchdog fires
// before the panic handler would; everything else traps immediately.
func (k Kind) cause() types.ResetCause {
	if k == StackOverflow {
		return types.ResetTaskWatchdog
	}
	return types.ResetPanic
}

// excCode is the synthetic exception code embedded in the image header.
func (k Kind) excCode() uint32 {
	switch k {
	case IllegalInstruction:
		return 0
	case LoadProhibited:
		return 28
	case StoreProhibited:
		return 29
	case DivideByZero:
		return 6
	case StackOverflow:
		return 1
	default:
		return 0xFFFFFFFF
	}
}

// imageMagic marks the start of a synthetic image.
const imageMagic = 0x45524F43 // "CORE" little-endian

// headerSize is the fixed image header length in bytes.
const headerSize = 16

// Image builds the synthetic post-mortem image for this fault: a fixed
// header (magic, exception code, payload length) followed by payloadSize
// bytes of register/stack pattern. Deterministic for a given kind and size.
func (k Kind) Image(payloadSize int) []byte {
	img := make([]byte, headerSize+payloadSize)
	binary.LittleEndian.PutUint32(img[0:4], imageMagic)
	binary.LittleEndian.PutUint32(img[4:8], k.excCode())
	binary.LittleEndian.PutUint32(img[8:12], uint32(payloadSize))
	binary.LittleEndian.PutUint32(img[12:16], uint32(len(k)))

	seed := byte(k.excCode())
	for i := range payloadSize {
		img[headerSize+i] = seed ^ byte(i*31)
	}
	return img
}

// DefaultImageSize is the payload size Inject uses.
const DefaultImageSize = 4096

// Inject plants the fault's image in the simulated partition and sets the
// matching reset cause, as if the device had just crashed and rebooted.
func Inject(p *mem.Platform, k Kind) error {
	if _, err := Parse(string(k)); err != nil {
		return err
	}
	if err := p.SetImage(k.Image(DefaultImageSize)); err != nil {
		return fmt.Errorf("faults: plant image: %w", err)
	}
	p.SetResetCause(k.cause())
	return nil
}
