package types_test

import (
	"testing"

	"github.com/emberware/coredrain/types"
)

func TestImageDescriptor_Validate(t *testing.T) {
	valid := types.ImageDescriptor{
		FlashAddr:     0x1000,
		TotalSize:     1000,
		ChunkSize:     300,
		ChunkCount:    4,
		LastChunkSize: 100,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid descriptor rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*types.ImageDescriptor)
	}{
		{"zero total", func(d *types.ImageDescriptor) { d.TotalSize = 0 }},
		{"zero chunk size", func(d *types.ImageDescriptor) { d.ChunkSize = 0 }},
		{"zero chunk count", func(d *types.ImageDescriptor) { d.ChunkCount = 0 }},
		{"zero last chunk", func(d *types.ImageDescriptor) { d.LastChunkSize = 0 }},
		{"oversized last chunk", func(d *types.ImageDescriptor) { d.LastChunkSize = 301 }},
		{"geometry mismatch", func(d *types.ImageDescriptor) { d.LastChunkSize = 99 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			tt.mutate(&d)
			if err := d.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestImageDescriptor_ValidateBase64(t *testing.T) {
	d := types.ImageDescriptor{
		FlashAddr:        0,
		TotalSize:        1000,
		ChunkSize:        300,
		ChunkCount:       4,
		LastChunkSize:    100,
		UseBase64:        true,
		B64ChunkSize:     400,
		B64LastChunkSize: 136,
		B64TotalSize:     400*3 + 136,
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("valid base64 descriptor rejected: %v", err)
	}

	// The whole-image and per-chunk totals only differ when ChunkSize is not
	// a multiple of 3: ten 100-byte chunks encode to 136*10 = 1360, not 1336.
	bad := d
	bad.ChunkSize, bad.ChunkCount, bad.LastChunkSize = 100, 10, 100
	bad.B64ChunkSize, bad.B64LastChunkSize = 136, 136
	bad.B64TotalSize = 1336 // encoding of TotalSize as one block, not the per-chunk sum
	if err := bad.Validate(); err == nil {
		t.Error("expected error for whole-image b64 total, got nil")
	}

	bad = d
	bad.B64LastChunkSize = 133 // unpadded length
	if err := bad.Validate(); err == nil {
		t.Error("expected error for unpadded last chunk size, got nil")
	}
}

func TestImageDescriptor_WireSizes(t *testing.T) {
	d := types.ImageDescriptor{
		TotalSize:        1000,
		ChunkSize:        300,
		ChunkCount:       4,
		LastChunkSize:    100,
		UseBase64:        true,
		B64ChunkSize:     400,
		B64LastChunkSize: 136,
		B64TotalSize:     1336,
	}

	if got := d.RawChunkSize(0); got != 300 {
		t.Errorf("RawChunkSize(0) = %d, want 300", got)
	}
	if got := d.RawChunkSize(3); got != 100 {
		t.Errorf("RawChunkSize(3) = %d, want 100", got)
	}
	if got := d.WireChunkSize(1); got != 400 {
		t.Errorf("WireChunkSize(1) = %d, want 400", got)
	}
	if got := d.WireChunkSize(3); got != 136 {
		t.Errorf("WireChunkSize(3) = %d, want 136", got)
	}
	if got := d.WireTotalSize(); got != 1336 {
		t.Errorf("WireTotalSize() = %d, want 1336", got)
	}

	d.UseBase64 = false
	if got := d.WireChunkSize(3); got != 100 {
		t.Errorf("raw WireChunkSize(3) = %d, want 100", got)
	}
	if got := d.WireTotalSize(); got != 1000 {
		t.Errorf("raw WireTotalSize() = %d, want 1000", got)
	}
}

func TestResetCause_IsAbnormal(t *testing.T) {
	abnormal := []types.ResetCause{
		types.ResetPanic,
		types.ResetInterruptWatchdog,
		types.ResetTaskWatchdog,
		types.ResetWatchdog,
		types.ResetUnknown,
	}
	for _, c := range abnormal {
		if !c.IsAbnormal() {
			t.Errorf("%s: expected abnormal", c)
		}
	}

	benign := []types.ResetCause{
		types.ResetPowerOn,
		types.ResetSoftware,
		types.ResetDeepSleepWake,
		types.ResetBrownout,
		types.ResetExternal,
	}
	for _, c := range benign {
		if c.IsAbnormal() {
			t.Errorf("%s: expected benign", c)
		}
	}
}
