package faults_test

import (
	"bytes"
	"testing"

	"github.com/emberware/coredrain/faults"
	"github.com/emberware/coredrain/platform/mem"
	"github.com/emberware/coredrain/types"
	"github.com/emberware/coredrain/uploader"
)

func TestParse(t *testing.T) {
	for _, k := range faults.Kinds() {
		got, err := faults.Parse(string(k))
		if err != nil {
			t.Errorf("Parse(%q): %v", k, err)
		}
		if got != k {
			t.Errorf("Parse(%q) = %q", k, got)
		}
	}
	if _, err := faults.Parse("reboot"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestInject_MakesUploadNeeded(t *testing.T) {
	for _, k := range faults.Kinds() {
		t.Run(string(k), func(t *testing.T) {
			p := mem.New()
			if err := faults.Inject(p, k); err != nil {
				t.Fatalf("Inject: %v", err)
			}

			eng := uploader.New(p)
			if !eng.NeedUpload() {
				t.Errorf("%s: injected fault must classify as upload-needed", k)
			}

			desc, err := eng.GetInfo(0, false)
			if err != nil {
				t.Fatalf("GetInfo: %v", err)
			}
			wantSize := uint32(faults.DefaultImageSize + 16)
			if desc.TotalSize != wantSize {
				t.Errorf("image size = %d, want %d", desc.TotalSize, wantSize)
			}
		})
	}
}

func TestInject_StackOverflowUsesWatchdog(t *testing.T) {
	p := mem.New()
	if err := faults.Inject(p, faults.StackOverflow); err != nil {
		t.Fatal(err)
	}
	if got := p.LastResetReason(); got != types.ResetTaskWatchdog {
		t.Errorf("cause = %s, want task_watchdog", got)
	}

	p2 := mem.New()
	if err := faults.Inject(p2, faults.DivideByZero); err != nil {
		t.Fatal(err)
	}
	if got := p2.LastResetReason(); got != types.ResetPanic {
		t.Errorf("cause = %s, want panic", got)
	}
}

func TestImage_Deterministic(t *testing.T) {
	a := faults.LoadProhibited.Image(256)
	b := faults.LoadProhibited.Image(256)
	if !bytes.Equal(a, b) {
		t.Error("same kind and size must produce identical images")
	}
	c := faults.StoreProhibited.Image(256)
	if bytes.Equal(a, c) {
		t.Error("different kinds should produce different images")
	}
}
