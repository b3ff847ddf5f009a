package uploader_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/emberware/coredrain/platform/mem"
	"github.com/emberware/coredrain/types"
	"github.com/emberware/coredrain/uploader"
)

// newEngineWithImage builds an engine over a simulated platform holding a
// deterministic image of the given size.
func newEngineWithImage(t *testing.T, size int) (*uploader.Engine, *mem.Platform, []byte) {
	t.Helper()
	p := mem.New()
	img := testImage(size)
	if err := p.SetImage(img); err != nil {
		t.Fatalf("SetImage: %v", err)
	}
	return uploader.New(p), p, img
}

func testImage(size int) []byte {
	img := make([]byte, size)
	for i := range img {
		img[i] = byte(i*13 + 7)
	}
	return img
}

func TestGetInfo_Geometry(t *testing.T) {
	tests := []struct {
		name      string
		totalSize int
		desired   uint32
		base64    bool
		want      types.ImageDescriptor
	}{
		{
			name: "four raw chunks", totalSize: 1000, desired: 300,
			want: types.ImageDescriptor{TotalSize: 1000, ChunkSize: 300, ChunkCount: 4, LastChunkSize: 100},
		},
		{
			name: "four base64 chunks", totalSize: 1000, desired: 300, base64: true,
			want: types.ImageDescriptor{
				TotalSize: 1000, ChunkSize: 300, ChunkCount: 4, LastChunkSize: 100,
				UseBase64: true, B64ChunkSize: 400, B64LastChunkSize: 136, B64TotalSize: 400*3 + 136,
			},
		},
		{
			name: "default chunk size", totalSize: 5, desired: 0,
			want: types.ImageDescriptor{TotalSize: 5, ChunkSize: 768, ChunkCount: 1, LastChunkSize: 5},
		},
		{
			name: "single byte image", totalSize: 1, desired: 300,
			want: types.ImageDescriptor{TotalSize: 1, ChunkSize: 300, ChunkCount: 1, LastChunkSize: 1},
		},
		{
			name: "exact single chunk", totalSize: 300, desired: 300,
			want: types.ImageDescriptor{TotalSize: 300, ChunkSize: 300, ChunkCount: 1, LastChunkSize: 300},
		},
		{
			name: "one byte past a chunk", totalSize: 301, desired: 300,
			want: types.ImageDescriptor{TotalSize: 301, ChunkSize: 300, ChunkCount: 2, LastChunkSize: 1},
		},
		{
			name: "chunk 2 rounds up to minimum 3", totalSize: 10, desired: 2, base64: true,
			want: types.ImageDescriptor{
				TotalSize: 10, ChunkSize: 3, ChunkCount: 4, LastChunkSize: 1,
				UseBase64: true, B64ChunkSize: 4, B64LastChunkSize: 4, B64TotalSize: 16,
			},
		},
		{
			name: "chunk 1 rounds up to minimum 3", totalSize: 10, desired: 1, base64: true,
			want: types.ImageDescriptor{
				TotalSize: 10, ChunkSize: 3, ChunkCount: 4, LastChunkSize: 1,
				UseBase64: true, B64ChunkSize: 4, B64LastChunkSize: 4, B64TotalSize: 16,
			},
		},
		{
			name: "non-multiple rounds down", totalSize: 1000, desired: 100, base64: true,
			want: types.ImageDescriptor{
				TotalSize: 1000, ChunkSize: 99, ChunkCount: 11, LastChunkSize: 10,
				UseBase64: true, B64ChunkSize: 132, B64LastChunkSize: 16, B64TotalSize: 132*10 + 16,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, _, _ := newEngineWithImage(t, tt.totalSize)
			desc, err := eng.GetInfo(tt.desired, tt.base64)
			if err != nil {
				t.Fatalf("GetInfo: %v", err)
			}
			if err := desc.Validate(); err != nil {
				t.Fatalf("descriptor invalid: %v", err)
			}
			got := *desc
			got.FlashAddr = 0 // partition placement is the platform's business
			if got != tt.want {
				t.Errorf("descriptor = %+v\nwant %+v", got, tt.want)
			}
		})
	}
}

func TestGetInfo_CoverageInvariant(t *testing.T) {
	// chunk_size*(chunk_count-1) + last_chunk_size == total_size and
	// last_chunk_size in (0, chunk_size] across a sweep of geometries.
	sizes := []int{1, 2, 3, 299, 300, 301, 599, 600, 601, 1000, 4096}
	chunks := []uint32{1, 2, 3, 7, 100, 300, 768}
	for _, size := range sizes {
		eng, _, _ := newEngineWithImage(t, size)
		for _, chunk := range chunks {
			for _, b64 := range []bool{false, true} {
				desc, err := eng.GetInfo(chunk, b64)
				if err != nil {
					t.Fatalf("size=%d chunk=%d: %v", size, chunk, err)
				}
				covered := desc.ChunkSize*(desc.ChunkCount-1) + desc.LastChunkSize
				if covered != desc.TotalSize {
					t.Errorf("size=%d chunk=%d b64=%v: covered %d != total %d", size, chunk, b64, covered, desc.TotalSize)
				}
				if desc.LastChunkSize == 0 || desc.LastChunkSize > desc.ChunkSize {
					t.Errorf("size=%d chunk=%d: last chunk %d out of (0, %d]", size, chunk, desc.LastChunkSize, desc.ChunkSize)
				}
				if desc.ChunkCount == 1 && desc.LastChunkSize != desc.TotalSize {
					t.Errorf("size=%d chunk=%d: single chunk must equal total", size, chunk)
				}
			}
		}
	}
}

func TestGetInfo_Pure(t *testing.T) {
	eng, _, _ := newEngineWithImage(t, 1000)
	a, err := eng.GetInfo(300, true)
	if err != nil {
		t.Fatal(err)
	}
	b, err := eng.GetInfo(300, true)
	if err != nil {
		t.Fatal(err)
	}
	if *a != *b {
		t.Errorf("identical arguments produced different descriptors:\n%+v\n%+v", *a, *b)
	}
}

func TestGetInfo_NoImage(t *testing.T) {
	eng := uploader.New(mem.New())
	if _, err := eng.GetInfo(0, false); !errors.Is(err, uploader.ErrNoImage) {
		t.Errorf("got %v, want ErrNoImage", err)
	}
}

func TestGetInfo_LocateFailure(t *testing.T) {
	p := mem.New()
	if err := p.SetImage(testImage(100)); err != nil {
		t.Fatal(err)
	}
	p.FailLocate = errors.New("partition table corrupt")

	eng := uploader.New(p)
	if _, err := eng.GetInfo(0, false); !errors.Is(err, uploader.ErrPlatform) {
		t.Errorf("got %v, want ErrPlatform", err)
	}
}

func TestNeedUpload(t *testing.T) {
	tests := []struct {
		cause types.ResetCause
		want  bool
	}{
		{types.ResetPanic, true},
		{types.ResetInterruptWatchdog, true},
		{types.ResetTaskWatchdog, true},
		{types.ResetWatchdog, true},
		{types.ResetUnknown, true},
		{types.ResetPowerOn, false},
		{types.ResetSoftware, false},
		{types.ResetDeepSleepWake, false},
		{types.ResetBrownout, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.cause), func(t *testing.T) {
			p := mem.New()
			p.SetResetCause(tt.cause)
			eng := uploader.New(p)
			if got := eng.NeedUpload(); got != tt.want {
				t.Errorf("NeedUpload() = %v, want %v", got, tt.want)
			}
			// Idempotent: same answer twice.
			if got := eng.NeedUpload(); got != tt.want {
				t.Errorf("second NeedUpload() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetInfo_ImageUntouched(t *testing.T) {
	eng, p, img := newEngineWithImage(t, 1000)
	if _, err := eng.GetInfo(300, true); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(p.Image(), img) {
		t.Error("GetInfo modified the stored image")
	}
	if p.EraseCount() != 0 {
		t.Error("GetInfo must not erase")
	}
}
