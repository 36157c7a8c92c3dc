//go:build !nogpu

package gpu

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// newNoopDevice opens a noop device and queue released at test cleanup.
func newNoopDevice(t *testing.T) (hal.Device, hal.Queue) {
	t.Helper()
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return openDev.Device, openDev.Queue
}

func TestBytesPerPixel(t *testing.T) {
	tests := []struct {
		format gputypes.TextureFormat
		want   uint32
	}{
		{gputypes.TextureFormatR8Unorm, 1},
		{gputypes.TextureFormatRGBA8Unorm, 4},
		{gputypes.TextureFormatBGRA8Unorm, 4},
		{gputypes.TextureFormatDepth32Float, 0},
	}
	for _, tt := range tests {
		if got := BytesPerPixel(tt.format); got != tt.want {
			t.Errorf("BytesPerPixel(%v) = %d, want %d", tt.format, got, tt.want)
		}
	}
}

func TestStagingLayout(t *testing.T) {
	tests := []struct {
		name             string
		width, height    uint32
		bpp              uint32
		wantPitch        uint32
		wantStagingBytes uint64
	}{
		{"1x1 rgba", 1, 1, 4, 256, 256},
		{"64 wide rgba is aligned", 64, 2, 4, 256, 512},
		{"65 wide rgba pads", 65, 2, 4, 512, 1024},
		{"512 wide r8", 512, 3, 1, 512, 1536},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := paddedRowBytes(tt.width * tt.bpp); got != tt.wantPitch {
				t.Errorf("paddedRowBytes = %d, want %d", got, tt.wantPitch)
			}
			if got := stagingSize(tt.width, tt.height, tt.bpp); got != tt.wantStagingBytes {
				t.Errorf("stagingSize = %d, want %d", got, tt.wantStagingBytes)
			}
		})
	}
}

func TestWriteRowsPadsRows(t *testing.T) {
	pixels := []byte{1, 2, 3, 4, 5, 6}
	dst := make([]byte, 2*256)
	writeRows(dst, pixels, 3, 2)

	if dst[0] != 1 || dst[2] != 3 || dst[3] != 0 {
		t.Errorf("row 0 = %v, want [1 2 3 0]", dst[:4])
	}
	if dst[256] != 4 || dst[258] != 6 {
		t.Errorf("row 1 = %v, want [4 5 6]", dst[256:259])
	}
}

func TestCreateTextureErrors(t *testing.T) {
	device, _ := newNoopDevice(t)

	if _, err := CreateTexture(device, "zero", 0, 4, gputypes.TextureFormatRGBA8Unorm); !errors.Is(err, ErrZeroSize) {
		t.Errorf("zero width error = %v, want ErrZeroSize", err)
	}
	if _, err := CreateTexture(device, "depth", 4, 4, gputypes.TextureFormatDepth32Float); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("depth format error = %v, want ErrUnsupportedFormat", err)
	}

	tex, err := CreateTexture(device, "ok", 4, 2, gputypes.TextureFormatR8Unorm)
	if err != nil {
		t.Fatalf("CreateTexture() error: %v", err)
	}
	if tex.Width != 4 || tex.Height != 2 || tex.View == nil {
		t.Errorf("texture = %+v", tex)
	}
	tex.Destroy(device)
	tex.Destroy(device)
	if tex.View != nil || tex.Texture != nil {
		t.Error("Destroy should clear the texture and view")
	}
}

var errEncoding = errors.New("encoder lost")

// brokenEncoderDevice hands out encoders that fail to begin or end
// recording and counts how many of them were discarded.
type brokenEncoderDevice struct {
	hal.Device
	failEnd   bool
	discarded int
}

func (d *brokenEncoderDevice) CreateCommandEncoder(*hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	return &brokenEncoder{dev: d}, nil
}

type brokenEncoder struct {
	noop.CommandEncoder
	dev *brokenEncoderDevice
}

func (e *brokenEncoder) BeginEncoding(string) error {
	if e.dev.failEnd {
		return nil
	}
	return errEncoding
}

func (e *brokenEncoder) EndEncoding() (hal.CommandBuffer, error) {
	return nil, errEncoding
}

func (e *brokenEncoder) DiscardEncoding() { e.dev.discarded++ }

func TestWriteTextureDiscardsFailedEncoder(t *testing.T) {
	device, queue := newNoopDevice(t)
	tex, err := CreateTexture(device, "target", 1, 1, gputypes.TextureFormatRGBA8Unorm)
	if err != nil {
		t.Fatalf("CreateTexture() error: %v", err)
	}
	defer tex.Destroy(device)

	for _, failEnd := range []bool{false, true} {
		broken := &brokenEncoderDevice{Device: device, failEnd: failEnd}
		if err := WriteTexture(broken, queue, tex, []byte{1, 2, 3, 4}, 0); !errors.Is(err, errEncoding) {
			t.Errorf("failEnd=%v: WriteTexture() error = %v, want the encoding error", failEnd, err)
		}
		if broken.discarded != 1 {
			t.Errorf("failEnd=%v: discarded = %d, want 1", failEnd, broken.discarded)
		}
	}
}

func TestUploadTexture(t *testing.T) {
	device, queue := newNoopDevice(t)

	tex, err := UploadTexture(device, queue, "white", []byte{255, 255, 255, 255}, 1, 1, gputypes.TextureFormatRGBA8Unorm, 0)
	if err != nil {
		t.Fatalf("UploadTexture() error: %v", err)
	}
	defer tex.Destroy(device)

	if err := WriteTexture(device, queue, tex, []byte{1, 2, 3}, 0); !errors.Is(err, ErrPixelSize) {
		t.Errorf("short pixel error = %v, want ErrPixelSize", err)
	}
	if err := WriteTexture(device, queue, tex, []byte{1, 2, 3, 4}, 0); err != nil {
		t.Errorf("WriteTexture() error: %v", err)
	}
}

func TestUploadQueue(t *testing.T) {
	device, _ := newNoopDevice(t)
	tex, err := CreateTexture(device, "q", 2, 2, gputypes.TextureFormatR8Unorm)
	if err != nil {
		t.Fatalf("CreateTexture() error: %v", err)
	}

	var q UploadQueue
	if err := q.Push(tex, make([]byte, 3), nil); !errors.Is(err, ErrPixelSize) {
		t.Fatalf("Push() size error = %v, want ErrPixelSize", err)
	}

	pixels := []byte{1, 2, 3, 4}
	var results []bool
	done := func(ok bool) { results = append(results, ok) }
	if err := q.Push(tex, pixels, done); err != nil {
		t.Fatalf("Push() error: %v", err)
	}
	pixels[0] = 99
	if q.pending[0].pixels[0] != 1 {
		t.Error("Push should snapshot the pixels")
	}
	if q.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", q.Len())
	}
	if got := q.stagingBytes(); got != 512 {
		t.Errorf("stagingBytes() = %d, want 512", got)
	}

	q.Abort()
	if q.Len() != 0 || len(results) != 1 || results[0] {
		t.Errorf("after Abort: len=%d results=%v, want 0 [false]", q.Len(), results)
	}

	if err := q.Push(tex, pixels, done); err != nil {
		t.Fatalf("Push() error: %v", err)
	}
	q.complete()
	if len(results) != 2 || !results[1] {
		t.Errorf("after complete: results=%v, want [false true]", results)
	}

	if err := q.Push(tex, pixels, done); err != nil {
		t.Fatalf("Push() error: %v", err)
	}
	q.Reset()
	if q.Len() != 0 || len(results) != 2 {
		t.Error("Reset should drop uploads without callbacks")
	}
}
