//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"errors"
	"testing"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// readBuffer maps a noop buffer and copies out n bytes at off.
func readBuffer(t *testing.T, device hal.Device, buf hal.Buffer, off, n uint64) []byte {
	t.Helper()
	m, err := device.MapBuffer(buf, off, n)
	if err != nil {
		t.Fatalf("MapBuffer failed: %v", err)
	}
	out := make([]byte, n)
	copy(out, unsafe.Slice((*byte)(m.Ptr), n))
	_ = device.UnmapBuffer(buf)
	return out
}

func TestStageGeometry(t *testing.T) {
	device, queue := newNoopDevice(t)
	s := NewStager(device, queue, 0)
	defer s.Destroy()

	vertices := make([]byte, 4*VertexStride)
	vertices[0] = 7
	indices := []uint32{0, 1, 2, 0, 2, 3}
	uniforms := make([]byte, 256+WidgetUniformSize)

	geom, err := s.Stage(vertices, indices, uniforms, nil)
	if err != nil {
		t.Fatalf("Stage() error: %v", err)
	}
	if geom.IndexCount != 6 || geom.VertexBytes != 80 || geom.UniformBytes != uint64(len(uniforms)) || geom.Uploads != 0 {
		t.Errorf("geometry = %+v", geom)
	}
	if geom.VertexBuffer == nil || geom.IndexBuffer == nil || geom.UniformBuffer == nil {
		t.Fatal("Stage should allocate all frame buffers")
	}

	// Indices are staged little-endian at the next 256-byte boundary.
	staged := readBuffer(t, device, s.staging.buf, 0, 512)
	if staged[0] != 7 {
		t.Errorf("vertex byte 0 = %d, want 7", staged[0])
	}
	for i, want := range indices {
		if got := binary.LittleEndian.Uint32(staged[256+i*4:]); got != want {
			t.Errorf("index[%d] = %d, want %d", i, got, want)
		}
	}
}

func TestStageReusesBuffers(t *testing.T) {
	device, queue := newNoopDevice(t)
	s := NewStager(device, queue, 0)
	defer s.Destroy()

	geom, err := s.Stage(make([]byte, 40), []uint32{0, 1, 2}, make([]byte, 256), nil)
	if err != nil {
		t.Fatalf("Stage() error: %v", err)
	}
	vb, gen := geom.VertexBuffer, geom.UniformGeneration

	geom, err = s.Stage(make([]byte, 20), []uint32{0, 0, 0}, make([]byte, 256), nil)
	if err != nil {
		t.Fatalf("Stage() error: %v", err)
	}
	if geom.VertexBuffer != vb || geom.UniformGeneration != gen {
		t.Error("a smaller frame should reuse the buffers")
	}

	geom, err = s.Stage(make([]byte, 20), []uint32{0, 0, 0}, make([]byte, 2*minStagedBufferSize), nil)
	if err != nil {
		t.Fatalf("Stage() error: %v", err)
	}
	if geom.UniformGeneration == gen {
		t.Error("growing the uniform buffer should change its generation")
	}
	if s.uniform.size != 2*minStagedBufferSize {
		t.Errorf("uniform buffer size = %d, want %d", s.uniform.size, 2*minStagedBufferSize)
	}
	// The uniform and transfer buffers both grew.
	if len(s.retired) != 2 {
		t.Errorf("retired buffers = %d, want 2", len(s.retired))
	}
}

func TestStageDrainsUploads(t *testing.T) {
	device, queue := newNoopDevice(t)
	s := NewStager(device, queue, 0)
	defer s.Destroy()

	tex, err := CreateTexture(device, "glyphs", 2, 2, gputypes.TextureFormatR8Unorm)
	if err != nil {
		t.Fatalf("CreateTexture() error: %v", err)
	}
	defer tex.Destroy(device)

	var q UploadQueue
	var done []bool
	if err := q.Push(tex, []byte{1, 2, 3, 4}, func(ok bool) { done = append(done, ok) }); err != nil {
		t.Fatalf("Push() error: %v", err)
	}

	geom, err := s.Stage(make([]byte, VertexStride*3), []uint32{0, 1, 2}, make([]byte, 64), &q)
	if err != nil {
		t.Fatalf("Stage() error: %v", err)
	}
	if geom.Uploads != 1 {
		t.Errorf("Uploads = %d, want 1", geom.Uploads)
	}
	if q.Len() != 0 || len(done) != 1 || !done[0] {
		t.Errorf("queue len=%d done=%v, want drained and [true]", q.Len(), done)
	}

	// Texture rows follow the uniforms with a 256-byte pitch.
	const textureOff = 3 * 256
	staged := readBuffer(t, device, s.staging.buf, textureOff, 2*256)
	if staged[0] != 1 || staged[1] != 2 || staged[256] != 3 || staged[257] != 4 {
		t.Errorf("texture rows = %v / %v, want [1 2] / [3 4]", staged[:2], staged[256:258])
	}
}

func TestStageDiscardsFailedEncoder(t *testing.T) {
	device, queue := newNoopDevice(t)
	broken := &brokenEncoderDevice{Device: device}
	s := NewStager(broken, queue, 0)
	defer s.Destroy()

	tex, err := CreateTexture(device, "glyphs", 1, 1, gputypes.TextureFormatR8Unorm)
	if err != nil {
		t.Fatalf("CreateTexture() error: %v", err)
	}
	defer tex.Destroy(device)

	var q UploadQueue
	var done []bool
	if err := q.Push(tex, []byte{9}, func(ok bool) { done = append(done, ok) }); err != nil {
		t.Fatalf("Push() error: %v", err)
	}
	if _, err := s.Stage(make([]byte, VertexStride*3), []uint32{0, 1, 2}, make([]byte, 64), &q); !errors.Is(err, errEncoding) {
		t.Fatalf("Stage() error = %v, want the encoding error", err)
	}
	if broken.discarded != 1 {
		t.Errorf("discarded = %d, want 1", broken.discarded)
	}
	if q.Len() != 0 || len(done) != 1 || done[0] {
		t.Errorf("queue len=%d done=%v, want aborted with [false]", q.Len(), done)
	}

	broken.failEnd = true
	if _, err := s.Stage(make([]byte, VertexStride*3), []uint32{0, 1, 2}, make([]byte, 64), nil); !errors.Is(err, errEncoding) {
		t.Fatalf("Stage() error = %v, want the encoding error", err)
	}
	if broken.discarded != 2 {
		t.Errorf("discarded = %d, want 2 after a failed EndEncoding", broken.discarded)
	}
}

func TestStageDestroyTwice(t *testing.T) {
	device, queue := newNoopDevice(t)
	s := NewStager(device, queue, 0)
	if _, err := s.Stage(make([]byte, 20), []uint32{0, 0, 0}, make([]byte, 64), nil); err != nil {
		t.Fatalf("Stage() error: %v", err)
	}
	s.Destroy()
	s.Destroy()
	if s.vertex.buf != nil || s.staging.buf != nil {
		t.Error("Destroy should release the buffers")
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct{ in, want uint64 }{
		{0, 1}, {1, 1}, {2, 2}, {3, 4}, {4096, 4096}, {4097, 8192},
	}
	for _, tt := range tests {
		if got := nextPowerOfTwo(tt.in); got != tt.want {
			t.Errorf("nextPowerOfTwo(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
