// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"fmt"
	"math/bits"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// minStagedBufferSize is the smallest device buffer the stager allocates.
const minStagedBufferSize = 4096

// retireFrames is how many frames a replaced buffer is kept alive, so a
// frame command buffer still referencing it can finish first.
const retireFrames = 2

// FrameGeometry describes the device buffers populated for one frame.
type FrameGeometry struct {
	VertexBuffer  hal.Buffer
	IndexBuffer   hal.Buffer
	UniformBuffer hal.Buffer

	// UniformGeneration changes whenever UniformBuffer is replaced, so bind
	// groups referencing the old buffer can be rebuilt.
	UniformGeneration uint64

	IndexCount   uint32
	VertexBytes  uint64
	UniformBytes uint64
	Uploads      int
}

// stagedBuffer is a device buffer that grows to the next power of two.
type stagedBuffer struct {
	label string
	usage gputypes.BufferUsage
	buf   hal.Buffer
	size  uint64
}

type retiredBuffer struct {
	buf   hal.Buffer
	frame uint64
}

// Stager moves one frame's vertices, indices, uniforms and queued texture
// uploads to the device through a single shared transfer buffer and a single
// copy submission. Buffers are reused across frames.
//
// Stager is not safe for concurrent use.
type Stager struct {
	device  hal.Device
	queue   hal.Queue
	timeout time.Duration

	vertex  stagedBuffer
	index   stagedBuffer
	uniform stagedBuffer
	staging stagedBuffer

	retired           []retiredBuffer
	frame             uint64
	uniformGeneration uint64
	geometry          FrameGeometry
}

// NewStager creates a stager. No device memory is allocated until Stage.
func NewStager(device hal.Device, queue hal.Queue, timeout time.Duration) *Stager {
	return &Stager{
		device:  device,
		queue:   queue,
		timeout: timeout,
		vertex:  stagedBuffer{label: "ui_vertices", usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst},
		index:   stagedBuffer{label: "ui_indices", usage: gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst},
		uniform: stagedBuffer{label: "ui_uniforms", usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst},
		staging: stagedBuffer{label: "ui_transfer", usage: gputypes.BufferUsageMapWrite | gputypes.BufferUsageCopySrc},
	}
}

// Stage uploads the frame payloads and drains uploads (which may be nil).
// On failure the queued texture writes are aborted.
// The returned geometry is owned by the stager and valid until the next call.
func (s *Stager) Stage(vertexBytes []byte, indices []uint32, uniforms []byte, uploads *UploadQueue) (geom *FrameGeometry, err error) {
	defer func() {
		if err != nil && uploads != nil {
			uploads.Abort()
		}
	}()
	s.frame++
	s.releaseRetired(false)

	indexBytes := uint64(len(indices)) * 4
	vertexOff := uint64(0)
	indexOff := alignUp(vertexOff+uint64(len(vertexBytes)), copyRowAlignment)
	uniformOff := alignUp(indexOff+indexBytes, copyRowAlignment)
	textureOff := alignUp(uniformOff+uint64(len(uniforms)), copyRowAlignment)
	total := textureOff
	if uploads != nil {
		total += uploads.stagingBytes()
	}

	if err := s.ensure(&s.vertex, uint64(len(vertexBytes))); err != nil {
		return nil, err
	}
	if err := s.ensure(&s.index, indexBytes); err != nil {
		return nil, err
	}
	grewUniform := s.uniform.buf == nil || uint64(len(uniforms)) > s.uniform.size
	if err := s.ensure(&s.uniform, uint64(len(uniforms))); err != nil {
		return nil, err
	}
	if grewUniform {
		s.uniformGeneration++
	}
	if err := s.ensure(&s.staging, total); err != nil {
		return nil, err
	}

	err = mapWrite(s.device, s.staging.buf, total, func(dst []byte) {
		copy(dst[vertexOff:], vertexBytes)
		putIndices(dst[indexOff:indexOff+indexBytes], indices)
		copy(dst[uniformOff:], uniforms)
		if uploads == nil {
			return
		}
		off := textureOff
		for _, u := range uploads.pending {
			bpp := BytesPerPixel(u.target.Format)
			writeRows(dst[off:], u.pixels, u.target.Width*bpp, u.target.Height)
			off += alignUp(stagingSize(u.target.Width, u.target.Height, bpp), copyRowAlignment)
		}
	})
	if err != nil {
		return nil, err
	}

	encoder, err := s.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "ui_stage"})
	if err != nil {
		return nil, fmt.Errorf("create stage encoder: %w", err)
	}
	if err := encoder.BeginEncoding("ui_stage"); err != nil {
		encoder.DiscardEncoding()
		return nil, fmt.Errorf("begin stage encoding: %w", err)
	}

	if n := uint64(len(vertexBytes)); n > 0 {
		encoder.CopyBufferToBuffer(s.staging.buf, s.vertex.buf, []hal.BufferCopy{{SrcOffset: vertexOff, Size: n}})
	}
	if indexBytes > 0 {
		encoder.CopyBufferToBuffer(s.staging.buf, s.index.buf, []hal.BufferCopy{{SrcOffset: indexOff, Size: indexBytes}})
	}
	if n := uint64(len(uniforms)); n > 0 {
		encoder.CopyBufferToBuffer(s.staging.buf, s.uniform.buf, []hal.BufferCopy{{SrcOffset: uniformOff, Size: n}})
	}
	uploadCount := 0
	if uploads != nil {
		off := textureOff
		for _, u := range uploads.pending {
			encoder.CopyBufferToTexture(s.staging.buf, u.target.Texture, []hal.BufferTextureCopy{textureCopy(u.target, off)})
			off += alignUp(stagingSize(u.target.Width, u.target.Height, BytesPerPixel(u.target.Format)), copyRowAlignment)
		}
		uploadCount = uploads.Len()
	}

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		encoder.DiscardEncoding()
		return nil, fmt.Errorf("end stage encoding: %w", err)
	}
	defer s.device.FreeCommandBuffer(cmdBuf)

	if err := submitAndWait(s.device, s.queue, cmdBuf, s.timeout); err != nil {
		return nil, err
	}
	if uploads != nil {
		uploads.complete()
	}

	slogger().Debug("frame staged",
		"vertex_bytes", len(vertexBytes), "indices", len(indices),
		"uniform_bytes", len(uniforms), "uploads", uploadCount, "transfer_bytes", total)

	s.geometry = FrameGeometry{
		VertexBuffer:      s.vertex.buf,
		IndexBuffer:       s.index.buf,
		UniformBuffer:     s.uniform.buf,
		UniformGeneration: s.uniformGeneration,
		IndexCount:        uint32(len(indices)), //nolint:gosec // index count bounded by uint32 triangle indices
		VertexBytes:       uint64(len(vertexBytes)),
		UniformBytes:      uint64(len(uniforms)),
		Uploads:           uploadCount,
	}
	return &s.geometry, nil
}

// ensure grows b so it can hold need bytes, retiring the previous buffer.
func (s *Stager) ensure(b *stagedBuffer, need uint64) error {
	if b.buf != nil && need <= b.size {
		return nil
	}
	size := nextPowerOfTwo(max(need, minStagedBufferSize))
	buf, err := s.device.CreateBuffer(&hal.BufferDescriptor{
		Label: b.label,
		Size:  size,
		Usage: b.usage,
	})
	if err != nil {
		return fmt.Errorf("create %s buffer (%d bytes): %w", b.label, size, err)
	}
	if b.buf != nil {
		s.retired = append(s.retired, retiredBuffer{buf: b.buf, frame: s.frame})
	}
	b.buf = buf
	b.size = size
	return nil
}

// releaseRetired destroys buffers that were replaced long enough ago, or all
// of them when force is set.
func (s *Stager) releaseRetired(force bool) {
	kept := s.retired[:0]
	for _, r := range s.retired {
		if force || s.frame >= r.frame+retireFrames {
			s.device.DestroyBuffer(r.buf)
			continue
		}
		kept = append(kept, r)
	}
	clear(s.retired[len(kept):])
	s.retired = kept
}

// Destroy releases every buffer owned by the stager. Safe to call twice.
func (s *Stager) Destroy() {
	if s.device == nil {
		return
	}
	s.releaseRetired(true)
	for _, b := range []*stagedBuffer{&s.vertex, &s.index, &s.uniform, &s.staging} {
		if b.buf != nil {
			s.device.DestroyBuffer(b.buf)
			b.buf = nil
			b.size = 0
		}
	}
	s.geometry = FrameGeometry{}
}

// putIndices encodes indices as little-endian uint32 values.
func putIndices(dst []byte, indices []uint32) {
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(dst[i*4:], idx)
	}
}

// nextPowerOfTwo returns the smallest power of two >= n.
func nextPowerOfTwo(n uint64) uint64 {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len64(n-1)
}
