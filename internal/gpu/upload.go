// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// copyRowAlignment is the required BytesPerRow alignment for buffer-to-texture
// copies, and the offset alignment used for every payload in a transfer buffer.
const copyRowAlignment = 256

// DefaultUploadTimeout bounds how long an internal copy submission may take
// before the upload path falls back to Device.WaitIdle.
const DefaultUploadTimeout = 2 * time.Second

// Texture is a device-resident texture together with its default view.
type Texture struct {
	Texture hal.Texture
	View    hal.TextureView
	Width   uint32
	Height  uint32
	Format  gputypes.TextureFormat
}

// BytesPerPixel returns the texel size of formats the UI pipeline samples.
// Returns 0 for unsupported formats.
func BytesPerPixel(format gputypes.TextureFormat) uint32 {
	switch format {
	case gputypes.TextureFormatR8Unorm:
		return 1
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatBGRA8Unorm:
		return 4
	default:
		return 0
	}
}

// alignUp rounds n up to a multiple of align (align must be a power of two).
func alignUp(n, align uint64) uint64 {
	return (n + align - 1) &^ (align - 1)
}

// paddedRowBytes returns the staging row pitch for a texture row of rowBytes.
func paddedRowBytes(rowBytes uint32) uint32 {
	return uint32(alignUp(uint64(rowBytes), copyRowAlignment)) //nolint:gosec // row pitch fits uint32
}

// stagingSize returns the transfer-buffer bytes needed to upload one texture.
func stagingSize(width, height, bpp uint32) uint64 {
	return uint64(paddedRowBytes(width*bpp)) * uint64(height)
}

// CreateTexture allocates a sampled, copy-destination texture and its view.
func CreateTexture(device hal.Device, label string, width, height uint32, format gputypes.TextureFormat) (*Texture, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: texture %q %dx%d", ErrZeroSize, label, width, height)
	}
	if BytesPerPixel(format) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageCopyDst | gputypes.TextureUsageTextureBinding,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture %q: %w", label, err)
	}

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("create texture view %q: %w", label, err)
	}

	return &Texture{Texture: tex, View: view, Width: width, Height: height, Format: format}, nil
}

// Destroy releases the view and texture. Safe to call more than once.
func (t *Texture) Destroy(device hal.Device) {
	if t == nil || device == nil {
		return
	}
	if t.View != nil {
		device.DestroyTextureView(t.View)
		t.View = nil
	}
	if t.Texture != nil {
		device.DestroyTexture(t.Texture)
		t.Texture = nil
	}
}

// checkPixels validates that pixels holds exactly one tightly packed image.
func (t *Texture) checkPixels(pixels []byte) error {
	want := uint64(t.Width) * uint64(t.Height) * uint64(BytesPerPixel(t.Format))
	if uint64(len(pixels)) != want {
		return fmt.Errorf("%w: got %d bytes, want %d (%dx%d)", ErrPixelSize, len(pixels), want, t.Width, t.Height)
	}
	return nil
}

// UploadTexture creates a texture of the given size and format and fills it
// with pixels through a one-shot copy submission. The call blocks until the
// copy has completed, so the texture is usable in the same frame.
func UploadTexture(device hal.Device, queue hal.Queue, label string, pixels []byte, width, height uint32, format gputypes.TextureFormat, timeout time.Duration) (*Texture, error) {
	tex, err := CreateTexture(device, label, width, height, format)
	if err != nil {
		return nil, err
	}
	if err := WriteTexture(device, queue, tex, pixels, timeout); err != nil {
		tex.Destroy(device)
		return nil, err
	}
	return tex, nil
}

// WriteTexture replaces the full contents of tex with pixels using its own
// transfer buffer and command buffer, then waits for completion.
func WriteTexture(device hal.Device, queue hal.Queue, tex *Texture, pixels []byte, timeout time.Duration) error {
	if err := tex.checkPixels(pixels); err != nil {
		return err
	}

	size := stagingSize(tex.Width, tex.Height, BytesPerPixel(tex.Format))
	staging, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "ui_texture_staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapWrite | gputypes.BufferUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create texture staging buffer: %w", err)
	}
	defer device.DestroyBuffer(staging)

	err = mapWrite(device, staging, size, func(dst []byte) {
		writeRows(dst, pixels, tex.Width*BytesPerPixel(tex.Format), tex.Height)
	})
	if err != nil {
		return err
	}

	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "ui_texture_upload"})
	if err != nil {
		return fmt.Errorf("create upload encoder: %w", err)
	}
	if err := encoder.BeginEncoding("ui_texture_upload"); err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("begin upload encoding: %w", err)
	}
	encoder.CopyBufferToTexture(staging, tex.Texture, []hal.BufferTextureCopy{textureCopy(tex, 0)})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("end upload encoding: %w", err)
	}
	defer device.FreeCommandBuffer(cmdBuf)

	return submitAndWait(device, queue, cmdBuf, timeout)
}

// textureCopy describes a full-texture copy from a padded staging region.
func textureCopy(tex *Texture, offset uint64) hal.BufferTextureCopy {
	return hal.BufferTextureCopy{
		BufferLayout: hal.ImageDataLayout{
			Offset:       offset,
			BytesPerRow:  paddedRowBytes(tex.Width * BytesPerPixel(tex.Format)),
			RowsPerImage: tex.Height,
		},
		TextureBase: hal.ImageCopyTexture{
			Texture:  tex.Texture,
			MipLevel: 0,
			Aspect:   gputypes.TextureAspectAll,
		},
		Size: hal.Extent3D{Width: tex.Width, Height: tex.Height, DepthOrArrayLayers: 1},
	}
}

// writeRows copies tightly packed rows into dst using the padded row pitch.
func writeRows(dst, pixels []byte, rowBytes, rows uint32) {
	pitch := paddedRowBytes(rowBytes)
	if pitch == rowBytes {
		copy(dst, pixels[:rowBytes*rows])
		return
	}
	for row := uint32(0); row < rows; row++ {
		src := pixels[row*rowBytes : (row+1)*rowBytes]
		copy(dst[row*pitch:], src)
	}
}

// mapWrite maps buf for writing, lets fill populate it, and unmaps it.
func mapWrite(device hal.Device, buf hal.Buffer, size uint64, fill func(dst []byte)) error {
	mapping, err := device.MapBuffer(buf, 0, size)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStagingMap, err)
	}
	if mapping.Ptr == nil {
		_ = device.UnmapBuffer(buf)
		return fmt.Errorf("%w: nil mapping", ErrStagingMap)
	}
	fill(unsafe.Slice((*byte)(mapping.Ptr), size))
	if err := device.UnmapBuffer(buf); err != nil {
		return fmt.Errorf("unmap transfer buffer: %w", err)
	}
	return nil
}

// submitAndWait submits a single internal command buffer and blocks until the
// queue reports it complete.
func submitAndWait(device hal.Device, queue hal.Queue, cmdBuf hal.CommandBuffer, timeout time.Duration) error {
	index, err := queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return fmt.Errorf("submit upload: %w", err)
	}
	return waitSubmission(device, queue, index, timeout)
}

// waitSubmission polls the queue until index completes. Once the timeout
// expires it falls back to a full device wait.
func waitSubmission(device hal.Device, queue hal.Queue, index uint64, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultUploadTimeout
	}
	deadline := time.Now().Add(timeout)
	for queue.PollCompleted() < index {
		if time.Now().After(deadline) {
			slogger().Warn("upload wait timed out, waiting for idle device",
				"submission", index, "timeout", timeout)
			if err := device.WaitIdle(); err != nil {
				return fmt.Errorf("%w: %w", ErrUploadTimeout, err)
			}
			return nil
		}
		time.Sleep(50 * time.Microsecond)
	}
	return nil
}
