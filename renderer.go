// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package uirender

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/uirender/internal/gpu"
)

// Renderer executes UI frames on a device. It owns every GPU object it
// creates: the pipeline, the reusable frame buffers, the glyph atlas cache
// and the application texture cache.
//
// A frame goes through three phases inside Render: the commands are
// scanned (textures resolved, uploads queued, uniforms packed), everything
// is staged to the device in one copy submission, and the draws are
// recorded into a render pass on the caller's encoder. The caller ends
// encoding, submits and presents.
//
// Renderer is NOT safe for concurrent use. All methods must be called from
// the render-loop goroutine.
type Renderer struct {
	device hal.Device
	queue  hal.Queue
	config Config
	logger *slog.Logger

	width, height uint32

	pipeline *gpu.UIPipeline
	stager   *gpu.Stager
	arena    *gpu.UniformArena
	atlas    *gpu.TextureCache[FontPageKey]
	textures *gpu.TextureCache[TextureHandle]

	fontSource    gpu.PixelSource[FontPageKey]
	textureSource gpu.PixelSource[TextureHandle]

	// Reused per-frame scratch.
	uploads     gpu.UploadQueue
	vertexBytes []byte
	indices     []uint32
	calls       []gpu.DrawCall

	stats     Stats
	destroyed bool
}

// New creates a renderer on device and queue. Every resource failure is
// returned wrapped; objects created before the failure are released.
func New(device hal.Device, queue hal.Queue, opts ...Option) (*Renderer, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	if queue == nil {
		return nil, ErrNilQueue
	}
	config := resolveConfig(opts)

	r := &Renderer{
		device: device,
		queue:  queue,
		config: config,
		logger: config.Logger,
		width:  config.Width,
		height: config.Height,
	}

	pipeline, err := gpu.NewUIPipeline(device, queue, gpu.PipelineConfig{
		TargetFormat:  config.SurfaceFormat,
		Shader:        shaderFormat(config.Shader),
		UploadTimeout: config.UploadTimeout,
		Label:         config.Label,
	})
	if err != nil {
		return nil, fmt.Errorf("uirender: create pipeline: %w", err)
	}
	r.pipeline = pipeline
	r.stager = gpu.NewStager(device, queue, config.UploadTimeout)
	r.arena = gpu.NewUniformArena(config.UniformAlignment)

	mode := uploadMode(config.UploadMode)
	r.atlas = gpu.NewTextureCache[FontPageKey](device, queue, pipeline, pipeline.Fallback(), gpu.TextureCacheConfig{
		Label:   config.Label + "_glyphs",
		Format:  gputypes.TextureFormatR8Unorm,
		Mode:    mode,
		Timeout: config.UploadTimeout,
	})
	r.textures = gpu.NewTextureCache[TextureHandle](device, queue, pipeline, pipeline.Fallback(), gpu.TextureCacheConfig{
		Label:   config.Label + "_texture",
		Format:  gputypes.TextureFormatRGBA8Unorm,
		Mode:    mode,
		Timeout: config.UploadTimeout,
	})
	if config.FontPages != nil {
		r.fontSource = fontPixels{src: config.FontPages}
	}
	if config.Textures != nil {
		r.textureSource = texturePixels{src: config.Textures}
	}

	r.log().Info("uirender: renderer created",
		"format", config.SurfaceFormat, "width", r.width, "height", r.height,
		"upload_mode", config.UploadMode, "shader", config.Shader)
	return r, nil
}

func (r *Renderer) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return Logger()
}

func shaderFormat(f ShaderFormat) gpu.ShaderFormat {
	if f == ShaderSPIRV {
		return gpu.ShaderSPIRV
	}
	return gpu.ShaderWGSL
}

func uploadMode(m UploadMode) gpu.UploadMode {
	if m == UploadImmediate {
		return gpu.UploadImmediate
	}
	return gpu.UploadDeferred
}

// Render records frame into a render pass on encoder targeting targets.
//
// A frame with no vertices, or a renderer with a zero-sized target, is a
// no-op: no pass is opened and nil is returned. Render never ends encoding
// or submits encoder; texture uploads and geometry are staged through the
// renderer's own copy submission before the pass begins.
func (r *Renderer) Render(encoder hal.CommandEncoder, targets []hal.RenderPassColorAttachment, frame *DrawingContext) error {
	if r.destroyed {
		return ErrRendererDestroyed
	}
	if frame == nil {
		return ErrNilFrame
	}
	if len(frame.Vertices) == 0 || r.width == 0 || r.height == 0 {
		r.stats.SkippedFrames++
		return nil
	}
	if len(targets) == 0 {
		return ErrNoColorTarget
	}
	if err := frame.Validate(); err != nil {
		return err
	}

	projection := r.prepare(frame)

	var uploads *gpu.UploadQueue
	if r.config.UploadMode == UploadDeferred {
		uploads = &r.uploads
	}
	geom, err := r.stager.Stage(r.vertexBytes, r.indices, r.arena.Bytes(), uploads)
	if err != nil {
		return fmt.Errorf("uirender: stage frame: %w", err)
	}
	group, err := r.pipeline.UniformGroup(geom)
	if err != nil {
		return fmt.Errorf("uirender: %w", err)
	}

	pass := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label:            r.config.Label + "_pass",
		ColorAttachments: targets,
	})
	emitted := r.pipeline.Emit(pass, &gpu.FramePass{
		Width:            r.width,
		Height:           r.height,
		Geometry:         geom,
		UniformGroup:     group,
		ProjectionOffset: projection,
		Calls:            r.calls,
	})
	pass.End()

	r.atlas.EndFrame()
	r.textures.EndFrame()

	r.stats.Frames++
	r.stats.DrawCalls += uint64(emitted.DrawCalls)      //nolint:gosec // non-negative count
	r.stats.SkippedDraws += uint64(emitted.SkippedDraw) //nolint:gosec // non-negative count
	r.stats.Uploads += uint64(geom.Uploads)             //nolint:gosec // non-negative count
	r.stats.LastFrame = FrameStats{
		Commands:     len(frame.Commands),
		DrawCalls:    emitted.DrawCalls,
		SkippedDraws: emitted.SkippedDraw,
		Uploads:      geom.Uploads,
		VertexBytes:  geom.VertexBytes,
		UniformBytes: geom.UniformBytes,
	}
	r.log().Debug("uirender: frame rendered",
		"commands", len(frame.Commands), "draws", emitted.DrawCalls,
		"skipped", emitted.SkippedDraw, "uploads", geom.Uploads)
	return nil
}

// Resize sets the target size used by subsequent frames.
func (r *Renderer) Resize(width, height uint32) {
	if r.width == width && r.height == height {
		return
	}
	r.width, r.height = width, height
	r.log().Debug("uirender: resized", "width", width, "height", height)
}

// Size returns the current target size.
func (r *Renderer) Size() (width, height uint32) { return r.width, r.height }

// Stats returns the renderer counters, including both texture caches.
func (r *Renderer) Stats() Stats {
	s := r.stats
	if r.atlas != nil {
		s.Atlas = CacheStats(r.atlas.Stats())
		s.Textures = CacheStats(r.textures.Stats())
	}
	return s
}

// InvalidateFontPage marks a glyph atlas page stale so the next frame that
// uses it uploads it again. Returns false if the page is not resident.
func (r *Renderer) InvalidateFontPage(key FontPageKey) bool {
	if r.destroyed {
		return false
	}
	return r.atlas.Invalidate(key)
}

// ForgetFontPage releases a glyph atlas page, for example when its font is
// unloaded.
func (r *Renderer) ForgetFontPage(key FontPageKey) {
	if r.destroyed {
		return
	}
	r.atlas.Forget(key)
}

// InvalidateTexture marks an application texture stale.
// Returns false if the texture is not resident.
func (r *Renderer) InvalidateTexture(handle TextureHandle) bool {
	if r.destroyed {
		return false
	}
	return r.textures.Invalidate(handle)
}

// ForgetTexture releases an application texture.
func (r *Renderer) ForgetTexture(handle TextureHandle) {
	if r.destroyed {
		return
	}
	r.textures.Forget(handle)
}

// Destroy releases every GPU object owned by the renderer. The device and
// queue are left to their owner. Safe to call multiple times.
func (r *Renderer) Destroy() {
	if r.destroyed {
		return
	}
	r.destroyed = true
	r.uploads.Reset()
	r.atlas.Destroy()
	r.textures.Destroy()
	r.stager.Destroy()
	r.pipeline.Destroy()
	r.log().Info("uirender: renderer destroyed", "frames", r.stats.Frames)
}
