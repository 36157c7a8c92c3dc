//go:build !nogpu

// Package gpu implements the device side of the UI draw-command engine on
// top of the gogpu/wgpu HAL.
//
// This is an internal package used by uirender. It never sees UI types; the
// root package converts a frame into byte payloads, cache keys and resolved
// draw calls before handing them here.
//
// # Components
//
//   - UploadTexture / WriteTexture: one-shot texture uploads through a
//     transfer buffer and a blocking copy submission.
//   - Stager: moves a frame's vertices, indices, uniform arena and queued
//     texture writes to the device with one transfer buffer and one copy
//     submission. Buffers are reused across frames.
//   - UploadQueue: texture writes collected while scanning a frame.
//   - TextureCache: sticky key to texture cache with staleness tracking and
//     a shared fallback binding. Used for glyph atlas pages and for generic
//     application textures.
//   - UniformArena / WidgetUniform: per-frame uniform blocks addressed with
//     dynamic offsets.
//   - UIPipeline: shader, layouts, render pipeline, linear sampler, the 1x1
//     white fallback texture, and Emit, which records the draw calls.
//
// # Frame Flow
//
//	scan commands -> TextureCache.Resolve (queue uploads) -> UniformArena
//	             -> Stager.Stage (single copy pass) -> render pass -> Emit
//
// # Thread Safety
//
// Nothing in this package is safe for concurrent use. The renderer drives it
// from the render-loop goroutine only.
package gpu
