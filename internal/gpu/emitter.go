//go:build !nogpu

package gpu

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ScissorRect is an integer clip rectangle in target pixels. Position may be
// negative; size never is.
type ScissorRect struct {
	X, Y int32
	W, H uint32
}

// Clamp intersects r with a width x height target, yielding the unsigned
// rectangle accepted by RenderPassEncoder.SetScissorRect.
func (r ScissorRect) Clamp(width, height uint32) (x, y, w, h uint32) {
	x0 := clampI64(int64(r.X), 0, int64(width))
	y0 := clampI64(int64(r.Y), 0, int64(height))
	x1 := clampI64(int64(r.X)+int64(r.W), 0, int64(width))
	y1 := clampI64(int64(r.Y)+int64(r.H), 0, int64(height))
	return uint32(x0), uint32(y0), uint32(x1 - x0), uint32(y1 - y0) //nolint:gosec // clamped to target size
}

func clampI64(v, lo, hi int64) int64 {
	return min(max(v, lo), hi)
}

// DrawCall is one fully resolved draw command.
type DrawCall struct {
	Scissor      ScissorRect
	WidgetOffset uint32
	Binding      *Binding
	FirstIndex   uint32
	IndexCount   uint32
}

// FramePass carries everything the emitter needs for one render pass.
type FramePass struct {
	Width, Height    uint32
	Geometry         *FrameGeometry
	UniformGroup     hal.BindGroup
	ProjectionOffset uint32
	Calls            []DrawCall
}

// EmitStats reports what Emit recorded.
type EmitStats struct {
	DrawCalls   int
	SkippedDraw int
}

// Emit records the frame into an already begun render pass: pipeline,
// viewport, frame-wide buffers, then one scissor, bind and indexed draw per
// call in list order. Calls whose clamped scissor is empty, or whose index
// range is empty, are skipped and counted in SkippedDraw, so DrawCalls can
// be lower than len(frame.Calls).
func (p *UIPipeline) Emit(pass hal.RenderPassEncoder, frame *FramePass) EmitStats {
	var stats EmitStats

	pass.SetPipeline(p.pipeline)
	pass.SetViewport(0, 0, float32(frame.Width), float32(frame.Height), 0, 1)
	pass.SetVertexBuffer(0, frame.Geometry.VertexBuffer, 0)
	pass.SetIndexBuffer(frame.Geometry.IndexBuffer, gputypes.IndexFormatUint32, 0)

	var bound *Binding
	for i := range frame.Calls {
		call := &frame.Calls[i]
		x, y, w, h := call.Scissor.Clamp(frame.Width, frame.Height)
		if w == 0 || h == 0 || call.IndexCount == 0 {
			stats.SkippedDraw++
			continue
		}
		pass.SetScissorRect(x, y, w, h)
		pass.SetBindGroup(0, frame.UniformGroup, []uint32{frame.ProjectionOffset, call.WidgetOffset})

		binding := call.Binding
		if binding == nil {
			binding = p.fallback
		}
		if binding != bound {
			pass.SetBindGroup(1, binding.Group, nil)
			bound = binding
		}
		pass.DrawIndexed(call.IndexCount, 1, call.FirstIndex, 0, 0)
		stats.DrawCalls++
	}
	return stats
}
