//go:build !nogpu

package uirender

import (
	"github.com/gogpu/uirender/internal/gpu"
)

// prepare scans frame in command order: it packs the vertex and index
// payloads, pushes the projection and one widget block per command into the
// uniform arena, and resolves every command's texture, queuing uploads for
// cache misses. Returns the projection block offset.
func (r *Renderer) prepare(frame *DrawingContext) uint32 {
	r.arena.Reset()
	r.vertexBytes = appendVertexBytes(r.vertexBytes[:0], frame.Vertices)
	r.indices = FlattenTriangles(r.indices[:0], frame.Triangles)

	var uploads *gpu.UploadQueue
	if r.config.UploadMode == UploadDeferred {
		uploads = &r.uploads
	}

	width, height := float32(r.width), float32(r.height)
	projection := r.arena.PushProjection(gpu.OrthoProjection(width, height))

	r.calls = r.calls[:0]
	for i := range frame.Commands {
		cmd := &frame.Commands[i]

		var u gpu.WidgetUniform
		r.fillBrush(&u, cmd.Brush)
		pos, end := cmd.Bounds.Position(), cmd.Bounds.RightBottom()
		u.Resolution = [2]float32{width, height}
		u.BoundsMin = [2]float32{pos.X, pos.Y}
		u.BoundsMax = [2]float32{end.X, end.Y}
		u.IsFont = cmd.Texture.IsFont()
		u.Opacity = cmd.Opacity

		x, y, w, h := cmd.ClipBounds.Scissor()
		r.calls = append(r.calls, gpu.DrawCall{
			Scissor:      gpu.ScissorRect{X: x, Y: y, W: w, H: h},
			WidgetOffset: r.arena.PushWidget(&u),
			Binding:      r.resolveTexture(cmd.Texture, uploads),
			FirstIndex:   3 * cmd.Triangles.Start,
			IndexCount:   3 * cmd.Triangles.Len(),
		})
	}
	return projection
}

// resolveTexture maps a command texture to its binding. Anything that
// cannot be resolved draws with the white fallback.
func (r *Renderer) resolveTexture(tex CommandTexture, uploads *gpu.UploadQueue) *gpu.Binding {
	switch tex.Kind {
	case TextureFontPage:
		return r.atlas.Resolve(tex.Page, r.fontSource, uploads)
	case TextureHandleRef:
		return r.textures.Resolve(tex.Handle, r.textureSource, uploads)
	default:
		return r.pipeline.Fallback()
	}
}

// fillBrush writes the brush fields of u. A nil brush is opaque white.
func (r *Renderer) fillBrush(u *gpu.WidgetUniform, brush Brush) {
	u.Solid = White.Normalized()
	switch b := brush.(type) {
	case SolidBrush:
		u.Solid = b.Color.Normalized()
	case *LinearGradientBrush:
		u.Kind = gpu.BrushLinear
		u.GradFrom = [2]float32{b.From.X, b.From.Y}
		u.GradTo = [2]float32{b.To.X, b.To.Y}
		r.fillStops(u, b.Stops)
	case *RadialGradientBrush:
		u.Kind = gpu.BrushRadial
		u.GradFrom = [2]float32{b.Center.X, b.Center.Y}
		u.GradTo = [2]float32{b.Radius, 0}
		r.fillStops(u, b.Stops)
	}
}

func (r *Renderer) fillStops(u *gpu.WidgetUniform, stops []GradientStop) {
	if len(stops) > gpu.MaxGradientStops {
		r.log().Debug("uirender: gradient stops truncated",
			"stops", len(stops), "max", gpu.MaxGradientStops)
		stops = stops[:gpu.MaxGradientStops]
	}
	u.StopCount = len(stops)
	for i, s := range stops {
		u.StopOffsets[i] = s.Offset
		u.StopColors[i] = s.Color.Normalized()
	}
}
