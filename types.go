package uirender

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Vertex is one UI vertex. Produced by the UI layer and immutable for the
// frame.
type Vertex struct {
	Pos      Vec2
	TexCoord Vec2
	Color    Color
}

// vertexSize is the packed GPU size of a Vertex: two float32x2 and one unorm8x4.
const vertexSize = 20

// Triangle holds three indices into the frame's vertex array.
type Triangle [3]uint32

// TriangleRange is the half-open range [Start, End) of triangles a command draws.
type TriangleRange struct {
	Start, End uint32
}

// Len returns the number of triangles in the range.
func (r TriangleRange) Len() uint32 {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start
}

// DrawCommand is one batch sharing clip, brush, texture and opacity.
type DrawCommand struct {
	// ClipBounds is the scissor region in target pixels.
	ClipBounds Rect

	// Bounds is the widget rectangle, used for gradients and passed to the
	// shader as bounds_min/bounds_max.
	Bounds Rect

	// Brush fills the command. Nil means opaque white.
	Brush Brush

	// Texture is sampled by the command's fragments.
	Texture CommandTexture

	// Opacity multiplies the final alpha.
	Opacity float32

	// Triangles is the range of DrawingContext.Triangles to draw.
	Triangles TriangleRange
}

// DrawingContext is the full output of the UI layer for one frame. The
// renderer only reads it.
type DrawingContext struct {
	Vertices  []Vertex
	Triangles []Triangle
	Commands  []DrawCommand
}

// Reset empties the context while keeping its capacity.
func (dc *DrawingContext) Reset() {
	dc.Vertices = dc.Vertices[:0]
	dc.Triangles = dc.Triangles[:0]
	dc.Commands = dc.Commands[:0]
}

// PushCommand appends a command covering every triangle added since the
// previous command. Returns the appended command for further edits.
func (dc *DrawingContext) PushCommand(clip, bounds Rect, brush Brush, tex CommandTexture, opacity float32) *DrawCommand {
	var start uint32
	if n := len(dc.Commands); n > 0 {
		start = dc.Commands[n-1].Triangles.End
	}
	dc.Commands = append(dc.Commands, DrawCommand{
		ClipBounds: clip,
		Bounds:     bounds,
		Brush:      brush,
		Texture:    tex,
		Opacity:    opacity,
		Triangles:  TriangleRange{Start: start, End: uint32(len(dc.Triangles))}, //nolint:gosec // triangle count fits uint32
	})
	return &dc.Commands[len(dc.Commands)-1]
}

// IndexCount returns the number of indices the frame's triangles flatten to.
func (dc *DrawingContext) IndexCount() int { return len(dc.Triangles) * 3 }

// Validate checks that command ranges are disjoint, non-decreasing and lie
// within the triangle array. Errors wrap ErrInvalidRange.
func (dc *DrawingContext) Validate() error {
	var prevEnd uint32
	total := uint32(len(dc.Triangles)) //nolint:gosec // triangle count fits uint32
	for i := range dc.Commands {
		r := dc.Commands[i].Triangles
		switch {
		case r.End < r.Start:
			return fmt.Errorf("%w: command %d range [%d, %d) is reversed", ErrInvalidRange, i, r.Start, r.End)
		case r.Start < prevEnd:
			return fmt.Errorf("%w: command %d starts at %d before previous end %d", ErrInvalidRange, i, r.Start, prevEnd)
		case r.End > total:
			return fmt.Errorf("%w: command %d ends at %d past %d triangles", ErrInvalidRange, i, r.End, total)
		}
		prevEnd = r.End
	}
	return nil
}

// FlattenTriangles appends three indices per triangle to dst, preserving order.
func FlattenTriangles(dst []uint32, triangles []Triangle) []uint32 {
	for _, t := range triangles {
		dst = append(dst, t[0], t[1], t[2])
	}
	return dst
}

// appendVertexBytes packs vertices in the pipeline's little-endian layout.
func appendVertexBytes(dst []byte, vertices []Vertex) []byte {
	var buf [vertexSize]byte
	for i := range vertices {
		v := &vertices[i]
		binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(v.Pos.X))
		binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(v.Pos.Y))
		binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(v.TexCoord.X))
		binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(v.TexCoord.Y))
		buf[16] = v.Color.R
		buf[17] = v.Color.G
		buf[18] = v.Color.B
		buf[19] = v.Color.A
		dst = append(dst, buf[:]...)
	}
	return dst
}
