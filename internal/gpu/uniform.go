//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"
)

// Uniform block sizes. Layouts match the Projection and Widget structs in
// shaders/ui.wgsl.
const (
	// ProjectionUniformSize is one mat4x4<f32>.
	ProjectionUniformSize = 64

	// WidgetUniformSize is the Widget block:
	//
	//	solid        vec4  @0
	//	resolution   vec2  @16
	//	bounds_min   vec2  @24
	//	bounds_max   vec2  @32
	//	is_font      f32   @40
	//	opacity      f32   @44
	//	brush_kind   f32   @48
	//	stop_count   f32   @52
	//	grad_from    vec2  @56
	//	grad_to      vec2  @64
	//	_pad         vec2  @72
	//	stop_offsets vec4  @80
	//	stop_colors  4 x vec4 @96
	WidgetUniformSize = 160

	// MaxGradientStops is the number of stops the Widget block can carry.
	MaxGradientStops = 4
)

// BrushKind selects how the fragment shader colors a draw.
type BrushKind uint8

// Brush kinds understood by the UI shader.
const (
	BrushSolid BrushKind = iota
	BrushLinear
	BrushRadial
)

// WidgetUniform is the per-draw fragment uniform block.
type WidgetUniform struct {
	Solid      [4]float32
	Resolution [2]float32
	BoundsMin  [2]float32
	BoundsMax  [2]float32
	IsFont     bool
	Opacity    float32

	Kind        BrushKind
	StopCount   int
	GradFrom    [2]float32
	GradTo      [2]float32
	StopOffsets [MaxGradientStops]float32
	StopColors  [MaxGradientStops][4]float32
}

// Pack writes the block in std140-compatible layout into dst, which must
// hold at least WidgetUniformSize bytes.
func (u *WidgetUniform) Pack(dst []byte) {
	putF32s(dst[0:], u.Solid[:]...)
	putF32s(dst[16:], u.Resolution[:]...)
	putF32s(dst[24:], u.BoundsMin[:]...)
	putF32s(dst[32:], u.BoundsMax[:]...)
	isFont := float32(0)
	if u.IsFont {
		isFont = 1
	}
	putF32s(dst[40:], isFont, u.Opacity, float32(u.Kind), float32(u.StopCount))
	putF32s(dst[56:], u.GradFrom[0], u.GradFrom[1], u.GradTo[0], u.GradTo[1], 0, 0)
	putF32s(dst[80:], u.StopOffsets[:]...)
	for i, c := range u.StopColors {
		putF32s(dst[96+i*16:], c[:]...)
	}
}

// OrthoProjection returns the column-major matrix mapping pixel space with a
// top-left origin onto clip space.
func OrthoProjection(width, height float32) [16]float32 {
	return [16]float32{
		2 / width, 0, 0, 0,
		0, 2 / -height, 0, 0,
		0, 0, -1, 0,
		-1, 1, 0, 1,
	}
}

// UniformArena packs every uniform block of a frame into one byte slice at
// offsets aligned for dynamic binding. The arena is uploaded once by the
// Stager and each draw selects its block with a dynamic offset.
type UniformArena struct {
	align uint64
	data  []byte
}

// NewUniformArena creates an arena using the device's uniform offset
// alignment. Zero, or a value that is not a power of two, selects the
// WebGPU default of 256.
func NewUniformArena(alignment uint32) *UniformArena {
	if alignment == 0 || alignment&(alignment-1) != 0 {
		alignment = gputypes.DefaultLimits().MinUniformBufferOffsetAlignment
	}
	return &UniformArena{align: uint64(alignment)}
}

// Reset empties the arena while keeping its capacity.
func (a *UniformArena) Reset() { a.data = a.data[:0] }

// Bytes returns the packed arena contents.
func (a *UniformArena) Bytes() []byte { return a.data }

// Alignment returns the dynamic offset alignment.
func (a *UniformArena) Alignment() uint32 { return uint32(a.align) } //nolint:gosec // alignment is a small power of two

// alloc reserves size bytes at the next aligned offset.
func (a *UniformArena) alloc(size int) (uint32, []byte) {
	off := alignUp(uint64(len(a.data)), a.align)
	end := off + uint64(size)
	if uint64(cap(a.data)) < end {
		grown := make([]byte, len(a.data), max(end, uint64(cap(a.data))*2))
		copy(grown, a.data)
		a.data = grown
	}
	start := len(a.data)
	a.data = a.data[:end]
	clear(a.data[start:])
	return uint32(off), a.data[off:end] //nolint:gosec // arena size bounded by uniform buffer limits
}

// PushProjection appends a projection block and returns its offset.
func (a *UniformArena) PushProjection(m [16]float32) uint32 {
	off, block := a.alloc(ProjectionUniformSize)
	putF32s(block, m[:]...)
	return off
}

// PushWidget appends a widget block and returns its offset.
func (a *UniformArena) PushWidget(u *WidgetUniform) uint32 {
	off, block := a.alloc(WidgetUniformSize)
	u.Pack(block)
	return off
}

func putF32s(dst []byte, values ...float32) {
	for i, v := range values {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}
