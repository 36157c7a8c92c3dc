package uirender

import "math"

// Vec2 is a 2D vector in target pixels, or in bounds-relative units for
// gradient points.
type Vec2 struct {
	X, Y float32
}

// Rect is an axis-aligned rectangle given by its top-left corner and size.
type Rect struct {
	X, Y, W, H float32
}

// NewRect creates a rectangle.
func NewRect(x, y, w, h float32) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Position returns the top-left corner.
func (r Rect) Position() Vec2 { return Vec2{X: r.X, Y: r.Y} }

// RightBottom returns the bottom-right corner (position + size).
func (r Rect) RightBottom() Vec2 { return Vec2{X: r.X + r.W, Y: r.Y + r.H} }

// Scissor converts r into an integer scissor: the top-left corner is
// floored, the size is ceiled and clamped to be non-negative.
// NaN sizes collapse to zero.
func (r Rect) Scissor() (x, y int32, w, h uint32) {
	return floorInt32(r.X), floorInt32(r.Y), ceilNonNegative(r.W), ceilNonNegative(r.H)
}

func floorInt32(v float32) int32 {
	f := math.Floor(float64(v))
	switch {
	case math.IsNaN(f):
		return 0
	case f < math.MinInt32:
		return math.MinInt32
	case f > math.MaxInt32:
		return math.MaxInt32
	}
	return int32(f)
}

func ceilNonNegative(v float32) uint32 {
	c := math.Ceil(float64(v))
	if !(c > 0) {
		return 0
	}
	if c > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(c)
}
