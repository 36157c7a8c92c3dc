package uirender

// Brush describes how a draw command is filled.
// This is a sealed interface - only types in this package implement it.
//
// Supported brush types:
//   - SolidBrush: a single color
//   - LinearGradientBrush: color stops along a line
//   - RadialGradientBrush: color stops along a radius
//
// Gradient geometry is given in bounds-relative units: (0, 0) is the
// top-left corner of the command's Bounds and (1, 1) its bottom-right.
// At most MaxGradientStops stops reach the GPU; extra stops are dropped.
//
// Example:
//
//	cmd.Brush = uirender.Solid(uirender.Opaque(30, 30, 30))
//
//	cmd.Brush = uirender.NewLinearGradient(uirender.Vec2{}, uirender.Vec2{X: 1}).
//	    AddStop(0, uirender.Opaque(255, 0, 0)).
//	    AddStop(1, uirender.Opaque(0, 0, 255))
type Brush interface {
	// brushMarker is an unexported method that seals this interface.
	brushMarker()
}

// SolidBrush fills with a single color.
type SolidBrush struct {
	Color Color
}

func (SolidBrush) brushMarker() {}

// Solid creates a SolidBrush.
func Solid(c Color) SolidBrush {
	return SolidBrush{Color: c}
}

// GradientStop is one color stop of a gradient.
type GradientStop struct {
	Offset float32 // Position along the gradient, 0.0 to 1.0
	Color  Color   // Color at this position
}

// LinearGradientBrush interpolates stops along the line From -> To.
type LinearGradientBrush struct {
	From  Vec2
	To    Vec2
	Stops []GradientStop
}

func (*LinearGradientBrush) brushMarker() {}

// NewLinearGradient creates a linear gradient between two bounds-relative points.
func NewLinearGradient(from, to Vec2) *LinearGradientBrush {
	return &LinearGradientBrush{From: from, To: to}
}

// AddStop appends a color stop and returns the gradient for chaining.
func (g *LinearGradientBrush) AddStop(offset float32, c Color) *LinearGradientBrush {
	g.Stops = append(g.Stops, GradientStop{Offset: offset, Color: c})
	return g
}

// RadialGradientBrush interpolates stops from Center out to Radius.
type RadialGradientBrush struct {
	Center Vec2
	Radius float32
	Stops  []GradientStop
}

func (*RadialGradientBrush) brushMarker() {}

// NewRadialGradient creates a radial gradient in bounds-relative units.
func NewRadialGradient(center Vec2, radius float32) *RadialGradientBrush {
	return &RadialGradientBrush{Center: center, Radius: radius}
}

// AddStop appends a color stop and returns the gradient for chaining.
func (g *RadialGradientBrush) AddStop(offset float32, c Color) *RadialGradientBrush {
	g.Stops = append(g.Stops, GradientStop{Offset: offset, Color: c})
	return g
}
