package fontatlas

import (
	"github.com/gogpu/uirender"
)

// AppendText lays out s on a single line and appends its glyph quads to
// frame. origin is the top-left corner of the line box. Consecutive glyphs
// on the same atlas page share one draw command clipped to clip; the
// returned value is the horizontal advance of the line.
//
// Triangles already in frame that no command covers yet are absorbed into
// the first command appended here.
func (a *Atlas) AppendText(frame *uirender.DrawingContext, id uirender.FontID, height uint32,
	origin uirender.Vec2, color uirender.Color, clip uirender.Rect, s string,
) (float32, error) {
	m, err := a.Metrics(id, height)
	if err != nil {
		return 0, err
	}
	baseline := origin.Y + m.Ascent
	pen := origin.X
	bounds := uirender.NewRect(origin.X, origin.Y, 0, m.LineHeight)

	var (
		runPage uint32
		inRun   bool
	)
	flush := func() {
		if !inRun {
			return
		}
		bounds.W = pen - origin.X
		frame.PushCommand(clip, bounds, nil, uirender.FontPage(id, height, runPage), 1)
		inRun = false
	}

	for _, r := range s {
		g, err := a.Glyph(id, height, r)
		if err != nil {
			flush()
			return pen - origin.X, err
		}
		if g.Width > 0 && g.Height > 0 {
			if inRun && g.Page != runPage {
				flush()
			}
			runPage, inRun = g.Page, true
			appendQuad(frame, g, a.pageSize, pen, baseline, color)
		}
		pen += g.Advance
	}
	flush()
	return pen - origin.X, nil
}

func appendQuad(frame *uirender.DrawingContext, g Glyph, pageSize int, pen, baseline float32, color uirender.Color) {
	x0 := pen + g.BearingX
	y0 := baseline + g.BearingY
	x1 := x0 + float32(g.Width)
	y1 := y0 + float32(g.Height)
	u0, v0, u1, v1 := g.TexRect(pageSize)

	base := uint32(len(frame.Vertices)) //nolint:gosec // vertex count fits uint32
	frame.Vertices = append(frame.Vertices,
		uirender.Vertex{Pos: uirender.Vec2{X: x0, Y: y0}, TexCoord: uirender.Vec2{X: u0, Y: v0}, Color: color},
		uirender.Vertex{Pos: uirender.Vec2{X: x1, Y: y0}, TexCoord: uirender.Vec2{X: u1, Y: v0}, Color: color},
		uirender.Vertex{Pos: uirender.Vec2{X: x1, Y: y1}, TexCoord: uirender.Vec2{X: u1, Y: v1}, Color: color},
		uirender.Vertex{Pos: uirender.Vec2{X: x0, Y: y1}, TexCoord: uirender.Vec2{X: u0, Y: v1}, Color: color},
	)
	frame.Triangles = append(frame.Triangles,
		uirender.Triangle{base, base + 1, base + 2},
		uirender.Triangle{base, base + 2, base + 3},
	)
}
