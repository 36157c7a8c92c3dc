package main

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/uirender"
	"github.com/gogpu/uirender/fontatlas"
	"github.com/gogpu/uirender/input"
)

const (
	iconHandle  uirender.TextureHandle = 1
	labelHeight uint32                 = 18

	// frameTime is the simulated time step between demo frames.
	frameTime = 16 * time.Millisecond

	// pulsePeriod is one full cycle of the icon's opacity animation.
	pulsePeriod = time.Second
)

// demoUI is a fixed widget tree: a panel holding a title, a button and an
// icon. Clicking the button counts clicks and switches its brush.
type demoUI struct {
	fonts  *fontatlas.Atlas
	font   uirender.FontID
	colors palette

	cursor  uirender.Vec2
	hover   bool
	pressed bool
	clicks  int
	elapsed time.Duration
}

func newDemoUI(fonts *fontatlas.Atlas, font uirender.FontID, colors palette) *demoUI {
	return &demoUI{fonts: fonts, font: font, colors: colors}
}

func (ui *demoUI) panel(width, height int) uirender.Rect {
	return uirender.NewRect(20, 20, float32(width)-40, float32(height)-40)
}

func (ui *demoUI) button() uirender.Rect {
	return uirender.NewRect(60, 120, 200, 48)
}

// script feeds synthetic input for frame i: the cursor enters the button on
// frame 1 and clicks it on frame 2.
func (ui *demoUI) script(t *input.Translator, i int) {
	b := ui.button()
	x, y := float64(b.X+b.W/2), float64(b.Y+b.H/2)
	switch i {
	case 1:
		t.MouseMove(x, y)
	case 2:
		t.MouseButton(gpucontext.MouseButtonLeft, input.Pressed, x, y)
		t.MouseButton(gpucontext.MouseButtonLeft, input.Released, x, y)
	}
}

func (ui *demoUI) Update(events []input.OsEvent) {
	for _, e := range events {
		switch e.Kind {
		case input.CursorMoved:
			ui.cursor = uirender.Vec2{X: float32(e.X), Y: float32(e.Y)}
			ui.hover = contains(ui.button(), ui.cursor)
		case input.MouseInput:
			if e.Button != input.MouseLeft {
				continue
			}
			if e.State == input.Pressed {
				ui.pressed = ui.hover
				continue
			}
			if ui.pressed && ui.hover {
				ui.clicks++
			}
			ui.pressed = false
		}
	}
}

// Tick advances the icon pulse.
func (ui *demoUI) Tick(dt time.Duration) {
	ui.elapsed += dt
}

// iconOpacity pulses between 0.6 and 1 over pulsePeriod.
func (ui *demoUI) iconOpacity() float32 {
	phase := float64(ui.elapsed%pulsePeriod) / float64(pulsePeriod)
	return float32(0.8 + 0.2*math.Cos(2*math.Pi*phase))
}

func (ui *demoUI) Draw(frame *uirender.DrawingContext, width, height int) {
	screen := uirender.NewRect(0, 0, float32(width), float32(height))
	panel := ui.panel(width, height)

	appendRect(frame, panel, uirender.White)
	frame.PushCommand(screen, panel, uirender.Solid(ui.colors.panel), uirender.NoTexture(), 1)

	ui.text(frame, uirender.Vec2{X: 60, Y: 60}, panel, "uirender demo")

	button := ui.button()
	appendRect(frame, button, uirender.White)
	frame.PushCommand(panel, button, ui.buttonBrush(), uirender.NoTexture(), 1)
	ui.text(frame, uirender.Vec2{X: button.X + 16, Y: button.Y + 14}, button, fmt.Sprintf("Clicked %d", ui.clicks))

	icon := uirender.NewRect(button.X+button.W+24, button.Y+8, 32, 32)
	appendRect(frame, icon, uirender.White)
	frame.PushCommand(panel, icon, nil, uirender.TextureRef(iconHandle), ui.iconOpacity())
}

func (ui *demoUI) buttonBrush() uirender.Brush {
	switch {
	case ui.pressed:
		return uirender.NewRadialGradient(uirender.Vec2{X: 0.5, Y: 0.5}, 0.7).
			AddStop(0, ui.colors.pressed[0]).
			AddStop(1, ui.colors.pressed[1])
	case ui.hover:
		return verticalGradient(ui.colors.hover)
	default:
		return verticalGradient(ui.colors.button)
	}
}

func verticalGradient(c [2]uirender.Color) *uirender.LinearGradientBrush {
	return uirender.NewLinearGradient(uirender.Vec2{}, uirender.Vec2{Y: 1}).AddStop(0, c[0]).AddStop(1, c[1])
}

func (ui *demoUI) text(frame *uirender.DrawingContext, at uirender.Vec2, clip uirender.Rect, s string) {
	if _, err := ui.fonts.AppendText(frame, ui.font, labelHeight, at, uirender.White, clip, s); err != nil {
		slog.Warn("uidemo: text layout failed", "text", s, "err", err)
	}
}

// appendRect appends r as two triangles with a full 0..1 texture mapping.
func appendRect(frame *uirender.DrawingContext, r uirender.Rect, c uirender.Color) {
	base := uint32(len(frame.Vertices)) //nolint:gosec // small demo frame
	x0, y0 := r.Position().X, r.Position().Y
	x1, y1 := r.RightBottom().X, r.RightBottom().Y
	frame.Vertices = append(frame.Vertices,
		uirender.Vertex{Pos: uirender.Vec2{X: x0, Y: y0}, TexCoord: uirender.Vec2{X: 0, Y: 0}, Color: c},
		uirender.Vertex{Pos: uirender.Vec2{X: x1, Y: y0}, TexCoord: uirender.Vec2{X: 1, Y: 0}, Color: c},
		uirender.Vertex{Pos: uirender.Vec2{X: x1, Y: y1}, TexCoord: uirender.Vec2{X: 1, Y: 1}, Color: c},
		uirender.Vertex{Pos: uirender.Vec2{X: x0, Y: y1}, TexCoord: uirender.Vec2{X: 0, Y: 1}, Color: c},
	)
	frame.Triangles = append(frame.Triangles,
		uirender.Triangle{base, base + 1, base + 2},
		uirender.Triangle{base, base + 2, base + 3},
	)
}

func contains(r uirender.Rect, p uirender.Vec2) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X < r.X+r.W && p.Y < r.Y+r.H
}
