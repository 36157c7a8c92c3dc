//go:build !nogpu

package uirender

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/uirender/internal/gpu"
)

func newNoopDevice(t *testing.T) (hal.Device, hal.Queue) {
	t.Helper()
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return openDev.Device, openDev.Queue
}

func newTestRenderer(t *testing.T, opts ...Option) *Renderer {
	t.Helper()
	device, queue := newNoopDevice(t)
	r, err := New(device, queue, append([]Option{WithTargetSize(640, 480)}, opts...)...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(r.Destroy)
	return r
}

// recordingEncoder records render pass descriptors and the calls made on
// the passes it begins.
type recordingEncoder struct {
	noop.CommandEncoder
	passes []*hal.RenderPassDescriptor
	pass   recordingPass
}

func (e *recordingEncoder) BeginRenderPass(desc *hal.RenderPassDescriptor) hal.RenderPassEncoder {
	e.passes = append(e.passes, desc)
	return &e.pass
}

type recordingPass struct {
	noop.RenderPassEncoder
	calls  []string
	groups []hal.BindGroup
	ended  int
}

func (p *recordingPass) SetScissorRect(x, y, w, h uint32) {
	p.calls = append(p.calls, fmt.Sprintf("scissor %d,%d %dx%d", x, y, w, h))
}

func (p *recordingPass) SetBindGroup(index uint32, group hal.BindGroup, offsets []uint32) {
	if index == 1 {
		p.groups = append(p.groups, group)
	}
}

func (p *recordingPass) DrawIndexed(count, _, first uint32, _ int32, _ uint32) {
	p.calls = append(p.calls, fmt.Sprintf("draw %d@%d", count, first))
}

func (p *recordingPass) End() { p.ended++ }

func target(t *testing.T, r *Renderer) []hal.RenderPassColorAttachment {
	t.Helper()
	tex, err := gpu.CreateTexture(r.device, "target", 4, 4, gputypes.TextureFormatBGRA8Unorm)
	if err != nil {
		t.Fatalf("CreateTexture() error: %v", err)
	}
	t.Cleanup(func() { tex.Destroy(r.device) })
	return []hal.RenderPassColorAttachment{{
		View:    tex.View,
		LoadOp:  gputypes.LoadOpClear,
		StoreOp: gputypes.StoreOpStore,
	}}
}

func widgetF32(r *Renderer, call int, off int) float32 {
	base := int(r.calls[call].WidgetOffset)
	return math.Float32frombits(binary.LittleEndian.Uint32(r.arena.Bytes()[base+off:]))
}

func TestNewErrors(t *testing.T) {
	device, queue := newNoopDevice(t)
	if _, err := New(nil, queue); !errors.Is(err, ErrNilDevice) {
		t.Errorf("New(nil device) = %v, want ErrNilDevice", err)
	}
	if _, err := New(device, nil); !errors.Is(err, ErrNilQueue) {
		t.Errorf("New(nil queue) = %v, want ErrNilQueue", err)
	}
}

func TestRenderEmptyFrameIsNoop(t *testing.T) {
	r := newTestRenderer(t)
	enc := &recordingEncoder{}

	if err := r.Render(enc, target(t, r), &DrawingContext{}); err != nil {
		t.Fatalf("Render(empty) = %v", err)
	}
	// Empty frames do not even need a target.
	if err := r.Render(enc, nil, &DrawingContext{}); err != nil {
		t.Fatalf("Render(empty, no target) = %v", err)
	}
	if len(enc.passes) != 0 {
		t.Error("empty frame must not open a render pass")
	}
	if s := r.Stats(); s.Frames != 0 || s.SkippedFrames != 2 {
		t.Errorf("stats = %+v, want 0 frames, 2 skipped", s)
	}
}

func TestRenderZeroSizeIsNoop(t *testing.T) {
	r := newTestRenderer(t)
	r.Resize(0, 480)

	var dc DrawingContext
	quad(&dc, 0, 0, 10, 10, White)
	dc.PushCommand(NewRect(0, 0, 10, 10), NewRect(0, 0, 10, 10), nil, NoTexture(), 1)

	enc := &recordingEncoder{}
	if err := r.Render(enc, target(t, r), &dc); err != nil {
		t.Fatalf("Render() = %v", err)
	}
	if len(enc.passes) != 0 {
		t.Error("zero-sized target must not open a render pass")
	}
}

func TestRenderErrors(t *testing.T) {
	r := newTestRenderer(t)
	enc := &recordingEncoder{}

	if err := r.Render(enc, target(t, r), nil); !errors.Is(err, ErrNilFrame) {
		t.Errorf("Render(nil) = %v, want ErrNilFrame", err)
	}

	var dc DrawingContext
	quad(&dc, 0, 0, 10, 10, White)
	dc.Commands = append(dc.Commands, DrawCommand{Triangles: TriangleRange{Start: 0, End: 9}})
	if err := r.Render(enc, target(t, r), &dc); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("Render(bad range) = %v, want ErrInvalidRange", err)
	}
	if err := r.Render(enc, nil, &dc); !errors.Is(err, ErrNoColorTarget) {
		t.Errorf("Render(no target) = %v, want ErrNoColorTarget", err)
	}
	if len(enc.passes) != 0 {
		t.Error("failed frames must not open a render pass")
	}
}

// A single red quad: one pass, one draw of six indices, red solid brush.
func TestRenderRedQuad(t *testing.T) {
	r := newTestRenderer(t)

	var dc DrawingContext
	quad(&dc, 100, 100, 200, 100, White)
	bounds := NewRect(100, 100, 200, 100)
	dc.PushCommand(NewRect(0, 0, 640, 480), bounds, Solid(Opaque(255, 0, 0)), NoTexture(), 1)

	enc := &recordingEncoder{}
	if err := r.Render(enc, target(t, r), &dc); err != nil {
		t.Fatalf("Render() = %v", err)
	}

	if len(enc.passes) != 1 || enc.pass.ended != 1 {
		t.Fatalf("passes=%d ended=%d, want 1 and 1", len(enc.passes), enc.pass.ended)
	}
	want := []string{"scissor 0,0 640x480", "draw 6@0"}
	if strings.Join(enc.pass.calls, "; ") != strings.Join(want, "; ") {
		t.Errorf("calls = %q, want %q", enc.pass.calls, want)
	}

	// solid rgba, then resolution, bounds_min, bounds_max, is_font, opacity.
	checks := []struct {
		off  int
		want float32
	}{
		{0, 1}, {4, 0}, {8, 0}, {12, 1},
		{16, 640}, {20, 480},
		{24, 100}, {28, 100}, {32, 300}, {36, 200},
		{40, 0}, {44, 1},
	}
	for _, c := range checks {
		if got := widgetF32(r, 0, c.off); got != c.want {
			t.Errorf("widget @%d = %v, want %v", c.off, got, c.want)
		}
	}

	s := r.Stats()
	if s.Frames != 1 || s.DrawCalls != 1 || s.LastFrame.Commands != 1 || s.LastFrame.VertexBytes != 4*vertexSize {
		t.Errorf("stats = %+v", s)
	}
}

func TestRenderPreservesCommandOrder(t *testing.T) {
	r := newTestRenderer(t)

	var dc DrawingContext
	for i := 0; i < 3; i++ {
		x := float32(i * 50)
		quad(&dc, x, 0, 40, 40, White)
		dc.PushCommand(NewRect(x, 0, 40, 40), NewRect(x, 0, 40, 40), nil, NoTexture(), 1)
	}

	enc := &recordingEncoder{}
	if err := r.Render(enc, target(t, r), &dc); err != nil {
		t.Fatalf("Render() = %v", err)
	}
	want := []string{
		"scissor 0,0 40x40", "draw 6@0",
		"scissor 50,0 40x40", "draw 6@6",
		"scissor 100,0 40x40", "draw 6@12",
	}
	if strings.Join(enc.pass.calls, "; ") != strings.Join(want, "; ") {
		t.Errorf("calls = %q, want %q", enc.pass.calls, want)
	}
}

func TestRenderClipsNegativeScissor(t *testing.T) {
	r := newTestRenderer(t)

	var dc DrawingContext
	quad(&dc, 0, 0, 10, 10, White)
	dc.PushCommand(NewRect(-20.5, -10, 50, 30), NewRect(0, 0, 10, 10), nil, NoTexture(), 1)
	quad(&dc, 0, 0, 10, 10, White)
	dc.PushCommand(NewRect(-100, -100, 50, 50), NewRect(0, 0, 10, 10), nil, NoTexture(), 1)

	enc := &recordingEncoder{}
	if err := r.Render(enc, target(t, r), &dc); err != nil {
		t.Fatalf("Render() = %v", err)
	}
	want := []string{"scissor 0,0 29x20", "draw 6@0"}
	if strings.Join(enc.pass.calls, "; ") != strings.Join(want, "; ") {
		t.Errorf("calls = %q, want %q", enc.pass.calls, want)
	}
	if s := r.Stats().LastFrame; s.DrawCalls != 1 || s.SkippedDraws != 1 {
		t.Errorf("last frame = %+v, want 1 draw and 1 skipped", s)
	}
}

func TestRenderResizeUpdatesProjection(t *testing.T) {
	r := newTestRenderer(t)
	r.Resize(1024, 768)
	if w, h := r.Size(); w != 1024 || h != 768 {
		t.Fatalf("Size() = %dx%d", w, h)
	}

	var dc DrawingContext
	quad(&dc, 0, 0, 10, 10, White)
	dc.PushCommand(NewRect(0, 0, 1024, 768), NewRect(0, 0, 10, 10), nil, NoTexture(), 1)
	if err := r.Render(&recordingEncoder{}, target(t, r), &dc); err != nil {
		t.Fatalf("Render() = %v", err)
	}

	proj := r.arena.Bytes()
	m0 := math.Float32frombits(binary.LittleEndian.Uint32(proj[0:]))
	m5 := math.Float32frombits(binary.LittleEndian.Uint32(proj[20:]))
	if m0 != float32(2.0/1024) || m5 != float32(-2.0/768) {
		t.Errorf("projection scale = %v, %v, want %v, %v", m0, m5, 2.0/1024, -2.0/768)
	}
	if got := widgetF32(r, 0, 16); got != 1024 {
		t.Errorf("widget resolution.x = %v, want 1024", got)
	}
}

func TestRenderUsesDeviceUniformAlignment(t *testing.T) {
	r := newTestRenderer(t, WithUniformAlignment(64))
	if got := r.arena.Alignment(); got != 64 {
		t.Fatalf("arena alignment = %d, want 64", got)
	}

	var dc DrawingContext
	for i := 0; i < 2; i++ {
		quad(&dc, 0, 0, 10, 10, White)
		dc.PushCommand(NewRect(0, 0, 10, 10), NewRect(0, 0, 10, 10), nil, NoTexture(), 1)
	}
	if err := r.Render(&recordingEncoder{}, target(t, r), &dc); err != nil {
		t.Fatalf("Render() = %v", err)
	}
	// Projection at 0, widget blocks packed at the next 64-byte boundaries.
	if a, b := r.calls[0].WidgetOffset, r.calls[1].WidgetOffset; a != 64 || b != 256 {
		t.Errorf("widget offsets = %d, %d, want 64, 256", a, b)
	}

	if got := newTestRenderer(t).arena.Alignment(); got != 256 {
		t.Errorf("default arena alignment = %d, want 256", got)
	}
}

func TestRenderGradientBrushes(t *testing.T) {
	r := newTestRenderer(t)

	stops := []GradientStop{{0, White}, {0.25, Black}, {0.5, White}, {0.75, Black}, {1, White}}
	var dc DrawingContext
	quad(&dc, 0, 0, 10, 10, White)
	lin := NewLinearGradient(Vec2{}, Vec2{X: 1})
	lin.Stops = stops
	dc.PushCommand(NewRect(0, 0, 640, 480), NewRect(0, 0, 10, 10), lin, NoTexture(), 1)
	quad(&dc, 0, 0, 10, 10, White)
	rad := NewRadialGradient(Vec2{X: 0.5, Y: 0.5}, 0.75).AddStop(0, White).AddStop(1, Black)
	dc.PushCommand(NewRect(0, 0, 640, 480), NewRect(0, 0, 10, 10), rad, NoTexture(), 1)

	if err := r.Render(&recordingEncoder{}, target(t, r), &dc); err != nil {
		t.Fatalf("Render() = %v", err)
	}

	if kind := widgetF32(r, 0, 48); kind != float32(gpu.BrushLinear) {
		t.Errorf("brush_kind = %v, want linear", kind)
	}
	if n := widgetF32(r, 0, 52); n != gpu.MaxGradientStops {
		t.Errorf("stop_count = %v, want truncated to %d", n, gpu.MaxGradientStops)
	}
	if to := widgetF32(r, 0, 64); to != 1 {
		t.Errorf("grad_to.x = %v, want 1", to)
	}
	if kind := widgetF32(r, 1, 48); kind != float32(gpu.BrushRadial) {
		t.Errorf("brush_kind = %v, want radial", kind)
	}
	if radius := widgetF32(r, 1, 64); radius != 0.75 {
		t.Errorf("radius = %v, want 0.75", radius)
	}
}

func TestRenderResolvesTextures(t *testing.T) {
	fonts := &pageSource{pages: map[FontPageKey]AtlasPage{
		{Font: 1, Height: 16, Page: 0}: {Pixels: make([]byte, 8*8), Width: 8, Height: 8, Modified: true},
	}}
	images := ImageMap{5: {Pixels: make([]byte, 2*2*4), Width: 2, Height: 2}}
	r := newTestRenderer(t, WithFontPageSource(fonts), WithTextureSource(images))

	full := NewRect(0, 0, 640, 480)
	var dc DrawingContext
	quad(&dc, 0, 0, 10, 10, White)
	dc.PushCommand(full, full, nil, FontPage(1, 16, 0), 1)
	quad(&dc, 0, 0, 10, 10, White)
	dc.PushCommand(full, full, nil, TextureRef(5), 1)
	quad(&dc, 0, 0, 10, 10, White)
	dc.PushCommand(full, full, nil, TextureRef(99), 1)
	quad(&dc, 0, 0, 10, 10, White)
	dc.PushCommand(full, full, nil, FontPage(1, 16, 0), 1)

	for frame := 0; frame < 2; frame++ {
		if err := r.Render(&recordingEncoder{}, target(t, r), &dc); err != nil {
			t.Fatalf("Render() frame %d = %v", frame, err)
		}
	}

	if r.calls[0].Binding == r.pipeline.Fallback() || r.calls[1].Binding == r.pipeline.Fallback() {
		t.Error("known textures should resolve to their own bindings")
	}
	if r.calls[2].Binding != r.pipeline.Fallback() {
		t.Error("unknown handle should resolve to the fallback")
	}
	if r.calls[0].Binding != r.calls[3].Binding {
		t.Error("the same page should share one binding within a frame")
	}
	if widgetF32(r, 0, 40) != 1 || widgetF32(r, 1, 40) != 0 {
		t.Error("is_font should be set only for glyph pages")
	}

	s := r.Stats()
	if s.Atlas.Uploads != 1 || s.Atlas.Reuploads != 0 || s.Atlas.Entries != 1 {
		t.Errorf("atlas stats = %+v, want exactly one upload", s.Atlas)
	}
	if s.Textures.Uploads != 1 || s.Textures.Fallbacks != 2 {
		t.Errorf("texture stats = %+v, want 1 upload and 2 fallbacks", s.Textures)
	}
	if s.Uploads != 2 {
		t.Errorf("staged uploads = %d, want 2", s.Uploads)
	}
	if len(fonts.uploaded) != 1 {
		t.Errorf("page acknowledgements = %d, want 1", len(fonts.uploaded))
	}

	// Invalidation re-uploads exactly once.
	if !r.InvalidateFontPage(FontPageKey{Font: 1, Height: 16}) {
		t.Fatal("InvalidateFontPage() = false for a resident page")
	}
	if err := r.Render(&recordingEncoder{}, target(t, r), &dc); err != nil {
		t.Fatalf("Render() = %v", err)
	}
	if got := r.Stats().Atlas.Reuploads; got != 1 {
		t.Errorf("atlas re-uploads = %d, want 1", got)
	}

	r.ForgetTexture(5)
	if r.InvalidateTexture(5) {
		t.Error("InvalidateTexture() = true after ForgetTexture")
	}
	r.ForgetFontPage(FontPageKey{Font: 1, Height: 16})
	if r.InvalidateFontPage(FontPageKey{Font: 1, Height: 16}) {
		t.Error("InvalidateFontPage() = true after ForgetFontPage")
	}
}

func TestRenderImmediateUploads(t *testing.T) {
	images := ImageMap{1: {Pixels: make([]byte, 4), Width: 1, Height: 1}}
	r := newTestRenderer(t, WithTextureSource(images), WithUploadMode(UploadImmediate))

	var dc DrawingContext
	quad(&dc, 0, 0, 10, 10, White)
	dc.PushCommand(NewRect(0, 0, 640, 480), NewRect(0, 0, 10, 10), nil, TextureRef(1), 1)
	if err := r.Render(&recordingEncoder{}, target(t, r), &dc); err != nil {
		t.Fatalf("Render() = %v", err)
	}
	s := r.Stats()
	if s.Textures.Uploads != 1 || s.LastFrame.Uploads != 0 {
		t.Errorf("immediate mode: cache uploads=%d staged=%d, want 1 and 0", s.Textures.Uploads, s.LastFrame.Uploads)
	}
}

func TestDestroy(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	r := newTestRenderer(t, WithLogger(logger))

	r.Destroy()
	r.Destroy()
	if strings.Count(buf.String(), "renderer destroyed") != 1 {
		t.Errorf("Destroy should log once, got:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "renderer created") {
		t.Error("per-renderer logger should receive lifecycle events")
	}

	var dc DrawingContext
	quad(&dc, 0, 0, 1, 1, White)
	if err := r.Render(&recordingEncoder{}, nil, &dc); !errors.Is(err, ErrRendererDestroyed) {
		t.Errorf("Render() after Destroy = %v, want ErrRendererDestroyed", err)
	}
	if r.InvalidateTexture(1) || r.InvalidateFontPage(FontPageKey{}) {
		t.Error("invalidation after Destroy should report false")
	}
	r.ForgetTexture(1)
	r.ForgetFontPage(FontPageKey{})
}

// halHolder exposes HAL objects the way the gogpu window provider does.
type halHolder struct {
	device hal.Device
	queue  hal.Queue
	format gputypes.TextureFormat
}

func (h *halHolder) Device() gpucontext.Device             { return nil }
func (h *halHolder) Queue() gpucontext.Queue               { return nil }
func (h *halHolder) Adapter() gpucontext.Adapter           { return nil }
func (h *halHolder) SurfaceFormat() gputypes.TextureFormat { return h.format }
func (h *halHolder) AdapterInfo() gpucontext.AdapterInfo   { return gpucontext.AdapterInfo{} }
func (h *halHolder) HalDevice() any                        { return h.device }
func (h *halHolder) HalQueue() any                         { return h.queue }

// directProvider returns HAL objects from Device and Queue.
type directProvider struct{ halHolder }

func (d *directProvider) Device() gpucontext.Device { return d.device }
func (d *directProvider) Queue() gpucontext.Queue   { return d.queue }

func TestNewFromProvider(t *testing.T) {
	device, queue := newNoopDevice(t)

	if _, err := NewFromProvider(nil); !errors.Is(err, ErrNilProvider) {
		t.Errorf("NewFromProvider(nil) = %v, want ErrNilProvider", err)
	}
	if _, err := NewFromProvider(&halHolder{}); !errors.Is(err, ErrNoHalProvider) {
		t.Errorf("NewFromProvider(empty) = %v, want ErrNoHalProvider", err)
	}

	r, err := NewFromProvider(&halHolder{device: device, queue: queue, format: gputypes.TextureFormatRGBA8Unorm})
	if err != nil {
		t.Fatalf("NewFromProvider(hal) = %v", err)
	}
	defer r.Destroy()
	if r.config.SurfaceFormat != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("surface format = %v, want provider's RGBA8Unorm", r.config.SurfaceFormat)
	}

	r2, err := NewFromProvider(&directProvider{halHolder{device: device, queue: queue}},
		WithSurfaceFormat(gputypes.TextureFormatBGRA8Unorm))
	if err != nil {
		t.Fatalf("NewFromProvider(direct) = %v", err)
	}
	defer r2.Destroy()
	if r2.config.SurfaceFormat != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("surface format = %v, want BGRA8Unorm", r2.config.SurfaceFormat)
	}
}
