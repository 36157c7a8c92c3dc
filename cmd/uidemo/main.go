// Command uidemo renders a small widget tree headlessly and reports what the
// renderer did with it.
//
// The demo runs on the noop backend, so it needs no GPU or window. Each
// frame is built by a demo UI from synthetic input and executed through
// integration/uihost; per-frame statistics are logged. Target size, frame
// count, upload mode and colors can be read from a TOML file with -config.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/uirender"
	"github.com/gogpu/uirender/fontatlas"
	"github.com/gogpu/uirender/integration/uihost"
)

func main() {
	var (
		width      = flag.Int("width", 800, "target width")
		height     = flag.Int("height", 600, "target height")
		frames     = flag.Int("frames", 3, "frames to render")
		mode       = flag.String("upload", "deferred", "texture upload mode: deferred or immediate")
		configPath = flag.String("config", "", "TOML configuration file")
		atlas      = flag.String("atlas", "", "write glyph atlas page 0 to this PNG file")
		verbose    = flag.Bool("v", false, "log every frame at debug level")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	uirender.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := defaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = loadConfig(*configPath); err != nil {
			log.Fatal(err)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		case "frames":
			cfg.Frames = *frames
		case "upload":
			cfg.Upload = *mode
		}
	})

	if err := run(cfg, *atlas); err != nil {
		log.Fatal(err)
	}
}

func run(cfg demoConfig, atlasPath string) error {
	mode, err := cfg.uploadMode()
	if err != nil {
		return err
	}
	width, height := cfg.Width, cfg.Height

	provider, cleanup, err := openNoop()
	if err != nil {
		return err
	}
	defer cleanup()

	fonts := fontatlas.New()
	fontID, err := fonts.AddDefaultFont()
	if err != nil {
		return fmt.Errorf("load font: %w", err)
	}
	images := uirender.ImageMap{iconHandle: checkerImage(32, 8)}

	ui := newDemoUI(fonts, fontID, cfg.Theme.palette())
	host, err := uihost.New(provider, ui, width, height,
		uirender.WithFontPageSource(fonts),
		uirender.WithTextureSource(images),
		uirender.WithUploadMode(mode),
		uirender.WithUniformAlignment(provider.alignment),
		uirender.WithLabel("uidemo"),
	)
	if err != nil {
		return err
	}
	defer host.Close()

	view, err := targetView(provider, width, height)
	if err != nil {
		return err
	}

	for i := 0; i < cfg.Frames; i++ {
		ui.script(host.Translator(), i)
		host.Update(frameTime)

		encoder, err := provider.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "uidemo_frame"})
		if err != nil {
			return fmt.Errorf("create encoder: %w", err)
		}
		if err := encoder.BeginEncoding("uidemo_frame"); err != nil {
			return fmt.Errorf("begin encoding: %w", err)
		}
		if err := host.RenderTo(encoder, view); err != nil {
			encoder.DiscardEncoding()
			return fmt.Errorf("frame %d: %w", i, err)
		}
		cmds, err := encoder.EndEncoding()
		if err != nil {
			return fmt.Errorf("end encoding: %w", err)
		}
		if _, err := provider.queue.Submit([]hal.CommandBuffer{cmds}); err != nil {
			return fmt.Errorf("submit: %w", err)
		}

		last := host.Renderer().Stats().LastFrame
		slog.Info("frame",
			"index", i,
			"commands", last.Commands,
			"draws", last.DrawCalls,
			"skipped", last.SkippedDraws,
			"uploads", last.Uploads,
			"vertex_bytes", last.VertexBytes,
			"clicks", ui.clicks)
	}

	stats := host.Renderer().Stats()
	slog.Info("done",
		"frames", stats.Frames,
		"draw_calls", stats.DrawCalls,
		"uploads", stats.Uploads,
		"atlas_entries", stats.Atlas.Entries,
		"atlas_hits", stats.Atlas.Hits,
		"texture_entries", stats.Textures.Entries)

	if atlasPath != "" {
		return writeAtlasPage(fonts, fontID, atlasPath)
	}
	return nil
}

// noopProvider exposes a noop device through gpucontext.DeviceProvider.
type noopProvider struct {
	device    hal.Device
	queue     hal.Queue
	alignment uint32
}

func (p *noopProvider) Device() gpucontext.Device             { return p.device }
func (p *noopProvider) Queue() gpucontext.Queue               { return p.queue }
func (p *noopProvider) Adapter() gpucontext.Adapter           { return nil }
func (p *noopProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }
func (p *noopProvider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "noop", Type: gpucontext.AdapterTypeSoftware}
}

func openNoop() (*noopProvider, func(), error) {
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, nil, fmt.Errorf("no adapters")
	}
	dev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, nil, fmt.Errorf("open adapter: %w", err)
	}
	cleanup := func() {
		dev.Device.Destroy()
		instance.Destroy()
	}
	return &noopProvider{
		device:    dev.Device,
		queue:     dev.Queue,
		alignment: adapters[0].Capabilities.Limits.MinUniformBufferOffsetAlignment,
	}, cleanup, nil
}

func targetView(p *noopProvider, width, height int) (hal.TextureView, error) {
	tex, err := p.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "uidemo_target",
		Size:          hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1}, //nolint:gosec // flag values
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        p.SurfaceFormat(),
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, fmt.Errorf("create target: %w", err)
	}
	view, err := p.device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: "uidemo_target_view"})
	if err != nil {
		return nil, fmt.Errorf("create target view: %w", err)
	}
	return view, nil
}

// checkerImage returns a size x size RGBA checkerboard with cell-pixel squares.
func checkerImage(size, cell int) uirender.Image {
	px := make([]byte, size*size*4)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			v := byte(60)
			if (x/cell+y/cell)%2 == 0 {
				v = 220
			}
			i := (y*size + x) * 4
			px[i], px[i+1], px[i+2], px[i+3] = v, v, v, 255
		}
	}
	return uirender.Image{Pixels: px, Width: uint32(size), Height: uint32(size), Modified: true} //nolint:gosec // small constant
}

func writeAtlasPage(fonts *fontatlas.Atlas, id uirender.FontID, path string) error {
	page, ok := fonts.FontPage(id, labelHeight, 0)
	if !ok {
		return fmt.Errorf("atlas page for height %d not available", labelHeight)
	}
	img := &image.Gray{
		Pix:    page.Pixels,
		Stride: int(page.Width),
		Rect:   image.Rect(0, 0, int(page.Width), int(page.Height)),
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	slog.Info("atlas page written", "path", path, "size", page.Width)
	return f.Close()
}
