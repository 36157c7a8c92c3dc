package uirender

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gogpu/gputypes"
)

// UploadMode selects when texture cache misses reach the device.
type UploadMode uint8

const (
	// UploadDeferred collects texture writes while a frame is scanned and
	// performs them in the frame's single copy pass, before the render pass.
	UploadDeferred UploadMode = iota

	// UploadImmediate writes each missing texture with its own blocking
	// submission as soon as it is resolved.
	UploadImmediate
)

func (m UploadMode) String() string {
	switch m {
	case UploadDeferred:
		return "deferred"
	case UploadImmediate:
		return "immediate"
	default:
		return fmt.Sprintf("UploadMode(%d)", m)
	}
}

// ShaderFormat selects how the UI shader reaches the device.
type ShaderFormat uint8

const (
	// ShaderWGSL hands WGSL source to the backend.
	ShaderWGSL ShaderFormat = iota

	// ShaderSPIRV compiles the WGSL to SPIR-V with naga first.
	ShaderSPIRV
)

func (f ShaderFormat) String() string {
	switch f {
	case ShaderWGSL:
		return "wgsl"
	case ShaderSPIRV:
		return "spirv"
	default:
		return fmt.Sprintf("ShaderFormat(%d)", f)
	}
}

// DefaultUploadTimeout bounds each blocking copy submission.
const DefaultUploadTimeout = 2 * time.Second

// Config holds Renderer configuration. Zero fields take their defaults.
type Config struct {
	// SurfaceFormat is the color target format. Default BGRA8Unorm.
	SurfaceFormat gputypes.TextureFormat

	// Width and Height are the initial target size in pixels. A zero size
	// makes Render skip frames until Resize is called.
	Width, Height uint32

	// FontPages supplies glyph atlas pages. Nil draws text commands with
	// the white fallback.
	FontPages FontPageSource

	// Textures supplies application textures. Nil draws them with the
	// white fallback.
	Textures TextureSource

	UploadMode    UploadMode
	UploadTimeout time.Duration
	Shader        ShaderFormat

	// UniformAlignment is the device's MinUniformBufferOffsetAlignment,
	// taken from the adapter capabilities. Zero uses the WebGPU default
	// of 256.
	UniformAlignment uint32

	// Label prefixes GPU object labels. Default "ui".
	Label string

	// Logger, when set, replaces the package logger for this renderer.
	Logger *slog.Logger
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		SurfaceFormat: gputypes.TextureFormatBGRA8Unorm,
		UploadMode:    UploadDeferred,
		UploadTimeout: DefaultUploadTimeout,
		Shader:        ShaderWGSL,
		Label:         "ui",
	}
}

// Option configures a Renderer during creation.
//
// Example:
//
//	r, err := uirender.New(device, queue,
//	    uirender.WithTargetSize(1280, 720),
//	    uirender.WithFontPageSource(atlas),
//	)
type Option func(*Config)

// WithSurfaceFormat sets the color target format the pipeline renders to.
func WithSurfaceFormat(format gputypes.TextureFormat) Option {
	return func(c *Config) { c.SurfaceFormat = format }
}

// WithTargetSize sets the initial target size.
func WithTargetSize(width, height uint32) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithFontPageSource sets the glyph atlas page source.
func WithFontPageSource(src FontPageSource) Option {
	return func(c *Config) { c.FontPages = src }
}

// WithTextureSource sets the application texture source.
func WithTextureSource(src TextureSource) Option {
	return func(c *Config) { c.Textures = src }
}

// WithUploadMode selects deferred or immediate texture uploads.
func WithUploadMode(mode UploadMode) Option {
	return func(c *Config) { c.UploadMode = mode }
}

// WithUploadTimeout bounds each blocking copy submission.
func WithUploadTimeout(d time.Duration) Option {
	return func(c *Config) { c.UploadTimeout = d }
}

// WithShaderFormat selects WGSL or naga-compiled SPIR-V shader input.
func WithShaderFormat(f ShaderFormat) Option {
	return func(c *Config) { c.Shader = f }
}

// WithUniformAlignment sets the dynamic uniform offset alignment, usually
// hal.ExposedAdapter.Capabilities.Limits.MinUniformBufferOffsetAlignment.
func WithUniformAlignment(alignment uint32) Option {
	return func(c *Config) { c.UniformAlignment = alignment }
}

// WithLabel sets the GPU object label prefix.
func WithLabel(label string) Option {
	return func(c *Config) { c.Label = label }
}

// WithLogger sets a per-renderer logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// resolveConfig applies opts over the defaults and fills zero values.
func resolveConfig(opts []Option) Config {
	c := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	def := DefaultConfig()
	if c.SurfaceFormat == gputypes.TextureFormatUndefined {
		c.SurfaceFormat = def.SurfaceFormat
	}
	if c.UploadTimeout <= 0 {
		c.UploadTimeout = def.UploadTimeout
	}
	if c.Label == "" {
		c.Label = def.Label
	}
	return c
}
