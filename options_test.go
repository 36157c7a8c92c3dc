package uirender

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/gogpu/gputypes"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if c.SurfaceFormat != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("SurfaceFormat = %v, want BGRA8Unorm", c.SurfaceFormat)
	}
	if c.UploadMode != UploadDeferred {
		t.Errorf("UploadMode = %v, want deferred", c.UploadMode)
	}
	if c.UploadTimeout != DefaultUploadTimeout {
		t.Errorf("UploadTimeout = %v, want %v", c.UploadTimeout, DefaultUploadTimeout)
	}
	if c.Shader != ShaderWGSL || c.Label != "ui" {
		t.Errorf("Shader = %v, Label = %q", c.Shader, c.Label)
	}
	if c.Width != 0 || c.Height != 0 || c.FontPages != nil || c.Textures != nil {
		t.Error("target size and sources should default to empty")
	}
}

func TestResolveConfig(t *testing.T) {
	fonts := &pageSource{}
	images := ImageMap{}
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	c := resolveConfig([]Option{
		WithSurfaceFormat(gputypes.TextureFormatRGBA8Unorm),
		WithTargetSize(640, 480),
		WithFontPageSource(fonts),
		WithTextureSource(images),
		WithUploadMode(UploadImmediate),
		WithUploadTimeout(time.Second),
		WithShaderFormat(ShaderSPIRV),
		WithUniformAlignment(64),
		WithLabel("hud"),
		WithLogger(logger),
		nil,
	})

	if c.SurfaceFormat != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("SurfaceFormat = %v", c.SurfaceFormat)
	}
	if c.Width != 640 || c.Height != 480 {
		t.Errorf("size = %dx%d, want 640x480", c.Width, c.Height)
	}
	if c.FontPages != fonts || c.Textures == nil {
		t.Error("sources not applied")
	}
	if c.UploadMode != UploadImmediate || c.UploadTimeout != time.Second || c.Shader != ShaderSPIRV {
		t.Errorf("mode/timeout/shader = %v/%v/%v", c.UploadMode, c.UploadTimeout, c.Shader)
	}
	if c.Label != "hud" || c.Logger != logger {
		t.Errorf("label/logger not applied")
	}
	if c.UniformAlignment != 64 {
		t.Errorf("UniformAlignment = %d, want 64", c.UniformAlignment)
	}
}

func TestResolveConfigRestoresZeroDefaults(t *testing.T) {
	c := resolveConfig([]Option{
		WithSurfaceFormat(gputypes.TextureFormatUndefined),
		WithUploadTimeout(-time.Second),
		WithLabel(""),
	})
	def := DefaultConfig()
	if c.SurfaceFormat != def.SurfaceFormat || c.UploadTimeout != def.UploadTimeout || c.Label != def.Label {
		t.Errorf("zero values should fall back to defaults, got %+v", c)
	}
}

func TestEnumStrings(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{UploadDeferred.String(), "deferred"},
		{UploadImmediate.String(), "immediate"},
		{UploadMode(7).String(), "UploadMode(7)"},
		{ShaderWGSL.String(), "wgsl"},
		{ShaderSPIRV.String(), "spirv"},
		{ShaderFormat(3).String(), "ShaderFormat(3)"},
		{TextureNone.String(), "none"},
		{TextureFontPage.String(), "font"},
		{TextureHandleRef.String(), "texture"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}
