// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	_ "embed"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// Embedded UI shader source.
//
//go:embed shaders/ui.wgsl
var uiShaderSource string

// UIShaderSource returns the WGSL source of the UI pipeline.
func UIShaderSource() string { return uiShaderSource }

// VertexStride is the byte size of one UI vertex:
//
//	position  (vec2<f32>)  @0  (location 0)
//	tex_coord (vec2<f32>)  @8  (location 1)
//	color     (unorm8x4)   @16 (location 2)
const VertexStride = 20

// ShaderFormat selects how the UI shader reaches the device.
type ShaderFormat uint8

const (
	// ShaderWGSL passes the WGSL source to the backend.
	ShaderWGSL ShaderFormat = iota

	// ShaderSPIRV compiles the WGSL source to SPIR-V with naga first.
	ShaderSPIRV
)

// String returns the format name.
func (f ShaderFormat) String() string {
	if f == ShaderSPIRV {
		return "spirv"
	}
	return "wgsl"
}

// PipelineConfig configures a UIPipeline.
type PipelineConfig struct {
	// TargetFormat is the color attachment format.
	TargetFormat gputypes.TextureFormat

	// Shader selects WGSL or naga-compiled SPIR-V.
	Shader ShaderFormat

	// UploadTimeout bounds the fallback texture upload.
	UploadTimeout time.Duration

	// Label prefixes every GPU object label.
	Label string
}

// DefaultPipelineConfig returns the default pipeline configuration.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		TargetFormat:  gputypes.TextureFormatBGRA8Unorm,
		Shader:        ShaderWGSL,
		UploadTimeout: DefaultUploadTimeout,
		Label:         "ui",
	}
}

// UIPipeline owns the GPU objects shared by every frame: shader, layouts,
// render pipeline, the linear sampler and the 1x1 white fallback texture.
//
// Bind group layout 0 holds the projection (vertex) and widget (fragment)
// uniforms, both with dynamic offsets into the frame's uniform buffer.
// Bind group layout 1 holds the texture and sampler of a draw command.
type UIPipeline struct {
	device hal.Device
	queue  hal.Queue
	config PipelineConfig

	shader        hal.ShaderModule
	uniformLayout hal.BindGroupLayout
	textureLayout hal.BindGroupLayout
	pipeLayout    hal.PipelineLayout
	pipeline      hal.RenderPipeline
	sampler       hal.Sampler

	fallback *Binding

	uniformGroup      hal.BindGroup
	uniformGeneration uint64
}

// NewUIPipeline creates every shared GPU object. Any failure is returned
// after the objects created so far have been released.
func NewUIPipeline(device hal.Device, queue hal.Queue, config PipelineConfig) (*UIPipeline, error) {
	def := DefaultPipelineConfig()
	if config.TargetFormat == gputypes.TextureFormatUndefined {
		config.TargetFormat = def.TargetFormat
	}
	if config.UploadTimeout <= 0 {
		config.UploadTimeout = def.UploadTimeout
	}
	if config.Label == "" {
		config.Label = def.Label
	}

	p := &UIPipeline{device: device, queue: queue, config: config}
	if err := p.create(); err != nil {
		p.Destroy()
		return nil, err
	}
	slogger().Debug("ui pipeline created",
		"format", config.TargetFormat, "shader", config.Shader)
	return p, nil
}

func (p *UIPipeline) label(name string) string { return p.config.Label + "_" + name }

func (p *UIPipeline) create() error {
	shader, err := p.createShader()
	if err != nil {
		return err
	}
	p.shader = shader

	uniformLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: p.label("uniform_layout"),
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer: &gputypes.BufferBindingLayout{
					Type:             gputypes.BufferBindingTypeUniform,
					HasDynamicOffset: true,
					MinBindingSize:   ProjectionUniformSize,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Buffer: &gputypes.BufferBindingLayout{
					Type:             gputypes.BufferBindingTypeUniform,
					HasDynamicOffset: true,
					MinBindingSize:   WidgetUniformSize,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create ui uniform layout: %w", err)
	}
	p.uniformLayout = uniformLayout

	textureLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: p.label("texture_layout"),
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create ui texture layout: %w", err)
	}
	p.textureLayout = textureLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            p.label("pipe_layout"),
		BindGroupLayouts: []hal.BindGroupLayout{p.uniformLayout, p.textureLayout},
	})
	if err != nil {
		return fmt.Errorf("create ui pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	sampler, err := p.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        p.label("linear_sampler"),
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return fmt.Errorf("create ui sampler: %w", err)
	}
	p.sampler = sampler

	blend := gputypes.BlendStateAlpha()
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  p.label("pipeline"),
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
			Buffers:    uiVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    p.config.TargetFormat,
					Blend:     &blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  gputypes.PrimitiveTopologyTriangleList,
			FrontFace: gputypes.FrontFaceCW,
			CullMode:  gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create ui pipeline: %w", err)
	}
	p.pipeline = pipeline

	white, err := UploadTexture(p.device, p.queue, p.label("white"),
		[]byte{0xFF, 0xFF, 0xFF, 0xFF}, 1, 1, gputypes.TextureFormatRGBA8Unorm, p.config.UploadTimeout)
	if err != nil {
		return fmt.Errorf("create fallback texture: %w", err)
	}
	fallback, err := p.NewBinding(p.label("white"), white)
	if err != nil {
		white.Destroy(p.device)
		return fmt.Errorf("bind fallback texture: %w", err)
	}
	p.fallback = fallback
	return nil
}

// createShader builds the shader module from WGSL, or from SPIR-V compiled
// by naga when configured.
func (p *UIPipeline) createShader() (hal.ShaderModule, error) {
	if uiShaderSource == "" {
		return nil, fmt.Errorf("ui shader source is empty")
	}
	source := hal.ShaderSource{WGSL: uiShaderSource}
	if p.config.Shader == ShaderSPIRV {
		spirv, err := CompileSPIRV(uiShaderSource)
		if err != nil {
			return nil, err
		}
		source = hal.ShaderSource{SPIRV: spirv}
	}
	shader, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  p.label("shader"),
		Source: source,
	})
	if err != nil {
		return nil, fmt.Errorf("compile ui shader: %w", err)
	}
	return shader, nil
}

// CompileSPIRV compiles WGSL to SPIR-V words with naga.
func CompileSPIRV(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("compile ui shader to spir-v: %w", err)
	}
	// SPIR-V is a stream of little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

// uiVertexLayout returns the vertex buffer layout matching VertexInput in ui.wgsl.
func uiVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: VertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
				{Format: gputypes.VertexFormatUnorm8x4, Offset: 16, ShaderLocation: 2},
			},
		},
	}
}

// NewBinding creates the group-1 bind group pairing tex with the linear sampler.
func (p *UIPipeline) NewBinding(label string, tex *Texture) (*Binding, error) {
	group, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  label + "_bind",
		Layout: p.textureLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{TextureView: tex.View.NativeHandle()}},
			{Binding: 1, Resource: gputypes.SamplerBinding{Sampler: p.sampler.NativeHandle()}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create texture bind group: %w", err)
	}
	return &Binding{Texture: tex, Group: group}, nil
}

// ReleaseBinding destroys the bind group of b. The texture is left to its owner.
func (p *UIPipeline) ReleaseBinding(b *Binding) {
	if b == nil || b.Group == nil {
		return
	}
	p.device.DestroyBindGroup(b.Group)
	b.Group = nil
}

// Fallback returns the 1x1 opaque white texture bound with the linear sampler.
func (p *UIPipeline) Fallback() *Binding { return p.fallback }

// UniformGroup returns the group-0 bind group for the frame's uniform
// buffer, recreating it when the stager replaced the buffer.
func (p *UIPipeline) UniformGroup(geom *FrameGeometry) (hal.BindGroup, error) {
	if p.uniformGroup != nil && p.uniformGeneration == geom.UniformGeneration {
		return p.uniformGroup, nil
	}
	group, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  p.label("uniform_bind"),
		Layout: p.uniformLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: geom.UniformBuffer.NativeHandle(), Offset: 0, Size: ProjectionUniformSize,
			}},
			{Binding: 1, Resource: gputypes.BufferBinding{
				Buffer: geom.UniformBuffer.NativeHandle(), Offset: 0, Size: WidgetUniformSize,
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create uniform bind group: %w", err)
	}
	if p.uniformGroup != nil {
		p.device.DestroyBindGroup(p.uniformGroup)
	}
	p.uniformGroup = group
	p.uniformGeneration = geom.UniformGeneration
	return group, nil
}

// Pipeline returns the render pipeline.
func (p *UIPipeline) Pipeline() hal.RenderPipeline { return p.pipeline }

// Destroy releases all GPU objects in reverse creation order. Safe to call
// multiple times.
func (p *UIPipeline) Destroy() {
	if p.device == nil {
		return
	}
	if p.uniformGroup != nil {
		p.device.DestroyBindGroup(p.uniformGroup)
		p.uniformGroup = nil
	}
	if p.fallback != nil {
		p.ReleaseBinding(p.fallback)
		p.fallback.Texture.Destroy(p.device)
		p.fallback = nil
	}
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.sampler != nil {
		p.device.DestroySampler(p.sampler)
		p.sampler = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.textureLayout != nil {
		p.device.DestroyBindGroupLayout(p.textureLayout)
		p.textureLayout = nil
	}
	if p.uniformLayout != nil {
		p.device.DestroyBindGroupLayout(p.uniformLayout)
		p.uniformLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}
