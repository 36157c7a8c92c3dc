// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package uihost

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/uirender"
	"github.com/gogpu/uirender/input"
)

// Common errors returned by Host operations.
var (
	// ErrHostClosed is returned when operations are attempted on a closed host.
	ErrHostClosed = errors.New("uihost: host is closed")

	// ErrInvalidDimensions is returned when width or height is invalid.
	ErrInvalidDimensions = errors.New("uihost: invalid dimensions")

	// ErrNilProvider is returned when a nil DeviceProvider is passed.
	ErrNilProvider = errors.New("uihost: nil DeviceProvider")

	// ErrNilProducer is returned when a nil Producer is passed.
	ErrNilProducer = errors.New("uihost: nil Producer")
)

// Producer is the UI layer driven by a Host.
type Producer interface {
	// Update delivers the events received since the previous call, in
	// arrival order. It is not called when no events arrived.
	Update(events []input.OsEvent)

	// Tick advances UI logic such as animations and layout by dt. It is
	// called once per Host.Update, after Update.
	Tick(dt time.Duration)

	// Draw fills frame for a target of width x height pixels. frame is
	// empty on entry and must not be retained after Draw returns.
	Draw(frame *uirender.DrawingContext, width, height int)
}

// Host owns a renderer on a window's device and drives a Producer with
// translated input.
//
// The frame is rebuilt only when the host is dirty: after Update, a
// resize, or MarkDirty. Otherwise Render re-executes the previous frame.
type Host struct {
	provider   gpucontext.DeviceProvider
	producer   Producer
	renderer   *uirender.Renderer
	translator *input.Translator
	queue      input.Queue
	events     []input.OsEvent
	frame      uirender.DrawingContext
	width      int
	height     int
	dirty      bool // Producer.Draw must run before the next Render
	closed     bool
}

// New creates a Host on the device of provider. opts are passed to the
// renderer; the target size is always width x height.
//
// Returns error if dimensions are invalid, provider or producer is nil, or
// the renderer cannot be created.
func New(provider gpucontext.DeviceProvider, producer Producer, width, height int, opts ...uirender.Option) (*Host, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	if producer == nil {
		return nil, ErrNilProducer
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}

	opts = append(opts, uirender.WithTargetSize(uint32(width), uint32(height))) //nolint:gosec // checked positive
	renderer, err := uirender.NewFromProvider(provider, opts...)
	if err != nil {
		return nil, fmt.Errorf("uihost: %w", err)
	}

	h := &Host{
		provider: provider,
		producer: producer,
		renderer: renderer,
		width:    width,
		height:   height,
		dirty:    true, // Mark dirty so the first Render draws
	}
	h.translator = input.NewTranslator(h.queue.Push)

	info := provider.AdapterInfo()
	uirender.Logger().Info("uihost: host created",
		"adapter", info.Name, "software", info.Type == gpucontext.AdapterTypeSoftware,
		"width", width, "height", height)
	return h, nil
}

// MustNew is like New but panics on error.
func MustNew(provider gpucontext.DeviceProvider, producer Producer, width, height int, opts ...uirender.Option) *Host {
	h, err := New(provider, producer, width, height, opts...)
	if err != nil {
		panic(err)
	}
	return h
}

// Attach routes the events of src into the host. Events are buffered until
// the next Update.
func (h *Host) Attach(src gpucontext.EventSource) {
	if h.closed || src == nil {
		return
	}
	h.translator.Attach(src)
}

// Translator returns the translator feeding the host's event queue, for
// platforms that deliver events without a gpucontext.EventSource.
func (h *Host) Translator() *input.Translator {
	return h.translator
}

// Update delivers pending events to the Producer, applies window resizes
// among them and advances the Producer by dt. It runs once per frame and
// marks the host dirty. Returns the number of events delivered.
func (h *Host) Update(dt time.Duration) int {
	if h.closed {
		return 0
	}
	h.events = h.queue.Drain(h.events[:0])
	for _, e := range h.events {
		if e.Kind == input.Resized {
			_ = h.Resize(e.Width, e.Height)
		}
	}
	if len(h.events) > 0 {
		h.producer.Update(h.events)
	}
	h.producer.Tick(dt)
	h.dirty = true
	return len(h.events)
}

// Width returns the target width in pixels.
func (h *Host) Width() int { return h.width }

// Height returns the target height in pixels.
func (h *Host) Height() int { return h.height }

// Size returns the target dimensions.
func (h *Host) Size() (width, height int) {
	return h.width, h.height
}

// MarkDirty forces Producer.Draw to run before the next Render.
func (h *Host) MarkDirty() {
	h.dirty = true
}

// IsDirty reports whether the next Render rebuilds the frame.
func (h *Host) IsDirty() bool {
	return h.dirty
}

// Resize changes the target size. The frame is rebuilt on the next Render.
// A zero width or height, as reported for a minimized window, is accepted:
// frames render nothing until the size is non-zero again.
func (h *Host) Resize(width, height int) error {
	if h.closed {
		return ErrHostClosed
	}
	if width < 0 || height < 0 {
		return fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}
	if width == h.width && height == h.height {
		return nil
	}
	h.width = width
	h.height = height
	h.renderer.Resize(uint32(width), uint32(height)) //nolint:gosec // checked non-negative
	h.dirty = true
	return nil
}

// Frame returns the most recently built frame. It is valid until the next
// Render.
func (h *Host) Frame() *uirender.DrawingContext {
	return &h.frame
}

// Renderer returns the host's renderer, or nil if the host is closed.
func (h *Host) Renderer() *uirender.Renderer {
	if h.closed {
		return nil
	}
	return h.renderer
}

// Provider returns the DeviceProvider associated with this host.
// Returns nil if the host is closed.
func (h *Host) Provider() gpucontext.DeviceProvider {
	if h.closed {
		return nil
	}
	return h.provider
}

// Close releases the renderer and its GPU resources.
// Close is idempotent - multiple calls are safe.
func (h *Host) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	h.renderer.Destroy()
	h.renderer = nil
	h.provider = nil
	h.frame = uirender.DrawingContext{}
	return nil
}
