// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package uihost

import (
	"errors"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrNilView is returned when Render is given no target view.
var ErrNilView = errors.New("uihost: nil target view")

// RenderOptions controls how the UI pass treats the target.
type RenderOptions struct {
	// Clear clears the target to ClearColor before drawing. When false
	// the UI is composited over the existing contents.
	Clear bool

	// ClearColor is the clear value when Clear is set.
	ClearColor gputypes.Color

	// ResolveTarget receives the multisample resolve (optional).
	ResolveTarget hal.TextureView
}

// DefaultRenderOptions returns options that clear to opaque black.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		Clear:      true,
		ClearColor: gputypes.Color{R: 0, G: 0, B: 0, A: 1},
	}
}

// RenderTo draws the UI into view with DefaultRenderOptions.
//
// Example:
//
//	host.Update(dt)
//	if err := host.RenderTo(encoder, surfaceView); err != nil {
//	    return err
//	}
//	// end encoding, submit, present
func (h *Host) RenderTo(encoder hal.CommandEncoder, view hal.TextureView) error {
	return h.RenderToEx(encoder, view, DefaultRenderOptions())
}

// RenderToEx draws the UI into view with custom options. The Producer is
// asked for a new frame first if the host is dirty. The encoder is not
// ended or submitted. An empty frame opens no pass, so the target is left
// untouched even when Clear is set.
func (h *Host) RenderToEx(encoder hal.CommandEncoder, view hal.TextureView, opts RenderOptions) error {
	if h.closed {
		return ErrHostClosed
	}
	if view == nil {
		return ErrNilView
	}

	if h.dirty {
		h.frame.Reset()
		h.producer.Draw(&h.frame, h.width, h.height)
		h.dirty = false
	}

	target := hal.RenderPassColorAttachment{
		View:          view,
		ResolveTarget: opts.ResolveTarget,
		LoadOp:        gputypes.LoadOpLoad,
		StoreOp:       gputypes.StoreOpStore,
	}
	if opts.Clear {
		target.LoadOp = gputypes.LoadOpClear
		target.ClearValue = opts.ClearColor
	}
	return h.renderer.Render(encoder, []hal.RenderPassColorAttachment{target}, &h.frame)
}
