// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package uihost connects a UI layer to a gogpu window.
//
// A Host owns a uirender.Renderer created on the window's device, turns
// platform events into input.OsEvent values for the UI, and asks the UI for
// a fresh DrawingContext every frame. The data flow is:
//
//	gpucontext.EventSource -> input.Translator -> Producer.Update, Producer.Tick
//	Producer.Draw -> uirender.DrawingContext -> Renderer -> render pass
//
// # Usage
//
//	host, err := uihost.New(app.GPUContextProvider(), myUI, 800, 600)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer host.Close()
//	host.Attach(app.EventSource())
//
//	// Every frame, on the render goroutine:
//	host.Update(dt)
//	err = host.RenderTo(encoder, surfaceView)
//
// # Thread Safety
//
// Event callbacks may arrive on any goroutine; they are queued and only
// delivered to the Producer from Update. Everything else on Host must be
// called from the render goroutine.
//
// # Integration Without Circular Imports
//
// The package depends on gpucontext interfaces only. Any window system that
// provides a gpucontext.DeviceProvider exposing HAL objects can host a UI.
package uihost
