// Package uirender executes the per-frame drawing output of a retained-mode
// UI on a WebGPU-class device.
//
// # Overview
//
// The UI layer produces a DrawingContext every frame: a vertex array, a
// triangle array, and an ordered list of DrawCommands. Each command draws a
// contiguous range of triangles with its own clip rectangle, brush, texture
// and opacity. A Renderer turns that list into GPU work on a caller-supplied
// command encoder, preserving command order exactly.
//
// # Quick Start
//
//	r, err := uirender.New(device, queue,
//	    uirender.WithTargetSize(800, 600),
//	    uirender.WithFontPageSource(atlas),
//	)
//	if err != nil {
//	    return err
//	}
//	defer r.Destroy()
//
//	// every frame
//	err = r.Render(encoder, []hal.RenderPassColorAttachment{{
//	    View:    surfaceView,
//	    LoadOp:  gputypes.LoadOpClear,
//	    StoreOp: gputypes.StoreOpStore,
//	}}, frame)
//
// # Textures
//
// Commands sample nothing (opaque white), a glyph atlas page supplied by a
// FontPageSource, or an application texture supplied by a TextureSource.
// Both kinds are cached on the device across frames and uploaded again only
// when their source reports them modified or they are invalidated. A texture
// that cannot be produced is drawn with a 1x1 white fallback and logged.
//
// # Uploads
//
// By default texture writes discovered while scanning a frame are deferred
// and performed, together with the frame's vertices, indices and uniforms,
// in a single copy submission before the render pass begins. WithUploadMode
// selects immediate per-texture uploads instead.
//
// # Build Tags
//
// The GPU half of the package builds unless the nogpu tag is set. With
// nogpu only the data model and options remain.
//
// # Thread Safety
//
// A Renderer is not safe for concurrent use. Build the DrawingContext on any
// goroutine, but call Render, Resize and Destroy from the render loop.
package uirender
