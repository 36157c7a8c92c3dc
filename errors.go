package uirender

import "errors"

// Sentinel errors returned by the renderer. Errors from lower layers are
// wrapped with %w, so callers match them with errors.Is.
var (
	// ErrNilDevice is returned when New receives a nil hal.Device.
	ErrNilDevice = errors.New("uirender: nil device")

	// ErrNilQueue is returned when New receives a nil hal.Queue.
	ErrNilQueue = errors.New("uirender: nil queue")

	// ErrNilProvider is returned when NewFromProvider receives a nil provider.
	ErrNilProvider = errors.New("uirender: nil device provider")

	// ErrNoHalProvider is returned when a provider does not expose HAL
	// device and queue objects.
	ErrNoHalProvider = errors.New("uirender: provider does not expose HAL device and queue")

	// ErrRendererDestroyed is returned by Render after Destroy.
	ErrRendererDestroyed = errors.New("uirender: renderer destroyed")

	// ErrNilFrame is returned by Render for a nil DrawingContext.
	ErrNilFrame = errors.New("uirender: nil frame")

	// ErrInvalidRange reports a command whose triangle range is reversed,
	// overlaps its predecessor, or runs past the triangle array.
	ErrInvalidRange = errors.New("uirender: invalid triangle range")

	// ErrNoColorTarget is returned by Render when no color attachment is given.
	ErrNoColorTarget = errors.New("uirender: no color target")
)
