//go:build !nogpu

package uirender

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// halProvider is implemented by device providers that expose their HAL
// device and queue, such as the gogpu application window.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// NewFromProvider creates a renderer on the device of provider. The
// provider's surface format is used unless WithSurfaceFormat is given.
//
// Example:
//
//	app.OnReady(func() {
//	    r, err := uirender.NewFromProvider(app.GPUContextProvider(),
//	        uirender.WithTargetSize(w, h))
//	})
func NewFromProvider(provider gpucontext.DeviceProvider, opts ...Option) (*Renderer, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	device, queue, ok := halObjects(provider)
	if !ok {
		return nil, ErrNoHalProvider
	}
	if format := provider.SurfaceFormat(); format != gputypes.TextureFormatUndefined {
		opts = append([]Option{WithSurfaceFormat(format)}, opts...)
	}
	return New(device, queue, opts...)
}

// halObjects extracts the HAL device and queue, first through HalDevice
// and HalQueue, then by asserting Device and Queue directly.
func halObjects(provider gpucontext.DeviceProvider) (hal.Device, hal.Queue, bool) {
	if hp, ok := provider.(halProvider); ok {
		device, dok := hp.HalDevice().(hal.Device)
		queue, qok := hp.HalQueue().(hal.Queue)
		if dok && qok && device != nil && queue != nil {
			return device, queue, true
		}
	}
	device, dok := provider.Device().(hal.Device)
	queue, qok := provider.Queue().(hal.Queue)
	if dok && qok && device != nil && queue != nil {
		return device, queue, true
	}
	return nil, nil, false
}
