// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import "errors"

// Upload and staging errors.
var (
	// ErrPixelSize is returned when a pixel slice does not match width*height*bpp.
	ErrPixelSize = errors.New("gpu: pixel data size does not match texture dimensions")

	// ErrZeroSize is returned when a texture or buffer of zero size is requested.
	ErrZeroSize = errors.New("gpu: zero-sized resource")

	// ErrUploadTimeout is returned when an internal copy submission does not
	// complete within the configured timeout.
	ErrUploadTimeout = errors.New("gpu: upload did not complete in time")

	// ErrStagingMap is returned when the transfer buffer cannot be mapped.
	ErrStagingMap = errors.New("gpu: failed to map transfer buffer")

	// ErrUnsupportedFormat is returned for texture formats the UI pipeline cannot sample.
	ErrUnsupportedFormat = errors.New("gpu: unsupported texture format")
)
