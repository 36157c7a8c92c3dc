//go:build !nogpu

package uirender

import "github.com/gogpu/uirender/internal/gpu"

// fontPixels adapts a FontPageSource to the glyph atlas cache.
type fontPixels struct{ src FontPageSource }

func (f fontPixels) Pixels(key FontPageKey) (gpu.Pixels, bool) {
	page, ok := f.src.FontPage(key.Font, key.Height, key.Page)
	if !ok {
		return gpu.Pixels{}, false
	}
	return gpu.Pixels{Data: page.Pixels, Width: page.Width, Height: page.Height, Modified: page.Modified}, true
}

func (f fontPixels) Uploaded(key FontPageKey) {
	if ack, ok := f.src.(FontPageAcknowledger); ok {
		ack.MarkUploaded(key.Font, key.Height, key.Page)
	}
}

// texturePixels adapts a TextureSource to the generic texture cache.
type texturePixels struct{ src TextureSource }

func (t texturePixels) Pixels(h TextureHandle) (gpu.Pixels, bool) {
	img, ok := t.src.Texture(h)
	if !ok {
		return gpu.Pixels{}, false
	}
	return gpu.Pixels{Data: img.Pixels, Width: img.Width, Height: img.Height, Modified: img.Modified}, true
}

func (t texturePixels) Uploaded(h TextureHandle) {
	if ack, ok := t.src.(TextureAcknowledger); ok {
		ack.MarkUploaded(h)
	}
}
