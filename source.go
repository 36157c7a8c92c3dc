package uirender

// AtlasPage is the current image of one glyph atlas page. Pixels hold one
// byte of coverage per texel, row-major, tightly packed.
type AtlasPage struct {
	Pixels   []byte
	Width    uint32
	Height   uint32
	Modified bool // contents changed since the last acknowledged upload
}

// FontPageSource supplies glyph atlas pages. FontPage returns false when the
// page does not exist or is temporarily unavailable (for example, locked by
// a writer); the renderer then draws with the white fallback texture.
type FontPageSource interface {
	FontPage(font FontID, height, page uint32) (AtlasPage, bool)
}

// FontPageAcknowledger is implemented by font sources that track modified
// pages. MarkUploaded is called once a page's pixels are resident on the
// device so the source can clear its modified flag.
type FontPageAcknowledger interface {
	MarkUploaded(font FontID, height, page uint32)
}

// Image is an RGBA8 application texture, row-major, tightly packed.
type Image struct {
	Pixels   []byte
	Width    uint32
	Height   uint32
	Modified bool
}

// TextureSource resolves application texture handles to images.
type TextureSource interface {
	Texture(handle TextureHandle) (Image, bool)
}

// TextureAcknowledger is the TextureSource counterpart of FontPageAcknowledger.
type TextureAcknowledger interface {
	MarkUploaded(handle TextureHandle)
}

// TextureSourceFunc adapts a function to TextureSource.
type TextureSourceFunc func(handle TextureHandle) (Image, bool)

// Texture calls f(handle).
func (f TextureSourceFunc) Texture(handle TextureHandle) (Image, bool) { return f(handle) }

// ImageMap is a TextureSource backed by a map. Replacing an entry and
// setting Modified makes the renderer upload it again.
type ImageMap map[TextureHandle]Image

// Texture implements TextureSource.
func (m ImageMap) Texture(handle TextureHandle) (Image, bool) {
	img, ok := m[handle]
	return img, ok
}

// MarkUploaded clears the Modified flag of handle.
func (m ImageMap) MarkUploaded(handle TextureHandle) {
	if img, ok := m[handle]; ok && img.Modified {
		img.Modified = false
		m[handle] = img
	}
}
