package uirender

import "fmt"

// FontID identifies a font known to the FontPageSource.
type FontID uint64

// TextureHandle is an opaque application texture identifier resolved
// through the TextureSource.
type TextureHandle uint64

// FontPageKey identifies one glyph atlas page.
type FontPageKey struct {
	Font   FontID
	Height uint32
	Page   uint32
}

// String returns a compact description used in logs and GPU labels.
func (k FontPageKey) String() string {
	return fmt.Sprintf("font%d_h%d_p%d", k.Font, k.Height, k.Page)
}

// TextureKind discriminates CommandTexture.
type TextureKind uint8

// Texture reference kinds.
const (
	TextureNone TextureKind = iota
	TextureFontPage
	TextureHandleRef
)

// String returns the kind name.
func (k TextureKind) String() string {
	switch k {
	case TextureNone:
		return "none"
	case TextureFontPage:
		return "font"
	case TextureHandleRef:
		return "texture"
	default:
		return fmt.Sprintf("TextureKind(%d)", k)
	}
}

// CommandTexture is the texture a draw command samples: nothing, a glyph
// atlas page, or an application texture. The zero value is NoTexture.
type CommandTexture struct {
	Kind   TextureKind
	Page   FontPageKey   // valid for TextureFontPage
	Handle TextureHandle // valid for TextureHandleRef
}

// NoTexture returns a reference to no texture; the draw samples opaque white.
func NoTexture() CommandTexture { return CommandTexture{} }

// FontPage returns a reference to a glyph atlas page.
func FontPage(font FontID, height, page uint32) CommandTexture {
	return CommandTexture{Kind: TextureFontPage, Page: FontPageKey{Font: font, Height: height, Page: page}}
}

// TextureRef returns a reference to an application texture.
func TextureRef(h TextureHandle) CommandTexture {
	return CommandTexture{Kind: TextureHandleRef, Handle: h}
}

// IsFont reports whether the reference names a glyph atlas page.
func (t CommandTexture) IsFont() bool { return t.Kind == TextureFontPage }
