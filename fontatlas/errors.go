package fontatlas

import "errors"

var (
	// ErrUnknownFont is returned for a FontID the atlas does not hold.
	ErrUnknownFont = errors.New("fontatlas: unknown font")

	// ErrGlyphTooLarge is returned when a glyph bitmap does not fit in an
	// empty page.
	ErrGlyphTooLarge = errors.New("fontatlas: glyph larger than page")

	// ErrZeroHeight is returned for a zero pixel height.
	ErrZeroHeight = errors.New("fontatlas: zero pixel height")
)
