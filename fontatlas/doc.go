// Package fontatlas rasterizes OpenType glyphs into fixed-size,
// single-channel atlas pages and serves them to a uirender.Renderer.
//
// An Atlas keeps one strike per (font, pixel height). Glyphs are rasterized
// on first use with golang.org/x/image and packed onto shelves; when a page
// is full a new page is started. Every page carries a modified flag that
// stays set until the renderer acknowledges an upload of the latest
// contents.
//
//	atlas := fontatlas.New()
//	id, err := atlas.AddFont(goregular.TTF)
//	...
//	r, err := uirender.New(device, queue, uirender.WithFontPageSource(atlas))
//	...
//	_, err = atlas.AppendText(frame, id, 16, origin, uirender.White, clip, "Hello")
//
// # Thread Safety
//
// Atlas is safe for concurrent use. Rasterization takes the write lock;
// FontPage only tries the read lock and reports a page held by a writer as
// unavailable, so the render loop never blocks on text layout.
package fontatlas
