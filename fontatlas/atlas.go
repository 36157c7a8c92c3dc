package fontatlas

import (
	"bytes"
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	gtfont "github.com/go-text/typesetting/font"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/uirender"
	"github.com/gogpu/uirender/cache"
)

// Default configuration.
const (
	DefaultPageSize      = 512
	DefaultPadding       = 1
	DefaultFaceCacheSize = 4 // per cache shard
)

// Glyph locates a rasterized glyph inside its strike.
type Glyph struct {
	Page uint32

	// X, Y, Width, Height give the bitmap rectangle in page pixels.
	// Width and Height are zero for glyphs without ink, such as space.
	X, Y, Width, Height int

	// BearingX, BearingY offset the bitmap's top-left corner from the pen
	// position on the baseline.
	BearingX, BearingY float32

	Advance float32
}

// TexRect returns the glyph's normalized texture coordinates in a page of
// pageSize x pageSize pixels.
func (g Glyph) TexRect(pageSize int) (u0, v0, u1, v1 float32) {
	s := float32(pageSize)
	return float32(g.X) / s, float32(g.Y) / s, float32(g.X+g.Width) / s, float32(g.Y+g.Height) / s
}

// Metrics are the vertical metrics of a strike, in pixels.
type Metrics struct {
	Ascent, Descent, LineHeight float32
}

type strikeKey struct {
	font   uirender.FontID
	height uint32
}

func hashStrikeKey(k strikeKey) uint64 {
	return cache.Uint64Hasher(uint64(k.font)<<24 ^ uint64(k.height))
}

type fontEntry struct {
	otf    *opentype.Font
	info   *gtfont.Font
	family string
}

// page is one atlas page. Pixels are copy-on-write once handed out: a
// writer clones them before touching a shared slice.
type page struct {
	pixels []byte
	alloc  *shelfAllocator
	shared atomic.Bool

	modified bool
	version  uint64        // bumped by every write, under the write lock
	pending  atomic.Uint64 // version handed out and not yet acknowledged
}

type strike struct {
	pages  []*page
	glyphs map[rune]Glyph
}

// Atlas is a uirender.FontPageSource that rasterizes glyphs on demand.
type Atlas struct {
	pageSize int
	padding  int

	mu      sync.RWMutex
	fonts   map[uirender.FontID]*fontEntry
	strikes map[strikeKey]*strike
	nextID  uirender.FontID

	// faces holds sized x/image faces; evicted faces are closed.
	faces *cache.ShardedCache[strikeKey, font.Face]
}

var (
	_ uirender.FontPageSource       = (*Atlas)(nil)
	_ uirender.FontPageAcknowledger = (*Atlas)(nil)
)

// Option configures an Atlas.
type Option func(*Atlas)

// WithPageSize sets the side length of every page in pixels.
func WithPageSize(size int) Option {
	return func(a *Atlas) {
		if size > 0 {
			a.pageSize = size
		}
	}
}

// WithPadding sets the gap between packed glyphs.
func WithPadding(padding int) Option {
	return func(a *Atlas) {
		if padding >= 0 {
			a.padding = padding
		}
	}
}

// WithFaceCacheSize bounds the number of sized faces kept per cache shard.
func WithFaceCacheSize(n int) Option {
	return func(a *Atlas) {
		a.faces = cache.NewSharded[strikeKey, font.Face](n, hashStrikeKey)
	}
}

// New creates an empty atlas.
func New(opts ...Option) *Atlas {
	a := &Atlas{
		pageSize: DefaultPageSize,
		padding:  DefaultPadding,
		fonts:    make(map[uirender.FontID]*fontEntry),
		strikes:  make(map[strikeKey]*strike),
		nextID:   1,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.faces == nil {
		a.faces = cache.NewSharded[strikeKey, font.Face](DefaultFaceCacheSize, hashStrikeKey)
	}
	a.faces.SetOnEvict(func(_ strikeKey, f font.Face) {
		if f != nil {
			_ = f.Close()
		}
	})
	return a
}

// PageSize returns the side length of the atlas pages.
func (a *Atlas) PageSize() int { return a.pageSize }

// AddFont parses an OpenType or TrueType font and returns its id.
func (a *Atlas) AddFont(data []byte) (uirender.FontID, error) {
	otf, err := opentype.Parse(data)
	if err != nil {
		return 0, fmt.Errorf("fontatlas: parse font: %w", err)
	}
	face, err := gtfont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("fontatlas: read font tables: %w", err)
	}
	entry := &fontEntry{otf: otf, info: face.Font, family: face.Describe().Family}

	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.fonts[id] = entry
	a.mu.Unlock()

	logger().Debug("fontatlas: font added", "id", id, "family", entry.family)
	return id, nil
}

// AddDefaultFont adds the Go Regular font.
func (a *Atlas) AddDefaultFont() (uirender.FontID, error) {
	return a.AddFont(goregular.TTF)
}

// RemoveFont drops a font with all of its strikes and faces. Renderers that
// cached its pages should forget them with Renderer.ForgetFontPage.
func (a *Atlas) RemoveFont(id uirender.FontID) {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.fonts, id)
	for key := range a.strikes {
		if key.font == id {
			delete(a.strikes, key)
		}
	}
	var stale []strikeKey
	a.faces.Range(func(k strikeKey, _ font.Face) bool {
		if k.font == id {
			stale = append(stale, k)
		}
		return true
	})
	for _, k := range stale {
		a.faces.Delete(k)
	}
}

// Family returns the family name of a font, or "" if unknown.
func (a *Atlas) Family(id uirender.FontID) string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if f, ok := a.fonts[id]; ok {
		return f.family
	}
	return ""
}

// HasGlyph reports whether the font maps r to a glyph.
func (a *Atlas) HasGlyph(id uirender.FontID, r rune) bool {
	a.mu.RLock()
	f, ok := a.fonts[id]
	a.mu.RUnlock()
	if !ok {
		return false
	}
	_, found := f.info.NominalGlyph(r)
	return found
}

// Metrics returns the vertical metrics of a font at a pixel height.
func (a *Atlas) Metrics(id uirender.FontID, height uint32) (Metrics, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	face, err := a.faceLocked(strikeKey{font: id, height: height})
	if err != nil {
		return Metrics{}, err
	}
	m := face.Metrics()
	return Metrics{
		Ascent:     fixedToFloat(m.Ascent),
		Descent:    fixedToFloat(m.Descent),
		LineHeight: fixedToFloat(m.Height),
	}, nil
}

// Glyph returns the glyph for r at a pixel height, rasterizing it into the
// strike's pages on first use. Runes the font does not cover are drawn with
// the font's notdef glyph.
func (a *Atlas) Glyph(id uirender.FontID, height uint32, r rune) (Glyph, error) {
	key := strikeKey{font: id, height: height}

	a.mu.RLock()
	if s, ok := a.strikes[key]; ok {
		if g, ok := s.glyphs[r]; ok {
			a.mu.RUnlock()
			return g, nil
		}
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.glyphLocked(key, r)
}

func (a *Atlas) glyphLocked(key strikeKey, r rune) (Glyph, error) {
	s := a.strikes[key]
	if s != nil {
		if g, ok := s.glyphs[r]; ok {
			return g, nil
		}
	}
	face, err := a.faceLocked(key)
	if err != nil {
		return Glyph{}, err
	}
	if s == nil {
		s = &strike{glyphs: make(map[rune]Glyph)}
		a.strikes[key] = s
	}

	bounds, advance, ok := face.GlyphBounds(r)
	if !ok {
		s.glyphs[r] = Glyph{}
		return Glyph{}, nil
	}
	minX, minY := bounds.Min.X.Floor(), bounds.Min.Y.Floor()
	maxX, maxY := bounds.Max.X.Ceil(), bounds.Max.Y.Ceil()
	g := Glyph{
		BearingX: float32(minX),
		BearingY: float32(minY),
		Advance:  fixedToFloat(advance),
	}
	w, h := maxX-minX, maxY-minY
	if w <= 0 || h <= 0 {
		s.glyphs[r] = g
		return g, nil
	}

	pageIndex, p, reg, err := a.place(s, w, h)
	if err != nil {
		return Glyph{}, fmt.Errorf("%w: %q is %dx%d at height %d", err, r, w, h, key.height)
	}

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  mask,
		Src:  image.White,
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(-minX), Y: fixed.I(-minY)},
	}
	d.DrawString(string(r))

	p.write(reg, mask, a.pageSize)

	g.Page = pageIndex
	g.X, g.Y, g.Width, g.Height = reg.X, reg.Y, reg.W, reg.H
	s.glyphs[r] = g
	return g, nil
}

// place finds room for a w x h bitmap, starting a new page when the last
// one is full.
func (a *Atlas) place(s *strike, w, h int) (uint32, *page, region, error) {
	if n := len(s.pages); n > 0 {
		if reg, ok := s.pages[n-1].alloc.allocate(w, h); ok {
			return uint32(n - 1), s.pages[n-1], reg, nil //nolint:gosec // page count is small
		}
	}
	p := &page{
		pixels: make([]byte, a.pageSize*a.pageSize),
		alloc:  newShelfAllocator(a.pageSize, a.padding),
	}
	reg, ok := p.alloc.allocate(w, h)
	if !ok {
		return 0, nil, region{}, ErrGlyphTooLarge
	}
	s.pages = append(s.pages, p)
	logger().Debug("fontatlas: page added", "pages", len(s.pages))
	return uint32(len(s.pages) - 1), p, reg, nil //nolint:gosec // page count is small
}

// write copies mask into the page at reg.
func (p *page) write(reg region, mask *image.Alpha, stride int) {
	if p.shared.Load() {
		p.pixels = bytes.Clone(p.pixels)
		p.shared.Store(false)
	}
	for y := range reg.H {
		src := mask.Pix[y*mask.Stride : y*mask.Stride+reg.W]
		copy(p.pixels[(reg.Y+y)*stride+reg.X:], src)
	}
	p.modified = true
	p.version++
}

func (a *Atlas) faceLocked(key strikeKey) (font.Face, error) {
	if key.height == 0 {
		return nil, ErrZeroHeight
	}
	f, ok := a.fonts[key.font]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFont, key.font)
	}
	var err error
	face := a.faces.GetOrCreate(key, func() font.Face {
		var otFace font.Face
		otFace, err = opentype.NewFace(f.otf, &opentype.FaceOptions{
			Size:    float64(key.height),
			DPI:     72,
			Hinting: font.HintingFull,
		})
		return otFace
	})
	if err != nil {
		a.faces.Delete(key)
		return nil, fmt.Errorf("fontatlas: create face: %w", err)
	}
	return face, nil
}

// FontPage implements uirender.FontPageSource. It never blocks: a page
// that a writer currently holds is reported as unavailable. The returned
// pixels must not be modified.
func (a *Atlas) FontPage(id uirender.FontID, height, index uint32) (uirender.AtlasPage, bool) {
	if !a.mu.TryRLock() {
		logger().Debug("fontatlas: page locked", "font", id, "height", height, "page", index)
		return uirender.AtlasPage{}, false
	}
	defer a.mu.RUnlock()

	s, ok := a.strikes[strikeKey{font: id, height: height}]
	if !ok || int(index) >= len(s.pages) {
		return uirender.AtlasPage{}, false
	}
	p := s.pages[index]
	p.shared.Store(true)
	if p.modified {
		p.pending.CompareAndSwap(0, p.version)
	}
	size := uint32(a.pageSize) //nolint:gosec // page size is a small positive int
	return uirender.AtlasPage{Pixels: p.pixels, Width: size, Height: size, Modified: p.modified}, true
}

// MarkUploaded implements uirender.FontPageAcknowledger. The modified flag
// is cleared only if no glyph was added since the acknowledged contents
// were handed out.
func (a *Atlas) MarkUploaded(id uirender.FontID, height, index uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.strikes[strikeKey{font: id, height: height}]
	if !ok || int(index) >= len(s.pages) {
		return
	}
	p := s.pages[index]
	if v := p.pending.Swap(0); v != 0 && v == p.version {
		p.modified = false
	}
}

// PageCount returns the number of pages of a strike.
func (a *Atlas) PageCount(id uirender.FontID, height uint32) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if s, ok := a.strikes[strikeKey{font: id, height: height}]; ok {
		return len(s.pages)
	}
	return 0
}

// Utilization returns the fraction of a strike page covered by glyphs.
func (a *Atlas) Utilization(id uirender.FontID, height, index uint32) float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s, ok := a.strikes[strikeKey{font: id, height: height}]
	if !ok || int(index) >= len(s.pages) {
		return 0
	}
	return s.pages[index].alloc.utilization()
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}
