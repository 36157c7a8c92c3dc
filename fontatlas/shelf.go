package fontatlas

// region is an allocated rectangle inside a page.
type region struct {
	X, Y, W, H int
}

type shelf struct {
	y      int // top of the shelf
	height int // tallest padded item so far
	nextX  int
}

// shelfAllocator packs rectangles into horizontal shelves. A rectangle goes
// on the first shelf with enough room, otherwise on a new shelf below the
// last one. Not safe for concurrent use.
type shelfAllocator struct {
	size    int
	padding int
	shelves []shelf
	used    int
}

func newShelfAllocator(size, padding int) *shelfAllocator {
	return &shelfAllocator{size: size, padding: max(padding, 0)}
}

// allocate reserves w x h pixels. Returns false when the page is full.
func (a *shelfAllocator) allocate(w, h int) (region, bool) {
	if w <= 0 || h <= 0 {
		return region{}, false
	}
	pw, ph := w+a.padding, h+a.padding
	if pw > a.size || ph > a.size {
		return region{}, false
	}

	for i := range a.shelves {
		s := &a.shelves[i]
		// Shelves are created with an item, so they never grow taller.
		if s.nextX+pw > a.size || ph > s.height {
			continue
		}
		r := region{X: s.nextX, Y: s.y, W: w, H: h}
		s.nextX += pw
		a.used += w * h
		return r, true
	}

	y := 0
	if n := len(a.shelves); n > 0 {
		last := a.shelves[n-1]
		y = last.y + last.height
	}
	if y+ph > a.size {
		return region{}, false
	}
	a.shelves = append(a.shelves, shelf{y: y, height: ph, nextX: pw})
	a.used += w * h
	return region{X: 0, Y: y, W: w, H: h}, true
}

// utilization returns the fraction of the page covered by glyphs.
func (a *shelfAllocator) utilization() float64 {
	return float64(a.used) / float64(a.size*a.size)
}
