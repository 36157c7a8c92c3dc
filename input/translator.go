package input

import (
	"sync"

	"github.com/gogpu/gpucontext"
	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/uirender"
)

// Handler receives translated events.
type Handler func(OsEvent)

// Translator converts platform callbacks into OsEvents. Its methods may be
// called from any goroutine; events are delivered to the handler one at a
// time, in arrival order.
type Translator struct {
	mu      sync.Mutex
	handler Handler

	x, y   float64
	hasPos bool
}

// NewTranslator creates a Translator delivering to h.
func NewTranslator(h Handler) *Translator {
	return &Translator{handler: h}
}

// Attach registers the Translator's callbacks on src. IME composition
// updates are ignored; the committed text arrives as text input.
func (t *Translator) Attach(src gpucontext.EventSource) {
	src.OnKeyPress(func(k gpucontext.Key, m gpucontext.Modifiers) { t.Key(k, m, Pressed) })
	src.OnKeyRelease(func(k gpucontext.Key, m gpucontext.Modifiers) { t.Key(k, m, Released) })
	src.OnTextInput(t.Text)
	src.OnMouseMove(t.MouseMove)
	src.OnMousePress(func(b gpucontext.MouseButton, x, y float64) { t.MouseButton(b, Pressed, x, y) })
	src.OnMouseRelease(func(b gpucontext.MouseButton, x, y float64) { t.MouseButton(b, Released, x, y) })
	src.OnScroll(t.Scroll)
	src.OnResize(t.Resize)
	src.OnFocus(t.Focus)
	src.OnIMECompositionEnd(t.Text)
}

func (t *Translator) emitLocked(e OsEvent) {
	if t.handler != nil {
		t.handler(e)
	}
}

// Key translates a key press or release into a KeyboardModifiers event
// followed by a KeyboardInput event. Keys without a KeyCode are dropped.
func (t *Translator) Key(k gpucontext.Key, mods gpucontext.Modifiers, state ButtonState) {
	code, ok := TranslateKey(k)
	if !ok {
		uirender.Logger().Debug("input: key dropped", "key", k)
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.emitLocked(OsEvent{Kind: KeyboardModifiers, Modifiers: TranslateModifiers(mods)})
	t.emitLocked(OsEvent{Kind: KeyboardInput, Key: code, State: state})
}

// Text delivers s in NFC form, one KeyboardInput event per rune.
func (t *Translator) Text(s string) {
	if s == "" {
		return
	}
	s = norm.NFC.String(s)
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range s {
		t.emitLocked(OsEvent{Kind: KeyboardInput, Key: KeyUnknown, State: Pressed, Text: r})
	}
}

// MouseMove emits CursorMoved.
func (t *Translator) MouseMove(x, y float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.moveLocked(x, y)
}

func (t *Translator) moveLocked(x, y float64) {
	if t.hasPos && t.x == x && t.y == y {
		return
	}
	t.x, t.y, t.hasPos = x, y, true
	t.emitLocked(OsEvent{Kind: CursorMoved, X: x, Y: y})
}

// MouseButton emits MouseInput, preceded by CursorMoved when the button
// event reports a position the handler has not seen yet.
func (t *Translator) MouseButton(b gpucontext.MouseButton, state ButtonState, x, y float64) {
	button, ok := TranslateMouseButton(b)
	if !ok {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.moveLocked(x, y)
	t.emitLocked(OsEvent{Kind: MouseInput, Button: button, State: state})
}

// Scroll emits MouseWheel.
func (t *Translator) Scroll(dx, dy float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.emitLocked(OsEvent{Kind: MouseWheel, DX: dx, DY: dy})
}

// Resize emits Resized.
func (t *Translator) Resize(width, height int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.emitLocked(OsEvent{Kind: Resized, Width: width, Height: height})
}

// Focus emits Focus.
func (t *Translator) Focus(focused bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.emitLocked(OsEvent{Kind: Focus, Focused: focused})
}

// TranslateModifiers maps platform modifier flags. Lock keys are not part
// of the model.
func TranslateModifiers(m gpucontext.Modifiers) Modifiers {
	return Modifiers{
		Alt:     m.HasAlt(),
		Shift:   m.HasShift(),
		Control: m.HasControl(),
		System:  m.HasSuper(),
	}
}

// TranslateMouseButton maps platform buttons; buttons 4 and 5 are Back and
// Forward.
func TranslateMouseButton(b gpucontext.MouseButton) (MouseButton, bool) {
	switch b {
	case gpucontext.MouseButtonLeft:
		return MouseLeft, true
	case gpucontext.MouseButtonRight:
		return MouseRight, true
	case gpucontext.MouseButtonMiddle:
		return MouseMiddle, true
	case gpucontext.MouseButton4:
		return MouseBack, true
	case gpucontext.MouseButton5:
		return MouseForward, true
	default:
		return 0, false
	}
}

// Queue buffers events between the platform callbacks and the UI update.
// It is safe for concurrent use.
type Queue struct {
	mu     sync.Mutex
	events []OsEvent
}

// Push appends e. Queue.Push can be passed to NewTranslator as the Handler.
func (q *Queue) Push(e OsEvent) {
	q.mu.Lock()
	q.events = append(q.events, e)
	q.mu.Unlock()
}

// Drain appends all buffered events to dst in arrival order and empties
// the queue.
func (q *Queue) Drain(dst []OsEvent) []OsEvent {
	q.mu.Lock()
	dst = append(dst, q.events...)
	clear(q.events)
	q.events = q.events[:0]
	q.mu.Unlock()
	return dst
}

// Len returns the number of buffered events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
