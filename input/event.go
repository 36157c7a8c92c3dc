package input

import "fmt"

// EventKind discriminates OsEvent.
type EventKind uint8

// Event kinds.
const (
	MouseWheel EventKind = iota
	MouseInput
	CursorMoved
	KeyboardModifiers
	KeyboardInput
	Focus
	Resized
)

func (k EventKind) String() string {
	switch k {
	case MouseWheel:
		return "MouseWheel"
	case MouseInput:
		return "MouseInput"
	case CursorMoved:
		return "CursorMoved"
	case KeyboardModifiers:
		return "KeyboardModifiers"
	case KeyboardInput:
		return "KeyboardInput"
	case Focus:
		return "Focus"
	case Resized:
		return "Resized"
	default:
		return fmt.Sprintf("EventKind(%d)", k)
	}
}

// ButtonState is the state of a key or mouse button.
type ButtonState uint8

const (
	Pressed ButtonState = iota
	Released
)

func (s ButtonState) String() string {
	if s == Pressed {
		return "Pressed"
	}
	return "Released"
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
	MouseBack
	MouseForward
)

func (b MouseButton) String() string {
	switch b {
	case MouseLeft:
		return "Left"
	case MouseRight:
		return "Right"
	case MouseMiddle:
		return "Middle"
	case MouseBack:
		return "Back"
	case MouseForward:
		return "Forward"
	default:
		return fmt.Sprintf("MouseButton(%d)", b)
	}
}

// Modifiers is the keyboard modifier state. System is the Super, Windows
// or Command key.
type Modifiers struct {
	Alt, Shift, Control, System bool
}

// OsEvent is one translated input event. Only the fields of its Kind are
// meaningful:
//
//	MouseWheel         DX, DY
//	MouseInput         Button, State
//	CursorMoved        X, Y
//	KeyboardModifiers  Modifiers
//	KeyboardInput      Key, State, Text (0 unless Key is KeyUnknown)
//	Focus              Focused
//	Resized            Width, Height
type OsEvent struct {
	Kind EventKind

	DX, DY float64
	X, Y   float64

	Button MouseButton
	State  ButtonState

	Modifiers Modifiers
	Key       KeyCode
	Text      rune

	Focused       bool
	Width, Height int
}

func (e OsEvent) String() string {
	switch e.Kind {
	case MouseWheel:
		return fmt.Sprintf("MouseWheel(%g, %g)", e.DX, e.DY)
	case MouseInput:
		return fmt.Sprintf("MouseInput(%s, %s)", e.Button, e.State)
	case CursorMoved:
		return fmt.Sprintf("CursorMoved(%g, %g)", e.X, e.Y)
	case KeyboardModifiers:
		return fmt.Sprintf("KeyboardModifiers%+v", e.Modifiers)
	case KeyboardInput:
		if e.Key == KeyUnknown && e.Text != 0 {
			return fmt.Sprintf("KeyboardInput(%q)", e.Text)
		}
		return fmt.Sprintf("KeyboardInput(%s, %s)", e.Key, e.State)
	case Focus:
		return fmt.Sprintf("Focus(%t)", e.Focused)
	case Resized:
		return fmt.Sprintf("Resized(%d, %d)", e.Width, e.Height)
	default:
		return e.Kind.String()
	}
}
