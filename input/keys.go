package input

import (
	"fmt"

	"github.com/gogpu/gpucontext"
)

// KeyCode identifies a physical key in the toolkit-agnostic input model.
type KeyCode uint16

// Key codes. KeyUnknown accompanies text input, which carries its rune
// instead of a key.
const (
	KeyUnknown KeyCode = iota
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyEscape
	KeyTab
	KeyBackspace
	KeyEnter
	KeySpace
	KeyInsert
	KeyDelete
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyLeftShift
	KeyRightShift
	KeyLeftControl
	KeyRightControl
	KeyLeftAlt
	KeyRightAlt
	KeyLeftSuper
	KeyRightSuper
	KeyMinus
	KeyEqual
	KeyLeftBracket
	KeyRightBracket
	KeyBackslash
	KeySemicolon
	KeyApostrophe
	KeyGrave
	KeyComma
	KeyPeriod
	KeySlash
	KeyNumpad0
	KeyNumpad1
	KeyNumpad2
	KeyNumpad3
	KeyNumpad4
	KeyNumpad5
	KeyNumpad6
	KeyNumpad7
	KeyNumpad8
	KeyNumpad9
	KeyNumpadDecimal
	KeyNumpadDivide
	KeyNumpadMultiply
	KeyNumpadSubtract
	KeyNumpadAdd
	KeyNumpadEnter
	KeyCapsLock
	KeyScrollLock
	KeyNumLock
	KeyPrintScreen
	KeyPause
)

// keyNames is indexed by KeyCode.
var keyNames = [...]string{
	"Unknown", "A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M",
	"N", "O", "P", "Q", "R", "S", "T", "U", "V", "W", "X", "Y", "Z", "0", "1",
	"2", "3", "4", "5", "6", "7", "8", "9", "F1", "F2", "F3", "F4", "F5", "F6",
	"F7", "F8", "F9", "F10", "F11", "F12", "Escape", "Tab", "Backspace",
	"Enter", "Space", "Insert", "Delete", "Home", "End", "PageUp", "PageDown",
	"Left", "Right", "Up", "Down", "LeftShift", "RightShift", "LeftControl",
	"RightControl", "LeftAlt", "RightAlt", "LeftSuper", "RightSuper", "Minus",
	"Equal", "LeftBracket", "RightBracket", "Backslash", "Semicolon",
	"Apostrophe", "Grave", "Comma", "Period", "Slash", "Numpad0", "Numpad1",
	"Numpad2", "Numpad3", "Numpad4", "Numpad5", "Numpad6", "Numpad7", "Numpad8",
	"Numpad9", "NumpadDecimal", "NumpadDivide", "NumpadMultiply",
	"NumpadSubtract", "NumpadAdd", "NumpadEnter", "CapsLock", "ScrollLock",
	"NumLock", "PrintScreen", "Pause",
}

// String returns the key name without the Key prefix.
func (k KeyCode) String() string {
	if int(k) < len(keyNames) {
		return keyNames[k]
	}
	return fmt.Sprintf("KeyCode(%d)", k)
}

// keyTable maps platform keys one to one. Keys missing from the table are
// dropped by the Translator.
var keyTable = map[gpucontext.Key]KeyCode{
	gpucontext.KeyA:              KeyA,
	gpucontext.KeyB:              KeyB,
	gpucontext.KeyC:              KeyC,
	gpucontext.KeyD:              KeyD,
	gpucontext.KeyE:              KeyE,
	gpucontext.KeyF:              KeyF,
	gpucontext.KeyG:              KeyG,
	gpucontext.KeyH:              KeyH,
	gpucontext.KeyI:              KeyI,
	gpucontext.KeyJ:              KeyJ,
	gpucontext.KeyK:              KeyK,
	gpucontext.KeyL:              KeyL,
	gpucontext.KeyM:              KeyM,
	gpucontext.KeyN:              KeyN,
	gpucontext.KeyO:              KeyO,
	gpucontext.KeyP:              KeyP,
	gpucontext.KeyQ:              KeyQ,
	gpucontext.KeyR:              KeyR,
	gpucontext.KeyS:              KeyS,
	gpucontext.KeyT:              KeyT,
	gpucontext.KeyU:              KeyU,
	gpucontext.KeyV:              KeyV,
	gpucontext.KeyW:              KeyW,
	gpucontext.KeyX:              KeyX,
	gpucontext.KeyY:              KeyY,
	gpucontext.KeyZ:              KeyZ,
	gpucontext.Key0:              Key0,
	gpucontext.Key1:              Key1,
	gpucontext.Key2:              Key2,
	gpucontext.Key3:              Key3,
	gpucontext.Key4:              Key4,
	gpucontext.Key5:              Key5,
	gpucontext.Key6:              Key6,
	gpucontext.Key7:              Key7,
	gpucontext.Key8:              Key8,
	gpucontext.Key9:              Key9,
	gpucontext.KeyF1:             KeyF1,
	gpucontext.KeyF2:             KeyF2,
	gpucontext.KeyF3:             KeyF3,
	gpucontext.KeyF4:             KeyF4,
	gpucontext.KeyF5:             KeyF5,
	gpucontext.KeyF6:             KeyF6,
	gpucontext.KeyF7:             KeyF7,
	gpucontext.KeyF8:             KeyF8,
	gpucontext.KeyF9:             KeyF9,
	gpucontext.KeyF10:            KeyF10,
	gpucontext.KeyF11:            KeyF11,
	gpucontext.KeyF12:            KeyF12,
	gpucontext.KeyEscape:         KeyEscape,
	gpucontext.KeyTab:            KeyTab,
	gpucontext.KeyBackspace:      KeyBackspace,
	gpucontext.KeyEnter:          KeyEnter,
	gpucontext.KeySpace:          KeySpace,
	gpucontext.KeyInsert:         KeyInsert,
	gpucontext.KeyDelete:         KeyDelete,
	gpucontext.KeyHome:           KeyHome,
	gpucontext.KeyEnd:            KeyEnd,
	gpucontext.KeyPageUp:         KeyPageUp,
	gpucontext.KeyPageDown:       KeyPageDown,
	gpucontext.KeyLeft:           KeyLeft,
	gpucontext.KeyRight:          KeyRight,
	gpucontext.KeyUp:             KeyUp,
	gpucontext.KeyDown:           KeyDown,
	gpucontext.KeyLeftShift:      KeyLeftShift,
	gpucontext.KeyRightShift:     KeyRightShift,
	gpucontext.KeyLeftControl:    KeyLeftControl,
	gpucontext.KeyRightControl:   KeyRightControl,
	gpucontext.KeyLeftAlt:        KeyLeftAlt,
	gpucontext.KeyRightAlt:       KeyRightAlt,
	gpucontext.KeyLeftSuper:      KeyLeftSuper,
	gpucontext.KeyRightSuper:     KeyRightSuper,
	gpucontext.KeyMinus:          KeyMinus,
	gpucontext.KeyEqual:          KeyEqual,
	gpucontext.KeyLeftBracket:    KeyLeftBracket,
	gpucontext.KeyRightBracket:   KeyRightBracket,
	gpucontext.KeyBackslash:      KeyBackslash,
	gpucontext.KeySemicolon:      KeySemicolon,
	gpucontext.KeyApostrophe:     KeyApostrophe,
	gpucontext.KeyGrave:          KeyGrave,
	gpucontext.KeyComma:          KeyComma,
	gpucontext.KeyPeriod:         KeyPeriod,
	gpucontext.KeySlash:          KeySlash,
	gpucontext.KeyNumpad0:        KeyNumpad0,
	gpucontext.KeyNumpad1:        KeyNumpad1,
	gpucontext.KeyNumpad2:        KeyNumpad2,
	gpucontext.KeyNumpad3:        KeyNumpad3,
	gpucontext.KeyNumpad4:        KeyNumpad4,
	gpucontext.KeyNumpad5:        KeyNumpad5,
	gpucontext.KeyNumpad6:        KeyNumpad6,
	gpucontext.KeyNumpad7:        KeyNumpad7,
	gpucontext.KeyNumpad8:        KeyNumpad8,
	gpucontext.KeyNumpad9:        KeyNumpad9,
	gpucontext.KeyNumpadDecimal:  KeyNumpadDecimal,
	gpucontext.KeyNumpadDivide:   KeyNumpadDivide,
	gpucontext.KeyNumpadMultiply: KeyNumpadMultiply,
	gpucontext.KeyNumpadSubtract: KeyNumpadSubtract,
	gpucontext.KeyNumpadAdd:      KeyNumpadAdd,
	gpucontext.KeyNumpadEnter:    KeyNumpadEnter,
	gpucontext.KeyCapsLock:       KeyCapsLock,
	gpucontext.KeyScrollLock:     KeyScrollLock,
	gpucontext.KeyNumLock:        KeyNumLock,
	gpucontext.KeyPrintScreen:    KeyPrintScreen,
	gpucontext.KeyPause:          KeyPause,
}

// TranslateKey maps a platform key. ok is false for keys without a
// counterpart, including gpucontext.KeyUnknown.
func TranslateKey(k gpucontext.Key) (code KeyCode, ok bool) {
	code, ok = keyTable[k]
	return code, ok
}
