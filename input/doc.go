// Package input translates platform window events into a toolkit-agnostic
// event stream for the UI layer.
//
// A Translator attaches to a gpucontext.EventSource and delivers OsEvent
// values to a Handler:
//
//   - key presses and releases become a KeyboardModifiers event followed by
//     a KeyboardInput event;
//   - text input is NFC-normalized and delivered one rune per
//     KeyboardInput event with KeyUnknown;
//   - mouse buttons, cursor motion, wheel, focus and resize map directly.
//
// Platform keys without a KeyCode are dropped.
package input
