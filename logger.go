package uirender

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for uirender and its sub-packages.
// By default, uirender produces no log output. Pass nil to restore the
// silent default.
//
// Log levels used by uirender:
//   - [slog.LevelDebug]: per-frame diagnostics (staged bytes, draw counts)
//   - [slog.LevelInfo]: lifecycle events (renderer created, destroyed)
//   - [slog.LevelWarn]: texture fallbacks and upload failures
//
// Example:
//
//	uirender.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	propagateLogger(l)
}

// Logger returns the current logger used by uirender.
// Sub-packages (fontatlas, integration/uihost) call this to share the same
// configuration without import cycles.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
