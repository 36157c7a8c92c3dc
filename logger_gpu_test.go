//go:build !nogpu

package uirender

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// SetLogger reaches the texture caches in internal/gpu.
func TestSetLoggerPropagatesToCaches(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	r := newTestRenderer(t)
	var dc DrawingContext
	quad(&dc, 0, 0, 10, 10, White)
	dc.PushCommand(NewRect(0, 0, 640, 480), NewRect(0, 0, 10, 10), nil, TextureRef(3), 1)
	if err := r.Render(&recordingEncoder{}, target(t, r), &dc); err != nil {
		t.Fatalf("Render() = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"renderer created", "texture unavailable, using fallback", "frame rendered"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
