//go:build !nogpu

package uirender

import (
	"log/slog"

	"github.com/gogpu/uirender/internal/gpu"
)

func propagateLogger(l *slog.Logger) { gpu.SetLogger(l) }
