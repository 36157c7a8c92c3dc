//go:build nogpu

package uirender

import "log/slog"

func propagateLogger(*slog.Logger) {}
