package fontatlas

import (
	"log/slog"

	"github.com/gogpu/uirender"
)

// logger returns the shared uirender logger, so uirender.SetLogger also
// configures this package.
func logger() *slog.Logger { return uirender.Logger() }
