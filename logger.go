package ggcompose

import (
	"log/slog"

	"github.com/gogpu/gg"

	"github.com/gogpu/ggcompose/internal/logging"
)

// SetLogger configures the logger for ggcompose, its sub-packages and gg.
// By default nothing is logged. Pass nil to restore silent output.
//
// Log levels:
//   - [slog.LevelDebug]: per-frame skips (no camera, missing fragment,
//     ignored resize)
//   - [slog.LevelInfo]: lifecycle (canvas created, renderer ready)
//   - [slog.LevelWarn]: dropped frames
//
// SetLogger is safe for concurrent use.
func SetLogger(l *slog.Logger) {
	logging.SetLogger(l)
	gg.SetLogger(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return logging.Logger()
}
