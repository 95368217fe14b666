// Package logging holds the logger shared by ggcompose sub-packages.
//
// The root package stores the logger configured with ggcompose.SetLogger here
// so that canvas, pipeline and render can log without importing the root
// package.
package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler silently discards all log records.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// Nop returns a logger that discards everything.
func Nop() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically for thread safety.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(Nop())
}

// Logger returns the current shared logger.
func Logger() *slog.Logger { return loggerPtr.Load() }

// IsSilent reports whether the shared logger is the default discarding one.
func IsSilent() bool {
	_, ok := Logger().Handler().(nopHandler)
	return ok
}

// SetLogger updates the shared logger. A nil logger restores silent output.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = Nop()
	}
	loggerPtr.Store(l)
}
