package cli

import (
	"io"
	"log/slog"

	"github.com/mesh-intelligence/kladia/internal/paths"
	"github.com/mesh-intelligence/kladia/pkg/types"
)

// newLogger builds the logger for one invocation from validated config
// values. Every record carries the application name.
func newLogger(level, format string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if format == types.LogFormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler).With("app", paths.AppName)
}
