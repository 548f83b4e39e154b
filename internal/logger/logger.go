package logger

import (
	"log/slog"
	"os"
)

var Logger *slog.Logger

// Init installs the process-wide text handler. Debug switches the
// level; everything logs through slog after this point.
func Init(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	Logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(Logger)
}
