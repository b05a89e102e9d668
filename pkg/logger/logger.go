// Package logger configures the process-wide slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Options controls the default logger.
type Options struct {
	// Verbosity is the count of -v flags: 0 warns, 1 informs, 2+ debugs.
	Verbosity int
	JSON      bool
	// File, when set, receives a copy of every log line.
	File string
	// Output defaults to stderr.
	Output io.Writer
}

var logFile *os.File

// Setup installs the default slog logger according to opts.
func Setup(opts Options) error {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return err
		}
		Close()
		logFile = f
		out = io.MultiWriter(out, f)
	}

	handlerOpts := &slog.HandlerOptions{Level: Level(opts.Verbosity)}
	var h slog.Handler
	if opts.JSON {
		h = slog.NewJSONHandler(out, handlerOpts)
	} else {
		h = slog.NewTextHandler(out, handlerOpts)
	}
	slog.SetDefault(slog.New(h))
	return nil
}

// Level maps a verbosity count to a slog level.
func Level(verbosity int) slog.Level {
	switch verbosity {
	case 0:
		return slog.LevelWarn
	case 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// Close releases the log file opened by Setup, if any.
func Close() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}
