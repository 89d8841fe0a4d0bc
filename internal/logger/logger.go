// Package logger holds the process-wide structured logger used by the term
// store. It discards everything until Init is called or the TERMSTORE_LOG_GC
// environment variable is set.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvVar enables collector logging to stderr when set. The value "debug"
// lowers the level to slog.LevelDebug.
const EnvVar = "TERMSTORE_LOG_GC"

// L is the global logger instance. It's initialized to discard all output by default.
var L *slog.Logger = fromEnv()

// Options configures the logger initialization.
type Options struct {
	Enabled bool       // If false, all logging is discarded
	Output  io.Writer  // Destination. Default: os.Stderr
	Level   slog.Level // Minimum log level. Default: LevelInfo when enabled
	JSON    bool       // Emit JSON records instead of text
}

// Init configures logging. Call from main() before any log calls.
// If opts.Enabled is false, all log output is discarded.
func Init(opts Options) {
	L = New(opts)
}

// New builds a logger from opts without touching the global instance.
func New(opts Options) *slog.Logger {
	if !opts.Enabled {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	hopts := &slog.HandlerOptions{Level: opts.Level}
	if opts.JSON {
		return slog.New(slog.NewJSONHandler(out, hopts))
	}
	return slog.New(slog.NewTextHandler(out, hopts))
}

func fromEnv() *slog.Logger {
	v := os.Getenv(EnvVar)
	if v == "" {
		return New(Options{})
	}
	level := slog.LevelInfo
	if strings.EqualFold(v, "debug") {
		level = slog.LevelDebug
	}
	return New(Options{Enabled: true, Level: level})
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs an error message with optional key-value pairs.
func Error(msg string, args ...any) { L.Error(msg, args...) }
