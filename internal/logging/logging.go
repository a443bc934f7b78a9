// Package logging builds the process logger and the writers the HTTP and
// database layers log through.
package logging

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Tomlord1122/dashboard-backend/internal/config"
)

// Logger bundles the structured logger with its underlying writer.
type Logger struct {
	*slog.Logger
	Writer io.Writer
	// Rotating is true when output goes to a lumberjack-managed file.
	Rotating bool
}

// New returns a text-format slog logger writing to stdout, or to a rotating
// file when cfg.File is set.
func New(cfg config.LogConfig) *Logger {
	var w io.Writer = os.Stdout
	rotating := false
	if cfg.File != "" {
		w = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		}
		rotating = true
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(cfg.Level)})
	return &Logger{Logger: slog.New(handler), Writer: w, Rotating: rotating}
}

// Std adapts the logger for APIs that want a *log.Logger (chi, gorm, goose).
func (l *Logger) Std(level slog.Level) *log.Logger {
	return slog.NewLogLogger(l.Handler(), level)
}

// Close releases the rotating file, if any.
func (l *Logger) Close() error {
	if c, ok := l.Writer.(io.Closer); ok && l.Rotating {
		return c.Close()
	}
	return nil
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops everything, for tests.
func Discard() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Writer: io.Discard,
	}
}
