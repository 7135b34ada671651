// Package logger builds the zerolog loggers used by the CLI and the
// pipeline. Logs go to stderr so the report on stdout stays clean.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the logger.
type Options struct {
	Level   string
	Format  string // "console" or "json"
	Service string
	// RunID, when set, is attached to every line as run_id.
	RunID  string
	Writer io.Writer
}

// Logger is the project-wide logging type.
type Logger = zerolog.Logger

// New builds a logger from opt.
func New(opt Options) Logger {
	var w io.Writer = os.Stderr
	if opt.Writer != nil {
		w = opt.Writer
	}
	if strings.ToLower(opt.Format) != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(w).Level(parseLevel(opt.Level)).With().Timestamp()
	if opt.Service != "" {
		ctx = ctx.Str("service", opt.Service)
	}
	if opt.RunID != "" {
		ctx = ctx.Str("run_id", opt.RunID)
	}
	return ctx.Logger()
}

// Named returns a child of l with a component field.
func Named(l Logger, component string) *Logger {
	child := l.With().Str("component", component).Logger()
	return &child
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
