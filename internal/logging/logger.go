// Package logging builds the process logger. Packages receive it by injection.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// ParseLevel maps a level name to a Level. Unknown names fall back to def.
func ParseLevel(s string, def Level) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return def
	}
}

// New returns a timestamped logger writing to stderr. LOG_LEVEL overrides
// level when set to a known name.
func New(level Level) *log.Logger {
	return NewWriter(os.Stderr, ParseLevel(os.Getenv("LOG_LEVEL"), level))
}

func NewWriter(w io.Writer, level Level) *log.Logger {
	l := log.New(w)
	l.SetReportTimestamp(true)
	setLevel(l, level)
	return l
}

func setLevel(l *log.Logger, level Level) {
	switch level {
	case DebugLevel:
		l.SetLevel(log.DebugLevel)
	case WarnLevel:
		l.SetLevel(log.WarnLevel)
	case ErrorLevel:
		l.SetLevel(log.ErrorLevel)
	default:
		l.SetLevel(log.InfoLevel)
	}
}

// Component tags a logger with the subsystem that owns it.
func Component(l *log.Logger, name string) *log.Logger {
	return l.With("component", name)
}
