// Package logger provides the logging facade used throughout fogoctl.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Field is a structured key/value pair attached to a log entry.
type Field struct {
	Key   string
	Value any
}

// Logger is the logging interface used by all fogoctl components.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

type zerologLogger struct {
	l zerolog.Logger
}

// New returns a console Logger writing to stderr at the given level.
// An invalid or empty level falls back to info.
func New(level string) Logger {
	return NewWithWriter(level, zerolog.ConsoleWriter{Out: os.Stderr})
}

// NewWithWriter returns a Logger writing to the given writer.
func NewWithWriter(level string, w io.Writer) Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	l := zerolog.New(w).With().Timestamp().Logger().Level(lvl)
	return &zerologLogger{l: l}
}

// Nop returns a Logger that discards all output. Useful in tests.
func Nop() Logger {
	return &zerologLogger{l: zerolog.Nop()}
}

func (z *zerologLogger) Debug(msg string, fields ...Field) { z.emit(z.l.Debug(), msg, fields) }
func (z *zerologLogger) Info(msg string, fields ...Field)  { z.emit(z.l.Info(), msg, fields) }
func (z *zerologLogger) Warn(msg string, fields ...Field)  { z.emit(z.l.Warn(), msg, fields) }
func (z *zerologLogger) Error(msg string, fields ...Field) { z.emit(z.l.Error(), msg, fields) }

func (z *zerologLogger) emit(e *zerolog.Event, msg string, fields []Field) {
	for _, f := range fields {
		e = e.Interface(f.Key, f.Value)
	}
	e.Msg(msg)
}
