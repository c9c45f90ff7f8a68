package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type implLogger struct {
	zl zerolog.Logger
}

// New creates a Logger writing to stdout. format is "json" or "console".
func New(level, format string) Logger {
	var out io.Writer = os.Stdout
	if strings.EqualFold(format, "console") {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return NewWithWriter(out, level)
}

// NewWithWriter creates a Logger writing JSON lines to w.
func NewWithWriter(w io.Writer, level string) Logger {
	return &implLogger{
		zl: zerolog.New(w).Level(parseLevel(level)).With().
			Timestamp().
			Str("service", "meetsort").
			Logger(),
	}
}

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func (l *implLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	l.zl.Debug().Msgf(msg, args...)
}

func (l *implLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	l.zl.Info().Msgf(msg, args...)
}

func (l *implLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	l.zl.Warn().Msgf(msg, args...)
}

func (l *implLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	l.zl.Error().Msgf(msg, args...)
}

func (l *implLogger) With(key, value string) Logger {
	return &implLogger{zl: l.zl.With().Str(key, value).Logger()}
}

// Nop returns a Logger that discards everything. Useful in tests.
func Nop() Logger {
	return &implLogger{zl: zerolog.Nop()}
}
