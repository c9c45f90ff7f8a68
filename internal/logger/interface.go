package logger

import "context"

// Logger is the printf-style logger passed to every component.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...interface{})
	Info(ctx context.Context, msg string, args ...interface{})
	Warn(ctx context.Context, msg string, args ...interface{})
	Error(ctx context.Context, msg string, args ...interface{})

	// With returns a child logger that tags every entry with key=value.
	With(key, value string) Logger
}
