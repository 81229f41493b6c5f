// Package obslog is the ambient logging surface used around the arena
// package: the allocators themselves never log, but code that sets one up,
// drives a demo, or reports on its health does, through a small
// component-scoped wrapper over zap.
package obslog

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field is a single structured log attribute. It is a thin alias over
// zap.Field so callers never need to import zap directly just to log.
type Field = zap.Field

// Logger is a component-scoped structured logger. The zero value is not
// usable; construct one with New or Default.
type Logger struct {
	component string
	zl        *zap.Logger
}

// New wraps an existing *zap.Logger, scoping every message to component.
func New(component string, zl *zap.Logger) *Logger {
	return &Logger{component: component, zl: zl.With(zap.String("component", component))}
}

// Default builds a development-mode zap logger (colorized console output,
// DEBUG and above) scoped to component, suitable for the demo binary and
// for tests that want to see what happened.
func Default(component string) *Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	zl, err := cfg.Build()
	if err != nil {
		zl = zap.NewNop()
	}
	return New(component, zl)
}

// With returns a new Logger with fields permanently attached to every
// subsequent message, leaving the receiver untouched.
func (l *Logger) With(fields ...Field) *Logger {
	return &Logger{component: l.component, zl: l.zl.With(fields...)}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.zl.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...Field)  { l.zl.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.zl.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...Field) { l.zl.Error(msg, fields...) }

// Sync flushes any buffered log entries, best effort. Callers typically
// defer it right after constructing a Logger with Default.
func (l *Logger) Sync() {
	_ = l.zl.Sync()
}

// Field constructors, re-exported so callers never need a direct zap
// import.
func String(key, value string) Field             { return zap.String(key, value) }
func Int(key string, value int) Field            { return zap.Int(key, value) }
func Uint32(key string, value uint32) Field      { return zap.Uint32(key, value) }
func Uint64(key string, value uint64) Field      { return zap.Uint64(key, value) }
func Duration(key string, d time.Duration) Field { return zap.Duration(key, d) }
func Err(err error) Field                        { return zap.Error(err) }
func Any(key string, value interface{}) Field    { return zap.Any(key, value) }
