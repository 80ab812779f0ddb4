package ui

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger keeps the printf-style surface used across the tool on top of zap.
type Logger struct {
	Debug bool
	z     *zap.SugaredLogger
}

func NewLogger(debug bool) *Logger {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	enc.EncodeCaller = nil
	enc.TimeKey = ""
	if debug {
		enc.TimeKey = "T"
		enc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(enc),
		zapcore.Lock(os.Stderr),
		level,
	)

	return &Logger{Debug: debug, z: zap.New(core).Sugar()}
}

// NopLogger discards everything.
func NopLogger() *Logger {
	return &Logger{z: zap.NewNop().Sugar()}
}

// With returns a logger that prefixes every entry with the given key/value pairs.
func (l *Logger) With(kv ...any) *Logger {
	return &Logger{Debug: l.Debug, z: l.z.With(kv...)}
}

func (l *Logger) Debugf(format string, args ...any) {
	l.z.Debugf(trim(format), args...)
}

func (l *Logger) Infof(format string, args ...any) {
	l.z.Infof(trim(format), args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.z.Warnf(trim(format), args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.z.Errorf(trim(format), args...)
}

func (l *Logger) Sync() {
	_ = l.z.Sync()
}

// zap terminates every entry itself.
func trim(format string) string {
	return strings.TrimRight(format, "\n")
}
