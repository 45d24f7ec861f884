// Package logging provides the shared structured logger for the scoring
// engine. It wraps zap's SugaredLogger behind package-level printf-style
// helpers so call sites stay terse.
package logging

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	logger *zap.SugaredLogger = newDefaultLogger()
)

func newDefaultLogger() *zap.SugaredLogger {
	l, err := buildLogger("info", "console")
	if err != nil {
		// zap's production config cannot fail with the fixed inputs above;
		// fall back to a no-op logger rather than panic during init.
		return zap.NewNop().Sugar()
	}
	return l
}

func buildLogger(level, encoding string) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = encoding
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg.Level = zap.NewAtomicLevelAt(parsed)

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

// Init configures the package logger with an explicit level ("debug", "info",
// "warn", "error") and encoding ("console" or "json").
func Init(level, encoding string) (*zap.SugaredLogger, error) {
	l, err := buildLogger(level, encoding)
	if err != nil {
		return nil, err
	}
	mu.Lock()
	logger = l
	mu.Unlock()
	return l, nil
}

// InitFromEnv configures the package logger from LOG_LEVEL and LOG_ENCODING.
// Unset variables default to info/console.
func InitFromEnv() (*zap.SugaredLogger, error) {
	level := strings.ToLower(os.Getenv("LOG_LEVEL"))
	if level == "" {
		level = "info"
	}
	encoding := strings.ToLower(os.Getenv("LOG_ENCODING"))
	if encoding != "json" {
		encoding = "console"
	}
	return Init(level, encoding)
}

func get() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Debugf logs a formatted message at debug level.
func Debugf(format string, args ...interface{}) {
	get().Debugf(format, args...)
}

// Infof logs a formatted message at info level.
func Infof(format string, args ...interface{}) {
	get().Infof(format, args...)
}

// Warnf logs a formatted message at warn level.
func Warnf(format string, args ...interface{}) {
	get().Warnf(format, args...)
}

// Errorf logs a formatted message at error level.
func Errorf(format string, args ...interface{}) {
	get().Errorf(format, args...)
}

// Fatalf logs a formatted message and exits the process.
func Fatalf(format string, args ...interface{}) {
	get().Fatalf(format, args...)
}
