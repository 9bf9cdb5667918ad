package logger

import (
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var current atomic.Pointer[zap.Logger]

func init() {
	current.Store(zap.NewNop())
}

// ParseLevel maps LOG_LEVEL values onto zap levels, defaulting to info.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zap.DebugLevel
	case "info":
		return zap.InfoLevel
	case "warn", "warning":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

// Init installs a JSON logger writing to stdout.
func Init(level, serviceName string) error {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(ParseLevel(level))
	config.Encoding = "json"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.LevelKey = "log_level"
	config.EncoderConfig.MessageKey = "message"
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.StacktraceKey = ""
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.OutputPaths = []string{"stdout"}

	l, err := config.Build(zap.AddCallerSkip(1))
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	if serviceName != "" {
		l = l.With(zap.String("service_name", serviceName))
	}

	Set(l)
	return nil
}

// Set replaces the package logger. Tests use it with zaptest or observer cores.
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	current.Store(l)
}

// L returns the package logger for callers that want typed fields.
func L() *zap.Logger {
	return current.Load()
}

func Sync() {
	_ = L().Sync()
}

func Debug(format string, args ...any) { L().Debug(fmt.Sprintf(format, args...)) }
func Info(format string, args ...any)  { L().Info(fmt.Sprintf(format, args...)) }
func Warn(format string, args ...any)  { L().Warn(fmt.Sprintf(format, args...)) }
func Error(format string, args ...any) { L().Error(fmt.Sprintf(format, args...)) }
