package logger

import (
	"context"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLevel is the log level used when none is configured.
const DefaultLevel = zapcore.InfoLevel

//nolint:gochecknoglobals // Package-level logger state is intentional here.
var (
	globalMu     sync.RWMutex
	globalLogger *zap.Logger
	globalLevel  = zap.NewAtomicLevelAt(DefaultLevel)
)

// loggerContextKey is the context key under which a request-scoped logger is stored.
type loggerContextKey struct{}

//nolint:gochecknoinits // The package must be usable before any explicit setup.
func init() {
	globalLogger = New(globalLevel)
}

// New creates a logger writing human-readable output to stderr.
// A nil enabler falls back to the default level.
func New(level zapcore.LevelEnabler) *zap.Logger {
	if level == nil {
		level = DefaultLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(os.Stderr),
		level)

	return zap.New(core)
}

// ParseLogLevel converts a textual log level into a zapcore.Level.
// The second return value reports whether the input was recognized;
// unrecognized or empty input yields the default level and false.
func ParseLogLevel(levelStr string) (zapcore.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return zapcore.DebugLevel, true
	case "info":
		return zapcore.InfoLevel, true
	case "warn":
		return zapcore.WarnLevel, true
	case "error":
		return zapcore.ErrorLevel, true
	case "dpanic":
		return zapcore.DPanicLevel, true
	case "panic":
		return zapcore.PanicLevel, true
	case "fatal":
		return zapcore.FatalLevel, true
	default:
		return DefaultLevel, false
	}
}

// Logger returns the process-wide logger.
func Logger() *zap.Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()

	return globalLogger
}

// SetLogger replaces the process-wide logger. Nil loggers are ignored.
func SetLogger(l *zap.Logger) {
	if l == nil {
		return
	}

	globalMu.Lock()
	defer globalMu.Unlock()

	globalLogger = l
}

// Level returns the current level of the process-wide logger.
func Level() zapcore.Level {
	return globalLevel.Level()
}

// SetLevel changes the level of the process-wide logger.
func SetLevel(level zapcore.Level) {
	globalLevel.SetLevel(level)
}

// IsDebugLevel reports whether debug output is currently enabled.
func IsDebugLevel() bool {
	return Level() <= zapcore.DebugLevel
}

// ToContext stores a logger in the context.
// Log calls receiving that context use the stored logger instead of the global one.
func ToContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, l)
}

func fromContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerContextKey{}).(*zap.Logger); ok && l != nil {
			return l
		}
	}

	return Logger()
}

// Debug logs a message at debug level.
func Debug(ctx context.Context, msg string) {
	fromContext(ctx).Debug(msg)
}

// Debugf logs a formatted message at debug level.
func Debugf(ctx context.Context, format string, args ...any) {
	fromContext(ctx).Sugar().Debugf(format, args...)
}

// DebugKV logs a message at debug level with alternating key-value pairs.
func DebugKV(ctx context.Context, msg string, kvs ...any) {
	fromContext(ctx).Sugar().Debugw(msg, kvs...)
}

// Info logs a message at info level.
func Info(ctx context.Context, msg string) {
	fromContext(ctx).Info(msg)
}

// Infof logs a formatted message at info level.
func Infof(ctx context.Context, format string, args ...any) {
	fromContext(ctx).Sugar().Infof(format, args...)
}

// InfoKV logs a message at info level with alternating key-value pairs.
func InfoKV(ctx context.Context, msg string, kvs ...any) {
	fromContext(ctx).Sugar().Infow(msg, kvs...)
}

// Warn logs a message at warn level.
func Warn(ctx context.Context, msg string) {
	fromContext(ctx).Warn(msg)
}

// Warnf logs a formatted message at warn level.
func Warnf(ctx context.Context, format string, args ...any) {
	fromContext(ctx).Sugar().Warnf(format, args...)
}

// WarnKV logs a message at warn level with alternating key-value pairs.
func WarnKV(ctx context.Context, msg string, kvs ...any) {
	fromContext(ctx).Sugar().Warnw(msg, kvs...)
}

// Error logs a message at error level.
func Error(ctx context.Context, msg string) {
	fromContext(ctx).Error(msg)
}

// Errorf logs a formatted message at error level.
func Errorf(ctx context.Context, format string, args ...any) {
	fromContext(ctx).Sugar().Errorf(format, args...)
}

// ErrorKV logs a message at error level with alternating key-value pairs.
func ErrorKV(ctx context.Context, msg string, kvs ...any) {
	fromContext(ctx).Sugar().Errorw(msg, kvs...)
}

// Fatalf logs a formatted message at fatal level and exits the process.
func Fatalf(ctx context.Context, format string, args ...any) {
	fromContext(ctx).Sugar().Fatalf(format, args...)
}
