// Package logger provides the process-wide Sugared Zap logger and an
// injectable Logger type for components that receive their logging
// capability at construction. Entries are emitted as JSON to stdout and are
// enriched with the OpenTelemetry trace and span ids found in the context.
// When an OpenTelemetry LoggerProvider is available, entries are also
// forwarded to it through the otelzap bridge.
package logger

import (
	"context"
	"os"
	"sync"

	"github.com/gabapcia/safewatch/internal/pkg/telemetry"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// std is the process logger. It discards everything until Init is called.
	std = Nop()

	// initOnce ensures the process logger is only configured a single time.
	initOnce sync.Once
)

// Logger is a leveled, structured logger bound to a zap SugaredLogger.
// The zero value is not usable; build one with New, FromZap or Nop.
type Logger struct {
	base *zap.SugaredLogger
}

// config holds configuration options for the logger.
type config struct {
	level    string             // the minimum log level (debug, info, warn, error, panic, fatal)
	provider log.LoggerProvider // optional OTEL destination for every entry
}

// instrumentationScope names the entries forwarded to OpenTelemetry.
const instrumentationScope = "github.com/gabapcia/safewatch"

// Option configures the logger before initialization.
type Option func(*config)

// WithLevel sets the minimum log level.
// Example levels: "debug", "info", "warn", "error", "panic", "fatal".
func WithLevel(l string) Option {
	return func(c *config) {
		c.level = l
	}
}

// WithLoggerProvider forwards every entry to lp as well. Without it, the
// provider built by telemetry.Init is used when telemetry is enabled.
func WithLoggerProvider(lp log.LoggerProvider) Option {
	return func(c *config) {
		c.provider = lp
	}
}

// New builds a Logger writing JSON entries to stdout, teed into the OTEL
// bridge when a LoggerProvider is configured. By default it logs at the
// "info" level. It returns an error if the configured level is invalid.
func New(opts ...Option) (*Logger, error) {
	cfg := config{level: "info"}
	if lp := telemetry.LoggerProvider(); lp != nil {
		cfg.provider = lp
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	level, err := zapcore.ParseLevel(cfg.level)
	if err != nil {
		return nil, err
	}

	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(os.Stdout),
			level,
		),
	}

	if cfg.provider != nil {
		cores = append(cores, otelzap.NewCore(instrumentationScope, otelzap.WithLoggerProvider(cfg.provider)))
	}

	return FromZap(zap.New(zapcore.NewTee(cores...))), nil
}

// FromZap wraps an existing zap logger. Tests use it together with
// zaptest/observer to assert on recorded entries.
func FromZap(l *zap.Logger) *Logger {
	return &Logger{base: l.Sugar()}
}

// Nop returns a Logger that discards every entry.
func Nop() *Logger {
	return FromZap(zap.NewNop())
}

// Init configures the process logger. Calling Init multiple times has no
// effect after the first successful initialization.
func Init(opts ...Option) error {
	l, err := New(opts...)
	if err != nil {
		return err
	}

	initOnce.Do(func() {
		std = l
	})

	return nil
}

// Default returns the process logger.
func Default() *Logger {
	return std
}

// Sync flushes any buffered log entries of the process logger. It should be
// called on application shutdown.
func Sync() error {
	return std.Sync()
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	return l.base.Sync()
}

// With returns a child Logger that always adds the given key/value pairs.
func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{base: l.base.With(keysAndValues...)}
}

// traceFields extracts trace and span ids from the span stored in ctx.
func traceFields(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}

	sc := trace.SpanContextFromContext(ctx)

	var fields []any
	if sc.HasTraceID() {
		fields = append(fields, "trace_id", sc.TraceID().String())
	}
	if sc.HasSpanID() {
		fields = append(fields, "span_id", sc.SpanID().String())
	}
	return fields
}

func (l *Logger) log(ctx context.Context, level zapcore.Level, msg string, keysAndValues []any) {
	base := l.base
	if fields := traceFields(ctx); len(fields) > 0 {
		base = base.With(fields...)
	}

	base.Logw(level, msg, keysAndValues...)
}

// Debug logs a debug-level message with optional key/value context.
func (l *Logger) Debug(ctx context.Context, msg string, keysAndValues ...any) {
	l.log(ctx, zapcore.DebugLevel, msg, keysAndValues)
}

// Info logs an info-level message with optional key/value context.
func (l *Logger) Info(ctx context.Context, msg string, keysAndValues ...any) {
	l.log(ctx, zapcore.InfoLevel, msg, keysAndValues)
}

// Warn logs a warn-level message with optional key/value context.
func (l *Logger) Warn(ctx context.Context, msg string, keysAndValues ...any) {
	l.log(ctx, zapcore.WarnLevel, msg, keysAndValues)
}

// Error logs an error-level message with optional key/value context.
func (l *Logger) Error(ctx context.Context, msg string, keysAndValues ...any) {
	l.log(ctx, zapcore.ErrorLevel, msg, keysAndValues)
}

// Debug logs a debug-level message on the process logger.
func Debug(ctx context.Context, msg string, keysAndValues ...any) {
	std.Debug(ctx, msg, keysAndValues...)
}

// Info logs an info-level message on the process logger.
func Info(ctx context.Context, msg string, keysAndValues ...any) {
	std.Info(ctx, msg, keysAndValues...)
}

// Warn logs a warn-level message on the process logger.
func Warn(ctx context.Context, msg string, keysAndValues ...any) {
	std.Warn(ctx, msg, keysAndValues...)
}

// Error logs an error-level message on the process logger.
func Error(ctx context.Context, msg string, keysAndValues ...any) {
	std.Error(ctx, msg, keysAndValues...)
}

// Fatal logs a fatal-level message on the process logger and exits.
func Fatal(ctx context.Context, msg string, keysAndValues ...any) {
	std.log(ctx, zapcore.FatalLevel, msg, keysAndValues)
}
