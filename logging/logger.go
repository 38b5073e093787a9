// Package logging provides a tiny abstraction over slog so downstream code can
// depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. It also offers a richer PlanMeshLogger with contextual
// helpers (component, plan, step) and domain specific helpers for function
// calls, model calls and plan runs.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// LogLevel is a thin enum for user friendly level configuration decoupled from slog.
type LogLevel int

const (
	// LogLevelDebug is the debug logging level.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is the informational logging level.
	LogLevelInfo
	// LogLevelWarn is the warning logging level.
	LogLevelWarn
	// LogLevelError is the error logging level.
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a case-insensitive level name. Unknown names map to info.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// Logger defines the minimal logging interface used across planmesh.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// OrNoOp returns l, or a NoOpLogger when l is nil.
func OrNoOp(l Logger) Logger {
	if l == nil {
		return NoOpLogger{}
	}
	return l
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// Debug logs a debug message.
func (s *SlogAdapter) Debug(msg string, args ...any) { s.Logger.Debug(msg, args...) }

// Info logs an informational message.
func (s *SlogAdapter) Info(msg string, args ...any) { s.Logger.Info(msg, args...) }

// Warn logs a warning message.
func (s *SlogAdapter) Warn(msg string, args ...any) { s.Logger.Warn(msg, args...) }

// Error logs an error message.
func (s *SlogAdapter) Error(msg string, args ...any) { s.Logger.Error(msg, args...) }

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewDefaultSlogLogger creates a Logger using slog.Default().
func NewDefaultSlogLogger() Logger {
	return NewSlogAdapter(slog.Default())
}

// PlanMeshLogger wraps slog.Logger adding contextual cloning helpers and
// domain convenience methods. With* methods return copies; the receiver is
// never modified.
type PlanMeshLogger struct {
	logger    *slog.Logger
	level     LogLevel
	attrs     []slog.Attr
	component string
	plan      string
}

// LoggerConfig configures construction of a PlanMeshLogger.
type LoggerConfig struct {
	Level     LogLevel
	Format    string // json or text
	Output    io.Writer
	AddSource bool
	Component string
}

// DefaultLoggerConfig returns a baseline JSON info level configuration on stderr.
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{Level: LogLevelInfo, Format: "json", Output: os.Stderr}
}

// NewLogger builds a PlanMeshLogger from a config (or defaults if nil).
func NewLogger(cfg *LoggerConfig) *PlanMeshLogger {
	if cfg == nil {
		cfg = DefaultLoggerConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: slogLevel(cfg.Level), AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}
	return &PlanMeshLogger{logger: slog.New(handler), level: cfg.Level, component: cfg.Component}
}

// NewSlogLogger creates a PlanMeshLogger writing to stderr.
func NewSlogLogger(level LogLevel, format string) *PlanMeshLogger {
	cfg := DefaultLoggerConfig()
	cfg.Level = level
	if format != "" {
		cfg.Format = format
	}
	return NewLogger(cfg)
}

func slogLevel(l LogLevel) slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *PlanMeshLogger) clone() *PlanMeshLogger {
	nl := *l
	nl.attrs = append([]slog.Attr(nil), l.attrs...)
	return &nl
}

// WithContext adds a key/value attribute attached to every log entry.
func (l *PlanMeshLogger) WithContext(key string, value any) *PlanMeshLogger {
	nl := l.clone()
	nl.attrs = append(nl.attrs, slog.Any(key, value))
	return nl
}

// WithComponent sets the logical component (plan, function, model, cli).
func (l *PlanMeshLogger) WithComponent(c string) *PlanMeshLogger {
	nl := l.clone()
	nl.component = c
	return nl
}

// WithPlan attaches the plan name.
func (l *PlanMeshLogger) WithPlan(name string) *PlanMeshLogger {
	nl := l.clone()
	nl.plan = name
	return nl
}

func (l *PlanMeshLogger) baseAttrs() []slog.Attr {
	attrs := make([]slog.Attr, 0, len(l.attrs)+2)
	if l.component != "" {
		attrs = append(attrs, slog.String("component", l.component))
	}
	if l.plan != "" {
		attrs = append(attrs, slog.String("plan", l.plan))
	}
	return append(attrs, l.attrs...)
}

// log emits msg with key/value pairs following slog's alternating convention.
func (l *PlanMeshLogger) log(level slog.Level, msg string, args ...any) {
	if !l.logger.Enabled(context.Background(), level) {
		return
	}
	r := slog.NewRecord(time.Now(), level, msg, 0)
	r.AddAttrs(l.baseAttrs()...)
	r.Add(args...)
	_ = l.logger.Handler().Handle(context.Background(), r)
}

// Debug logs at debug level.
func (l *PlanMeshLogger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args...) }

// Info logs at info level.
func (l *PlanMeshLogger) Info(msg string, args ...any) { l.log(slog.LevelInfo, msg, args...) }

// Warn logs at warn level.
func (l *PlanMeshLogger) Warn(msg string, args ...any) { l.log(slog.LevelWarn, msg, args...) }

// Error logs at error level.
func (l *PlanMeshLogger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args...) }

// LogFunctionCall records execution details for a function invocation.
func (l *PlanMeshLogger) LogFunctionCall(function string, dur time.Duration, err error) {
	LogFunctionCall(l, function, dur, err)
}

// LogStepExecution records the outcome of a single plan step.
func (l *PlanMeshLogger) LogStepExecution(step string, index int, dur time.Duration, err error) {
	args := []any{"step", step, "step_index", index, "duration", dur, "success", err == nil}
	if err != nil {
		l.Error("plan.step.error", append(args, "error", err.Error())...)
		return
	}
	l.Info("plan.step.success", args...)
}

// LogLLMCall records model call latency, token usage and success.
func (l *PlanMeshLogger) LogLLMCall(model string, tokens int, dur time.Duration, err error) {
	LogLLMCall(l, model, tokens, dur, err)
}

// LogPlanExecution records aggregate plan run metrics.
func (l *PlanMeshLogger) LogPlanExecution(plan string, steps int, dur time.Duration, err error) {
	args := []any{"plan", plan, "step_count", steps, "duration", dur, "success", err == nil}
	if err != nil {
		l.Error("plan.run.error", append(args, "error", fmt.Sprint(err))...)
		return
	}
	l.Info("plan.run.success", args...)
}

// StartTimer returns a closure that logs the elapsed duration when invoked.
func (l *PlanMeshLogger) StartTimer(op string) func() {
	start := time.Now()
	return func() { l.Debug("operation.completed", "operation", op, "duration", time.Since(start)) }
}

// LogFunctionCall logs the outcome of a function invocation on l as
// function.invoke.success or function.invoke.error.
func LogFunctionCall(l Logger, function string, dur time.Duration, err error, attrs ...any) {
	args := append([]any{"function", function, "duration_ms", dur.Milliseconds(), "success", err == nil}, attrs...)
	if err != nil {
		OrNoOp(l).Error("function.invoke.error", append(args, "error", err.Error())...)
		return
	}
	OrNoOp(l).Info("function.invoke.success", args...)
}

// LogLLMCall logs the outcome of a model call on l as model.call.success or
// model.call.error.
func LogLLMCall(l Logger, model string, tokens int, dur time.Duration, err error, attrs ...any) {
	args := append([]any{"model", model, "token_count", tokens, "duration_ms", dur.Milliseconds(), "success", err == nil}, attrs...)
	if err != nil {
		OrNoOp(l).Error("model.call.error", append(args, "error", err.Error())...)
		return
	}
	OrNoOp(l).Info("model.call.success", args...)
}

// NoOpLogger discards all log messages. Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}
