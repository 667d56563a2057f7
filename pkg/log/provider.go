// Package log provides the default logger provider implementation.
//
// This file wires the Logger interface to Go's log/slog with the JSON handler
// and stacktrace-extracting ErrFmtHandler used across the library. Library
// code obtains loggers through the package-level GetLogger and
// GetLoggerWithName functions; tests inject a TestLoggerProvider through
// SetLoggerProvider.

package log

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

// slogLogger adapts *slog.Logger to the Logger interface.
type slogLogger struct {
	logger *slog.Logger
}

// Debug implements Logger.Debug.
func (l *slogLogger) Debug(msg string, fields ...any) {
	l.logger.Debug(msg, normalizeErrField(fields)...)
}

// Info implements Logger.Info.
func (l *slogLogger) Info(msg string, fields ...any) {
	l.logger.Info(msg, normalizeErrField(fields)...)
}

// Warn implements Logger.Warn.
func (l *slogLogger) Warn(msg string, fields ...any) {
	l.logger.Warn(msg, normalizeErrField(fields)...)
}

// Error implements Logger.Error.
func (l *slogLogger) Error(msg string, fields ...any) {
	l.logger.Error(msg, normalizeErrField(fields)...)
}

// With implements Logger.With.
func (l *slogLogger) With(fields ...any) Logger {
	return &slogLogger{logger: l.logger.With(normalizeErrField(fields)...)}
}

// Enabled implements Logger.Enabled.
func (l *slogLogger) Enabled(ctx context.Context, level Level) bool {
	return l.logger.Enabled(ctx, slog.Level(level))
}

// normalizeErrField rewrites a leading bare error value into the error
// attribute so ErrFmtHandler can attach its stacktrace.
func normalizeErrField(fields []any) []any {
	if len(fields) == 0 {
		return fields
	}
	if err, ok := fields[0].(error); ok {
		normalized := make([]any, 0, len(fields)+1)
		normalized = append(normalized, ErrAttr(err))
		normalized = append(normalized, fields[1:]...)
		return normalized
	}
	return fields
}

// defaultProvider is the slog-backed LoggerProvider used outside of tests.
type defaultProvider struct {
	level *slog.LevelVar
	root  *slog.Logger
}

func newDefaultProvider() *defaultProvider {
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)

	ops := handlerOptions(level)
	handler := WrapByErrFmtHandler(slog.NewJSONHandler(os.Stdout, &ops))

	return &defaultProvider{
		level: level,
		root:  slog.New(handler),
	}
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *defaultProvider) GetLogger() Logger {
	return &slogLogger{logger: p.root}
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *defaultProvider) GetLoggerWithName(name string) Logger {
	return &slogLogger{logger: p.root.With(ComponentKey, name)}
}

// SetLevel implements LoggerProvider.SetLevel.
func (p *defaultProvider) SetLevel(level Level) {
	p.level.Set(slog.Level(level))
}

var (
	providerMu sync.RWMutex
	provider   LoggerProvider = newDefaultProvider()
)

// SetLoggerProvider replaces the package-wide provider.
// Pass a TestLoggerProvider in tests to capture library logs.
func SetLoggerProvider(p LoggerProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	provider = p
}

// GetLogger returns the default logger from the current provider.
func GetLogger() Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLogger()
}

// GetLoggerWithName returns a named logger from the current provider.
// The name identifies the component, e.g. "ensemble.random_forest".
func GetLoggerWithName(name string) Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLoggerWithName(name)
}

// SetLevel sets the minimum level on the current provider.
func SetLevel(level Level) {
	providerMu.RLock()
	defer providerMu.RUnlock()
	provider.SetLevel(level)
}
