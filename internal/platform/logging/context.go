package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

type loggerKey struct{}

var fallback atomic.Pointer[slog.Logger]

func init() {
	fallback.Store(slog.Default())
}

// SetDefault installs logger as the process-wide fallback and as slog's default.
func SetDefault(logger *slog.Logger) {
	fallback.Store(logger)
	slog.SetDefault(logger)
}

// WithContext returns ctx carrying logger.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// Scoped returns the logger carried by ctx, if there is one.
func Scoped(ctx context.Context) (*slog.Logger, bool) {
	if ctx == nil {
		return nil, false
	}

	logger, ok := ctx.Value(loggerKey{}).(*slog.Logger)

	return logger, ok
}

// FromContext returns the logger carried by ctx, else the fallback.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := Scoped(ctx); ok {
		return logger
	}

	return fallback.Load()
}

// With returns ctx carrying FromContext(ctx) extended with attrs, so every
// later record made through ctx is tagged, e.g. with the request ID.
func With(ctx context.Context, attrs ...slog.Attr) context.Context {
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}

	return WithContext(ctx, FromContext(ctx).With(args...))
}
