package slogx

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/memo/pkg/idx"
)

type ctxKey struct{}

// WithContext attaches logger to ctx. Service code picks it up with
// FromContext, so its lines carry the request or run fields.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger attached to ctx, or slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// StartRun tags base with a fresh run_id for one pass of a background job
// and attaches it to ctx.
func StartRun(ctx context.Context, base *slog.Logger) (context.Context, *slog.Logger) {
	logger := base.With("run_id", idx.New().String())
	return WithContext(ctx, logger), logger
}
