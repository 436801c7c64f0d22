package slogx

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/pricecheck/pkg/idx"
)

type (
	loggerKey    struct{}
	requestIDKey struct{}
)

// WithContext stores logger in ctx for handlers further down the chain.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the request-scoped logger, or the default logger.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// WithRequestID records the id of the inbound request being served, so
// outbound API calls made on its behalf carry the same id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID is the id recorded by WithRequestID, if any.
func RequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}

// RequestIDOrNew is RequestID, minting a fresh id when ctx has none.
func RequestIDOrNew(ctx context.Context) string {
	if id, ok := RequestID(ctx); ok {
		return id
	}
	return idx.New().String()
}
