package slogx

import (
	"log/slog"
	"net/http"
	"time"
)

// RequestIDHeader carries the correlation id between the shell, the client
// SDK and the price API.
const RequestIDHeader = "X-Request-ID"

// HTTPMiddleware adopts or mints the request id, echoes it back, and serves
// the request with a logger bound to it. One line per request is logged
// once the handler returns; 5xx answers log at error level.
func HTTPMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	base = OrDefault(base)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqID := r.Header.Get(RequestIDHeader)
			if reqID == "" {
				reqID = RequestIDOrNew(r.Context())
			}
			w.Header().Set(RequestIDHeader, reqID)

			logger := base.With("req_id", reqID, "method", r.Method, "path", r.URL.Path)
			ctx := WithRequestID(WithContext(r.Context(), logger), reqID)

			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r.WithContext(ctx))

			level := slog.LevelInfo
			if rec.status() >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.Log(ctx, level, "http_request",
				"status", rec.status(),
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}

// statusRecorder remembers the status code written, 200 when the handler
// only wrote a body.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (rec *statusRecorder) WriteHeader(code int) {
	if rec.code == 0 {
		rec.code = code
	}
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) status() int {
	if rec.code == 0 {
		return http.StatusOK
	}
	return rec.code
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rec *statusRecorder) Unwrap() http.ResponseWriter { return rec.ResponseWriter }
