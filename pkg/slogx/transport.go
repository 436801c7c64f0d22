package slogx

import (
	"log/slog"
	"net/http"
	"time"
)

// Transport is an http.RoundTripper that stamps outbound requests with the
// context's request id, or a fresh one, and logs their outcome. Bearer
// credentials are never logged.
type Transport struct {
	Base   http.RoundTripper
	Logger *slog.Logger
}

// NewTransport wraps base (http.DefaultTransport when nil).
func NewTransport(base http.RoundTripper, logger *slog.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{Base: base, Logger: logger}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqID := req.Header.Get(RequestIDHeader)
	if reqID == "" {
		// RoundTrippers must not modify the caller's request.
		req = req.Clone(req.Context())
		reqID = RequestIDOrNew(req.Context())
		req.Header.Set(RequestIDHeader, reqID)
	}

	logger := t.Logger
	if logger == nil {
		logger = FromContext(req.Context())
	}
	logger = logger.With("req_id", reqID, "method", req.Method, "path", req.URL.Path)

	start := time.Now()
	resp, err := t.Base.RoundTrip(req)
	duration := time.Since(start).Milliseconds()

	if err != nil {
		logger.Warn("api_request_failed", "duration_ms", duration, "error", err)
		return nil, err
	}

	level := slog.LevelDebug
	if resp.StatusCode >= http.StatusBadRequest {
		level = slog.LevelInfo
	}
	logger.Log(req.Context(), level, "api_request", "status", resp.StatusCode, "duration_ms", duration)

	return resp, nil
}
