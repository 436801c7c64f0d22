package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/pricecheck/pkg/slogx"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 4 << 20

// RequestOptions describe one call made through Fetch. The zero value is a
// GET with no body.
type RequestOptions struct {
	Method string

	// Header is copied before use and never modified.
	Header http.Header

	// Body is encoded as JSON when non-nil.
	Body any
}

// Navigator performs a full navigation, as a browser would on
// window.location assignment.
type Navigator interface {
	Navigate(url string)
}

// NavigatorFunc adapts a func to Navigator.
type NavigatorFunc func(url string)

func (f NavigatorFunc) Navigate(url string) { f(url) }

// LogNavigator only records the navigation. It is the default for clients
// with no view layer attached.
type LogNavigator struct {
	Logger *slog.Logger
}

func (n LogNavigator) Navigate(url string) {
	slogx.OrDefault(n.Logger).Info("navigate", "url", url)
}

// Fetch performs an authenticated request and returns the raw JSON body.
// The bearer credential is attached only when one is stored. Errors are
// *NetworkError, *SessionExpiredError or *APIError.
func (c *SDKClient) Fetch(ctx context.Context, path string, opts RequestOptions) (json.RawMessage, error) {
	return c.do(ctx, path, opts, true)
}

// fetchPublic is Fetch without the bearer credential, for the calls that
// establish a session.
func (c *SDKClient) fetchPublic(ctx context.Context, path string, opts RequestOptions) (json.RawMessage, error) {
	return c.do(ctx, path, opts, false)
}

func (c *SDKClient) do(ctx context.Context, path string, opts RequestOptions, authenticated bool) (json.RawMessage, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	target := c.url(path)

	req, err := c.newRequest(ctx, method, target, opts)
	if err != nil {
		return nil, &NetworkError{Method: method, URL: target, Err: err}
	}
	if authenticated && c.Tokens != nil {
		if access, ok := c.Tokens.Access(ctx); ok {
			req.Header.Set("Authorization", "Bearer "+access)
		}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Method: method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &NetworkError{Method: method, URL: target, Err: fmt.Errorf("read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.handleError(ctx, resp.StatusCode, body)
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(body) {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: "invalid JSON response"}
	}
	return json.RawMessage(body), nil
}

func (c *SDKClient) newRequest(ctx context.Context, method, target string, opts RequestOptions) (*http.Request, error) {
	var body io.Reader
	if opts.Body != nil {
		b, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if opts.Header != nil {
		req.Header = opts.Header.Clone()
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if req.Header.Get(slogx.RequestIDHeader) == "" {
		req.Header.Set(slogx.RequestIDHeader, slogx.RequestIDOrNew(ctx))
	}
	return req, nil
}

// handleError maps a non-2xx response. Session expiry clears the tokens and
// navigates before the error is returned.
func (c *SDKClient) handleError(ctx context.Context, status int, body []byte) error {
	parsed := ParseErrorBody(status, body)

	if _, expired := parsed.(TokenExpiredBody); expired {
		c.logger().Info("session expired, forcing login")
		if c.Tokens != nil {
			if err := c.Tokens.Clear(ctx); err != nil {
				c.logger().Error("failed to clear expired credentials", "error", err)
			}
		}
		if c.Navigator != nil {
			c.Navigator.Navigate(SessionExpiredRedirect)
		}
		return &SessionExpiredError{RedirectTo: SessionExpiredRedirect}
	}

	msg := parsed.Message()
	if msg == "" {
		msg = defaultAPIErrorMessage
	}
	return &APIError{StatusCode: status, Message: msg, Body: parsed}
}

// fetchInto runs Fetch (or fetchPublic) and decodes the body into T. A body
// of the wrong shape is an *APIError.
func fetchInto[T any](ctx context.Context, c *SDKClient, path string, opts RequestOptions, authenticated bool) (T, error) {
	var out T
	raw, err := c.do(ctx, path, opts, authenticated)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, &APIError{StatusCode: http.StatusOK, Message: "unexpected response shape", Err: err}
	}
	return out, nil
}
