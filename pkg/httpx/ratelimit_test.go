package httpx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/pricecheck/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serveFrom(h http.Handler, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/token/", nil)
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	t.Run("extracts from RemoteAddr", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		require.Equal(t, "192.168.1.1", httpx.ClientIP(req))
	})

	t.Run("prefers X-Forwarded-For", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Forwarded-For", "203.0.113.1, 192.168.1.1")
		require.Equal(t, "203.0.113.1", httpx.ClientIP(req))
	})

	t.Run("uses X-Real-IP if X-Forwarded-For absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Real-IP", "203.0.113.2")
		require.Equal(t, "203.0.113.2", httpx.ClientIP(req))
	})
}

func TestJoinKeys_SkipsEmpty(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"

	key := httpx.JoinKeys(httpx.Subject, httpx.ClientIP)(req)
	require.Equal(t, "192.168.1.1", key)

	ctx := context.WithValue(req.Context(), httpx.CtxKeyUserID, "42")
	key = httpx.JoinKeys(httpx.Subject, httpx.ClientIP)(req.WithContext(ctx))
	require.Equal(t, "42:192.168.1.1", key)
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	t.Run("blocks requests over limit", func(t *testing.T) {
		h := httpx.RateLimitByIP(httpx.Limit{Requests: 3, Per: time.Minute, Burst: 3})(okHandler())

		for i := range 3 {
			require.Equal(t, http.StatusOK, serveFrom(h, "10.0.0.1:1").Code, "request %d should succeed", i+1)
		}

		rec := serveFrom(h, "10.0.0.1:1")
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "60", rec.Header().Get("X-RateLimit-Window"))
		require.Equal(t, "20", rec.Header().Get("Retry-After"))
		require.Contains(t, rec.Body.String(), `"detail":"Request was throttled.`)
	})

	t.Run("different keys are tracked separately", func(t *testing.T) {
		h := httpx.RateLimitByIP(httpx.Limit{Requests: 1, Per: time.Minute, Burst: 1})(okHandler())

		require.Equal(t, http.StatusOK, serveFrom(h, "10.0.0.1:1").Code)
		require.Equal(t, http.StatusTooManyRequests, serveFrom(h, "10.0.0.1:1").Code)
		require.Equal(t, http.StatusOK, serveFrom(h, "10.0.0.2:1").Code)
	})

	t.Run("allows request when key extractor returns empty", func(t *testing.T) {
		empty := func(*http.Request) string { return "" }
		h := httpx.RateLimit(httpx.Limit{Requests: 1, Per: time.Minute, Burst: 1}, empty)(okHandler())

		for range 3 {
			require.Equal(t, http.StatusOK, serveFrom(h, "10.0.0.1:1").Code)
		}
	})
}

func TestLimitFromEnv(t *testing.T) {
	t.Setenv("RATELIMIT_TEST_REQUESTS", "7")
	t.Setenv("RATELIMIT_TEST_WINDOW_SEC", "30")
	t.Setenv("RATELIMIT_TEST_BURST", "nope")

	l := httpx.LimitFromEnv("TEST", httpx.Limit{Requests: 1, Per: time.Minute, Burst: 2})
	require.Equal(t, httpx.Limit{Requests: 7, Per: 30 * time.Second, Burst: 2}, l)
}

func TestChain_Order(t *testing.T) {
	t.Parallel()

	var order []string
	mark := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(okHandler(), mark("outer"), mark("inner"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"outer", "inner"}, order)
}
