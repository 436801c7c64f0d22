package httpx

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/pricecheck/pkg/slogx"
	"golang.org/x/time/rate"
)

// Limit is a token bucket: Requests per Per on average, with up to Burst
// requests at once.
type Limit struct {
	Requests int
	Per      time.Duration
	Burst    int
}

func (l Limit) rate() rate.Limit {
	return rate.Limit(float64(l.Requests) / l.Per.Seconds())
}

var (
	// StrictLimit guards credential and account endpoints: login, signup,
	// email confirmation and password reset. RATELIMIT_STRICT_* overrides it.
	StrictLimit = LimitFromEnv("STRICT", Limit{Requests: 10, Per: time.Minute, Burst: 10})

	// LenientLimit covers authenticated reads, product lookups and health
	// checks. RATELIMIT_LENIENT_* overrides it.
	LenientLimit = LimitFromEnv("LENIENT", Limit{Requests: 120, Per: time.Minute, Burst: 120})
)

// LimitFromEnv overlays RATELIMIT_{prefix}_{REQUESTS,WINDOW_SEC,BURST} on
// def. Values that are not positive integers are ignored.
func LimitFromEnv(prefix string, def Limit) Limit {
	l := def
	if n, ok := positiveEnv("RATELIMIT_" + prefix + "_REQUESTS"); ok {
		l.Requests = n
	}
	if n, ok := positiveEnv("RATELIMIT_" + prefix + "_WINDOW_SEC"); ok {
		l.Per = time.Duration(n) * time.Second
	}
	if n, ok := positiveEnv("RATELIMIT_" + prefix + "_BURST"); ok {
		l.Burst = n
	}
	return l
}

func positiveEnv(key string) (int, bool) {
	n, err := strconv.Atoi(os.Getenv(key))
	return n, err == nil && n > 0
}

// KeyFunc names the bucket a request is counted against. An empty key
// exempts the request.
type KeyFunc func(*http.Request) string

// ClientIP keys by the originating address, trusting X-Forwarded-For and
// X-Real-IP from the proxy in front.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}
	return r.RemoteAddr
}

// Subject keys by the authenticated user placed by AuthnMiddleware.
func Subject(r *http.Request) string {
	id, _ := UserIDFromContext(r.Context())
	return id
}

// JoinKeys concatenates the non-empty keys of fns with ":".
func JoinKeys(fns ...KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(fns))
		for _, fn := range fns {
			if k := fn(r); k != "" {
				parts = append(parts, k)
			}
		}
		return strings.Join(parts, ":")
	}
}

// bucketIdle is how long an untouched bucket is kept.
const bucketIdle = 10 * time.Minute

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

type buckets struct {
	limit Limit

	mu        sync.Mutex
	byKey     map[string]*bucket
	lastSweep time.Time
}

// take spends a token from key's bucket, returning how long the caller
// should wait when there is none.
func (b *buckets) take(key string, now time.Time) (time.Duration, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.Sub(b.lastSweep) > bucketIdle {
		for k, bk := range b.byKey {
			if now.Sub(bk.seen) > bucketIdle {
				delete(b.byKey, k)
			}
		}
		b.lastSweep = now
	}

	bk, ok := b.byKey[key]
	if !ok {
		bk = &bucket{lim: rate.NewLimiter(b.limit.rate(), b.limit.Burst)}
		b.byKey[key] = bk
	}
	bk.seen = now

	if bk.lim.AllowN(now, 1) {
		return 0, true
	}
	r := bk.lim.ReserveN(now, 1)
	wait := r.DelayFrom(now)
	r.CancelAt(now)
	return wait, false
}

// RateLimit throttles requests per key. A throttled request gets 429 with
// Retry-After and a {"detail": ...} body.
func RateLimit(l Limit, key KeyFunc) Middleware {
	b := &buckets{limit: l, byKey: make(map[string]*bucket), lastSweep: time.Now()}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				next.ServeHTTP(w, r)
				return
			}

			wait, ok := b.take(k, time.Now())
			if ok {
				next.ServeHTTP(w, r)
				return
			}

			secs := max(int(wait.Round(time.Second).Seconds()), 1)
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.Requests))
			w.Header().Set("X-RateLimit-Window", strconv.Itoa(int(l.Per.Seconds())))

			slogx.FromContext(r.Context()).Warn("request throttled", "key", k, "retry_after", secs)
			WriteDetail(w, http.StatusTooManyRequests,
				fmt.Sprintf("Request was throttled. Expected available in %d seconds.", secs))
		})
	}
}

// RateLimitByIP limits per client address.
func RateLimitByIP(l Limit) Middleware {
	return RateLimit(l, ClientIP)
}

// RateLimitByUser limits per authenticated user and address.
func RateLimitByUser(l Limit) Middleware {
	return RateLimit(l, JoinKeys(Subject, ClientIP))
}
