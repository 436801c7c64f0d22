package shell

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/pricecheck/pkg/httpx"
)

// Pinger is the credential store as far as readiness is concerned.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Credentials string `json:"credentials"`
}

func livezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// readyzHandler reports 503 while the credential store does not answer.
// The backend is not contacted; the shell is usable offline up to login.
func readyzHandler(startTime time.Time, version string, st Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &HealthChecks{Credentials: "ok"}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if st != nil {
			if err := st.Ping(r.Context()); err != nil {
				checks.Credentials = "error: " + err.Error()
				overallStatus = "degraded"
				statusCode = http.StatusServiceUnavailable
			}
		}

		httpx.WriteJSON(w, statusCode, HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
