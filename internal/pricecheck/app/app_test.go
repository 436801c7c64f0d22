package app_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/pricecheck/internal/devapi/devapitest"
	"github.com/aussiebroadwan/pricecheck/internal/pricecheck/app"
	"github.com/aussiebroadwan/pricecheck/internal/pricecheck/shell"
	"github.com/aussiebroadwan/pricecheck/pkg/slogx"
)

func newApp(t *testing.T, cfg app.Config) (*app.Application, *httptest.Server) {
	t.Helper()

	a, err := app.NewWithLogger(cfg, slogx.Discard())
	require.NoError(t, err)
	srv := httptest.NewServer(a.Handler())
	return a, srv
}

func noRedirects() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func TestSession_SurvivesRestart(t *testing.T) {
	t.Parallel()

	api := devapitest.New(t)
	cfg := app.Config{
		APIURL:              api.URL,
		StoreDSN:            "sqlite:" + filepath.Join(t.TempDir(), "pricecheck.db"),
		ScanFPS:             15,
		HTTPTimeout:         5 * time.Second,
		ShutdownGracePeriod: time.Second,
	}
	client := noRedirects()

	first, srv := newApp(t, cfg)
	body, _ := json.Marshal(map[string]string{
		"username": devapitest.Username,
		"password": devapitest.Password,
	})
	resp, err := client.Post(srv.URL+"/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	srv.Close()
	require.NoError(t, first.Close())

	second, srv := newApp(t, cfg)
	t.Cleanup(func() {
		srv.Close()
		_ = second.Close()
	})
	require.True(t, second.Tokens().IsAuthenticated(t.Context()))

	resp, err = client.Get(srv.URL + "/account")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page shell.Page
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	require.Equal(t, shell.Header{Authenticated: true, DisplayName: devapitest.FirstName}, page.Nav.Header)
}

func TestCheck_WithoutCamera(t *testing.T) {
	t.Parallel()

	api := devapitest.New(t)
	a, srv := newApp(t, app.Config{
		APIURL:              api.URL,
		StoreDSN:            "memory:",
		HTTPTimeout:         5 * time.Second,
		ShutdownGracePeriod: time.Second,
	})
	t.Cleanup(func() {
		srv.Close()
		_ = a.Close()
	})

	pair := api.Pair(t, time.Now())
	require.NoError(t, a.Tokens().SetTokens(t.Context(), pair.Access, pair.Refresh))

	client := noRedirects()
	resp, err := client.Post(srv.URL+"/check/start", "application/json", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Eventually(t, func() bool {
		resp, err := client.Get(srv.URL + "/check")
		if err != nil {
			return false
		}
		defer resp.Body.Close()

		var page struct {
			Data shell.ScanView `json:"data"`
		}
		if json.NewDecoder(resp.Body).Decode(&page) != nil {
			return false
		}
		return page.Data.Status == "error" && page.Data.Message == "No camera is available."
	}, 3*time.Second, 10*time.Millisecond)
}
