package shell

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/pricecheck/internal/devapi/devapitest"
	"github.com/aussiebroadwan/pricecheck/internal/pricecheck/scanner"
	"github.com/aussiebroadwan/pricecheck/internal/pricecheck/store"
	"github.com/aussiebroadwan/pricecheck/pkg/authsdk"
	"github.com/aussiebroadwan/pricecheck/pkg/barcode"
	"github.com/aussiebroadwan/pricecheck/pkg/slogx"
)

const (
	waitFor = 3 * time.Second
	tick    = 10 * time.Millisecond

	kleenex = "036000291452"
	unknown = "5901234123457"
)

// codeFrame is a frame the fake detector reads its code straight from.
type codeFrame struct{ code string }

func (codeFrame) ColorModel() color.Model { return color.GrayModel }
func (codeFrame) Bounds() image.Rectangle { return image.Rect(0, 0, 1, 1) }
func (codeFrame) At(int, int) color.Color { return color.White }

type fakeDetector struct{}

func (fakeDetector) Detect(img image.Image) (barcode.Result, bool) {
	f, ok := img.(codeFrame)
	if !ok {
		return barcode.Result{}, false
	}
	return barcode.Result{Text: f.code, Symbology: barcode.UPC}, true
}

type fakeStream struct {
	frames chan image.Image
	stops  atomic.Int32
}

func (s *fakeStream) Frames() <-chan image.Image { return s.frames }
func (s *fakeStream) Stop()                      { s.stops.Add(1) }

// fakeCamera hands out a stream showing code on every frame. A non-nil gate
// holds acquisition until closed.
type fakeCamera struct {
	code  string
	err   error
	gate  chan struct{}
	calls atomic.Int32
}

func (c *fakeCamera) Acquire(ctx context.Context, _ scanner.Constraints) (scanner.Stream, error) {
	c.calls.Add(1)
	if c.gate != nil {
		<-c.gate
	}
	if c.err != nil {
		return nil, c.err
	}
	s := &fakeStream{frames: make(chan image.Image, 4)}
	for range 4 {
		s.frames <- codeFrame{code: c.code}
	}
	return s, nil
}

type fixture struct {
	api    *devapitest.Server
	tokens *authsdk.TokenStore
	shell  *Shell
	srv    *httptest.Server
	client *http.Client
}

func newFixture(t *testing.T, cam scanner.Camera) *fixture {
	t.Helper()

	api := devapitest.New(t)
	tokens := authsdk.NewTokenStore(authsdk.NewMemoryCredentials(), authsdk.NewBus(slogx.Discard()), slogx.Discard())

	sdk := authsdk.NewSDKClient(api.URL, tokens)
	sdk.Logger = slogx.Discard()
	sdk.HTTPClient.Transport = slogx.NewTransport(nil, slogx.Discard())

	s := New(sdk, func() *scanner.Controller {
		return scanner.New(scanner.Config{
			Camera: cam,
			Detectors: func([]barcode.Symbology) (scanner.Detector, error) {
				return fakeDetector{}, nil
			},
			Lookup:    sdk,
			FrameRate: 1000,
			Logger:    slogx.Discard(),
		})
	}, "", slogx.Discard())

	router := NewRouter(s, "test", store.NewMemory())
	router.ApplyRoutes()
	srv := httptest.NewServer(router)

	t.Cleanup(func() {
		srv.Close()
		s.Close()
	})

	return &fixture{
		api:    api,
		tokens: tokens,
		shell:  s,
		srv:    srv,
		client: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type page[T any] struct {
	Page  string `json:"page"`
	Nav   Nav    `json:"nav"`
	Data  T      `json:"data"`
	Error string `json:"error"`
}

// do sends a JSON request and decodes a JSON page, if one came back.
func do[T any](t *testing.T, f *fixture, method, path string, body any) (*http.Response, page[T]) {
	t.Helper()

	var rdr *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	} else {
		rdr = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, f.srv.URL+path, rdr)
	require.NoError(t, err)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := f.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var p page[T]
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	}
	return resp, p
}

func (f *fixture) login(t *testing.T) {
	t.Helper()
	resp, _ := do[any](t, f, http.MethodPost, "/login", loginRequest{
		Username: devapitest.Username,
		Password: devapitest.Password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGuardedRoutes_RedirectToLogin(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeCamera{code: kleenex})
	for _, path := range []string{"/", "/browse", "/check", "/account", "/stores", "/stores/1"} {
		t.Run(path, func(t *testing.T) {
			resp, _ := do[any](t, f, http.MethodGet, path, nil)
			require.Equal(t, http.StatusSeeOther, resp.StatusCode)
			require.Equal(t, "/login", resp.Header.Get("Location"))
		})
	}

	t.Run("starting a scan", func(t *testing.T) {
		resp, _ := do[any](t, f, http.MethodPost, "/check/start", nil)
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		require.Nil(t, f.shell.mounted())
	})
}

func TestPublicRoutes(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeCamera{code: kleenex})

	t.Run("unknown route goes home", func(t *testing.T) {
		resp, _ := do[any](t, f, http.MethodGet, "/no/such/page", nil)
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		require.Equal(t, "/", resp.Header.Get("Location"))
	})

	t.Run("about", func(t *testing.T) {
		resp, p := do[textView](t, f, http.MethodGet, "/about", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.NotEmpty(t, p.Data.Title)
		require.False(t, p.Nav.Header.Authenticated)
		require.Empty(t, p.Nav.Footer.AccountLink)
		require.Equal(t, []string{"/about", "/contact"}, p.Nav.Footer.Links)
	})

	t.Run("health", func(t *testing.T) {
		for _, path := range []string{"/livez", "/readyz"} {
			resp, err := f.client.Get(f.srv.URL + path)
			require.NoError(t, err)
			_ = resp.Body.Close()
			require.Equal(t, http.StatusOK, resp.StatusCode, path)
		}
	})

	t.Run("login page explains expiry", func(t *testing.T) {
		_, p := do[loginView](t, f, http.MethodGet, "/login?message=token_expired", nil)
		require.Equal(t, "Your session has expired. Please log in again.", p.Data.Message)

		_, p = do[loginView](t, f, http.MethodGet, "/login?message=whatever", nil)
		require.Empty(t, p.Data.Message)
	})
}

func TestLoginLogout_UpdatesNav(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeCamera{code: kleenex})

	resp, p := do[any](t, f, http.MethodPost, "/login", loginRequest{Username: devapitest.Username, Password: "wrong"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, msgLoginFailed, p.Error)

	resp, _ = do[any](t, f, http.MethodPost, "/login", loginRequest{})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	f.login(t)

	resp, p = do[any](t, f, http.MethodGet, "/about", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, Header{Authenticated: true, DisplayName: devapitest.FirstName}, p.Nav.Header)
	require.Equal(t, "/account", p.Nav.Footer.AccountLink)

	_, acct := do[accountView](t, f, http.MethodGet, "/account", nil)
	require.Equal(t, devapitest.Username, acct.Data.Username)
	require.Equal(t, devapitest.Email, acct.Data.Email)
	require.NotNil(t, acct.Data.ExpiresAt)

	resp, _ = do[any](t, f, http.MethodPost, "/logout", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))
	require.Equal(t, Nav{Footer: Footer{Links: []string{"/about", "/contact"}}}, f.shell.Nav())

	resp, _ = do[any](t, f, http.MethodGet, "/", nil)
	require.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestLogin_FormPost(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeCamera{code: kleenex})

	form := url.Values{"username": {devapitest.Username}, "password": {devapitest.Password}}
	resp, err := f.client.PostForm(f.srv.URL+"/login", form)
	require.NoError(t, err)
	_ = resp.Body.Close()

	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))
	require.True(t, f.shell.Nav().Header.Authenticated)
}

func TestStoresAndGroceries(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeCamera{code: kleenex})
	f.login(t)

	_, stores := do[storesView](t, f, http.MethodGet, "/stores?q=toronto", nil)
	require.Equal(t, "toronto", stores.Data.Query)
	require.Len(t, stores.Data.Stores, 2)

	id := stores.Data.Stores[0].ID
	resp, shop := do[storeView](t, f, http.MethodGet, "/stores/"+itoa(id), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, shop.Data.Address, "Toronto")

	resp, missing := do[any](t, f, http.MethodGet, "/stores/999", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "No Shop matches the given query.", missing.Error)

	resp, added := do[authsdk.Grocery](t, f, http.MethodPost, "/browse", map[string]any{
		"name":        "Oat milk",
		"store_name":  "No Frills",
		"store_price": "3.99",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, "3.99", added.Data.StorePrice.Decimal.StringFixed(2))

	resp, invalid := do[any](t, f, http.MethodPost, "/browse", map[string]any{"store_name": "No Frills"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Name is required.", invalid.Error)

	_, list := do[browseView](t, f, http.MethodGet, "/browse", nil)
	require.Len(t, list.Data.Groceries, 1)

	resp, _ = do[any](t, f, http.MethodDelete, "/browse/"+itoa(added.Data.ID), nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, gone := do[any](t, f, http.MethodDelete, "/browse/"+itoa(added.Data.ID), nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "Not found.", gone.Error)
}

func TestAccountPages(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeCamera{code: kleenex})

	resp, p := do[any](t, f, http.MethodPost, "/signup", signupForm{
		Username: "alex", Email: "alex@example.com", Password: "long-enough", ConfirmPassword: "different",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Passwords do not match.", p.Error)

	resp, signed := do[messageView](t, f, http.MethodPost, "/signup", signupForm{
		Username: "alex", Email: "alex@example.com", FirstName: "Alex",
		Password: "long-enough", ConfirmPassword: "long-enough",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Contains(t, signed.Data.Message, "check your email")

	uid, token := f.api.Mail.LinkParams(t, "alex@example.com")
	q := url.Values{"uid": {uid}, "token": {token}}
	resp, confirmed := do[messageView](t, f, http.MethodGet, "/confirm-email?"+q.Encode(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, confirmed.Data.Message)
	require.Equal(t, Header{Authenticated: true, DisplayName: "Alex"}, confirmed.Nav.Header)

	resp, replay := do[any](t, f, http.MethodGet, "/confirm-email?"+q.Encode(), nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Invalid or expired confirmation link.", replay.Error)

	resp, _ = do[messageView](t, f, http.MethodPost, "/forgot-password", forgotForm{Email: "alex@example.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	uid, token = f.api.Mail.LinkParams(t, "alex@example.com")
	resp, p = do[any](t, f, http.MethodPost, "/reset-password", resetForm{
		UID: uid, Token: token, Password: "a-new-password", ConfirmPassword: "typo",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Passwords do not match.", p.Error)

	resp, _ = do[messageView](t, f, http.MethodPost, "/reset-password", resetForm{
		UID: uid, Token: token, Password: "a-new-password", ConfirmPassword: "a-new-password",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func checkView(t *testing.T, f *fixture) ScanView {
	t.Helper()
	_, p := do[ScanView](t, f, http.MethodGet, "/check", nil)
	return p.Data
}

func TestCheck_ScanShowsPrice(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeCamera{code: kleenex})
	f.login(t)

	v := checkView(t, f)
	require.Equal(t, "idle", v.Status)
	require.Equal(t, "Start Scanning", v.Action)

	resp, _ := do[ScanView](t, f, http.MethodPost, "/check/start", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Eventually(t, func() bool {
		v = checkView(t, f)
		return v.Status == "detected" && !v.LookupPending
	}, waitFor, tick)

	require.Equal(t, kleenex, v.Code)
	require.Equal(t, "UPC", v.Format)
	require.Equal(t, "Scan Again", v.Action)
	require.NotNil(t, v.Product)
	require.Equal(t, "Kleenex Facial Tissue", v.Product.Title)
	require.Equal(t, authsdk.DefaultPriceStore, v.Product.Store)
	require.Equal(t, "2.97", v.Product.Price)
	require.Equal(t, "24th Oct 2023", v.Product.LastUpdated)

	resp, _ = do[ScanView](t, f, http.MethodPost, "/check/restart", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Eventually(t, func() bool {
		v = checkView(t, f)
		return v.Status == "detected" && v.Product != nil
	}, waitFor, tick)
}

func TestCheck_Negotiation(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeCamera{code: kleenex})
	f.login(t)

	post := func(path, accept string) *http.Response {
		req, err := http.NewRequest(http.MethodPost, f.srv.URL+path, nil)
		require.NoError(t, err)
		if accept != "" {
			req.Header.Set("Accept", accept)
		}
		resp, err := f.client.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}

	t.Run("body-less post asking for json gets the page", func(t *testing.T) {
		resp := post("/check/start", "application/json, text/plain")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var p page[ScanView]
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
		require.Equal(t, "check", p.Page)
		require.NotEmpty(t, p.Data.ScanID)
	})

	t.Run("plain form post is redirected", func(t *testing.T) {
		resp := post("/check/cancel", "")
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		require.Equal(t, "/check", resp.Header.Get("Location"))
	})
}

func TestCheck_UnknownProduct(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeCamera{code: unknown})
	f.login(t)

	do[ScanView](t, f, http.MethodPost, "/check/start", nil)

	var v ScanView
	require.Eventually(t, func() bool {
		v = checkView(t, f)
		return v.Status == "detected" && !v.LookupPending
	}, waitFor, tick)
	require.Nil(t, v.Product)
	require.Equal(t, msgNoProduct, v.Message)
}

func TestCheck_CameraUnavailable(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeCamera{err: scanner.ErrDeviceUnavailable})
	f.login(t)

	do[ScanView](t, f, http.MethodPost, "/check/start", nil)

	var v ScanView
	require.Eventually(t, func() bool {
		v = checkView(t, f)
		return v.Status == "error"
	}, waitFor, tick)
	require.Equal(t, "No camera is available.", v.Message)
	require.Equal(t, "Start Scanning", v.Action)
}

func TestCheck_StartWhileScanning(t *testing.T) {
	t.Parallel()

	cam := &fakeCamera{code: kleenex, gate: make(chan struct{})}
	f := newFixture(t, cam)
	f.login(t)
	defer close(cam.gate)

	resp, p := do[ScanView](t, f, http.MethodPost, "/check/start", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Cancel Scanning", p.Data.Action)

	resp, p = do[ScanView](t, f, http.MethodPost, "/check/start", nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, scanner.ErrScanInProgress.Error(), p.Data.Message)
	require.Equal(t, int32(1), cam.calls.Load())

	resp, p = do[ScanView](t, f, http.MethodPost, "/check/cancel", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "idle", p.Data.Status)
}

func TestCheck_ExpiredSessionTearsDownView(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeCamera{code: kleenex})

	stale := f.api.Pair(t, time.Now().Add(-time.Hour))
	require.NoError(t, f.tokens.SetTokens(context.Background(), stale.Access, stale.Refresh))

	resp, _ := do[ScanView](t, f, http.MethodPost, "/check/start", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, f.shell.mounted())

	// The lookup meets the expired credential in the background.
	require.Eventually(t, func() bool {
		return f.shell.mounted() == nil && f.shell.pendingURL() != ""
	}, waitFor, tick)
	require.False(t, f.tokens.IsAuthenticated(context.Background()))
	require.False(t, f.shell.Nav().Header.Authenticated)

	resp, _ = do[any](t, f, http.MethodGet, "/about", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, authsdk.SessionExpiredRedirect, resp.Header.Get("Location"))

	// Followed once only.
	resp, _ = do[any](t, f, http.MethodGet, "/about", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPageRequest_ExpiredSessionRedirects(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeCamera{code: kleenex})

	stale := f.api.Pair(t, time.Now().Add(-time.Hour))
	require.NoError(t, f.tokens.SetTokens(context.Background(), stale.Access, stale.Refresh))
	require.True(t, f.shell.Nav().Header.Authenticated)

	resp, _ := do[any](t, f, http.MethodGet, "/browse", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, authsdk.SessionExpiredRedirect, resp.Header.Get("Location"))
	require.False(t, f.shell.Nav().Header.Authenticated)

	// The redirect was served by the failing request itself.
	resp, _ = do[any](t, f, http.MethodGet, "/about", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func (s *Shell) pendingURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}
