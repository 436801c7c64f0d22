package authsdk

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aussiebroadwan/pricecheck/pkg/slogx"
	"github.com/stretchr/testify/require"
)

type recordingNavigator struct {
	mu   sync.Mutex
	urls []string
}

func (n *recordingNavigator) Navigate(url string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.urls = append(n.urls, url)
}

func (n *recordingNavigator) visited() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.urls...)
}

func newTestClient(t *testing.T, h http.HandlerFunc) (*SDKClient, *TokenStore, *recordingNavigator) {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	tokens, _ := newTestTokens()
	nav := &recordingNavigator{}
	c := NewSDKClient(srv.URL, tokens)
	c.Navigator = nav
	c.Logger = slogx.Discard()
	c.HTTPClient.Transport = slogx.NewTransport(nil, slogx.Discard())
	return c, tokens, nav
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func TestFetch_BearerHeader(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var got []string
	c, tokens, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Header.Get("Authorization"))
		require.NotEmpty(t, r.Header.Get(slogx.RequestIDHeader))
		respond(http.StatusOK, `{}`)(w, r)
	})

	_, err := c.Fetch(ctx, "/api/groceries/", RequestOptions{})
	require.NoError(t, err)

	require.NoError(t, tokens.SetTokens(ctx, "acc", "ref"))
	header := http.Header{"X-Custom": []string{"1"}}
	_, err = c.Fetch(ctx, "/api/groceries/", RequestOptions{Header: header})
	require.NoError(t, err)

	require.Equal(t, []string{"", "Bearer acc"}, got)
	require.Empty(t, header.Get("Authorization"), "caller headers must not be modified")
	require.Len(t, header, 1)
}

func TestFetch_PublicCallsNeverSendBearer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	c, tokens, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.Header.Get("Authorization"))
		respond(http.StatusOK, `{"access":"new","refresh":"r"}`)(w, r)
	})
	require.NoError(t, tokens.SetTokens(ctx, "stale", "stale"))

	require.NoError(t, c.Login(ctx, "sam", "pw"))
	access, _ := tokens.Access(ctx)
	require.Equal(t, "new", access)
}

func TestFetch_SessionExpired(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	c, tokens, nav := newTestClient(t, respond(http.StatusUnauthorized,
		`{"detail":"Given token not valid for any token type","code":"token_not_valid","messages":[{"token_class":"AccessToken","message":"Token is expired now"}]}`))
	require.NoError(t, tokens.SetTokens(ctx, "acc", "ref"))

	var events int
	tokens.Subscribe(func() { events++ })

	_, err := c.Fetch(ctx, "/api/groceries/", RequestOptions{})

	var expired *SessionExpiredError
	require.True(t, errors.As(err, &expired), "got %v", err)
	require.False(t, tokens.IsAuthenticated(ctx))
	require.Equal(t, 1, events)

	urls := nav.visited()
	require.Len(t, urls, 1)
	require.Contains(t, urls[0], "message=token_expired")
	require.Equal(t, urls[0], expired.RedirectTo)
}

func TestFetch_ErrorNormalisation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		message string
		check   func(t *testing.T, msg string)
	}{
		{name: "detail", status: http.StatusBadRequest, body: `{"detail":"bad input"}`, message: "bad input"},
		{
			name: "field errors", status: http.StatusBadRequest,
			body: `{"username":["too short"],"email":["invalid"]}`,
			check: func(t *testing.T, msg string) {
				parts := strings.Split(msg, " | ")
				require.ElementsMatch(t, []string{"username: too short", "email: invalid"}, parts)
			},
		},
		{name: "field order kept", status: http.StatusBadRequest, body: `{"b":["x","y"],"a":"z","n":3}`, message: "b: x y | a: z | n: 3"},
		{name: "empty detail falls through", status: http.StatusBadRequest, body: `{"detail":"","name":["required"]}`, message: "detail:  | name: required"},
		{name: "detail list", status: http.StatusBadRequest, body: `{"detail":["a","b"]}`, message: "a,b"},
		{name: "numeric detail", status: http.StatusConflict, body: `{"detail":409}`, message: "409"},
		{name: "top level list", status: http.StatusBadRequest, body: `["first",["x",null,"y"]]`, message: "0: first | 1: x  y"},
		{name: "null field", status: http.StatusBadRequest, body: `{"name":null}`, message: "name: null"},
		{name: "non json", status: http.StatusBadGateway, body: `<html>oops</html>`, message: "Bad Gateway"},
		{name: "empty object", status: http.StatusInternalServerError, body: `{}`, message: "API request failed"},
		{name: "401 without expiry", status: http.StatusUnauthorized, body: `{"code":"token_not_valid","messages":[{"message":"Token is invalid"}]}`, message: "code: token_not_valid | messages: [object Object]"},
		{name: "expiry shape on 403", status: http.StatusForbidden, body: `{"code":"token_not_valid","messages":[{"message":"token is expired"}],"detail":"nope"}`, message: "nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			c, tokens, nav := newTestClient(t, respond(tt.status, tt.body))
			require.NoError(t, tokens.SetTokens(ctx, "acc", "ref"))

			_, err := c.Fetch(ctx, "/x", RequestOptions{})
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr), "got %v", err)
			require.Equal(t, tt.status, apiErr.StatusCode)
			if tt.check != nil {
				tt.check(t, apiErr.Message)
			} else {
				require.Equal(t, tt.message, apiErr.Message)
			}

			require.True(t, tokens.IsAuthenticated(ctx))
			require.Empty(t, nav.visited())
		})
	}
}

func TestFetch_NetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	tokens, _ := newTestTokens()
	c := NewSDKClient(addr, tokens)
	c.Logger = slogx.Discard()

	_, err := c.Fetch(context.Background(), "/api/shops", RequestOptions{})
	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr), "got %v", err)
	require.Equal(t, http.MethodGet, netErr.Method)
}

func TestFetch_SuccessBodies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("no content", func(t *testing.T) {
		c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		raw, err := c.Fetch(ctx, "/api/groceries/1/", RequestOptions{Method: http.MethodDelete})
		require.NoError(t, err)
		require.JSONEq(t, `null`, string(raw))
	})

	t.Run("invalid json", func(t *testing.T) {
		c, _, _ := newTestClient(t, respond(http.StatusOK, `not json`))
		_, err := c.Fetch(ctx, "/x", RequestOptions{})
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, "invalid JSON response", apiErr.Message)
	})

	t.Run("body is sent as json", func(t *testing.T) {
		c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))
			var in map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			respond(http.StatusCreated, `{"echo":"`+in["k"]+`"}`)(w, r)
		})
		raw, err := c.Fetch(ctx, "/x", RequestOptions{Method: http.MethodPost, Body: map[string]string{"k": "v"}})
		require.NoError(t, err)
		require.JSONEq(t, `{"echo":"v"}`, string(raw))
	})
}
