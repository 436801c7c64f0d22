package httpx_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/pricecheck/pkg/cryptox"
	"github.com/aussiebroadwan/pricecheck/pkg/httpx"
	"github.com/aussiebroadwan/pricecheck/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const issuer = "pricecheck-test"

func newVerifier(t *testing.T) (*jwtx.Ed25519Signer, jwtx.Verifier) {
	t.Helper()

	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.ParseSigner("k1", pemKey)
	require.NoError(t, err)

	keys := jwtx.NewKeyring()
	require.NoError(t, keys.TrustSigner(signer))
	return signer, jwtx.NewVerifier(keys, issuer)
}

func call(h http.Handler, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/groceries/", nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthnMiddleware(t *testing.T) {
	t.Parallel()

	signer, verifier := newVerifier(t)
	id := jwtx.Identity{UserID: 3, Username: "sam"}

	var subject string
	protected := httpx.AuthnMiddleware(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, _ = httpx.UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	sign := func(c jwtx.Claims) string {
		tok, err := signer.Sign(c)
		require.NoError(t, err)
		return tok
	}

	t.Run("valid access credential", func(t *testing.T) {
		rec := call(protected, sign(jwtx.NewAccessClaims(id, time.Minute, issuer, time.Now())))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "3", subject)
	})

	t.Run("missing credential", func(t *testing.T) {
		rec := call(protected, "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Body.String(), "Authentication credentials were not provided.")
	})

	tests := []struct {
		name    string
		token   string
		message string
	}{
		{"expired", sign(jwtx.NewAccessClaims(id, time.Minute, issuer, time.Now().Add(-time.Hour))), httpx.MessageTokenExpired},
		{"refresh used as access", sign(jwtx.NewRefreshClaims(id, time.Hour, issuer, time.Now())), httpx.MessageTokenWrongType},
		{"garbage", "a.b.c", httpx.MessageTokenInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := call(protected, tt.token)
			require.Equal(t, http.StatusUnauthorized, rec.Code)

			var body httpx.TokenErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, httpx.CodeTokenNotValid, body.Code)
			require.Len(t, body.Messages, 1)
			require.Equal(t, tt.message, body.Messages[0].Message)
		})
	}
}

func TestOptionalAuthn_AllowsAnonymous(t *testing.T) {
	t.Parallel()

	_, verifier := newVerifier(t)
	h := httpx.OptionalAuthn(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := httpx.UserIDFromContext(r.Context())
		require.False(t, ok)
		w.WriteHeader(http.StatusNoContent)
	}))

	require.Equal(t, http.StatusNoContent, call(h, "").Code)
	require.Equal(t, http.StatusUnauthorized, call(h, "a.b.c").Code)
}
