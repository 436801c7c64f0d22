package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/pricecheck/pkg/jwtx"
	"github.com/aussiebroadwan/pricecheck/pkg/slogx"
)

// TokenErrorMessage is one entry of the "messages" list in a rejected
// credential response.
type TokenErrorMessage struct {
	TokenClass string `json:"token_class"`
	TokenType  string `json:"token_type"`
	Message    string `json:"message"`
}

// TokenErrorResponse is the 401 body for a rejected bearer credential. Its
// shape is what clients match on to detect session expiry.
type TokenErrorResponse struct {
	Detail   string              `json:"detail"`
	Code     string              `json:"code"`
	Messages []TokenErrorMessage `json:"messages"`
}

const (
	CodeTokenNotValid        = "token_not_valid"
	MessageTokenExpired      = "Token is expired"
	MessageTokenInvalid      = "Token is invalid"
	MessageTokenWrongType    = "Token has wrong type"
	detailTokenNotValid      = "Given token not valid for any token type"
	detailCredentialsMissing = "Authentication credentials were not provided."
)

// AuthnMiddleware requires a valid access credential.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return authn(v, true)
}

// OptionalAuthn authenticates the bearer when one is presented and lets
// anonymous requests through. A presented but invalid credential is still
// rejected.
func OptionalAuthn(v jwtx.Verifier) Middleware {
	return authn(v, false)
}

func authn(v jwtx.Verifier, required bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				if required {
					w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
					WriteDetail(w, http.StatusUnauthorized, detailCredentialsMissing)
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := v.Verify(raw, jwtx.TokenTypeAccess)
			if err != nil {
				log.Warn("bearer rejected", "err", err)
				WriteTokenError(w, tokenErrorMessage(err))
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithAuth(ctx, claims)))
		})
	}
}

func tokenErrorMessage(err error) string {
	switch {
	case jwtx.IsExpired(err):
		return MessageTokenExpired
	case errors.Is(err, jwtx.ErrWrongType):
		return MessageTokenWrongType
	default:
		return MessageTokenInvalid
	}
}

// WriteTokenError writes the 401 token_not_valid body for an access
// credential rejected with message.
func WriteTokenError(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	WriteJSON(w, http.StatusUnauthorized, TokenErrorResponse{
		Detail: detailTokenNotValid,
		Code:   CodeTokenNotValid,
		Messages: []TokenErrorMessage{{
			TokenClass: "AccessToken",
			TokenType:  jwtx.TokenTypeAccess,
			Message:    message,
		}},
	})
}

// ClaimsFromContext returns the verified claims placed by AuthnMiddleware.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	c, ok := ctx.Value(CtxKeyClaims).(jwtx.Claims)
	return c, ok
}

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}
