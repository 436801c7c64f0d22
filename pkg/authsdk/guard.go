package authsdk

import (
	"context"
	"net/http"
)

// LoginPath is the login route every guard redirects to.
const LoginPath = "/login"

// Guarded is the outcome of a guard check: either the content or a
// redirect.
type Guarded[T any] struct {
	Content  T
	Redirect string
}

// Allowed reports whether the content may be rendered.
func (g Guarded[T]) Allowed() bool { return g.Redirect == "" }

// Guard returns content when auth holds a session and a redirect to
// loginPath otherwise. It is evaluated on every call.
func Guard[T any](ctx context.Context, auth Authenticator, content T, loginPath string) Guarded[T] {
	if auth.IsAuthenticated(ctx) {
		return Guarded[T]{Content: content}
	}
	if loginPath == "" {
		loginPath = LoginPath
	}
	return Guarded[T]{Redirect: loginPath}
}

// RequireSession guards a handler. Requests without a session are sent to
// loginPath with 303 See Other.
func RequireSession(auth Authenticator, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			g := Guard(r.Context(), auth, next, loginPath)
			if !g.Allowed() {
				http.Redirect(w, r, g.Redirect, http.StatusSeeOther)
				return
			}
			g.Content.ServeHTTP(w, r)
		})
	}
}
