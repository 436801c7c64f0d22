package shell

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/pricecheck/pkg/authsdk"
	"github.com/aussiebroadwan/pricecheck/pkg/httpx"
	"github.com/aussiebroadwan/pricecheck/pkg/slogx"
)

// Router maps the application's routes onto the shell.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	shell        *Shell
	store        Pinger
	buildVersion string
	startTime    time.Time
}

// NewRouter routes to s. st may be nil when there is no store to ping.
func NewRouter(s *Shell, buildVersion string, st Pinger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		shell:        s,
		store:        st,
		buildVersion: buildVersion,
		startTime:    time.Now(),
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(s.Logger),
		s.followPending,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerPublic()
	r.registerAccount()
	r.registerGuarded()
	r.registerCheck()
	r.registerSystem()
	r.registerFallback()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// guarded wraps a page so it is only served with a session.
func (r *Router) guarded(fn http.HandlerFunc) http.Handler {
	return httpx.Chain(fn, authsdk.RequireSession(r.shell.Client.Tokens, authsdk.LoginPath))
}

func (r *Router) registerPublic() {
	s := r.shell

	r.Mux.HandleFunc("GET /login", s.handleLoginPage)
	r.Mux.Handle("POST /login",
		httpx.Chain(http.HandlerFunc(s.handleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.HandleFunc("POST /logout", s.handleLogout)

	r.Mux.HandleFunc("GET /about", s.handleAbout)
	r.Mux.HandleFunc("GET /contact", s.handleContact)
}

func (r *Router) registerAccount() {
	s := r.shell

	strict := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn, httpx.RateLimitByIP(httpx.StrictLimit))
	}

	r.Mux.Handle("POST /signup", strict(s.handleSignup))
	r.Mux.Handle("GET /confirm-email", strict(s.handleConfirmEmail))
	r.Mux.Handle("POST /forgot-password", strict(s.handleForgotPassword))
	r.Mux.Handle("POST /reset-password", strict(s.handleResetPassword))
}

func (r *Router) registerGuarded() {
	s := r.shell

	r.Mux.Handle("GET /{$}", r.guarded(s.handleHome))

	r.Mux.Handle("GET /browse", r.guarded(s.handleBrowse))
	r.Mux.Handle("POST /browse", r.guarded(s.handleAddGrocery))
	r.Mux.Handle("DELETE /browse/{id}", r.guarded(s.handleDeleteGrocery))

	r.Mux.Handle("GET /stores", r.guarded(s.handleStores))
	r.Mux.Handle("GET /stores/{id}", r.guarded(s.handleStore))

	r.Mux.Handle("GET /account", r.guarded(s.handleAccount))
}

func (r *Router) registerCheck() {
	s := r.shell

	r.Mux.Handle("GET /check", r.guarded(s.handleCheck))
	r.Mux.Handle("POST /check/start", r.guarded(s.handleCheckStart))
	r.Mux.Handle("POST /check/cancel", r.guarded(s.handleCheckCancel))
	r.Mux.Handle("POST /check/restart", r.guarded(s.handleCheckRestart))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(livezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(readyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

// registerFallback sends every unknown route home.
func (r *Router) registerFallback() {
	r.Mux.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/", http.StatusSeeOther)
	})
}

// followPending sends the request to a navigation the client requested
// since the last request, once.
func (s *Shell) followPending(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if url := s.takePending(); url != "" && url != r.URL.RequestURI() {
			http.Redirect(w, r, url, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
