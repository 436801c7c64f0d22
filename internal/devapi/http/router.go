package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/pricecheck/internal/devapi/service"
	"github.com/aussiebroadwan/pricecheck/internal/devapi/store"
	"github.com/aussiebroadwan/pricecheck/pkg/httpx"
	"github.com/aussiebroadwan/pricecheck/pkg/jwtx"
	"github.com/aussiebroadwan/pricecheck/pkg/slogx"

	_ "github.com/aussiebroadwan/pricecheck/api/devapi" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.Keyring
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store          store.Store
	TokenService   *service.TokenService
	AccountService *service.AccountService
	GroceryService *service.GroceryService
	ShopService    *service.ShopService
	CatalogService *service.CatalogService
}

func NewRouter(
	keys *jwtx.Keyring,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerToken()
	r.registerAccount()
	r.registerGroceries()
	r.registerShops()
	r.registerProducts()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Price Checker Development API
//	@version		0.1.0
//	@description	Local stand-in for the grocery price service: accounts, token grant,
//	@description	saved groceries, shops and barcode lookups.
//
//	@host			localhost:8000
//	@BasePath		/
//
//	@schemes		http
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerToken() {
	// POST /api/token/ - strict rate limit by IP (password guessing)
	h := &TokenHandler{TokenService: r.TokenService}
	r.Mux.Handle("POST /api/token/{$}",
		httpx.Chain(h,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerAccount() {
	h := &AccountHandler{AccountService: r.AccountService}

	// All public and all strictly limited: each one either creates an
	// account, mails someone or redeems a one-time token.
	strict := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn, httpx.RateLimitByIP(httpx.StrictLimit))
	}

	r.Mux.Handle("POST /api/signup/{$}", strict(h.HandleSignup))
	r.Mux.Handle("POST /api/confirm-email/{$}", strict(h.HandleConfirmEmail))
	r.Mux.Handle("POST /api/forgot-password/{$}", strict(h.HandleForgotPassword))
	r.Mux.Handle("POST /api/reset-password/{$}", strict(h.HandleResetPassword))
}

func (r *Router) registerGroceries() {
	h := &GroceriesHandler{GroceryService: r.GroceryService}

	secured := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		)
	}

	r.Mux.Handle("GET /api/groceries/{$}", secured(h.HandleList))
	r.Mux.Handle("POST /api/groceries/{$}", secured(h.HandleCreate))
	r.Mux.Handle("DELETE /api/groceries/{id}/{$}", secured(h.HandleDelete))
}

func (r *Router) registerShops() {
	h := &ShopsHandler{ShopService: r.ShopService}

	secured := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		)
	}

	r.Mux.Handle("GET /api/shops", secured(h.HandleList))
	r.Mux.Handle("GET /api/shops/{id}", secured(h.HandleGet))
}

func (r *Router) registerProducts() {
	// Lookups are authenticated so an expired credential surfaces here
	// first, which is where the scanner meets it.
	h := &ProductHandler{CatalogService: r.CatalogService}
	r.Mux.Handle("POST /api/product-from-barcode/{$}",
		httpx.Chain(h,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
