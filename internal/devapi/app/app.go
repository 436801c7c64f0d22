package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/pricecheck/internal/devapi/domain"
	httpapi "github.com/aussiebroadwan/pricecheck/internal/devapi/http"
	"github.com/aussiebroadwan/pricecheck/internal/devapi/service"
	"github.com/aussiebroadwan/pricecheck/internal/devapi/store"
	"github.com/aussiebroadwan/pricecheck/internal/devapi/store/drivers/sqlite"
	"github.com/aussiebroadwan/pricecheck/pkg/cryptox"
	"github.com/aussiebroadwan/pricecheck/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application is the development backend with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db   store.Store
	keys *Keys

	tokenService   *service.TokenService
	accountService *service.AccountService
	groceryService *service.GroceryService
	shopService    *service.ShopService
	catalogService *service.CatalogService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	return NewWithLogger(cfg, slogx.New(slogx.Config{
		Service: "pricecheck-devapi",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	}))
}

// NewWithLogger is New with a caller supplied logger.
func NewWithLogger(cfg Config, logger *slog.Logger) (*Application, error) {
	app := &Application{
		cfg:    cfg,
		logger: slogx.OrDefault(logger),
	}

	// Without a file the process keeps its ephemeral pepper.
	if app.cfg.PepperFile != "" {
		cryptox.SetPepperPath(app.cfg.PepperFile)
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	keys, err := InitKeys(app.cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize signing keys: %w", err)
	}
	app.keys = keys

	app.initServices()

	if err := app.seed(context.Background()); err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to seed account: %w", err)
	}

	app.initHTTP()

	return app, nil
}

// Handler is the routed API, for embedding in tests.
func (app *Application) Handler() http.Handler { return app.router }

// Tokens is the credential issuer, for tests that need credentials minted
// at a chosen time.
func (app *Application) Tokens() *service.TokenService { return app.tokenService }

// Accounts is the account service, for tests that capture mailed links.
func (app *Application) Accounts() *service.AccountService { return app.accountService }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("devapi starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down devapi...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("devapi stopped")
	return nil
}

// initDatabase opens the database and applies migrations, which also seed
// the shop and product catalog.
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(app.cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		Signer:     app.keys.Signer,
		Store:      app.db,
		Issuer:     app.cfg.Issuer,
		AccessTTL:  app.cfg.AccessTTL,
		RefreshTTL: app.cfg.RefreshTTL,
	}
	app.accountService = &service.AccountService{
		Store:    app.db,
		Tokens:   app.tokenService,
		Mailer:   service.LogMailer{},
		LinkBase: app.cfg.LinkBase,
	}
	app.groceryService = &service.GroceryService{Store: app.db}
	app.shopService = &service.ShopService{Store: app.db}
	app.catalogService = &service.CatalogService{Store: app.db}
}

// seed creates the configured account, already confirmed, unless it
// exists.
func (app *Application) seed(ctx context.Context) error {
	if app.cfg.SeedUser == "" {
		return nil
	}

	_, err := app.db.Users().GetUserByUsername(ctx, app.cfg.SeedUser)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hash, err := cryptox.HashPassword(app.cfg.SeedPassword)
	if err != nil {
		return err
	}
	id, err := app.db.Users().CreateUser(ctx, domain.User{
		Username:       app.cfg.SeedUser,
		Email:          app.cfg.SeedEmail,
		FirstName:      "Demo",
		LastName:       "User",
		PasswordHash:   hash,
		EmailConfirmed: true,
	})
	if err != nil {
		return err
	}

	app.logger.Info("seed account created", "user_id", id, "username", app.cfg.SeedUser)
	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keys.Keyring,
		app.keys.Verifier,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.TokenService = app.tokenService
	router.AccountService = app.accountService
	router.GroceryService = app.groceryService
	router.ShopService = app.shopService
	router.CatalogService = app.catalogService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// Close releases the database without a running server, for tests.
func (app *Application) Close() error { return app.db.Close() }
