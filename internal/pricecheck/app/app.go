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

	"github.com/aussiebroadwan/pricecheck/internal/pricecheck/camera"
	"github.com/aussiebroadwan/pricecheck/internal/pricecheck/scanner"
	"github.com/aussiebroadwan/pricecheck/internal/pricecheck/shell"
	"github.com/aussiebroadwan/pricecheck/internal/pricecheck/store"
	"github.com/aussiebroadwan/pricecheck/pkg/authsdk"
	"github.com/aussiebroadwan/pricecheck/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application is the price checker with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	store  store.Store
	bus    *authsdk.Bus
	tokens *authsdk.TokenStore
	client *authsdk.SDKClient
	camera scanner.Camera

	shell  *shell.Shell
	router *shell.Router
	server *http.Server
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	return NewWithLogger(cfg, slogx.New(slogx.Config{
		Service: "pricecheck",
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

	if err := app.initStore(); err != nil {
		return nil, err
	}

	app.initClient()
	app.initCamera()
	app.initShell()
	app.initHTTP()

	return app, nil
}

// Handler is the routed shell, for embedding in tests.
func (app *Application) Handler() http.Handler { return app.router }

// Tokens is the credential store the shell's session lives in.
func (app *Application) Tokens() *authsdk.TokenStore { return app.tokens }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("pricecheck starting",
		"port", app.cfg.Port,
		"api_url", app.cfg.APIURL,
		"version", BuildVersion,
	)

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
	app.logger.Info("shutting down pricecheck...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Releases the camera if a scan is running.
	app.shell.Close()

	if err := app.store.Close(); err != nil {
		app.logger.Error("error closing credential store", "error", err)
		return err
	}

	app.logger.Info("pricecheck stopped")
	return nil
}

// Close releases the shell and the store without a running server, for
// tests.
func (app *Application) Close() error {
	app.shell.Close()
	return app.store.Close()
}

// initStore opens the credential store. Credentials left by a previous run
// restore the session.
func (app *Application) initStore() error {
	st, err := store.Open(app.cfg.StoreDSN)
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}
	app.store = st

	app.bus = authsdk.NewBus(app.logger)
	app.tokens = authsdk.NewTokenStore(st, app.bus, app.logger)

	ctx := context.Background()
	app.tokens.PartialState(ctx)
	app.logger.Info("credential store opened", "authenticated", app.tokens.IsAuthenticated(ctx))
	return nil
}

func (app *Application) initClient() {
	app.client = authsdk.NewSDKClient(app.cfg.APIURL, app.tokens)
	app.client.Logger = app.logger
	app.client.HTTPClient = &http.Client{
		Timeout:   app.cfg.HTTPTimeout,
		Transport: slogx.NewTransport(nil, app.logger),
	}
}

func (app *Application) initCamera() {
	if app.cfg.CameraDir == "" {
		app.logger.Warn("no camera configured; scans will fail as device unavailable")
		app.camera = camera.Unavailable{}
		return
	}
	app.camera = camera.NewDir(app.cfg.CameraDir, app.logger)
}

// newController builds the scan controller for a freshly mounted check
// view.
func (app *Application) newController() *scanner.Controller {
	return scanner.New(scanner.Config{
		Camera:    app.camera,
		Detectors: scanner.BarcodeDetectors,
		Lookup:    app.client,
		FrameRate: float64(app.cfg.ScanFPS),
		Logger:    app.logger,
	})
}

func (app *Application) initShell() {
	app.shell = shell.New(app.client, app.newController, app.cfg.PriceStore, app.logger)
}

func (app *Application) initHTTP() {
	router := shell.NewRouter(app.shell, BuildVersion, app.store)
	router.ApplyRoutes()
	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
