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

	httpapi "github.com/springmeet/springmeet/internal/api/http"
	"github.com/springmeet/springmeet/internal/api/realtime"
	"github.com/springmeet/springmeet/internal/api/service"
	"github.com/springmeet/springmeet/internal/api/store"
	"github.com/springmeet/springmeet/internal/api/store/drivers/postgres"
	"github.com/springmeet/springmeet/internal/api/store/drivers/sqlite"
	"github.com/springmeet/springmeet/pkg/slogx"
	"github.com/springmeet/springmeet/pkg/tokenx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the API service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db    store.Store
	codec *tokenx.Codec

	sessionService      *service.SessionService
	bootstrapService    *service.BootstrapService
	housekeepingService *service.HousekeepingService
	registry            *realtime.Registry

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	if cfg.Secret == "" {
		return nil, errors.New("AUTH_SECRET must be configured")
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "springmeet-api",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		codec: tokenx.NewCodec([]byte(cfg.Secret)),
	}

	if err := app.initStore(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("api service starting", "port", app.cfg.Port, "version", BuildVersion)

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

// Shutdown gracefully stops the HTTP server, the housekeeping worker, and
// the store, in that order.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down api service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing store", "error", err)
		return err
	}

	app.logger.Info("api service stopped")
	return nil
}

// initStore picks the configured driver, opens the store, and applies
// migrations.
func (app *Application) initStore() error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.StoreDriver {
	case "sqlite":
		dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.StoreDSN)
		db, err = sqlite.NewStore(dsn)
	case "postgres":
		db, err = postgres.NewStore(app.cfg.StoreDSN)
	default:
		return fmt.Errorf("unknown store driver %q", app.cfg.StoreDriver)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	app.logger.Info("store migrations applied successfully", "driver", app.cfg.StoreDriver)
	return nil
}

func (app *Application) initServices() {
	app.sessionService = &service.SessionService{
		Store:      app.db,
		Codec:      app.codec,
		AccessTTL:  app.cfg.AccessTTL,
		RefreshTTL: app.cfg.RefreshTTL,
	}

	app.bootstrapService = &service.BootstrapService{
		Store: app.db,
		Key:   app.cfg.BootstrapKey,
	}

	app.registry = realtime.NewRegistry(app.logger, app.codec, app.db)

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)
	router.SessionService = app.sessionService
	router.BootstrapService = app.bootstrapService
	router.Registry = app.registry
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
