// Package app wires configuration into a running service. Every
// collaborator is injected; nothing here is a process-wide singleton.
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

	"github.com/redis/go-redis/v9"

	"github.com/socialfin/authgate/internal/gate/directory"
	"github.com/socialfin/authgate/internal/gate/directory/embedded"
	"github.com/socialfin/authgate/internal/gate/directory/remote"
	"github.com/socialfin/authgate/internal/gate/grants"
	gatehttp "github.com/socialfin/authgate/internal/gate/http"
	"github.com/socialfin/authgate/internal/gate/mailer"
	"github.com/socialfin/authgate/internal/gate/ratelimit"
	"github.com/socialfin/authgate/internal/gate/service"
	"github.com/socialfin/authgate/pkg/jwtx"
	"github.com/socialfin/authgate/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"

	readHeaderTimeout = 5 * time.Second
)

// Application encapsulates the service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	redis    *redis.Client
	embedded *embedded.Store

	sessions *service.SessionService

	server *http.Server
	router *gatehttp.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "authgate",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("AUTHGATE_JWT_SECRET is required")
	}

	codec := &jwtx.Codec{
		Secret:     []byte(cfg.JWTSecret),
		Issuer:     cfg.Issuer,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	}

	grantStore, counters := app.initStores()

	dir, profiles, err := app.initDirectory()
	if err != nil {
		return nil, err
	}

	app.sessions = service.NewSessionService(
		dir,
		profiles,
		grantStore,
		codec,
		mailer.NewLogMailer(app.logger),
		app.logger,
	)
	app.sessions.RequireVerified = cfg.RequireVerifiedEmail

	app.initHTTP(codec, counters)

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("authgate starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"directory_mode", app.cfg.DirectoryMode,
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

// Shutdown gracefully stops the server and closes backing stores.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down authgate...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}

	if app.embedded != nil {
		if err := app.embedded.Close(); err != nil {
			app.logger.Error("error closing database", "error", err)
			return err
		}
	}

	app.logger.Info("authgate stopped")
	return nil
}

// initStores selects the grant store and rate counter backends. With
// no redis address configured both run in memory, which only holds for
// a single instance.
func (app *Application) initStores() (grants.Store, ratelimit.CounterStore) {
	if app.cfg.RedisAddr == "" {
		app.logger.Warn("no redis configured, grants and rate counters are in-memory and per-instance")
		return grants.NewMemoryStore(), ratelimit.NewMemoryCounters()
	}

	app.redis = redis.NewClient(&redis.Options{
		Addr:     app.cfg.RedisAddr,
		Password: app.cfg.RedisPassword,
		DB:       app.cfg.RedisDB,
	})

	return grants.NewRedisStore(app.redis), ratelimit.NewRedisCounters(app.redis)
}

func (app *Application) initDirectory() (directory.Directory, directory.Profiles, error) {
	switch app.cfg.DirectoryMode {
	case DirectoryModeRemote:
		if app.cfg.DirectoryURL == "" || app.cfg.DirectoryServiceKey == "" {
			return nil, nil, errors.New("remote directory mode requires AUTHGATE_DIRECTORY_URL and AUTHGATE_DIRECTORY_SERVICE_KEY")
		}

		client := remote.NewClient(app.cfg.DirectoryURL, app.cfg.DirectoryServiceKey)
		client.LegacyLookup = app.cfg.DirectoryLegacyLookup
		return client, client, nil

	case DirectoryModeEmbedded:
		dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
		store, err := embedded.NewStore(dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open directory database: %w", err)
		}

		if err := store.ApplyMigrations(); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("failed to apply directory migrations: %w", err)
		}

		app.embedded = store
		app.logger.Info("directory database migrations applied")
		return store, store, nil

	default:
		return nil, nil, fmt.Errorf("unknown directory mode %q", app.cfg.DirectoryMode)
	}
}

func (app *Application) initHTTP(codec *jwtx.Codec, counters ratelimit.CounterStore) {
	minute := ratelimit.PerMinute
	minute.Limit = int64(app.cfg.RateLimitPerMinute)
	hour := ratelimit.PerHour
	hour.Limit = int64(app.cfg.RateLimitPerHour)
	login := ratelimit.Login
	login.Limit = int64(app.cfg.LoginAttemptLimit)

	app.router = gatehttp.NewRouter(codec, BuildVersion, app.logger)
	app.router.Sessions = app.sessions
	app.router.Limiter = ratelimit.New(counters, app.logger, minute, hour)
	app.router.LoginLimiter = ratelimit.New(counters, app.logger, login)
	app.router.Ready = app.readiness
	app.router.ApplyRoutes()

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           app.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// readiness probes the backing stores for /readyz.
func (app *Application) readiness() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if app.redis != nil {
		if err := app.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}

	if app.embedded != nil {
		if err := app.embedded.Ping(ctx); err != nil {
			return fmt.Errorf("directory database: %w", err)
		}
	}

	return nil
}
