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

	"github.com/aussiebroadwan/memo/internal/accounts/cache"
	"github.com/aussiebroadwan/memo/internal/accounts/files"
	httpapi "github.com/aussiebroadwan/memo/internal/accounts/http"
	"github.com/aussiebroadwan/memo/internal/accounts/service"
	"github.com/aussiebroadwan/memo/internal/accounts/store"
	"github.com/aussiebroadwan/memo/internal/accounts/store/drivers/postgres"
	"github.com/aussiebroadwan/memo/internal/accounts/store/drivers/sqlite"
	"github.com/aussiebroadwan/memo/internal/accounts/store/drivers/sqlstore"
	"github.com/aussiebroadwan/memo/pkg/otpx"
	"github.com/aussiebroadwan/memo/pkg/slogx"
)

const (
	// BuildVersion is the reported service version.
	BuildVersion = "v0.1.0"

	cachePrefix = "memo"
)

// Application encapsulates the accounts service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db    store.Store
	redis *redis.Client
	cache cache.Cache
	files *files.Store
	otp   *otpx.Engine

	// Services
	accountService      *service.AccountService
	housekeepingService *service.HousekeepingService
	housekeepingStarted bool

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg Config) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: "memo",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		File:    cfg.LogFile,
	})
}

// New creates a new Application instance with all dependencies initialized
func New(ctx context.Context, cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg:    cfg,
		logger: NewLogger(cfg),
	}

	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}

	if err := app.initCache(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.closeBackends()
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// Handler returns the fully wired HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Accounts returns the account service backing the handler.
func (app *Application) Accounts() *service.AccountService {
	return app.accountService
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()
	app.housekeepingStarted = true

	app.logger.Info("memo service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = app.Shutdown()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down memo service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the housekeeping service
	if app.housekeepingStarted {
		app.housekeepingService.Stop()
		app.housekeepingStarted = false
	}

	if err := app.closeBackends(); err != nil {
		return err
	}

	app.logger.Info("memo service stopped")
	return nil
}

func (app *Application) closeBackends() error {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}
	return nil
}

// OpenStore connects to the configured database without migrating it.
func OpenStore(ctx context.Context, cfg Config) (store.Store, error) {
	var (
		db  *sqlstore.Store
		err error
	)

	switch cfg.DatabaseDriver {
	case DriverPostgres:
		db, err = postgres.NewStore(ctx, cfg.DatabaseDSN)
	case DriverSQLite:
		db, err = sqlite.NewStore(cfg.DatabaseDSN)
	default:
		err = fmt.Errorf("unknown database driver %q", cfg.DatabaseDriver)
	}
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate applies the schema migrations and closes the connection.
func Migrate(ctx context.Context, cfg Config) error {
	db, err := OpenStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := db.ApplyMigrations(); err != nil {
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase(ctx context.Context) error {
	db, err := OpenStore(ctx, app.cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// initCache connects to redis, or disables caching when no URL is set.
func (app *Application) initCache(ctx context.Context) error {
	if app.cfg.RedisURL == "" {
		app.logger.Warn("MEMO_REDIS_URL not set, account cache disabled")
		app.cache = cache.NopCache{}
		return nil
	}

	rdb, err := cache.Connect(ctx, app.cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	app.redis = rdb
	app.cache = cache.NewRedisCache(rdb, cachePrefix)

	app.logger.Info("account cache enabled", "ttl", app.cfg.CacheTTL)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	secrets, err := InitSecrets(app.cfg, app.logger)
	if err != nil {
		return err
	}

	tokens, err := InitTokens(app.cfg, app.logger)
	if err != nil {
		return err
	}

	app.files = &files.Store{Root: app.cfg.AppDataPath}
	mfaDir, err := app.files.Dir(files.DirMFA)
	if err != nil {
		return fmt.Errorf("failed to prepare data directory: %w", err)
	}
	if _, err := app.files.Dir(files.DirUserpics); err != nil {
		return fmt.Errorf("failed to prepare data directory: %w", err)
	}

	app.otp = &otpx.Engine{
		AppName:   app.cfg.MFAAppName,
		Dir:       mfaDir,
		ImageSize: app.cfg.MFAImageSize,
	}

	app.accountService = &service.AccountService{
		Store:    app.db,
		Cache:    &cache.Accounts{Cache: app.cache, TTL: app.cfg.CacheTTL},
		Secrets:  secrets,
		Tokens:   tokens,
		OTP:      app.otp,
		Files:    app.files,
		Limits:   app.cfg.Limits(),
		Userpics: app.cfg.Userpics(),
		TokenTTL: app.cfg.TokenTTL,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.files,
		app.otp,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.MFAImageTTL,
	)

	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		BuildVersion,
		app.db,
		app.cache,
		app.files,
		app.accountService,
		app.logger,
	)
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
