// Package server wires configuration, storage, cache and services together
// and runs the HTTP and gRPC front ends until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/cryptox"
	"github.com/dmitrijs2005/shopkeeper/internal/dbx"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"github.com/dmitrijs2005/shopkeeper/internal/server/auth"
	"github.com/dmitrijs2005/shopkeeper/internal/server/cache"
	"github.com/dmitrijs2005/shopkeeper/internal/server/config"
	"github.com/dmitrijs2005/shopkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/shopkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/shopkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/shopkeeper/internal/server/services"

	gs "github.com/dmitrijs2005/shopkeeper/internal/server/grpc"
)

const (
	pingTimeout     = 5 * time.Second
	shutdownTimeout = 10 * time.Second
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	cache   cache.Cache
	closers []func() error
	metrics *metrics.Metrics

	authService     *services.AuthService
	userService     *services.UserService
	categoryService *services.CategoryService
	productService  *services.ProductService
}

// NewApp validates c and connects every dependency. An invalid configuration
// is reported before any connection is attempted; the error then matches
// common.ErrConfiguration.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	logger := logging.New(os.Stdout, c.LogLevel, c.LogFormat)

	signing, err := auth.NewSigningConfig(c.SecretKey)
	if err != nil {
		return nil, err
	}
	issuer, err := auth.NewTokenIssuer(signing)
	if err != nil {
		return nil, err
	}

	app := &App{config: c, logger: logger, metrics: metrics.New()}

	db, err := openDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	app.db = db
	app.closers = append(app.closers, db.Close)

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		app.Close()
		return nil, dbx.Wrap(err)
	}

	if err := app.initCache(ctx); err != nil {
		app.Close()
		return nil, err
	}

	ttl := services.CacheTTL{Short: c.CacheShortTTL, Long: c.CacheLongTTL}
	hasher := cryptox.NewHasher(cryptox.DefaultParams)

	app.authService = services.NewAuthService(db, rm, hasher, issuer, c.AccessTokenValidityDuration, logger)
	app.userService = services.NewUserService(db, rm)
	app.categoryService = services.NewCategoryService(db, rm, app.cache, ttl, logger)
	app.productService = services.NewProductService(db, rm, app.cache, ttl, logger)

	logger.Info(ctx, "App initialized", "config", c.String())
	return app, nil
}

func openDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, dbx.Wrap(err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, dbx.Wrap(err)
	}
	return db, nil
}

func (app *App) initCache(ctx context.Context) error {
	if app.config.RedisAddr == "" {
		app.cache = cache.Nop{}
		return nil
	}

	rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
		Addr:     app.config.RedisAddr,
		Password: app.config.RedisPassword,
		DB:       app.config.RedisDB,
	})
	if err != nil {
		return fmt.Errorf("cache: %w: %w", common.ErrDependency, err)
	}
	app.closers = append(app.closers, rc.Close)
	app.cache = cache.NewInstrumented(rc, app.metrics.CacheOperations)
	return nil
}

// Close releases the database pool and the cache connection.
func (app *App) Close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			app.logger.Warn(context.Background(), "close failed", "error", err)
		}
	}
	app.closers = nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) httpHandler() http.Handler {
	return httpapi.NewRouter(httpapi.Options{
		Auth:                   app.authService,
		Users:                  app.userService,
		Categories:             app.categoryService,
		Products:               app.productService,
		Metrics:                app.metrics,
		Logger:                 app.logger,
		HideLoginFailureReason: app.config.HideLoginFailureReason,
	})
}

func (app *App) startHTTPServer(ctx context.Context) error {
	srv := &http.Server{
		Addr:              app.config.EndpointAddrHTTP,
		Handler:           app.httpHandler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (app *App) startGRPCServer(ctx context.Context) error {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.authService, app.metrics, app.config.HideLoginFailureReason)
	return s.Run(ctx)
}

// Run serves HTTP and gRPC until ctx is cancelled, a signal arrives or one
// of the servers fails. It returns the first server error.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.Close()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	run := func(name string, fn func(context.Context) error) {
		defer wg.Done()
		if err := fn(ctx); err != nil {
			app.logger.Error(ctx, name+" server failed", "error", err)
			once.Do(func() { firstErr = err })
			cancelFunc()
		}
	}

	wg.Add(2)
	go run("HTTP", app.startHTTPServer)
	go run("gRPC", app.startGRPCServer)
	wg.Wait()

	app.logger.Info(context.Background(), "App stopped")
	return firstErr
}
