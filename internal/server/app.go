// Package server wires the notes service together: configuration, logging,
// storage, authentication, rate limiting and the HTTP and gRPC listeners.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/server/api"
	"github.com/dmitrijs2005/gophnotes/internal/server/auth"
	"github.com/dmitrijs2005/gophnotes/internal/server/config"
	"github.com/dmitrijs2005/gophnotes/internal/server/ratelimit"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophnotes/internal/server/services"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/gophnotes/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	repos   repomanager.RepositoryManager
	redis   *redis.Client
	limiter *ratelimit.Manager
	users   *services.UserService
	notes   *services.NoteService
}

// NewApp opens storage, applies migrations and builds the services. Logs go
// to out.
func NewApp(ctx context.Context, c *config.Config, out io.Writer) (*App, error) {
	logger, err := logging.NewJSON(out, c.LogLevel)
	if err != nil {
		return nil, err
	}

	if c.UsesDefaultSecret() {
		logger.Warn(ctx, "using the built-in development secret key; set NOTES_SECRET_KEY in production")
	}

	repos, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := repos.RunMigrations(ctx); err != nil {
		return nil, errors.Join(fmt.Errorf("migrations: %w", err), repos.Close())
	}

	app := &App{config: c, logger: logger, repos: repos}
	if err := app.initServices(); err != nil {
		return nil, errors.Join(err, app.Close())
	}
	return app, nil
}

func (app *App) initServices() error {
	c := app.config

	codec, err := auth.NewTokenCodec([]byte(c.SecretKey))
	if err != nil {
		return fmt.Errorf("token codec: %w", err)
	}
	authn, err := auth.NewAuthenticator(app.repos.Users(), auth.NewArgon2Hasher(auth.DefaultArgon2Params), codec, c.AccessTokenValidityDuration)
	if err != nil {
		return fmt.Errorf("authenticator: %w", err)
	}

	opts := ratelimit.Options{
		Enabled: c.RateLimitEnabled,
		Rules:   c.RateLimits,
		Logger:  app.logger.With("module", "ratelimit"),
	}
	if c.RateLimitRedis.Addr != "" {
		app.redis = redis.NewClient(&redis.Options{
			Addr:     c.RateLimitRedis.Addr,
			Password: c.RateLimitRedis.Password,
			DB:       c.RateLimitRedis.DB,
		})
		opts.Redis = app.redis
		opts.RedisPrefix = c.RateLimitRedis.Prefix
	}
	app.limiter, err = ratelimit.NewManager(opts)
	if err != nil {
		return fmt.Errorf("rate limits: %w", err)
	}

	app.users = services.NewUserService(app.repos, authn, app.logger.With("module", "users"))
	app.notes = services.NewNoteService(app.repos, app.logger.With("module", "notes"))
	return nil
}

// HTTPServer builds the HTTP API server.
func (app *App) HTTPServer() *api.HTTPServer {
	router := api.NewRouter(api.Deps{
		Users:   app.users,
		Notes:   app.notes,
		Health:  app.repos,
		Limiter: app.limiter,
		Logger:  app.logger,
	})
	return api.NewHTTPServer(app.config.HTTPAddr, router, app.logger)
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case s := <-sigs:
			app.logger.Info(ctx, "signal received", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.HTTPServer().Run(ctx); err != nil {
		app.logger.Error(ctx, "http server", "error", err)
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewHealthServer(app.config.GRPCHealthAddr, app.logger, app.repos)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc health server", "error", err)
		cancelFunc()
	}
}

// Run serves until ctx is cancelled, a termination signal arrives, or a
// listener fails, then releases storage.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "rate_limit", app.limiter.Enabled(), "routes", app.limiter.Routes())

	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.GRPCHealthAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	if err := app.Close(); err != nil {
		app.logger.Error(ctx, "shutdown", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}

// Close releases storage and the Redis client.
func (app *App) Close() error {
	var err error
	if app.redis != nil {
		err = app.redis.Close()
		app.redis = nil
	}
	if app.repos != nil {
		if cerr := app.repos.Close(); cerr != nil && err == nil {
			err = cerr
		}
		app.repos = nil
	}
	return err
}
