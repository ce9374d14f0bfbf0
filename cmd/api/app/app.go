package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"footix-auth-service/cmd/api/di"
	"footix-auth-service/cmd/api/server"
	"footix-auth-service/internal/config"
	"footix-auth-service/pkg/logger"
)

// App represents the application
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Server    *server.Server
	Container *di.Container

	// start serves until shutdown; Server.Start unless overridden in tests
	start func() error
}

// New creates a new application instance
func New() (*App, error) {
	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := initLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return NewWithLogger(cfg, l)
}

// NewWithLogger builds the application from an already loaded configuration
func NewWithLogger(cfg *config.Config, l *zap.Logger) (*App, error) {
	container, err := di.NewContainer(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}

	server.SetMode(getEnvironment())
	srv, err := server.New(cfg, l, container.AuthHandler, container.RateLimiter)
	if err != nil {
		_ = container.Close()
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	return &App{
		Config:    cfg,
		Logger:    l,
		Server:    srv,
		Container: container,
		start:     srv.Start,
	}, nil
}

// Run serves until ctx is canceled or the server fails, then shuts down
func (a *App) Run(ctx context.Context) error {
	a.Logger.Info("starting application",
		zap.String("service", a.Config.Logger.ServiceName),
		zap.String("version", a.Config.Logger.ServiceVersion),
		zap.String("environment", getEnvironment()),
		zap.String("address", a.Server.HTTP.Addr),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(a.serve)

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info("shutting down application...")
		return a.shutdown()
	})

	return g.Wait()
}

// serve runs the HTTP server. A panic is returned as an error so the
// errgroup cancels and shutdown starts.
func (a *App) serve() (err error) {
	defer func() {
		if r := recover(); r != nil {
			a.Logger.Error("panic recovered in server", zap.Any("panic", r), zap.Stack("stack"))
			err = fmt.Errorf("server panic: %v", r)
		}
	}()

	if err := a.start(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// shutdown gracefully shuts down the application
func (a *App) shutdown() error {
	timeout := time.Duration(a.Config.App.ShutdownTimeoutSeconds) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	a.Logger.Info("starting graceful shutdown",
		zap.Int("timeout_seconds", a.Config.App.ShutdownTimeoutSeconds),
	)

	var errs []error

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error("failed to shutdown HTTP server", zap.Error(err))
		errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
	}

	if a.Container != nil {
		if err := a.Container.Close(); err != nil {
			a.Logger.Error("failed to close container", zap.Error(err))
			errs = append(errs, fmt.Errorf("container close: %w", err))
		}
	}

	a.Logger.Info("application shutdown complete")

	// Syncing a terminal is not supported on every platform
	if err := a.Logger.Sync(); err != nil && !errors.Is(err, syscall.EINVAL) && !errors.Is(err, syscall.ENOTTY) {
		errs = append(errs, fmt.Errorf("logger sync: %w", err))
	}

	return errors.Join(errs...)
}

// initLogger initializes the application logger
func initLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.NewWithConfig(logger.Config{
		Level:            cfg.Logger.Level,
		Format:           cfg.Logger.Format,
		OutputPath:       cfg.Logger.OutputPath,
		SlowQuerySeconds: cfg.Logger.SlowQuerySeconds,
		EnableSampling:   cfg.Logger.EnableSampling,
		ServiceName:      cfg.Logger.ServiceName,
		ServiceVersion:   cfg.Logger.ServiceVersion,
		Environment:      getEnvironment(),
	})
}

// getConfigPath returns the configuration path
func getConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "."
}

// getEnvironment returns the application environment
func getEnvironment() string {
	if env := os.Getenv("APP_ENV"); env != "" {
		return env
	}
	return "development"
}
