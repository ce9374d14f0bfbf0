package di

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"footix-auth-service/cmd/api/infrastructure"
	"footix-auth-service/internal/adapter/db/postgres"
	ginhandler "footix-auth-service/internal/adapter/gin/handler"
	"footix-auth-service/internal/adapter/ratelimit"
	"footix-auth-service/internal/config"
	"footix-auth-service/internal/credential"
	"footix-auth-service/internal/usecase/auth"
	redisclient "footix-auth-service/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	RedisClient *redisclient.Client
	AuthUC      auth.Usecase
	RateLimiter *ratelimit.Limiter
	AuthHandler *ginhandler.AuthHandler
}

// NewContainer creates and initializes all application dependencies
func NewContainer(cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	credentials, err := credential.New(cfg.Auth.PasswordScheme, cfg.Auth.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize credential store: %w", err)
	}

	db, err := infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	rdb, err := infrastructure.NewRedisClient(cfg, l)
	if err != nil {
		_ = infrastructure.CloseDatabase(db)
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	repo := postgres.NewAccountRepoPG(db, l)
	authUC := auth.New(repo, credentials, l)

	var rateLimiter *ratelimit.Limiter
	if rdb != nil && cfg.RateLimit.Enabled {
		rateLimiter = ratelimit.New(rdb.Client, ratelimit.Config{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstCapacity:     cfg.RateLimit.BurstCapacity,
			Enabled:           true,
		}, l)
	}

	authHandler := ginhandler.NewAuthHandler(authUC, repo, ginhandler.Options{
		ReportConflict: cfg.Auth.ReportConflict,
		ServiceName:    cfg.Logger.ServiceName,
	}, l)

	l.Info("container initialized",
		zap.String("password_scheme", cfg.Auth.PasswordScheme),
		zap.Bool("rate_limit", rateLimiter != nil),
		zap.Bool("report_conflict", cfg.Auth.ReportConflict),
	)

	return &Container{
		Config:      cfg,
		Logger:      l,
		DB:          db,
		RedisClient: rdb,
		AuthUC:      authUC,
		RateLimiter: rateLimiter,
		AuthHandler: authHandler,
	}, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	return errors.Join(errs...)
}
