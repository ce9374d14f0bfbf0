package infrastructure

import (
	"fmt"

	"go.uber.org/zap"

	"footix-auth-service/internal/config"
	redisclient "footix-auth-service/pkg/redis"
)

// NewRedisClient connects to Redis when it is enabled. It returns a nil
// client otherwise, which leaves rate limiting off.
func NewRedisClient(cfg *config.Config, l *zap.Logger) (*redisclient.Client, error) {
	if !cfg.Redis.Enabled {
		l.Info("redis disabled")
		return nil, nil
	}

	rdb, err := redisclient.NewClient(redisclient.Config{
		Host:        cfg.Redis.Host,
		Port:        cfg.Redis.Port,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		MaxRetries:  cfg.Redis.MaxRetries,
		PoolSize:    cfg.Redis.PoolSize,
		MinIdleConn: cfg.Redis.MinIdleConn,
	}, l)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return rdb, nil
}
