package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// connectTimeout bounds the startup ping
const connectTimeout = 5 * time.Second

// Config holds Redis connection configuration.
type Config struct {
	Host        string
	Port        string
	Password    string
	DB          int
	MaxRetries  int
	PoolSize    int
	MinIdleConn int
}

// Addr returns host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c Config) options() *redis.Options {
	return &redis.Options{
		Addr:         c.Addr(),
		Password:     c.Password,
		DB:           c.DB,
		MaxRetries:   c.MaxRetries,
		PoolSize:     c.PoolSize,    // 0 lets go-redis pick 10 per CPU
		MinIdleConns: c.MinIdleConn, // kept warm for the rate limiter script
		DialTimeout:  connectTimeout,
		// The limiter fails open, so a slow Redis should not stall requests
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		PoolTimeout:  2 * time.Second,
	}
}

// Client wraps redis.Client with lifecycle logging.
type Client struct {
	*redis.Client
	log *zap.Logger
}

// NewClient creates a Redis client and verifies connectivity with a ping.
// The pool is closed again when the ping fails.
func NewClient(cfg Config, log *zap.Logger) (*Client, error) {
	rdb := redis.NewClient(cfg.options())

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr(), err)
	}

	log = log.With(zap.String("addr", cfg.Addr()), zap.Int("db", cfg.DB))
	log.Info("Redis connected successfully", zap.Int("pool_size", cfg.PoolSize))

	return &Client{
		Client: rdb,
		log:    log,
	}, nil
}

// Ping checks if the Redis connection is alive.
func (c *Client) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

// Close closes the Redis connection pool, logging its lifetime stats.
func (c *Client) Close() error {
	stats := c.PoolStats()
	c.log.Info("closing Redis connection",
		zap.Uint32("hits", stats.Hits),
		zap.Uint32("misses", stats.Misses),
		zap.Uint32("timeouts", stats.Timeouts),
		zap.Uint32("total_conns", stats.TotalConns),
	)
	return c.Client.Close()
}
