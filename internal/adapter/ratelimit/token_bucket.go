// Package ratelimit throttles clients with a token bucket kept in Redis,
// so every API instance shares the same budget per client.
package ratelimit

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// KeyPrefix namespaces token bucket state in Redis.
const KeyPrefix = "ratelimit:tb"

// bucketTTLSeconds bounds how long an idle bucket survives.
const bucketTTLSeconds = 60

// Config holds configuration for the token bucket.
type Config struct {
	RequestsPerSecond float64
	BurstCapacity     int
	Enabled           bool
}

// tokenBucket refills at ARGV[1] tokens per second up to ARGV[2] and
// consumes one token per call. Bucket state is {last_refill, tokens}.
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local bucket = redis.call('HMGET', key, 'last_refill', 'tokens')
local last_refill = tonumber(bucket[1]) or now
local tokens = tonumber(bucket[2]) or capacity

local elapsed = math.max(0, now - last_refill)
tokens = math.min(capacity, tokens + elapsed * rate)

local allowed = 0
if tokens >= 1 then
	tokens = tokens - 1
	allowed = 1
end

redis.call('HSET', key, 'last_refill', tostring(now), 'tokens', tostring(tokens))
redis.call('EXPIRE', key, ttl)
return allowed
`)

// Limiter decides whether a client may proceed.
type Limiter struct {
	client *redis.Client
	config Config
	log    *zap.Logger
}

// New creates a new Limiter. A nil client disables limiting.
func New(client *redis.Client, config Config, log *zap.Logger) *Limiter {
	return &Limiter{
		client: client,
		config: config,
		log:    log,
	}
}

// Config returns the limiter settings.
func (l *Limiter) Config() Config {
	return l.config
}

// Key builds the bucket key for a route and client address.
func Key(method, path, clientIP string) string {
	return fmt.Sprintf("%s:%s:%s:%s", KeyPrefix, method, path, clientIP)
}

// Allow consumes one token from the bucket stored under key. When Redis
// cannot be reached the request is allowed and the error is returned
// alongside so callers can log it.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	if l == nil || !l.config.Enabled || l.client == nil {
		return true, nil
	}

	// Redis clock, so instances with skewed clocks share one timeline
	now, err := l.client.Time(ctx).Result()
	if err != nil {
		return true, fmt.Errorf("failed to read redis time: %w", err)
	}
	seconds := float64(now.UnixMicro()) / 1e6

	allowed, err := tokenBucket.Run(ctx, l.client, []string{key},
		l.config.RequestsPerSecond,
		l.config.BurstCapacity,
		seconds,
		bucketTTLSeconds,
	).Int64()
	if err != nil {
		return true, fmt.Errorf("failed to evaluate token bucket: %w", err)
	}

	if allowed == 0 {
		l.log.Warn("rate limit exceeded",
			zap.String("key", key),
			zap.Float64("limit", l.config.RequestsPerSecond),
			zap.Int("burst", l.config.BurstCapacity),
		)
		return false, nil
	}
	return true, nil
}
