package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"footix-auth-service/internal/adapter/gin/handler"
	"footix-auth-service/internal/adapter/gin/middleware"
	"footix-auth-service/internal/adapter/ratelimit"
	"footix-auth-service/pkg/logger"
)

// Options configures the router's cross-cutting middleware
type Options struct {
	CORSAllowedOrigins []string
	// TrustedProxies may set X-Forwarded-For; nil trusts no one
	TrustedProxies []string
	RateLimiter    *ratelimit.Limiter
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(authHandler *handler.AuthHandler, opts Options, log *zap.Logger) (*gin.Engine, error) {
	router := gin.New()

	// Client IPs key the rate limiter, so forwarding headers only count from known proxies
	if err := router.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	// Global middleware
	router.Use(middleware.Recovery(log))
	router.Use(logger.RequestIDMiddleware())
	router.Use(middleware.Logger(log))
	router.Use(middleware.CORS(opts.CORSAllowedOrigins))
	router.Use(middleware.RateLimiter(opts.RateLimiter, log))

	router.GET("/", authHandler.Status)
	router.GET("/health", authHandler.Health)

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	return router, nil
}
