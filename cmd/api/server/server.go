package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	ginhandler "footix-auth-service/internal/adapter/gin/handler"
	ginrouter "footix-auth-service/internal/adapter/gin/router"
	"footix-auth-service/internal/adapter/ratelimit"
	"footix-auth-service/internal/config"
)

// Server wraps the HTTP server exposing the auth API
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	HTTP   *http.Server
}

// New creates a new server instance with the Gin router mounted
func New(cfg *config.Config, l *zap.Logger, authHandler *ginhandler.AuthHandler, rateLimiter *ratelimit.Limiter) (*Server, error) {
	router, err := ginrouter.SetupRouter(authHandler, ginrouter.Options{
		CORSAllowedOrigins: cfg.App.CORSAllowedOrigins,
		TrustedProxies:     cfg.App.TrustedProxies,
		RateLimiter:        rateLimiter,
	}, l)
	if err != nil {
		return nil, fmt.Errorf("failed to set up router: %w", err)
	}

	return &Server{
		Config: cfg,
		Logger: l,
		HTTP: &http.Server{
			Addr:              ":" + cfg.App.HTTPPort,
			Handler:           router,
			ReadHeaderTimeout: 2 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}, nil
}

// SetMode selects Gin's mode for the application environment
func SetMode(env string) {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
		return
	}
	gin.SetMode(gin.DebugMode)
}

// Start listens on the configured port and serves until Shutdown.
func (s *Server) Start() error {
	lc := net.ListenConfig{}
	lis, err := lc.Listen(context.Background(), "tcp", s.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return s.Serve(lis)
}

// Serve accepts connections on lis. A graceful shutdown is not an error.
func (s *Server) Serve(lis net.Listener) error {
	s.Logger.Info("HTTP server running", zap.String("address", lis.Addr().String()))
	if err := s.HTTP.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.HTTP.Shutdown(ctx)
}
