package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/tinyvectordb/tinyvectordb/internal/config"
	"github.com/tinyvectordb/tinyvectordb/internal/facade"
	"github.com/tinyvectordb/tinyvectordb/internal/logging"
	"github.com/tinyvectordb/tinyvectordb/internal/ratelimit"
	"github.com/tinyvectordb/tinyvectordb/internal/runtime"
)

// Server is the REST API server over a running Runtime.
type Server struct {
	router     *gin.Engine
	rt         *runtime.Runtime
	facade     *facade.Facade
	config     *config.Config
	httpServer *http.Server
	log        *logging.Logger
}

// NewServer creates a REST API server over rt.
func NewServer(rt *runtime.Runtime) *Server {
	log := logging.GetLogger("api")
	log.Info("initializing REST API server")

	cfg := rt.Config

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-Key"},
		ExposeHeaders:   []string{"Content-Length", "Retry-After"},
		MaxAge:          12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	router.Use(TokenAuthMiddleware(rt.Resolver, cfg.RequireAuth))

	rlCfg := ratelimit.DefaultConfig()
	limiter := ratelimit.NewLimiter(rlCfg)
	router.Use(RateLimitMiddleware(limiter))

	router.Use(MaxBodySizeMiddleware(DefaultBodyLimit))

	server := &Server{
		router: router,
		rt:     rt,
		facade: facade.New(rt),
		config: cfg,
		log:    log,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all API routes, one group per facade service.
func (s *Server) setupRoutes() {
	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/health", s.healthHandler)

		v1.POST("/spaces", s.createSpace)
		v1.GET("/spaces", s.listSpaces)
		v1.GET("/spaces/:name", s.getSpace)
		v1.DELETE("/spaces/:name", s.deleteSpace)

		v1.POST("/spaces/:name/versions", s.addVersion)
		v1.GET("/spaces/:name/versions", s.listVersions)
		v1.GET("/spaces/:name/versions/:unique_id", s.getVersion)

		v1.POST("/spaces/:name/vectors", s.upsertVector)
		v1.GET("/spaces/:name/vectors/:unique_id", s.getVector)

		v1.POST("/spaces/:name/search", s.search)

		v1.POST("/snapshots", s.createSnapshot)
		v1.POST("/snapshots/restore", s.restoreSnapshot)

		v1.POST("/tokens", s.createToken)
		v1.POST("/tokens/validate", s.validateToken)
	}
}

// Start starts the HTTP server on the configured address.
func (s *Server) Start(addr string) error {
	if addr == "" {
		addr = ":8080"
	}
	s.httpServer = &http.Server{Addr: addr, Handler: s.router}
	s.log.Info("starting REST API server", "address", addr)
	return s.httpServer.ListenAndServe()
}

// StartWithContext starts the HTTP server and blocks until ctx is cancelled
// or the server errors, then shuts down gracefully within shutdownTimeout.
func (s *Server) StartWithContext(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	if addr == "" {
		addr = ":8080"
	}
	s.httpServer = &http.Server{Addr: addr, Handler: s.router}

	errChan := make(chan error, 1)
	go func() {
		s.log.Info("starting REST API server", "address", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("stopping REST API server")
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.log.Error("server shutdown error", "error", err)
			return err
		}
	}
	return nil
}

// Router returns the underlying Gin router for testing.
func (s *Server) Router() *gin.Engine {
	return s.router
}
