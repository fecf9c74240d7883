package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	api "github.com/GriffinCanCode/rubico-playground/internal/api/http"
	"github.com/GriffinCanCode/rubico-playground/internal/api/middleware"
	"github.com/GriffinCanCode/rubico-playground/internal/api/ws"
	"github.com/GriffinCanCode/rubico-playground/internal/document"
	"github.com/GriffinCanCode/rubico-playground/internal/infrastructure/config"
	"github.com/GriffinCanCode/rubico-playground/internal/infrastructure/logging"
	"github.com/GriffinCanCode/rubico-playground/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/rubico-playground/internal/playground"
	"github.com/GriffinCanCode/rubico-playground/internal/sandbox"
)

// ShutdownTimeout bounds graceful shutdown
const ShutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	handler http.Handler
	pool    *sandbox.Pool
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// Option configures a Server
type Option func(*Server)

// WithLogger replaces the logger built from the logging configuration
func WithLogger(logger *logging.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{config: cfg}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		logger, err := logging.New(logging.Config{
			Level:       cfg.Logging.Level,
			Development: cfg.Logging.IsDevelopment(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		s.logger = logger
	}
	logger := s.logger

	logger.Info("Initializing playground server",
		zap.String("addr", cfg.Addr()),
		zap.String("library_url", cfg.Library.URL),
		zap.Int("pool_size", cfg.Sandbox.PoolSize),
	)

	s.metrics = monitoring.NewMetrics()

	base := sandbox.DefaultConfig()
	base.Timeout = cfg.Sandbox.Timeout
	base.MaxCallStackSize = cfg.Sandbox.MaxCallStackSize
	pool, err := sandbox.NewPool(playground.SandboxConfig(base, cfg.Library.URL), cfg.Sandbox.PoolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create sandbox pool: %w", err)
	}
	pool.SetAcquireTimeout(cfg.Sandbox.AcquireTimeout)
	s.pool = pool
	stats := pool.Stats()
	s.metrics.SetPool(stats.Size, stats.InUse)

	assembler := document.New(document.Options{
		LibraryURL: cfg.Library.URL,
		OutputID:   cfg.Library.OutputID,
	})

	if !cfg.Logging.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(monitoring.Middleware(s.metrics))
	router.Use(middleware.CORS(middleware.CORSFromOrigins(cfg.Server.AllowOrigins)))

	handlers := api.NewHandlers(assembler, pool, s.metrics, logger)
	wsHandler := ws.NewHandler(assembler, pool, s.metrics, logger, cfg.Server.AllowOrigins)

	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	router.GET("/metrics/json", handlers.Metrics)

	apiGroup := router.Group("/api")
	apiGroup.GET("/library", handlers.Library)

	runs := apiGroup.Group("")
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
			zap.Int("global_rps", cfg.RateLimit.GlobalRPS),
		)
		if cfg.RateLimit.GlobalRPS > 0 {
			runs.Use(middleware.GlobalRateLimit(middleware.RateLimitConfig{
				RequestsPerSecond: cfg.RateLimit.GlobalRPS,
				Burst:             cfg.RateLimit.GlobalBurst,
			}))
		}
		runs.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}
	runs.POST("/documents", handlers.Document)
	runs.POST("/runs", handlers.Run)
	runs.POST("/evaluate", handlers.Evaluate)

	router.GET("/stream", wsHandler.HandleConnection)

	s.router = router
	s.handler = router
	if cfg.Server.Compress {
		s.handler = compress(router)
	}

	logger.Info("Server initialized successfully")
	return s, nil
}

// compress gzips responses for clients that accept it. WebSocket upgrades
// bypass the wrapper since they need the raw connection.
func compress(next http.Handler) http.Handler {
	gz := gzhttp.GzipHandler(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			next.ServeHTTP(w, r)
			return
		}
		gz.ServeHTTP(w, r)
	})
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Metrics returns the server's collector
func (s *Server) Metrics() *monitoring.Metrics {
	return s.metrics
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	addr := s.config.Addr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

// Close releases the sandbox pool and flushes the logger
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	if err := s.pool.Close(); err != nil {
		s.logger.Error("Failed to close sandbox pool", zap.Error(err))
		return fmt.Errorf("failed to close sandbox pool: %w", err)
	}

	s.logger.Sync()
	return nil
}
