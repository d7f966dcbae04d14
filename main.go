package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/ova-health/backend/internal/ai"
	"github.com/vcscsvcscs/ova-health/backend/internal/config"
	"github.com/vcscsvcscs/ova-health/backend/internal/handler"
	"github.com/vcscsvcscs/ova-health/backend/internal/middleware"
	"github.com/vcscsvcscs/ova-health/backend/internal/pdf"
	"github.com/vcscsvcscs/ova-health/backend/internal/service"
	"github.com/vcscsvcscs/ova-health/backend/pkg/api"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("Configuration loaded successfully",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.Int("max_sessions", cfg.Sessions.MaxSessions),
	)

	// A missing API key is not fatal: every AI operation reports it instead
	invoker, err := ai.NewInvoker(context.Background(), cfg.AI, logger)
	if err != nil {
		logger.Fatal("Failed to initialize AI client", zap.Error(err))
	}

	registry, err := service.NewRegistry(cfg.Sessions.MaxSessions, invoker, logger)
	if err != nil {
		logger.Fatal("Failed to initialize session registry", zap.Error(err))
	}

	companionHandler := handler.NewCompanionHandler(
		registry,
		pdf.NewReportGenerator(logger),
		cfg.AI.Provider,
		logger,
	)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Add recovery middleware (must be first)
	r.Use(middleware.RecoveryMiddleware(logger))

	r.Use(cors.New(corsConfig(cfg.Server.AllowedOrigins)))

	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RequestLoggingMiddleware(logger))
	r.Use(middleware.ErrorLoggingMiddleware(logger))

	api.RegisterHandlers(r, companionHandler)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited", zap.Int("open_sessions", registry.Len()))
}

// newLogger starts from the production or development preset and applies the logging config
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if cfg.Server.Environment == "production" {
		zcfg = zap.NewProductionConfig()
	}

	if cfg.Logging.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Logging.Level)
		if err != nil {
			return nil, err
		}
		zcfg.Level = level
	}
	if cfg.Logging.Format == "json" || cfg.Logging.Format == "console" {
		zcfg.Encoding = cfg.Logging.Format
	}

	return zcfg.Build()
}

// corsConfig allows every origin for "*"; credentials are only allowed for explicit origins
func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}
