package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/schemexpert-bfa-go/internal/config"
	"github.com/boddenberg/schemexpert-bfa-go/internal/gateway"
	"github.com/boddenberg/schemexpert-bfa-go/internal/handler"
	"github.com/boddenberg/schemexpert-bfa-go/internal/infra/cache"
	"github.com/boddenberg/schemexpert-bfa-go/internal/infra/gemini"
	"github.com/boddenberg/schemexpert-bfa-go/internal/infra/observability"
	"github.com/boddenberg/schemexpert-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/schemexpert-bfa-go/internal/service"
	"github.com/boddenberg/schemexpert-bfa-go/internal/session"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("gemini_model", cfg.GeminiModel),
		zap.Bool("gemini_configured", cfg.GeminiAPIKey != ""),
		zap.Duration("ai_timeout", cfg.AITimeout),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("session_ttl", cfg.SessionTTL),
		zap.Int("session_max", cfg.SessionMax),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, observability.ServiceName)
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("gemini")

	// --- Model ---
	model, err := gemini.NewClient(context.Background(), gemini.Options{
		APIKey:     cfg.GeminiAPIKey,
		Model:      cfg.GeminiModel,
		BaseURL:    cfg.GeminiBaseURL,
		HTTPClient: &http.Client{},
		Timeout:    cfg.AITimeout,
		Resilience: resilienceCfg,
	}, cb, metrics, logger)
	if err != nil {
		logger.Fatal("failed to create gemini client", zap.Error(err))
	}

	// --- Gateway ---
	gw := gateway.New(model, metrics, logger)

	// --- Sessions ---
	sessionCache := cache.New[*session.Session](cfg.SessionTTL, cfg.SessionMax)
	sessions := session.NewStore(sessionCache, cfg.SessionSecret, cfg.SessionTTL,
		func() *service.App { return service.NewApp(gw, logger) },
		metrics, logger,
	)

	// --- Router ---
	router := handler.NewRouter(sessions, model, metrics, cfg.CORSAllowedOrigins, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		// submit waits for the model, which may retry up to AI_TIMEOUT
		WriteTimeout: cfg.AITimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
