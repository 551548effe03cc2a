package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rsinghal/loan-desk-api/internal/config"
	"github.com/rsinghal/loan-desk-api/internal/domain"
	"github.com/rsinghal/loan-desk-api/internal/handler"
	"github.com/rsinghal/loan-desk-api/internal/infra/cache"
	"github.com/rsinghal/loan-desk-api/internal/infra/client"
	"github.com/rsinghal/loan-desk-api/internal/infra/memstore"
	"github.com/rsinghal/loan-desk-api/internal/infra/observability"
	"github.com/rsinghal/loan-desk-api/internal/infra/resilience"
	"github.com/rsinghal/loan-desk-api/internal/port"
	"github.com/rsinghal/loan-desk-api/internal/service"

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
		zap.String("cache_backend", cfg.CacheBackend),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
		zap.Duration("jwt_refresh_ttl", cfg.JWTRefreshTTL),
		zap.Bool("seed_demo_data", cfg.SeedDemoData),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "loan-desk-api")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Store ---
	store := memstore.New()
	if cfg.SeedDemoData {
		if err := store.Seed(context.Background(), cfg.SeedPassword); err != nil {
			logger.Fatal("failed to seed demo data", zap.Error(err))
		}
		logger.Info("demo accounts and product catalog seeded")
	}

	// --- Quote cache ---
	var quoteCache port.Cache[domain.QuoteResponse]
	if cfg.CacheBackend == "redis" {
		redisCache, err := cache.NewRedis[domain.QuoteResponse](cfg.RedisAddr, "quotes", cfg.CacheTTL)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		defer redisCache.Close()
		quoteCache = redisCache
		logger.Info("using redis quote cache", zap.String("addr", cfg.RedisAddr))
	} else {
		quoteCache = cache.New[domain.QuoteResponse](cfg.CacheTTL)
	}

	// --- Status-change notifier ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}

	var notifier port.StatusNotifier
	if cfg.WebhookURL != "" {
		httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
		cb := resilience.NewCircuitBreaker("status-webhook")
		notifier = client.NewWebhookNotifier(httpClient, cfg.WebhookURL, cb, resilienceCfg)
		logger.Info("status-change webhook enabled", zap.String("url", cfg.WebhookURL))
	} else {
		notifier = client.NoopNotifier{}
	}

	// --- Services ---
	authSvc := service.NewAuthService(store, cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL, logger)

	janitorCtx, janitorCancel := context.WithCancel(context.Background())
	defer janitorCancel()
	go authSvc.RunTokenJanitor(janitorCtx, time.Hour)

	svcs := handler.Services{
		Auth:         authSvc,
		Users:        service.NewUserService(store, metrics, logger),
		Applications: service.NewApplicationService(store, notifier, metrics, logger),
		Loans:        service.NewLoanService(store, store, metrics, logger),
		Payments:     service.NewPaymentService(store, store, metrics, logger),
		Products:     service.NewProductService(store, quoteCache, metrics, logger),
		Analytics:    service.NewAnalyticsService(store, store, store, metrics, logger),
	}

	// --- Router ---
	router := handler.NewRouter(svcs, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
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
