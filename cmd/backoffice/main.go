package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/albarakah/umrah-backoffice/internal/config"
	"github.com/albarakah/umrah-backoffice/internal/domain"
	"github.com/albarakah/umrah-backoffice/internal/handler"
	"github.com/albarakah/umrah-backoffice/internal/infra/cache"
	"github.com/albarakah/umrah-backoffice/internal/infra/observability"
	"github.com/albarakah/umrah-backoffice/internal/infra/region"
	"github.com/albarakah/umrah-backoffice/internal/infra/resilience"
	"github.com/albarakah/umrah-backoffice/internal/infra/sqlite"
	"github.com/albarakah/umrah-backoffice/internal/infra/sse"
	"github.com/albarakah/umrah-backoffice/internal/service"

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
		zap.String("db_path", cfg.DBPath),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Duration("scheduler_interval", cfg.SchedulerInterval),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
		zap.Duration("jwt_refresh_ttl", cfg.JWTRefreshTTL),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "umrah-backoffice")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Store ---
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer store.Close()

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("region-api")

	// --- External clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	regionCache := cache.New[[]domain.Region](cfg.CacheTTL)
	defer regionCache.Stop()
	regionClient := region.NewClient(httpClient, cfg.RegionAPIURL, cb, resilienceCfg, regionCache, metrics)

	// --- Chat fan-out ---
	hub := sse.NewHub(metrics)

	// --- Services ---
	authSvc := service.NewAuthService(store, cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL, logger)
	notifSvc := service.NewNotificationService(store, logger)
	svcs := handler.Services{
		Auth:          authSvc,
		Ledger:        service.NewLedgerService(store, store, notifSvc, logger, metrics, resilienceCfg),
		Jamaah:        service.NewJamaahService(store, store, store, notifSvc, logger),
		Packages:      service.NewPackageService(store, logger),
		Vendors:       service.NewVendorService(store, store, notifSvc, logger),
		Reports:       service.NewReportService(store, store, logger),
		Chat:          service.NewChatService(store, store, hub, logger),
		Notifications: notifSvc,
		Company:       service.NewCompanyService(store, store, logger),
	}

	// --- Package status scheduler ---
	scheduler := service.NewSchedulerService(store, logger, cfg.SchedulerInterval)
	schedCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()
	go scheduler.Run(schedCtx)

	// --- Router ---
	router := handler.NewRouter(svcs, regionClient, hub, metrics, cfg.CORSAllowedOrigins, store.Ping, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		// Long write timeout so chat SSE streams are not cut off.
		WriteTimeout: 0,
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
