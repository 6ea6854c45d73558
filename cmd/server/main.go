package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/summercamp/camp-backend/internal/cache"
	"github.com/summercamp/camp-backend/internal/config"
	"github.com/summercamp/camp-backend/internal/database"
	"github.com/summercamp/camp-backend/internal/gateway"
	"github.com/summercamp/camp-backend/internal/handler"
	"github.com/summercamp/camp-backend/internal/logger"
	"github.com/summercamp/camp-backend/internal/metrics"
	"github.com/summercamp/camp-backend/internal/middleware"
	"github.com/summercamp/camp-backend/internal/repository"
	"github.com/summercamp/camp-backend/internal/router"
	"github.com/summercamp/camp-backend/internal/service"
	"github.com/summercamp/camp-backend/internal/validator"
	"github.com/summercamp/camp-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("payment_provider", cfg.PaymentProvider).
		Msg("Starting Summer Camp Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Payment Gateway ───────────────────────────────────────────────
	gw, err := gateway.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure payment gateway")
	}

	// ─── Metrics ───────────────────────────────────────────────────────
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// ─── Initialize Repositories ───────────────────────────────────────
	txManager := repository.NewTxManager(pool)
	userRepo := repository.NewUserRepository(pool)
	classRepo := repository.NewClassRepository(pool)
	cartRepo := repository.NewCartRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)

	catalogCache := cache.NewCatalogCache(rdb, cfg.CatalogCacheTTL)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg)
	userService := service.NewUserService(userRepo, log)
	classService := service.NewClassService(classRepo, catalogCache, m, log)
	cartService := service.NewCartService(cartRepo, classRepo, paymentRepo, log)
	paymentService := service.NewPaymentService(gw, paymentRepo, cfg.PaymentCurrency, m, log)
	enrollmentService := service.NewEnrollmentService(txManager, paymentRepo, cartRepo, classRepo, catalogCache, m, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:    handler.NewAuthHandler(authService, log),
		Class:   handler.NewClassHandler(classService, log),
		User:    handler.NewUserHandler(userService, log),
		Cart:    handler.NewCartHandler(cartService, log),
		Payment: handler.NewPaymentHandler(paymentService, enrollmentService, log),
		System: handler.NewSystemHandler(map[string]handler.Pinger{
			"postgres": pool.Ping,
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	workerDone := make(chan struct{})

	catalogWorker := worker.NewCatalogWorker(rdb, classService, log)
	go func() {
		defer close(workerDone)
		catalogWorker.Start(workerCtx)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(cfg, router.Deps{
		Guard:        middleware.NewGuard(authService, userService, m, log),
		TokenLimiter: middleware.NewRateLimiter(workerCtx, cfg.TokenRatePerMinute, time.Minute),
		Metrics:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Log:          log,
	}, handlers)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the catalog worker and wait for its current rebuild.
	workerCancel()
	select {
	case <-workerDone:
	case <-time.After(2 * time.Second):
		log.Warn().Msg("Catalog worker did not stop in time")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
