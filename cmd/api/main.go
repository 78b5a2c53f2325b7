package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"order-settlement/config"
	"order-settlement/internal/adapter/gateway"
	httpHandler "order-settlement/internal/adapter/http/handler"
	pgStorage "order-settlement/internal/adapter/storage/postgres"
	redisStorage "order-settlement/internal/adapter/storage/redis"
	"order-settlement/internal/core/ports"
	"order-settlement/internal/service"
	"order-settlement/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Order Settlement Engine")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	orderRepo := pgStorage.NewOrderRepo(pool)
	paymentRepo := pgStorage.NewPaymentRepo(pool)
	timelineRepo := pgStorage.NewTimelineRepo(pool)
	idempotencyRepo := pgStorage.NewIdempotencyRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	seenCache := redisStorage.NewEventSeenCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize core services
	verifier := service.NewHMACSignatureVerifier()
	tokenVerifier := service.NewJWTTokenVerifier(cfg.JWT.Secret, cfg.JWT.Issuer)
	gatewayClient := gateway.NewClient(cfg.Gateway, log)

	// Initialize business services
	ledger := service.NewLedgerService(paymentRepo, timelineRepo, "razorpay", cfg.Gateway.Currency, log)
	coordinator := service.NewCoordinatorService(orderRepo, log)
	settlement := service.NewSettlement(
		orderRepo,
		paymentRepo,
		idempotencyRepo,
		seenCache,
		ledger,
		coordinator,
		gatewayClient,
		verifier,
		transactor,
		cfg.Gateway.KeySecret,
		cfg.Gateway.WebhookSecret,
		cfg.Gateway.Currency,
		log,
	)
	history := service.NewHistory(paymentRepo, timelineRepo, log)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		SettlementSvc:  settlement,
		HistorySvc:     history,
		TokenVerifier:  tokenVerifier,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
