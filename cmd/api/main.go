package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"custodial-wallet-ledger/config"
	httpHandler "custodial-wallet-ledger/internal/adapter/http/handler"
	"custodial-wallet-ledger/internal/adapter/quote"
	pgStorage "custodial-wallet-ledger/internal/adapter/storage/postgres"
	redisStorage "custodial-wallet-ledger/internal/adapter/storage/redis"
	"custodial-wallet-ledger/internal/core/ports"
	"custodial-wallet-ledger/internal/service"
	"custodial-wallet-ledger/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Custodial Wallet Ledger")

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
	walletRepo := pgStorage.NewWalletRepo(pool)
	currencyRepo := pgStorage.NewCurrencyRepo(pool)
	balanceRepo := pgStorage.NewBalanceRepo(pool)
	ledgerRepo := pgStorage.NewLedgerRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize core services
	keySvc := service.NewKeyService(cfg.Keys.AddressBytes, cfg.Keys.PrivateKeyBytes)
	quoteProvider := quote.NewCoinbaseClient(cfg.Quote.BaseURL, cfg.Quote.Timeout)

	// Initialize business services
	walletSvc := service.NewWalletService(walletRepo, balanceRepo, keySvc, log)
	ledgerSvc := service.NewLedgerService(
		walletRepo,
		currencyRepo,
		balanceRepo,
		ledgerRepo,
		transactor,
		keySvc,
		quoteProvider,
		service.NewFeeRates(cfg.Fees.WithdrawalRate, cfg.Fees.ConversionRate, cfg.Fees.TransferRate),
		log,
	)

	// Initialize rate limit store
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		WalletSvc:      walletSvc,
		LedgerSvc:      ledgerSvc,
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
