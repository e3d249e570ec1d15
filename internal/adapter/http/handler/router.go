package handler

import (
	"custodial-wallet-ledger/internal/adapter/http/middleware"
	redisStore "custodial-wallet-ledger/internal/adapter/storage/redis"
	"custodial-wallet-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	WalletSvc      ports.WalletService
	LedgerSvc      ports.LedgerService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	walletHandler := NewWalletHandler(deps.WalletSvc)
	ledgerHandler := NewLedgerHandler(deps.LedgerSvc)

	v1 := r.Group("/api/v1")

	wallets := v1.Group("/wallets")
	{
		wallets.POST("", rl("wallets_create"), walletHandler.Create)
		wallets.GET("", rl("reads"), walletHandler.List)
		wallets.GET("/:address", rl("reads"), walletHandler.Get)
		wallets.DELETE("/:address", rl("ledger_ops"), walletHandler.Block)
		wallets.GET("/:address/balances", rl("reads"), walletHandler.ListBalances)

		wallets.POST("/:address/deposits", rl("ledger_ops"), ledgerHandler.Deposit)
		wallets.POST("/:address/withdrawals", rl("ledger_ops"), ledgerHandler.Withdraw)
		wallets.POST("/:address/conversions", rl("ledger_ops"), ledgerHandler.Convert)
		wallets.POST("/:address/transfers", rl("ledger_ops"), ledgerHandler.Transfer)
	}

	return r
}
