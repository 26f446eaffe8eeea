// Package http - router configuration for the REST API.
//
// The router is the composition point of the HTTP surface: handlers get
// exactly the use cases they serve, middleware is applied per route group.
package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avelora/coinvault/internal/adapters/http/common"
	"github.com/avelora/coinvault/internal/adapters/http/handlers"
	"github.com/avelora/coinvault/internal/adapters/http/middleware"
)

// ============================================
// Router Configuration
// ============================================

// RouterConfig carries the router-level settings.
type RouterConfig struct {
	// Logger for middleware
	Logger *slog.Logger
	// Pool for health checks
	Pool *pgxpool.Pool
	// Extra readiness checks beyond the database (redis, nats)
	ReadinessChecks map[string]handlers.DependencyCheck
	// Version of the build
	Version string
	// BuildTime of the build
	BuildTime string
	// Environment (development, staging, production)
	Environment string
	// AllowedOrigins for CORS in production
	AllowedOrigins []string
}

// DefaultRouterConfig returns a development configuration.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		Logger:         slog.Default(),
		Version:        "dev",
		BuildTime:      "unknown",
		Environment:    "development",
		AllowedOrigins: []string{"*"},
	}
}

// ============================================
// Use Case Providers
// ============================================

// LedgerUseCases bundles the balance movement use cases.
type LedgerUseCases struct {
	TopUp      handlers.TopUpUseCase
	GrantBonus handlers.GrantBonusUseCase
	Spend      handlers.SpendUseCase
}

// QueryUseCases bundles the read-side use cases.
type QueryUseCases struct {
	GetBalance       handlers.GetBalanceUseCase
	GetAssetType     handlers.GetAssetTypeUseCase
	ListTransactions handlers.ListTransactionsUseCase
}

// ============================================
// Router Builder
// ============================================

// RouterBuilder assembles the Gin engine step by step.
type RouterBuilder struct {
	config  *RouterConfig
	ledger  *LedgerUseCases
	queries *QueryUseCases
}

// NewRouterBuilder creates a builder.
func NewRouterBuilder(config *RouterConfig) *RouterBuilder {
	if config == nil {
		config = DefaultRouterConfig()
	}
	return &RouterBuilder{
		config: config,
	}
}

// WithLedgerUseCases adds the movement use cases.
func (b *RouterBuilder) WithLedgerUseCases(useCases *LedgerUseCases) *RouterBuilder {
	b.ledger = useCases
	return b
}

// WithQueryUseCases adds the read-side use cases.
func (b *RouterBuilder) WithQueryUseCases(useCases *QueryUseCases) *RouterBuilder {
	b.queries = useCases
	return b
}

// Build creates the configured Gin engine.
func (b *RouterBuilder) Build() *gin.Engine {
	if b.config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	handlers.SetupValidator()

	// ============================================
	// Global Middleware
	// ============================================

	// Recovery goes first so every later middleware is covered.
	router.Use(middleware.Recovery(&middleware.RecoveryConfig{
		Logger:           b.config.Logger,
		EnableStackTrace: b.config.Environment != "production",
	}))

	router.Use(middleware.RequestID())

	if b.config.Environment == "production" {
		router.Use(middleware.CORS(middleware.ProductionCORSConfig(b.config.AllowedOrigins)))
	} else {
		router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	}

	router.Use(middleware.Logging(&middleware.LoggingConfig{
		Logger:    b.config.Logger,
		SkipPaths: []string{"/health", "/live", "/ready", "/metrics"},
	}))

	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))

	router.Use(middleware.Metrics())

	// ============================================
	// Metrics Endpoint
	// ============================================

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ============================================
	// Health Check Routes
	// ============================================

	healthHandler := handlers.NewHealthHandler(
		b.config.Pool,
		b.config.Version,
		b.config.BuildTime,
	)
	for name, check := range b.config.ReadinessChecks {
		healthHandler.AddCheck(name, check)
	}
	healthHandler.RegisterRoutes(router)

	// ============================================
	// API v1 Routes
	// ============================================

	v1 := router.Group("/api/v1")

	// Read side: balances, history, catalog.
	if b.queries != nil {
		if b.queries.GetBalance != nil {
			balanceHandler := handlers.NewWalletHandler(nil, nil, nil, b.queries.GetBalance)
			v1.GET("/wallets/:user_id/balance", balanceHandler.GetBalance)
		}

		if b.queries.ListTransactions != nil {
			txHandler := handlers.NewTransactionHandler(b.queries.ListTransactions)
			txHandler.RegisterRoutes(v1)
		}

		if b.queries.GetAssetType != nil {
			assetHandler := handlers.NewAssetHandler(b.queries.GetAssetType)
			assetHandler.RegisterRoutes(v1)
		}
	}

	// Write side: balance movements under a tighter rate limit.
	if b.ledger != nil {
		walletHandler := handlers.NewWalletHandler(
			b.ledger.TopUp,
			b.ledger.GrantBonus,
			b.ledger.Spend,
			nil,
		)

		movements := v1.Group("/wallets")
		movements.Use(middleware.MovementRateLimit())
		{
			movements.POST("/top-up", walletHandler.TopUp)
			movements.POST("/bonus", walletHandler.GrantBonus)
			movements.POST("/spend", walletHandler.Spend)
		}
	}

	// ============================================
	// 404 Handler
	// ============================================

	router.NoRoute(func(c *gin.Context) {
		common.Error(c, 404, &common.APIError{
			Code:    common.ErrCodeNotFound,
			Message: "Endpoint not found",
			Details: map[string]interface{}{
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			},
		})
	})

	return router
}

// ============================================
// Quick Setup Functions
// ============================================

// NewRouter creates a router from a configuration.
func NewRouter(config *RouterConfig) *gin.Engine {
	return NewRouterBuilder(config).Build()
}

// NewDevelopmentRouter creates a router for local development.
func NewDevelopmentRouter() *gin.Engine {
	config := DefaultRouterConfig()
	config.Environment = "development"
	return NewRouter(config)
}
