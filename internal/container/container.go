// Package container - dependency injection container for the application.
//
// The container is the composition root: every dependency is created,
// wired and closed in one place. Optional infrastructure (Redis, NATS)
// degrades gracefully: the service runs without them, it just reads the
// store on every query and keeps events in the outbox.
package container

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avelora/coinvault/internal/adapters/http"
	"github.com/avelora/coinvault/internal/adapters/http/handlers"
	"github.com/avelora/coinvault/internal/application/ports"
	"github.com/avelora/coinvault/internal/application/usecases/ledger"
	"github.com/avelora/coinvault/internal/application/usecases/query"
	"github.com/avelora/coinvault/internal/config"
	"github.com/avelora/coinvault/internal/infrastructure/cache"
	"github.com/avelora/coinvault/internal/infrastructure/messaging"
	"github.com/avelora/coinvault/internal/infrastructure/persistence/postgres"
	"github.com/avelora/coinvault/internal/pkg/logger"
)

// Asset catalog entries change via migrations, so they can sit in the
// cache far longer than balances.
const assetCacheTTL = 5 * time.Minute

// ============================================
// Container
// ============================================

// Container wires the application together.
type Container struct {
	config *config.Config
	logger *slog.Logger

	// Infrastructure
	pool      *pgxpool.Pool
	cache     *cache.RedisCache
	publisher *messaging.NATSPublisher
	relay     *messaging.OutboxRelay

	// Repositories
	walletRepo      ports.WalletRepository
	transactionRepo ports.TransactionRepository
	entryRepo       ports.LedgerEntryRepository
	assetRepo       ports.AssetTypeRepository
	outboxRepo      *postgres.OutboxRepository
	locker          ports.AdvisoryLocker

	// Unit of Work
	uow ports.UnitOfWork

	// Ledger engine and use cases
	engine       *ledger.Engine
	topUpUC      *ledger.TopUpUseCase
	grantBonusUC *ledger.GrantBonusUseCase
	spendUC      *ledger.SpendUseCase

	// Query use cases
	getBalanceUC       *query.GetBalanceUseCase
	getAssetTypeUC     *query.GetAssetTypeUseCase
	listTransactionsUC *query.ListTransactionsUseCase

	// HTTP
	httpServer *http.Server
}

// New creates an uninitialized container.
func New(cfg *config.Config) *Container {
	return &Container{
		config: cfg,
	}
}

// ============================================
// Initialization
// ============================================

// Initialize brings up every dependency in order.
func (c *Container) Initialize(ctx context.Context) error {
	if c.logger == nil {
		c.logger = c.initLogger()
	}
	c.logger.Info("Initializing application container...")

	// 1. Database
	if err := c.initDatabase(ctx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.logger.Info("Database connected")

	// 2. Optional infrastructure
	if err := c.initCache(ctx); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	if err := c.initMessaging(); err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}

	// 3. Repositories
	c.initRepositories()
	c.logger.Info("Repositories initialized")

	// 4. Use Cases
	c.initUseCases()
	c.logger.Info("Use cases initialized")

	// 5. Outbox relay
	c.initRelay()

	// 6. HTTP Server
	c.initHTTPServer()
	c.logger.Info("HTTP server initialized")

	c.logger.Info("Container initialization complete")
	return nil
}

// initLogger builds the process logger from the config.
func (c *Container) initLogger() *slog.Logger {
	cfg := &logger.Config{
		Level:     c.config.Log.Level,
		Format:    c.config.Log.Format,
		AddSource: c.config.App.Debug,
	}

	log := logger.New(cfg)
	slog.SetDefault(log)

	return log
}

// initDatabase connects the pgx pool.
func (c *Container) initDatabase(ctx context.Context) error {
	pool, err := postgres.NewConnectionPool(ctx, postgres.Config{
		Host:            c.config.Database.Host,
		Port:            c.config.Database.Port,
		Database:        c.config.Database.Database,
		User:            c.config.Database.User,
		Password:        c.config.Database.Password,
		SSLMode:         c.config.Database.SSLMode,
		MaxConns:        c.config.Database.MaxConnections,
		MinConns:        c.config.Database.MinConnections,
		MaxConnLifetime: c.config.Database.MaxConnLifetime,
		MaxConnIdleTime: c.config.Database.MaxConnIdleTime,
		ConnectTimeout:  5 * time.Second,
	})
	if err != nil {
		return err
	}

	c.pool = pool
	return nil
}

// initCache connects Redis when enabled.
func (c *Container) initCache(ctx context.Context) error {
	if !c.config.Redis.Enabled {
		return nil
	}

	redisCache, err := cache.NewRedisCache(ctx, cache.Config{
		Addr:     c.config.Redis.Addr,
		Password: c.config.Redis.Password,
		DB:       c.config.Redis.DB,
	}, c.config.App.Name+":")
	if err != nil {
		return err
	}

	c.cache = redisCache
	c.logger.Info("Redis cache connected", slog.String("addr", c.config.Redis.Addr))
	return nil
}

// initMessaging connects NATS when enabled.
func (c *Container) initMessaging() error {
	if !c.config.NATS.Enabled {
		return nil
	}

	publisher, err := messaging.NewNATSPublisher(messaging.Config{
		URL:  c.config.NATS.URL,
		Name: c.config.NATS.Name,
	})
	if err != nil {
		return err
	}

	c.publisher = publisher
	c.logger.Info("NATS connected", slog.String("url", c.config.NATS.URL))
	return nil
}

// initRepositories builds the persistence layer.
func (c *Container) initRepositories() {
	c.walletRepo = postgres.NewWalletRepository(c.pool)
	c.transactionRepo = postgres.NewTransactionRepository(c.pool)
	c.entryRepo = postgres.NewLedgerEntryRepository(c.pool)
	c.assetRepo = postgres.NewAssetTypeRepository(c.pool)
	c.outboxRepo = postgres.NewOutboxRepository(c.pool)
	c.locker = postgres.NewAdvisoryLocker(c.pool)

	c.uow = postgres.NewUnitOfWorkWithTimeouts(
		c.pool,
		c.config.Ledger.LockTimeout,
		c.config.Ledger.StatementTimeout,
	)
}

// initUseCases builds the ledger engine and the use cases around it.
func (c *Container) initUseCases() {
	c.engine = ledger.NewEngine(
		c.walletRepo,
		c.transactionRepo,
		c.entryRepo,
		c.locker,
		c.outboxRepo,
		c.uow,
		c.logger,
	)

	c.topUpUC = ledger.NewTopUpUseCase(c.assetRepo, c.engine)
	c.grantBonusUC = ledger.NewGrantBonusUseCase(c.assetRepo, c.engine)
	c.spendUC = ledger.NewSpendUseCase(c.assetRepo, c.engine)

	// The query side takes the cache as an interface; a nil *RedisCache
	// must stay a nil interface, not a typed nil.
	var kv ports.KeyValueCache
	if c.cache != nil {
		kv = c.cache
	}

	c.getBalanceUC = query.NewGetBalanceUseCase(c.walletRepo, c.assetRepo, kv, c.config.Redis.TTL)
	c.getAssetTypeUC = query.NewGetAssetTypeUseCase(c.assetRepo, kv, assetCacheTTL)
	c.listTransactionsUC = query.NewListTransactionsUseCase(c.transactionRepo)
}

// initRelay builds the outbox relay when a broker is connected.
func (c *Container) initRelay() {
	if c.publisher == nil {
		return
	}

	c.relay = messaging.NewOutboxRelay(c.outboxRepo, c.publisher, messaging.RelayConfig{
		PollInterval:    c.config.Relay.PollInterval,
		BatchSize:       c.config.Relay.BatchSize,
		MaxRetries:      c.config.Relay.MaxRetries,
		RequeueInterval: c.config.Relay.RequeueInterval,
	}, c.logger)
	c.logger.Info("Outbox relay initialized")
}

// initHTTPServer builds the router and the server around the use cases.
func (c *Container) initHTTPServer() {
	readinessChecks := make(map[string]handlers.DependencyCheck)
	if c.cache != nil {
		readinessChecks["redis"] = c.cache.Ping
	}
	if c.publisher != nil {
		readinessChecks["nats"] = c.publisher.Ping
	}

	routerConfig := &http.RouterConfig{
		Logger:          c.logger,
		Pool:            c.pool,
		ReadinessChecks: readinessChecks,
		Version:         c.config.App.Version,
		BuildTime:       c.config.App.BuildTime,
		Environment:     c.config.App.Environment,
		AllowedOrigins:  c.config.CORS.AllowedOrigins,
	}

	router := http.NewRouterBuilder(routerConfig).
		WithLedgerUseCases(&http.LedgerUseCases{
			TopUp:      c.topUpUC,
			GrantBonus: c.grantBonusUC,
			Spend:      c.spendUC,
		}).
		WithQueryUseCases(&http.QueryUseCases{
			GetBalance:       c.getBalanceUC,
			GetAssetType:     c.getAssetTypeUC,
			ListTransactions: c.listTransactionsUC,
		}).
		Build()

	serverConfig := &http.ServerConfig{
		Host:            c.config.Server.Host,
		Port:            fmt.Sprintf("%d", c.config.Server.Port),
		ReadTimeout:     c.config.Server.ReadTimeout,
		WriteTimeout:    c.config.Server.WriteTimeout,
		IdleTimeout:     c.config.Server.IdleTimeout,
		ShutdownTimeout: c.config.Server.ShutdownTimeout,
		Logger:          c.logger,
	}

	c.httpServer = http.NewServer(serverConfig, router)
}

// ============================================
// Getters
// ============================================

// Config returns the configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the logger.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}

// Pool returns the database connection pool.
func (c *Container) Pool() *pgxpool.Pool {
	return c.pool
}

// HTTPServer returns the HTTP server.
func (c *Container) HTTPServer() *http.Server {
	return c.httpServer
}

// Relay returns the outbox relay, or nil when no broker is configured.
func (c *Container) Relay() *messaging.OutboxRelay {
	return c.relay
}

// WalletRepository returns the wallet repository.
func (c *Container) WalletRepository() ports.WalletRepository {
	return c.walletRepo
}

// TransactionRepository returns the transaction repository.
func (c *Container) TransactionRepository() ports.TransactionRepository {
	return c.transactionRepo
}

// AssetTypeRepository returns the asset catalog repository.
func (c *Container) AssetTypeRepository() ports.AssetTypeRepository {
	return c.assetRepo
}

// UnitOfWork returns the unit of work.
func (c *Container) UnitOfWork() ports.UnitOfWork {
	return c.uow
}

// TopUpUseCase returns the top-up use case.
func (c *Container) TopUpUseCase() *ledger.TopUpUseCase {
	return c.topUpUC
}

// GrantBonusUseCase returns the bonus grant use case.
func (c *Container) GrantBonusUseCase() *ledger.GrantBonusUseCase {
	return c.grantBonusUC
}

// SpendUseCase returns the spend use case.
func (c *Container) SpendUseCase() *ledger.SpendUseCase {
	return c.spendUC
}

// GetBalanceUseCase returns the balance query use case.
func (c *Container) GetBalanceUseCase() *query.GetBalanceUseCase {
	return c.getBalanceUC
}

// GetAssetTypeUseCase returns the asset catalog query use case.
func (c *Container) GetAssetTypeUseCase() *query.GetAssetTypeUseCase {
	return c.getAssetTypeUC
}

// ListTransactionsUseCase returns the history query use case.
func (c *Container) ListTransactionsUseCase() *query.ListTransactionsUseCase {
	return c.listTransactionsUC
}

// ============================================
// Shutdown
// ============================================

// Shutdown stops the components in reverse dependency order.
func (c *Container) Shutdown(ctx context.Context) error {
	c.logger.Info("Shutting down container...")

	var errs []error

	// 1. HTTP server stops accepting requests.
	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("HTTP server shutdown: %w", err))
		}
	}

	// 2. NATS drains so queued events flush.
	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("NATS close: %w", err))
		}
	}

	// 3. Redis.
	if c.cache != nil {
		if err := c.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}

	// 4. Database, giving in-flight store transactions time to finish.
	if c.pool != nil {
		done := make(chan struct{})
		go func() {
			c.pool.Close()
			close(done)
		}()

		select {
		case <-done:
			c.logger.Info("Database connection closed")
		case <-ctx.Done():
			c.logger.Warn("Database close timeout")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	c.logger.Info("Container shutdown complete")
	return nil
}

// ============================================
// Run
// ============================================

// Run starts the outbox relay (when configured) and the HTTP server,
// then blocks until a termination signal arrives.
func (c *Container) Run() error {
	c.logger.Info("Starting CoinVault API Server",
		slog.String("version", c.config.App.Version),
		slog.String("environment", c.config.App.Environment),
		slog.String("address", c.config.Server.Address()),
	)

	relayCtx, stopRelay := context.WithCancel(context.Background())
	defer stopRelay()

	if c.relay != nil {
		go c.relay.Run(relayCtx)
	}

	return c.httpServer.Run()
}

// ============================================
// Builder
// ============================================

// ContainerBuilder assembles a container with injected components,
// mainly for tests that bring their own pool or cache.
type ContainerBuilder struct {
	cfg       *config.Config
	logger    *slog.Logger
	pool      *pgxpool.Pool
	cache     *cache.RedisCache
	publisher *messaging.NATSPublisher
}

// NewBuilder creates a builder.
func NewBuilder(cfg *config.Config) *ContainerBuilder {
	return &ContainerBuilder{
		cfg: cfg,
	}
}

// WithLogger sets a custom logger.
func (b *ContainerBuilder) WithLogger(logger *slog.Logger) *ContainerBuilder {
	b.logger = logger
	return b
}

// WithPool sets an existing connection pool.
func (b *ContainerBuilder) WithPool(pool *pgxpool.Pool) *ContainerBuilder {
	b.pool = pool
	return b
}

// WithCache sets an existing Redis cache.
func (b *ContainerBuilder) WithCache(redisCache *cache.RedisCache) *ContainerBuilder {
	b.cache = redisCache
	return b
}

// WithPublisher sets an existing NATS publisher.
func (b *ContainerBuilder) WithPublisher(publisher *messaging.NATSPublisher) *ContainerBuilder {
	b.publisher = publisher
	return b
}

// Build creates the container, initializing whatever was not injected.
func (b *ContainerBuilder) Build(ctx context.Context) (*Container, error) {
	c := New(b.cfg)

	if b.logger != nil {
		c.logger = b.logger
	} else {
		c.logger = c.initLogger()
	}

	if b.pool != nil {
		c.pool = b.pool
	} else {
		if err := c.initDatabase(ctx); err != nil {
			return nil, err
		}
	}

	if b.cache != nil {
		c.cache = b.cache
	} else if err := c.initCache(ctx); err != nil {
		return nil, err
	}

	if b.publisher != nil {
		c.publisher = b.publisher
	} else if err := c.initMessaging(); err != nil {
		return nil, err
	}

	c.initRepositories()
	c.initUseCases()
	c.initRelay()
	c.initHTTPServer()

	return c, nil
}

// ============================================
// Health Check
// ============================================

// HealthStatus is an aggregate health snapshot.
type HealthStatus struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Uptime  time.Duration     `json:"uptime"`
	Checks  map[string]string `json:"checks"`
}

// Health checks every connected dependency.
func (c *Container) Health(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:  "healthy",
		Version: c.config.App.Version,
		Checks:  make(map[string]string),
	}

	if err := c.pool.Ping(ctx); err != nil {
		status.Status = "unhealthy"
		status.Checks["database"] = "error: " + err.Error()
	} else {
		status.Checks["database"] = "ok"
	}

	if c.cache != nil {
		if err := c.cache.Ping(ctx); err != nil {
			status.Status = "unhealthy"
			status.Checks["redis"] = "error: " + err.Error()
		} else {
			status.Checks["redis"] = "ok"
		}
	}

	if c.publisher != nil {
		if err := c.publisher.Ping(ctx); err != nil {
			status.Status = "unhealthy"
			status.Checks["nats"] = "error: " + err.Error()
		} else {
			status.Checks["nats"] = "ok"
		}
	}

	return status
}
