package container

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelora/coinvault/internal/config"
)

func TestNew(t *testing.T) {
	cfg := config.Development()
	c := New(cfg)

	require.NotNil(t, c)
	assert.Equal(t, cfg, c.config)
}

func TestContainer_Config(t *testing.T) {
	cfg := config.Development()
	c := New(cfg)

	assert.Equal(t, cfg, c.Config())
}

func TestContainer_GettersBeforeInit(t *testing.T) {
	c := New(config.Development())

	assert.Nil(t, c.Logger())
	assert.Nil(t, c.Pool())
	assert.Nil(t, c.HTTPServer())
	assert.Nil(t, c.Relay())
	assert.Nil(t, c.WalletRepository())
	assert.Nil(t, c.TransactionRepository())
	assert.Nil(t, c.AssetTypeRepository())
	assert.Nil(t, c.UnitOfWork())
	assert.Nil(t, c.TopUpUseCase())
	assert.Nil(t, c.GrantBonusUseCase())
	assert.Nil(t, c.SpendUseCase())
	assert.Nil(t, c.GetBalanceUseCase())
	assert.Nil(t, c.GetAssetTypeUseCase())
	assert.Nil(t, c.ListTransactionsUseCase())
}

func TestContainer_initLogger(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		format string
	}{
		{"debug text", "debug", "text"},
		{"info json", "info", "json"},
		{"warn text", "warn", "text"},
		{"error json", "error", "json"},
		{"unknown defaults to info", "unknown", "json"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Development()
			cfg.Log.Level = tt.level
			cfg.Log.Format = tt.format

			c := New(cfg)
			logger := c.initLogger()

			require.NotNil(t, logger)
			assert.NotNil(t, logger.Handler())
		})
	}
}

// Builder Tests

func TestNewBuilder(t *testing.T) {
	cfg := config.Development()
	builder := NewBuilder(cfg)

	require.NotNil(t, builder)
	assert.Equal(t, cfg, builder.cfg)
}

func TestContainerBuilder_WithLogger(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	builder := NewBuilder(config.Development()).WithLogger(logger)

	assert.Equal(t, logger, builder.logger)
}

func TestContainerBuilder_Chain(t *testing.T) {
	cfg := config.Development()
	logger := slog.New(slog.DiscardHandler)

	builder := NewBuilder(cfg).
		WithLogger(logger).
		WithPool(nil).
		WithCache(nil).
		WithPublisher(nil)

	assert.Equal(t, cfg, builder.cfg)
	assert.Equal(t, logger, builder.logger)
	assert.Nil(t, builder.pool)
}

func TestContainerBuilder_Build_WithoutPool(t *testing.T) {
	cfg := config.Development()
	cfg.Database.Host = "invalid-host-that-does-not-exist"
	cfg.Database.Port = 59999

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewBuilder(cfg).
		WithLogger(slog.New(slog.DiscardHandler)).
		Build(ctx)

	// No pool injected and the database is unreachable.
	assert.Error(t, err)
}

// HealthStatus Tests

func TestHealthStatus_Structure(t *testing.T) {
	status := &HealthStatus{
		Status:  "healthy",
		Version: "1.0.0",
		Uptime:  time.Hour,
		Checks:  map[string]string{"database": "ok"},
	}

	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "ok", status.Checks["database"])
}

func TestHealthStatus_Unhealthy(t *testing.T) {
	status := &HealthStatus{
		Status: "unhealthy",
		Checks: map[string]string{"database": "error: connection refused"},
	}

	assert.Equal(t, "unhealthy", status.Status)
	assert.Contains(t, status.Checks["database"], "error")
}

// Shutdown Tests

func TestContainer_Shutdown_NilComponents(t *testing.T) {
	c := New(config.Development())
	c.logger = slog.New(slog.DiscardHandler)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := c.Shutdown(ctx)
	assert.NoError(t, err)
}

// Initialize Tests

func TestContainer_Initialize_NoDB(t *testing.T) {
	cfg := config.Development()
	cfg.Database.Host = "invalid-host-that-does-not-exist"
	cfg.Database.Port = 59999
	cfg.Log.Level = "error"

	c := New(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := c.Initialize(ctx)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize database")
}

func TestContainer_MultipleNew(t *testing.T) {
	cfg1 := config.Development()
	cfg2 := config.Test()

	c1 := New(cfg1)
	c2 := New(cfg2)

	assert.NotEqual(t, c1, c2)
	assert.Equal(t, cfg1, c1.Config())
	assert.Equal(t, cfg2, c2.Config())
}
