// CoinVault API server.
//
// Configuration comes from config files and COINVAULT_* environment
// variables; see internal/config. The container owns startup order and
// graceful shutdown.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/avelora/coinvault/internal/config"
	"github.com/avelora/coinvault/internal/container"
)

func main() {
	// .env is a development convenience; a missing file is fine.
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	c := container.New(cfg)

	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.Initialize(initCtx); err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	// Run blocks until SIGINT/SIGTERM and drains in-flight requests.
	if err := c.Run(); err != nil {
		c.Logger().Error("Server error", slog.String("error", err.Error()))
		shutdown(c)
		os.Exit(1)
	}

	shutdown(c)
	c.Logger().Info("Server stopped gracefully")
}

// loadConfig prefers an explicit config file, falling back to env vars.
func loadConfig() (*config.Config, error) {
	if path := os.Getenv("COINVAULT_CONFIG_PATH"); path != "" {
		name := os.Getenv("COINVAULT_CONFIG_NAME")
		if name == "" {
			name = "config"
		}
		return config.Load(path, name)
	}
	return config.LoadFromEnv()
}

func shutdown(c *container.Container) {
	ctx, cancel := context.WithTimeout(context.Background(), c.Config().Server.ShutdownTimeout)
	defer cancel()

	if err := c.Shutdown(ctx); err != nil {
		c.Logger().Error("Shutdown error", slog.String("error", err.Error()))
	}
}
