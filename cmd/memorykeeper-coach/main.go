// Command memorykeeper-coach serves the adaptive difficulty and coaching API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/scrypster/memorykeeper/internal/config"
	"github.com/scrypster/memorykeeper/internal/engine"
	"github.com/scrypster/memorykeeper/internal/logging"
	"github.com/scrypster/memorykeeper/internal/notify"
	"github.com/scrypster/memorykeeper/internal/server"
	"github.com/scrypster/memorykeeper/internal/storage"
	"github.com/scrypster/memorykeeper/internal/storage/memory"
	"github.com/scrypster/memorykeeper/internal/storage/postgres"
	"github.com/scrypster/memorykeeper/internal/storage/rediscache"
	"github.com/scrypster/memorykeeper/internal/storage/sqlite"
)

func main() {
	envFile := flag.String("env", ".env", "Path to an optional .env file")
	flag.Parse()

	// A missing .env file is fine; real environment variables still apply.
	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load %s: %v", *envFile, err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Encoding)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("coach server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close profile store", zap.Error(err))
		}
	}()

	coach, err := buildCoach(cfg, store, logger)
	if err != nil {
		return err
	}

	if path := cfg.Engine.SettingsCatalogPath; path != "" {
		watcher := notify.NewFileWatcher(path, 0, reloadCatalog(coach, logger), logger.Named("catalog"))
		if err := watcher.Start(); err != nil {
			logger.Warn("settings catalog will not hot-reload", zap.Error(err))
		} else {
			defer watcher.Stop()
		}
	}

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr, err := server.Start(ctx, cfg, coach, logger)
	if err != nil {
		return err
	}
	logger.Info("MemoryKeeper coach running", zap.String("url", "http://"+addr))

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down gracefully")
	cancel()
	time.Sleep(1 * time.Second) // Give time for connections to close
	return nil
}

// openStore opens the configured profile store, wrapped in the Redis
// strength cache when a Redis address is set.
func openStore(cfg *config.Config, logger *zap.Logger) (storage.ProfileStore, error) {
	var store storage.ProfileStore

	switch cfg.Storage.StorageEngine {
	case config.StorageMemory:
		store = memory.NewProfileStore()
	case config.StorageSQLite:
		if err := os.MkdirAll(cfg.Storage.DataPath, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		s, err := sqlite.NewProfileStore(cfg.SQLitePath(), logger)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		store = s
	case config.StoragePostgres:
		s, err := postgres.NewProfileStore(cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		store = s
	default:
		return nil, fmt.Errorf("unknown storage engine %q", cfg.Storage.StorageEngine)
	}

	if cfg.Storage.RedisAddr == "" {
		return store, nil
	}

	cached, err := rediscache.New(rediscache.Config{
		Addr:     cfg.Storage.RedisAddr,
		Password: cfg.Storage.RedisPassword,
		DB:       cfg.Storage.RedisDB,
		TTL:      cfg.Storage.RedisTTL,
	}, store, logger)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("open redis cache: %w", err)
	}
	return cached, nil
}

// reloadCatalog returns a callback that reloads the settings catalog into
// coach. A catalog that fails to load leaves the current one in place.
func reloadCatalog(coach *engine.Coach, logger *zap.Logger) func(path string) {
	return func(path string) {
		catalog, err := engine.LoadSettingsCatalog(path)
		if err != nil {
			logger.Warn("rejected settings catalog change", zap.String("path", path), zap.Error(err))
			return
		}
		coach.SetCatalog(catalog)
		logger.Info("reloaded settings catalog", zap.String("path", path))
	}
}

// buildCoach wires the coaching engine from configuration.
func buildCoach(cfg *config.Config, store storage.ProfileStore, logger *zap.Logger) (*engine.Coach, error) {
	catalog := engine.DefaultSettingsCatalog()
	if path := cfg.Engine.SettingsCatalogPath; path != "" {
		c, err := engine.LoadSettingsCatalog(path)
		if err != nil {
			return nil, fmt.Errorf("load settings catalog: %w", err)
		}
		catalog = c
		logger.Info("loaded settings catalog", zap.String("path", path))
	}

	return engine.NewCoach(store, engine.Config{
		Profiles: engine.ProfileManagerConfig{
			LookupTimeout: cfg.Engine.LookupTimeout,
			Breaker: engine.BreakerConfig{
				MaxFailures: uint32(cfg.Engine.BreakerMaxFailures),
				Timeout:     cfg.Engine.BreakerTimeout,
			},
		},
		Catalog:        catalog,
		PersistTimeout: cfg.Engine.PersistTimeout,
	}, logger), nil
}
