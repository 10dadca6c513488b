// Package config provides configuration management for MemoryKeeper.
// It loads settings from environment variables with the MEMORYKEEPER_ prefix
// and provides sensible defaults for all configuration options.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Storage engines accepted by StorageConfig.StorageEngine.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Config holds all configuration settings for the coaching service.
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Engine  EngineConfig
	Logging LoggingConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port         int     // Server port (default: 6464)
	Host         string  // Server host (default: 127.0.0.1)
	RateLimit    float64 // Sustained requests per second (default: 20)
	RateBurst    int     // Maximum burst size (default: 40)
	AllowOrigins string  // Comma-separated WebSocket origin patterns (default: empty, same origin only)
	APIToken     string  // Bearer token for /api and /ws; empty disables auth
}

// StorageConfig contains profile store configuration.
type StorageConfig struct {
	StorageEngine string        // memory, sqlite or postgres (default: sqlite)
	DataPath      string        // Directory for the SQLite database (default: ./data)
	PostgresDSN   string        // PostgreSQL connection string
	RedisAddr     string        // Redis address; empty disables the strength cache
	RedisPassword string        // Redis password
	RedisDB       int           // Redis database number (default: 0)
	RedisTTL      time.Duration // Strength cache entry lifetime (default: 1h)
}

// EngineConfig contains coaching engine settings.
type EngineConfig struct {
	LookupTimeout       time.Duration // Bound on a single strength lookup (default: 2s)
	PersistTimeout      time.Duration // Bound on saving a profile after a game (default: 5s)
	BreakerMaxFailures  int           // Consecutive store failures that open the breaker (default: 3)
	BreakerTimeout      time.Duration // How long the breaker stays open (default: 30s)
	SettingsCatalogPath string        // Optional YAML file overriding difficulty settings
}

// LoggingConfig contains logger settings.
type LoggingConfig struct {
	Level    string // debug, info, warn, error (default: info)
	Encoding string // json or console (default: json)
}

// LoadConfig loads configuration from environment variables with sensible defaults.
// All environment variables use the MEMORYKEEPER_ prefix.
func LoadConfig() (*Config, error) {
	cfg := buildBaseConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.StorageEngine {
	case StorageMemory, StorageSQLite:
	case StoragePostgres:
		if c.Storage.PostgresDSN == "" {
			return errors.New("config: MEMORYKEEPER_POSTGRES_DSN is required for the postgres storage engine")
		}
	default:
		return fmt.Errorf("config: unknown storage engine %q", c.Storage.StorageEngine)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Server.Port)
	}
	if c.Server.RateLimit <= 0 || c.Server.RateBurst <= 0 {
		return errors.New("config: rate limit and burst must be positive")
	}

	for name, d := range map[string]time.Duration{
		"lookup timeout":  c.Engine.LookupTimeout,
		"persist timeout": c.Engine.PersistTimeout,
		"breaker timeout": c.Engine.BreakerTimeout,
		"redis ttl":       c.Storage.RedisTTL,
	} {
		if d <= 0 {
			return fmt.Errorf("config: %s must be positive", name)
		}
	}
	if c.Engine.BreakerMaxFailures <= 0 {
		return errors.New("config: breaker max failures must be positive")
	}
	return nil
}

// SQLitePath returns the database file used by the sqlite storage engine.
func (c *Config) SQLitePath() string {
	return c.Storage.DataPath + "/memorykeeper.db"
}

// Addr returns host:port for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// buildBaseConfig constructs a Config from environment variables and defaults.
func buildBaseConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnvInt("MEMORYKEEPER_PORT", 6464),
			Host:         getEnv("MEMORYKEEPER_HOST", "127.0.0.1"),
			RateLimit:    getEnvFloat("MEMORYKEEPER_RATE_LIMIT", 20),
			RateBurst:    getEnvInt("MEMORYKEEPER_RATE_BURST", 40),
			AllowOrigins: getEnv("MEMORYKEEPER_ALLOW_ORIGINS", ""),
			APIToken:     getEnv("MEMORYKEEPER_API_TOKEN", ""),
		},
		Storage: StorageConfig{
			StorageEngine: getEnv("MEMORYKEEPER_STORAGE_ENGINE", StorageSQLite),
			DataPath:      getEnv("MEMORYKEEPER_DATA_PATH", "./data"),
			PostgresDSN:   getEnv("MEMORYKEEPER_POSTGRES_DSN", ""),
			RedisAddr:     getEnv("MEMORYKEEPER_REDIS_ADDR", ""),
			RedisPassword: getEnv("MEMORYKEEPER_REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("MEMORYKEEPER_REDIS_DB", 0),
			RedisTTL:      getEnvDuration("MEMORYKEEPER_REDIS_TTL", time.Hour),
		},
		Engine: EngineConfig{
			LookupTimeout:       getEnvDuration("MEMORYKEEPER_LOOKUP_TIMEOUT", 2*time.Second),
			PersistTimeout:      getEnvDuration("MEMORYKEEPER_PERSIST_TIMEOUT", 5*time.Second),
			BreakerMaxFailures:  getEnvInt("MEMORYKEEPER_BREAKER_MAX_FAILURES", 3),
			BreakerTimeout:      getEnvDuration("MEMORYKEEPER_BREAKER_TIMEOUT", 30*time.Second),
			SettingsCatalogPath: getEnv("MEMORYKEEPER_SETTINGS_CATALOG", ""),
		},
		Logging: LoggingConfig{
			Level:    getEnv("MEMORYKEEPER_LOG_LEVEL", "info"),
			Encoding: getEnv("MEMORYKEEPER_LOG_ENCODING", "json"),
		},
	}
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value.
// Unparseable values fall back to the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns a default value.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration (e.g. "2s", "1h") or returns a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
