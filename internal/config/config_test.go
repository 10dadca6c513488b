package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/memorykeeper/internal/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, k := range []string{
		"MEMORYKEEPER_HOST", "MEMORYKEEPER_PORT", "MEMORYKEEPER_STORAGE_ENGINE",
		"MEMORYKEEPER_LOOKUP_TIMEOUT", "MEMORYKEEPER_LOG_LEVEL",
	} {
		_ = os.Unsetenv(k)
	}

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host, "default host must be loopback")
	assert.Equal(t, 6464, cfg.Server.Port)
	assert.Equal(t, config.StorageSQLite, cfg.Storage.StorageEngine)
	assert.Equal(t, 2*time.Second, cfg.Engine.LookupTimeout)
	assert.Equal(t, 3, cfg.Engine.BreakerMaxFailures)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "./data/memorykeeper.db", cfg.SQLitePath())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("MEMORYKEEPER_HOST", "0.0.0.0")
	t.Setenv("MEMORYKEEPER_PORT", "9000")
	t.Setenv("MEMORYKEEPER_STORAGE_ENGINE", "memory")
	t.Setenv("MEMORYKEEPER_LOOKUP_TIMEOUT", "750ms")
	t.Setenv("MEMORYKEEPER_RATE_LIMIT", "5.5")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Addr())
	assert.Equal(t, config.StorageMemory, cfg.Storage.StorageEngine)
	assert.Equal(t, 750*time.Millisecond, cfg.Engine.LookupTimeout)
	assert.Equal(t, 5.5, cfg.Server.RateLimit)
}

func TestLoadConfig_UnparseableValuesUseDefaults(t *testing.T) {
	t.Setenv("MEMORYKEEPER_PORT", "not-a-port")
	t.Setenv("MEMORYKEEPER_BREAKER_TIMEOUT", "soon")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 6464, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Engine.BreakerTimeout)
}

func TestLoadConfig_RejectsUnknownStorageEngine(t *testing.T) {
	t.Setenv("MEMORYKEEPER_STORAGE_ENGINE", "mongodb")

	_, err := config.LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_PostgresNeedsDSN(t *testing.T) {
	t.Setenv("MEMORYKEEPER_STORAGE_ENGINE", "postgres")
	t.Setenv("MEMORYKEEPER_POSTGRES_DSN", "")

	_, err := config.LoadConfig()
	assert.Error(t, err)

	t.Setenv("MEMORYKEEPER_POSTGRES_DSN", "postgres://localhost/memorykeeper?sslmode=disable")
	_, err = config.LoadConfig()
	assert.NoError(t, err)
}

func TestLoadConfig_RejectsNonPositiveDurations(t *testing.T) {
	t.Setenv("MEMORYKEEPER_LOOKUP_TIMEOUT", "0s")

	_, err := config.LoadConfig()
	assert.Error(t, err)
}
