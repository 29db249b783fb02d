package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, "https://data-api.polymarket.com", cfg.API.DataBase)
	assert.Equal(t, 500, cfg.Fetch.PageSize)
	assert.Equal(t, 20, cfg.Checker.MaxAddresses)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL())
	assert.Equal(t, 2*time.Minute, cfg.BatchTimeout())
	assert.Equal(t, 100*time.Millisecond, cfg.PageDelay())
	assert.Equal(t, "", cfg.Storage.DSN, "sin DSN no hay histórico")
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_YAMLValues(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
fetch:
  page_size: 100
  retry_wait_ms: 250
checker:
  max_addresses: 5
watch:
  schedule: "0 */6 * * *"
  addresses:
    - "0xabc"
    - "0xdef"
`))
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.Fetch.PageSize)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryWait())
	assert.Equal(t, 5, cfg.Checker.MaxAddresses)
	assert.Equal(t, "0 */6 * * *", cfg.Watch.Schedule)
	assert.Equal(t, []string{"0xabc", "0xdef"}, cfg.Watch.Addresses)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("POLYDROP_DATA_API", "http://localhost:8080")
	t.Setenv("POLYDROP_DSN", ":memory:")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := Load(writeConfig(t, "log:\n  level: warn\n"))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "http://localhost:8080", cfg.API.DataBase)
	assert.Equal(t, ":memory:", cfg.Storage.DSN)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "redis:6379", cfg.Cache.RedisAddr)
}

func TestLoad_UnknownCacheBackend(t *testing.T) {
	_, err := Load(writeConfig(t, "cache:\n  backend: memcached\n"))
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "fetch: [unclosed\n"))
	assert.Error(t, err)
}

func TestLoad_ExplicitZeroRetriesAndDelay(t *testing.T) {
	cfg, err := Load(writeConfig(t, "fetch:\n  max_retries: 0\n  page_delay_ms: 0\n"))
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.MaxRetries())
	assert.Equal(t, time.Duration(0), cfg.PageDelay())
}

func TestLoad_RetriesAndDelayDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "fetch:\n  max_retries: -1\n"))
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.MaxRetries())
	assert.Equal(t, 100*time.Millisecond, cfg.PageDelay())
}

func TestLoad_MaxAddressesCap(t *testing.T) {
	cfg, err := Load(writeConfig(t, "checker:\n  max_addresses: 20\n"))
	require.NoError(t, err)
	assert.Equal(t, MaxBatchAddresses, cfg.Checker.MaxAddresses)

	_, err = Load(writeConfig(t, "checker:\n  max_addresses: 21\n"))
	assert.Error(t, err)
}
