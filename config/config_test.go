package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/edgemux/logger"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "edgemux.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, Development, cfg.Environment)
	assert.True(t, cfg.ParseCookie)
	assert.Equal(t, CacheMemory, cfg.Cache.Backend)
	assert.Equal(t, logger.LogLevelInfo, cfg.Level())
}

func TestLoad(t *testing.T) {
	t.Run("defaults only", func(t *testing.T) {
		t.Chdir(t.TempDir())

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		t.Chdir(t.TempDir())

		path := writeFile(t, `
addr: ":9000"
environment: PRODUCTION
cache_time: 120
shared_max_age: true
cache:
  backend: redis
  redis:
    addr: "redis:6379"
    db: 2
rate_limit:
  rate: 5
  burst: 10
read_timeout: 3s
`)

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, ":9000", cfg.Addr)
		assert.True(t, cfg.Environment.IsProduction())
		assert.Equal(t, 120, cfg.CacheTime)
		assert.True(t, cfg.SharedMaxAge)
		assert.Equal(t, CacheRedis, cfg.Cache.Backend)
		assert.Equal(t, "redis:6379", cfg.Cache.Redis.Addr)
		assert.Equal(t, 2, cfg.Cache.Redis.DB)
		assert.Equal(t, 5.0, cfg.RateLimit.Rate)
		assert.Equal(t, 10, cfg.RateLimit.Burst)
		assert.Equal(t, 3*time.Second, cfg.ReadTimeout)
		assert.Equal(t, 15*time.Second, cfg.WriteTimeout)
	})

	t.Run("env overrides file", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv(AddrEnvVar, ":7000")
		t.Setenv(CacheTimeEnvVar, "60")
		t.Setenv(CacheBackendEnvVar, "NONE")
		t.Setenv(LogLevelEnvVar, "debug")
		t.Setenv(ParseCookieEnvVar, "false")
		t.Setenv(ShutdownTimeoutEnvVar, "5s")
		t.Setenv(TrustProxyEnvVar, "true")

		cfg, err := Load(writeFile(t, "addr: \":9000\"\ncache_time: 10\n"))
		require.NoError(t, err)
		assert.Equal(t, ":7000", cfg.Addr)
		assert.Equal(t, 60, cfg.CacheTime)
		assert.Equal(t, CacheNone, cfg.Cache.Backend)
		assert.Equal(t, logger.LogLevelDebug, cfg.Level())
		assert.False(t, cfg.ParseCookie)
		assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
		assert.True(t, cfg.TrustProxy)
	})

	t.Run("dotenv file", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("EDGEMUX_CACHE_TIME=33\n"), 0o600))
		t.Setenv(CacheTimeEnvVar, "")
		require.NoError(t, os.Unsetenv(CacheTimeEnvVar))

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, 33, cfg.CacheTime)
	})

	t.Run("unknown field", func(t *testing.T) {
		t.Chdir(t.TempDir())

		_, err := Load(writeFile(t, "nope: 1\n"))
		assert.ErrorIs(t, err, ErrBadConfig)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Chdir(t.TempDir())

		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Chdir(t.TempDir())

		_, err := Load(writeFile(t, "cache:\n  backend: memcached\n"))
		assert.ErrorIs(t, err, ErrBadConfig)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Addr = "" }},
		{"bad environment", func(c *Config) { c.Environment = "LOCAL" }},
		{"negative cache time", func(c *Config) { c.CacheTime = -1 }},
		{"negative body limit", func(c *Config) { c.MaxBodyBytes = -1 }},
		{"negative rate", func(c *Config) { c.RateLimit.Rate = -1 }},
		{"rate without burst", func(c *Config) { c.RateLimit.Rate = 1 }},
		{"bad log level", func(c *Config) { c.LogLevel = "TRACE" }},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "disk" }},
		{"redis without addr", func(c *Config) {
			c.Cache.Backend = CacheRedis
			c.Cache.Redis.Addr = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrBadConfig)
		})
	}
}

func TestEnvVarOr(t *testing.T) {
	t.Setenv("EDGEMUX_TEST_BOOL", "TRUE")
	t.Setenv("EDGEMUX_TEST_INT", "12")
	t.Setenv("EDGEMUX_TEST_BAD", "x")
	t.Setenv("EDGEMUX_TEST_DUR", "2m")
	t.Setenv("EDGEMUX_TEST_FLOAT", "0.5")
	t.Setenv("EDGEMUX_TEST_ENV", "staging")

	assert.True(t, EnvVarOrBool("EDGEMUX_TEST_BOOL", false))
	assert.True(t, EnvVarOrBool("EDGEMUX_TEST_BAD", true))
	assert.Equal(t, 12, EnvVarOrInt("EDGEMUX_TEST_INT", 1))
	assert.Equal(t, 1, EnvVarOrInt("EDGEMUX_TEST_BAD", 1))
	assert.Equal(t, int64(12), EnvVarOrInt64("EDGEMUX_TEST_INT", 1))
	assert.Equal(t, 2*time.Minute, EnvVarOrDuration("EDGEMUX_TEST_DUR", time.Second))
	assert.Equal(t, time.Second, EnvVarOrDuration("EDGEMUX_TEST_BAD", time.Second))
	assert.Equal(t, 0.5, EnvVarOrFloat("EDGEMUX_TEST_FLOAT", 1))
	assert.Equal(t, Staging, EnvVarOrEnv("EDGEMUX_TEST_ENV", Development))
	assert.Equal(t, Development, EnvVarOrEnv("EDGEMUX_TEST_BAD", Development))
	assert.Equal(t, "x", EnvVarOrString("EDGEMUX_TEST_BAD", "d"))
	assert.Equal(t, "d", EnvVarOrString("EDGEMUX_TEST_UNSET", "d"))
}
