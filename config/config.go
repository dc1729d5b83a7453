// Package config loads edgemux settings from defaults, an optional YAML
// file and the environment, in that order of precedence. A .env file in the
// working directory is loaded into the environment first when present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/vitalvas/edgemux/logger"
)

// ErrBadConfig is returned by Validate and Load for invalid settings.
var ErrBadConfig = errors.New("config: invalid")

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Environment variable names.
const (
	AddrEnvVar            = "EDGEMUX_ADDR"
	EnvironmentEnvVar     = "EDGEMUX_ENVIRONMENT"
	CacheTimeEnvVar       = "EDGEMUX_CACHE_TIME"
	SharedMaxAgeEnvVar    = "EDGEMUX_SHARED_MAX_AGE"
	ParseCookieEnvVar     = "EDGEMUX_PARSE_COOKIE"
	MaxBodyBytesEnvVar    = "EDGEMUX_MAX_BODY_BYTES"
	CacheBackendEnvVar    = "EDGEMUX_CACHE_BACKEND"
	RedisAddrEnvVar       = "EDGEMUX_REDIS_ADDR"
	RedisPasswordEnvVar   = "EDGEMUX_REDIS_PASSWORD"
	RedisDBEnvVar         = "EDGEMUX_REDIS_DB"
	LogLevelEnvVar        = "LOG_LEVEL"
	SentryDSNEnvVar       = "SENTRY_DSN"
	RateLimitEnvVar       = "EDGEMUX_RATE_LIMIT"
	RateBurstEnvVar       = "EDGEMUX_RATE_BURST"
	JWTSecretEnvVar       = "EDGEMUX_JWT_SECRET"
	ReadTimeoutEnvVar     = "EDGEMUX_READ_TIMEOUT"
	WriteTimeoutEnvVar    = "EDGEMUX_WRITE_TIMEOUT"
	IdleTimeoutEnvVar     = "EDGEMUX_IDLE_TIMEOUT"
	ShutdownTimeoutEnvVar = "EDGEMUX_SHUTDOWN_TIMEOUT"
	TrustProxyEnvVar      = "EDGEMUX_TRUST_PROXY"
)

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// CacheConfig selects and configures the response cache.
type CacheConfig struct {
	Backend string      `yaml:"backend"`
	Redis   RedisConfig `yaml:"redis"`
}

// RateLimitConfig configures per-client rate limiting. A zero Rate
// disables it.
type RateLimitConfig struct {
	Rate  float64 `yaml:"rate"`
	Burst int     `yaml:"burst"`
}

// Config holds every edgemux setting.
type Config struct {
	Addr         string      `yaml:"addr"`
	Environment  Environment `yaml:"environment"`
	CacheTime    int         `yaml:"cache_time"`
	SharedMaxAge bool        `yaml:"shared_max_age"`
	ParseCookie  bool        `yaml:"parse_cookie"`
	MaxBodyBytes int64       `yaml:"max_body_bytes"`

	// TrustProxy honours X-Forwarded-* headers. Enable it only behind a
	// proxy that overwrites them.
	TrustProxy bool `yaml:"trust_proxy"`

	Cache     CacheConfig     `yaml:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	LogLevel  string `yaml:"log_level"`
	SentryDSN string `yaml:"sentry_dsn"`
	JWTSecret string `yaml:"jwt_secret"`

	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Addr:         ":8080",
		Environment:  Development,
		ParseCookie:  true,
		MaxBodyBytes: 10 << 20,
		Cache: CacheConfig{
			Backend: CacheMemory,
			Redis:   RedisConfig{Addr: "localhost:6379"},
		},
		LogLevel:        "INFO",
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Load builds a Config from defaults, the YAML file at path when path is
// not empty, and the environment. A missing .env file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("%w: %s: %s", ErrBadConfig, path, err)
	}

	return nil
}

// applyEnv overrides settings with the environment variables that are set.
func (c *Config) applyEnv() {
	c.Addr = EnvVarOrString(AddrEnvVar, c.Addr)
	c.Environment = EnvVarOrEnv(EnvironmentEnvVar, c.Environment)
	c.CacheTime = EnvVarOrInt(CacheTimeEnvVar, c.CacheTime)
	c.SharedMaxAge = EnvVarOrBool(SharedMaxAgeEnvVar, c.SharedMaxAge)
	c.ParseCookie = EnvVarOrBool(ParseCookieEnvVar, c.ParseCookie)
	c.MaxBodyBytes = EnvVarOrInt64(MaxBodyBytesEnvVar, c.MaxBodyBytes)
	c.TrustProxy = EnvVarOrBool(TrustProxyEnvVar, c.TrustProxy)

	c.Cache.Backend = strings.ToLower(EnvVarOrString(CacheBackendEnvVar, c.Cache.Backend))
	c.Cache.Redis.Addr = EnvVarOrString(RedisAddrEnvVar, c.Cache.Redis.Addr)
	c.Cache.Redis.Password = EnvVarOrString(RedisPasswordEnvVar, c.Cache.Redis.Password)
	c.Cache.Redis.DB = EnvVarOrInt(RedisDBEnvVar, c.Cache.Redis.DB)

	c.RateLimit.Rate = EnvVarOrFloat(RateLimitEnvVar, c.RateLimit.Rate)
	c.RateLimit.Burst = EnvVarOrInt(RateBurstEnvVar, c.RateLimit.Burst)

	c.LogLevel = strings.ToUpper(EnvVarOrString(LogLevelEnvVar, c.LogLevel))
	c.SentryDSN = EnvVarOrString(SentryDSNEnvVar, c.SentryDSN)
	c.JWTSecret = EnvVarOrString(JWTSecretEnvVar, c.JWTSecret)

	c.ReadTimeout = EnvVarOrDuration(ReadTimeoutEnvVar, c.ReadTimeout)
	c.WriteTimeout = EnvVarOrDuration(WriteTimeoutEnvVar, c.WriteTimeout)
	c.IdleTimeout = EnvVarOrDuration(IdleTimeoutEnvVar, c.IdleTimeout)
	c.ShutdownTimeout = EnvVarOrDuration(ShutdownTimeoutEnvVar, c.ShutdownTimeout)
}

// Validate checks the settings, returning ErrBadConfig wrapped with the
// offending field.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must be set", ErrBadConfig)
	case !c.Environment.Valid():
		return fmt.Errorf("%w: environment %q", ErrBadConfig, c.Environment)
	case c.CacheTime < 0:
		return fmt.Errorf("%w: cache_time must not be negative", ErrBadConfig)
	case c.MaxBodyBytes < 0:
		return fmt.Errorf("%w: max_body_bytes must not be negative", ErrBadConfig)
	case c.RateLimit.Rate < 0:
		return fmt.Errorf("%w: rate_limit.rate must not be negative", ErrBadConfig)
	case c.RateLimit.Rate > 0 && c.RateLimit.Burst <= 0:
		return fmt.Errorf("%w: rate_limit.burst must be positive when rate is set", ErrBadConfig)
	case logger.NewLogLevel(c.LogLevel) == logger.LogLevelUnk:
		return fmt.Errorf("%w: log_level %q", ErrBadConfig, c.LogLevel)
	}

	switch c.Cache.Backend {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if c.Cache.Redis.Addr == "" {
			return fmt.Errorf("%w: cache.redis.addr must be set for the redis backend", ErrBadConfig)
		}
	default:
		return fmt.Errorf("%w: cache.backend %q", ErrBadConfig, c.Cache.Backend)
	}

	return nil
}

// Level returns the parsed log level.
func (c *Config) Level() logger.LogLevel {
	return logger.NewLogLevel(c.LogLevel)
}
