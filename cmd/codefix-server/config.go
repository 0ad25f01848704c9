package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"codefix/internal/ai/provider"
	"codefix/internal/common/cache"
	"codefix/internal/common/http/middleware"
	compilerservice "codefix/internal/compiler/service"
	sessionservice "codefix/internal/session/service"
	"codefix/pkg/utils/logger"

	"gopkg.in/yaml.v3"
)

const (
	defaultHTTPAddr        = "0.0.0.0:5000"
	defaultReadTimeout     = 5 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultMaxHeaderBytes  = 1 << 20
	defaultEnvironment     = "development"

	defaultCORSOrigin    = "http://localhost:5173"
	defaultRateWindow    = 15 * time.Minute
	defaultRateMax       = 100
	defaultRateCacheWait = time.Second

	backendMemory = "memory"
	backendRedis  = "redis"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	Environment     string        `yaml:"environment"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	MaxHeaderBytes  int           `yaml:"maxHeaderBytes"`
}

// RateLimitConfig holds the per-IP fixed window.
type RateLimitConfig struct {
	Enabled      *bool         `yaml:"enabled"`
	Window       time.Duration `yaml:"window"`
	Max          int           `yaml:"max"`
	CacheTimeout time.Duration `yaml:"cacheTimeout"`
}

// AppConfig holds the server configuration.
type AppConfig struct {
	Server    ServerConfig           `yaml:"server"`
	Logger    logger.Config          `yaml:"logger"`
	CORS      middleware.CORSConfig  `yaml:"cors"`
	RateLimit RateLimitConfig        `yaml:"rateLimit"`
	Redis     cache.RedisConfig      `yaml:"redis"`
	AI        provider.Config        `yaml:"ai"`
	Compiler  compilerservice.Config `yaml:"compiler"`
	Session   sessionservice.Config  `yaml:"session"`
}

// loadAppConfig reads path, expands ${VAR} references and applies defaults.
// An empty path yields the defaults alone.
func loadAppConfig(path string) (*AppConfig, error) {
	var cfg AppConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file failed: %w", err)
		}
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
			return nil, fmt.Errorf("parse config file failed: %w", err)
		}
	}
	applyDefaults(&cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultHTTPAddr
	}
	if cfg.Server.Environment == "" {
		cfg.Server.Environment = defaultEnvironment
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = defaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = defaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = defaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = defaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = defaultMaxHeaderBytes
	}

	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
	if cfg.Logger.Format == "" {
		cfg.Logger.Format = "json"
	}
	if cfg.Logger.OutputPath == "" {
		cfg.Logger.OutputPath = "stdout"
	}
	if cfg.Logger.ErrorPath == "" {
		cfg.Logger.ErrorPath = "stderr"
	}

	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.Enabled = true
		cfg.CORS.AllowedOrigins = []string{defaultCORSOrigin}
		cfg.CORS.AllowCredentials = true
	}
	if len(cfg.CORS.AllowedMethods) == 0 {
		cfg.CORS.AllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(cfg.CORS.AllowedHeaders) == 0 {
		cfg.CORS.AllowedHeaders = []string{"Content-Type", "Authorization", "X-Trace-ID"}
	}

	if cfg.RateLimit.Enabled == nil {
		enabled := true
		cfg.RateLimit.Enabled = &enabled
	}
	if cfg.RateLimit.Window <= 0 {
		cfg.RateLimit.Window = defaultRateWindow
	}
	if cfg.RateLimit.Max <= 0 {
		cfg.RateLimit.Max = defaultRateMax
	}
	if cfg.RateLimit.CacheTimeout <= 0 {
		cfg.RateLimit.CacheTimeout = defaultRateCacheWait
	}

	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "auto"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = provider.DefaultModel
	}
	if cfg.AI.Temperature == 0 {
		cfg.AI.Temperature = provider.DefaultTemperature
	}
	if cfg.AI.MaxTokens == 0 {
		cfg.AI.MaxTokens = provider.DefaultMaxTokens
	}
	if cfg.AI.Timeout == 0 {
		cfg.AI.Timeout = provider.DefaultTimeout
	}

	cfg.Session.Backend = strings.ToLower(strings.TrimSpace(cfg.Session.Backend))
	if cfg.Session.Backend == "" {
		cfg.Session.Backend = backendMemory
	}
	if cfg.Session.MaxAge <= 0 {
		cfg.Session.MaxAge = 24 * time.Hour
	}
	if cfg.Session.CleanupInterval <= 0 {
		cfg.Session.CleanupInterval = time.Hour
	}
}

func (c *AppConfig) validate() error {
	switch c.Session.Backend {
	case backendMemory:
	case backendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required for the redis session backend")
		}
	default:
		return fmt.Errorf("unknown session backend: %s", c.Session.Backend)
	}
	if c.Session.Archive.Enabled && c.Session.Archive.Bucket == "" {
		return fmt.Errorf("session.archive.bucket is required when archiving is enabled")
	}
	return nil
}

// sessionTTL keeps entries alive past maxAge until the janitor has had a
// chance to archive them.
func (c *AppConfig) sessionTTL() time.Duration {
	return c.Session.MaxAge + c.Session.CleanupInterval
}
