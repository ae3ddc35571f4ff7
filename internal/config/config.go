package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port          string
	DBPath        string
	JWTSecret     string
	GeoIPPath     string
	Env           string
	RateLimit     int
	RateWindow    time.Duration
	CacheSize     int
	VerifyTimeout time.Duration
}

func Load() (*Config, error) {
	secret := os.Getenv("DEVTRACE_JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("DEVTRACE_JWT_SECRET is required")
	}

	cfg := &Config{
		Port:          envOrDefault("DEVTRACE_PORT", "3000"),
		DBPath:        envOrDefault("DEVTRACE_DB_PATH", "./devtrace.db"),
		JWTSecret:     secret,
		GeoIPPath:     os.Getenv("DEVTRACE_GEOIP_PATH"),
		Env:           envOrDefault("DEVTRACE_ENV", "development"),
		RateLimit:     parseInt("DEVTRACE_RATE_LIMIT", 100),
		RateWindow:    parseDuration("DEVTRACE_RATE_WINDOW", time.Minute),
		CacheSize:     parseInt("DEVTRACE_CACHE_SIZE", 10000),
		VerifyTimeout: parseDuration("DEVTRACE_VERIFY_TIMEOUT", 10*time.Second),
	}

	if cfg.RateLimit <= 0 {
		return nil, fmt.Errorf("DEVTRACE_RATE_LIMIT must be positive")
	}
	if cfg.RateWindow <= 0 {
		return nil, fmt.Errorf("DEVTRACE_RATE_WINDOW must be positive")
	}
	if cfg.CacheSize <= 0 {
		return nil, fmt.Errorf("DEVTRACE_CACHE_SIZE must be positive")
	}
	if cfg.VerifyTimeout <= 0 {
		return nil, fmt.Errorf("DEVTRACE_VERIFY_TIMEOUT must be positive")
	}

	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func parseDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
