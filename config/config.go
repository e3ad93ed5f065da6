package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "pricetracker/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	// Retailer configuration
	Retailer    string
	BaseURL     string
	CatalogPath string
	ProductURLs []string

	// Fetch configuration
	RateLimitDelay time.Duration
	RequestTimeout time.Duration
	MaxPages       int
	BestEffort     bool

	// Sink configuration
	OutputPath  string
	DatabaseURL string

	// Observation stream configuration
	RedisAddr         string
	RedisDB           int
	RedisStream       string
	RedisStreamMaxLen int

	// Cooldown cache configuration
	MemcacheAddr     string
	CooldownDuration time.Duration

	// Metrics
	MetricsPort string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	delaySeconds, _ := strconv.Atoi(getEnv("RATE_LIMIT_DELAY_SECONDS", "2"))
	timeoutSeconds, _ := strconv.Atoi(getEnv("REQUEST_TIMEOUT_SECONDS", "10"))
	maxPages, _ := strconv.Atoi(getEnv("MAX_PAGES", "5"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisMaxLen, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAXLEN", "1000"))
	cooldownSeconds, _ := strconv.Atoi(getEnv("COOLDOWN_SECONDS", "300"))
	bestEffort, _ := strconv.ParseBool(getEnv("BEST_EFFORT", "false"))

	return Config{
		Retailer:          getEnv("RETAILER", "dockers"),
		BaseURL:           getEnv("BASE_URL", "https://www.dockers.com"),
		CatalogPath:       getEnv("CATALOG_PATH", "/en/shop/mens/pants"),
		ProductURLs:       splitList(getEnv("PRODUCT_URLS", "")),
		RateLimitDelay:    time.Duration(delaySeconds) * time.Second,
		RequestTimeout:    time.Duration(timeoutSeconds) * time.Second,
		MaxPages:          maxPages,
		BestEffort:        bestEffort,
		OutputPath:        getEnv("OUTPUT_PATH", "dockers_products.json"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisDB:           redisDB,
		RedisStream:       getEnv("REDIS_STREAM", "price_observations"),
		RedisStreamMaxLen: redisMaxLen,
		MemcacheAddr:      getEnv("MEMCACHE_ADDR", ""),
		CooldownDuration:  time.Duration(cooldownSeconds) * time.Second,
		MetricsPort:       getEnv("METRICS_PORT", ""),
		Environment:       getEnv("PRICETRACKER_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the pipeline cannot run with
func (c *Config) Validate() error {
	parsed, err := url.Parse(c.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return apperrors.NewConfiguration("BASE_URL must be an absolute URL", err)
	}
	if c.RequestTimeout <= 0 {
		return apperrors.NewConfiguration("REQUEST_TIMEOUT_SECONDS must be positive", nil)
	}
	if c.RateLimitDelay < 0 {
		return apperrors.NewConfiguration("RATE_LIMIT_DELAY_SECONDS must not be negative", nil)
	}
	if c.MaxPages < 1 {
		return apperrors.NewConfiguration("MAX_PAGES must be at least 1", nil)
	}
	if c.OutputPath == "" && c.DatabaseURL == "" {
		return apperrors.NewConfiguration("at least one of OUTPUT_PATH and DATABASE_URL must be set", nil)
	}
	return nil
}

// CatalogURL returns the full URL of the first listing page
func (c *Config) CatalogURL() string {
	return strings.TrimRight(c.BaseURL, "/") + c.CatalogPath
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// splitList splits a comma-separated env value into trimmed entries
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
