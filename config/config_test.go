package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	config := LoadConfig()
	assert.Equal(t, "dockers", config.Retailer)
	assert.Equal(t, "https://www.dockers.com", config.BaseURL)
	assert.Equal(t, "/en/shop/mens/pants", config.CatalogPath)
	assert.Equal(t, 2*time.Second, config.RateLimitDelay)
	assert.Equal(t, 10*time.Second, config.RequestTimeout)
	assert.Equal(t, 5, config.MaxPages)
	assert.Equal(t, "dockers_products.json", config.OutputPath)
	assert.False(t, config.BestEffort)
	assert.Empty(t, config.ProductURLs)

	// Test with environment variables
	os.Setenv("BASE_URL", "https://example.com")
	os.Setenv("CATALOG_PATH", "/shop/pants")
	os.Setenv("RATE_LIMIT_DELAY_SECONDS", "1")
	os.Setenv("MAX_PAGES", "3")
	os.Setenv("BEST_EFFORT", "true")
	os.Setenv("PRODUCT_URLS", "https://example.com/products/a-1, https://example.com/products/b-2")

	config = LoadConfig()
	assert.Equal(t, "https://example.com", config.BaseURL)
	assert.Equal(t, "https://example.com/shop/pants", config.CatalogURL())
	assert.Equal(t, 1*time.Second, config.RateLimitDelay)
	assert.Equal(t, 3, config.MaxPages)
	assert.True(t, config.BestEffort)
	assert.Equal(t, []string{"https://example.com/products/a-1", "https://example.com/products/b-2"}, config.ProductURLs)

	// Clean up
	os.Unsetenv("BASE_URL")
	os.Unsetenv("CATALOG_PATH")
	os.Unsetenv("RATE_LIMIT_DELAY_SECONDS")
	os.Unsetenv("MAX_PAGES")
	os.Unsetenv("BEST_EFFORT")
	os.Unsetenv("PRODUCT_URLS")
}

func TestValidate(t *testing.T) {
	config := LoadConfig()
	assert.NoError(t, config.Validate())

	bad := config
	bad.BaseURL = "not a url"
	assert.Error(t, bad.Validate())

	bad = config
	bad.RequestTimeout = 0
	assert.Error(t, bad.Validate())

	bad = config
	bad.MaxPages = 0
	assert.Error(t, bad.Validate())

	bad = config
	bad.OutputPath = ""
	bad.DatabaseURL = ""
	assert.Error(t, bad.Validate())

	// A database-only configuration is valid
	bad.DatabaseURL = "postgres://localhost/prices"
	assert.NoError(t, bad.Validate())
}
