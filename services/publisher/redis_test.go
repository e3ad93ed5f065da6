package publisher

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"pricetracker/internal/scraper"
)

// This test requires a running Redis instance
// If Redis is not available, the test will be skipped
func TestRedisPublisher(t *testing.T) {
	ctx := context.Background()
	publisher := NewRedisPublisher(ctx, "localhost:6379", 0, "test_price_observations", 100)
	defer publisher.Close()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   0,
	})
	defer client.Close()

	// Test if Redis is available
	_, err := client.Ping(ctx).Result()
	if err != nil {
		t.Skip("Redis is not available, skipping test")
	}
	defer client.Del(ctx, "test_price_observations")

	record := scraper.ProductRecord{
		Name:      "Ultimate Chino, Slim Fit",
		SKU:       "362720001",
		Price:     decimal.NewFromFloat(41.99),
		InStock:   true,
		URL:       "https://www.dockers.com/en/products/ultimate-chino-slim-fit-362720001",
		ScrapedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	err = publisher.PublishObservation(record)
	assert.NoError(t, err)

	messages, err := client.XRange(ctx, "test_price_observations", "-", "+").Result()
	assert.NoError(t, err)
	assert.Len(t, messages, 1)
	assert.Equal(t, "362720001", messages[0].Values["sku"])

	var decoded scraper.ProductRecord
	err = json.Unmarshal([]byte(messages[0].Values["payload"].(string)), &decoded)
	assert.NoError(t, err)
	assert.Equal(t, record.Name, decoded.Name)
	assert.True(t, decoded.Price.Equal(record.Price))

	// Publishing more than the cap and trimming keeps the stream bounded
	for i := 0; i < 5; i++ {
		assert.NoError(t, publisher.PublishObservation(record))
	}
	publisher.maxLen = 3
	assert.NoError(t, publisher.Trim())

	length, err := client.XLen(ctx, "test_price_observations").Result()
	assert.NoError(t, err)
	assert.LessOrEqual(t, length, int64(3))
}
