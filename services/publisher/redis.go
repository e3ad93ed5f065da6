package publisher

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"pricetracker/internal/scraper"
)

// RedisPublisher implements Publisher using a Redis stream. The alerting
// collaborator consumes the stream and compares observations against its
// thresholds; the scraper only produces.
type RedisPublisher struct {
	client *redis.Client
	ctx    context.Context
	stream string
	maxLen int
}

// NewRedisPublisher creates a new Redis observation publisher
func NewRedisPublisher(ctx context.Context, addr string, db int, stream string, maxLen int) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisPublisher{
		client: client,
		ctx:    ctx,
		stream: stream,
		maxLen: maxLen,
	}
}

// PublishObservation pushes one observation onto the stream, keyed by SKU
func (p *RedisPublisher) PublishObservation(record scraper.ProductRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}

	return p.client.XAdd(p.ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"sku":     record.SKU,
			"payload": payload,
		},
	}).Err()
}

// Trim caps the stream at the configured maximum length
func (p *RedisPublisher) Trim() error {
	return p.client.XTrimMaxLen(p.ctx, p.stream, int64(p.maxLen)).Err()
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
