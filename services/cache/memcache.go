package cache

import (
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// MemcacheCooldown implements CooldownCache using memcache
type MemcacheCooldown struct {
	client *memcache.Client
}

// NewMemcacheCooldown creates a new memcache-backed cooldown cache
func NewMemcacheCooldown(serverAddr string) *MemcacheCooldown {
	return &MemcacheCooldown{
		client: memcache.New(serverAddr),
	}
}

// Get retrieves a marker from memcache
func (m *MemcacheCooldown) Get(key string) ([]byte, error) {
	item, err := m.client.Get(key)
	if err != nil {
		return nil, err
	}
	return item.Value, nil
}

// Set stores a marker in memcache with an expiration time
func (m *MemcacheCooldown) Set(key string, value []byte, expiration time.Duration) error {
	return m.client.Set(&memcache.Item{
		Key:        key,
		Value:      value,
		Expiration: int32(expiration.Seconds()),
	})
}

// Delete removes a marker from memcache
func (m *MemcacheCooldown) Delete(key string) error {
	return m.client.Delete(key)
}
