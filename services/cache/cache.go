package cache

import (
	"time"
)

// CooldownCache stores retailer cooldown markers that survive across runs.
// A marker set after a rate-limited response keeps subsequent runs from
// hammering the retailer before the window expires.
type CooldownCache interface {
	// Get retrieves a marker from the cache
	Get(key string) ([]byte, error)

	// Set stores a marker in the cache with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a marker from the cache
	Delete(key string) error
}
