package scraper

import (
	"time"
)

// MockCooldownCache implements a simple in-memory cooldown cache for testing
type MockCooldownCache struct {
	cache map[string][]byte
}

func NewMockCooldownCache() *MockCooldownCache {
	return &MockCooldownCache{
		cache: make(map[string][]byte),
	}
}

func (m *MockCooldownCache) Get(key string) ([]byte, error) {
	if val, ok := m.cache[key]; ok {
		return val, nil
	}
	return nil, &mockError{message: "cache miss"}
}

func (m *MockCooldownCache) Set(key string, value []byte, expiration time.Duration) error {
	m.cache[key] = value
	return nil
}

func (m *MockCooldownCache) Delete(key string) error {
	delete(m.cache, key)
	return nil
}

type mockError struct {
	message string
}

func (e *mockError) Error() string {
	return e.message
}

// testListSelectors is a compact selector table for the synthetic markup
// used across the scraper tests
func testListSelectors() ListSelectors {
	return ListSelectors{
		Product:       "div.product",
		Link:          "a.plink",
		Price:         "span.price",
		OriginalPrice: "s.was",
		Availability:  "div.stock",
		OutOfStock:    "div.oos",
		Image:         "img",
		Category:      "span.category",
		NextPage:      `a[rel="next"]`,
	}
}
