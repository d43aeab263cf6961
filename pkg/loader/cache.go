package loader

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes loaded file contents. Concurrent loads of the same key
// share a single call. Failed loads are not cached.
//
// The zero value is ready to use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string][]byte
	group   singleflight.Group
}

func (c *Cache) get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.entries[key]
	return b, ok
}

// Load returns the cached content for key or calls load to fill it.
func (c *Cache) Load(key string, load func() ([]byte, error)) ([]byte, error) {
	if cached, ok := c.get(key); ok {
		return cached, nil
	}

	result, err, _ := c.group.Do(key, func() (any, error) {
		if cached, ok := c.get(key); ok {
			return cached, nil
		}

		b, err := load()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.entries == nil {
			c.entries = make(map[string][]byte)
		}
		c.entries[key] = b
		c.mu.Unlock()

		return b, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}
