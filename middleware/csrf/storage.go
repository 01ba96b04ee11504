package csrf

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultStorageSize caps the number of tokens kept by MemoryStorage.
const DefaultStorageSize = 4096

// MemoryStorage keeps tokens in an expiring LRU cache. The expiration given
// to Set is ignored in favour of the cache TTL.
type MemoryStorage struct {
	cache *expirable.LRU[string, string]
}

// NewMemoryStorage creates a store holding at most size tokens for ttl.
func NewMemoryStorage(size int, ttl time.Duration) *MemoryStorage {
	if size <= 0 {
		size = DefaultStorageSize
	}
	return &MemoryStorage{
		cache: expirable.NewLRU[string, string](size, nil, ttl),
	}
}

func (m *MemoryStorage) Get(key string) (string, error) {
	value, _ := m.cache.Get(key)
	return value, nil
}

func (m *MemoryStorage) Set(key string, value string, _ time.Duration) error {
	m.cache.Add(key, value)
	return nil
}

func (m *MemoryStorage) Delete(key string) error {
	m.cache.Remove(key)
	return nil
}
