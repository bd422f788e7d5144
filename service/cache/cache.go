package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store is the shared TTL key-value store consumed by the circuit
// breaker state, the query-embedding cache and the search-result
// cache. A deployment with multiple worker processes should back it
// with a networked store so all workers observe the same entries.
type Store interface {
	Get(key string) (any, bool)
	Put(key string, value any, ttl time.Duration)
	Forget(key string)
}

const cleanupInterval = 10 * time.Minute

// MemoryStore is the in-process implementation.
type MemoryStore struct {
	c *gocache.Cache
}

var _ Store = &MemoryStore{}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		c: gocache.New(gocache.NoExpiration, cleanupInterval),
	}
}

func (s *MemoryStore) Get(key string) (any, bool) {
	return s.c.Get(key)
}

func (s *MemoryStore) Put(key string, value any, ttl time.Duration) {
	s.c.Set(key, value, ttl)
}

func (s *MemoryStore) Forget(key string) {
	s.c.Delete(key)
}
