package common

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// CacheService is the in-memory cache used when no Redis backend is configured.
type CacheService struct {
	cache *cache.Cache
}

// Ensure CacheService implements CacheInterface
var _ CacheInterface = (*CacheService)(nil)

// NewCacheService creates an in-memory cache. A zero defaultExpiration keeps
// entries until they are deleted.
func NewCacheService(defaultExpiration, cleanUpInterval time.Duration) *CacheService {
	if defaultExpiration <= 0 {
		defaultExpiration = cache.NoExpiration
	}
	if cleanUpInterval <= 0 {
		cleanUpInterval = 10 * time.Minute
	}
	return &CacheService{cache: cache.New(defaultExpiration, cleanUpInterval)}
}

func (cs *CacheService) Set(key string, value interface{}, duration time.Duration) {
	if duration == 0 {
		duration = cache.DefaultExpiration
	}
	cs.cache.Set(key, value, duration)
}

func (cs *CacheService) Get(key string) (interface{}, bool) {
	return cs.cache.Get(key)
}

func (cs *CacheService) Delete(key string) {
	cs.cache.Delete(key)
}

// ItemCount is the number of entries held, including expired ones not yet cleaned up.
func (cs *CacheService) ItemCount() int {
	return cs.cache.ItemCount()
}

// Ping always succeeds for the in-memory cache
func (cs *CacheService) Ping(ctx context.Context) error {
	return nil
}

// Close closes the cache (no-op for in-memory cache)
func (cs *CacheService) Close() error {
	return nil
}
