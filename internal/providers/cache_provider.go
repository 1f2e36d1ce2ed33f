package providers

import (
	"time"
	"unsafe"

	"github.com/coocood/freecache"

	"metricsdash/internal/structures"
)

type CacheProviderInterface interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
}

type CacheProvider struct {
	cache *freecache.Cache
}

// NewCacheProvider picks the configured byte backend. A disabled cache, or a
// memory cache of size zero, yields a noopCache.
func NewCacheProvider(conf *structures.Config, logger Logger) CacheProviderInterface {
	if !conf.Cache.Enabled {
		logger.Infof(TypeApp, "Cache disabled")
		return &noopCache{}
	}
	if conf.Cache.Backend == "redis" {
		logger.Infof(TypeApp, "Cache initialized: redis %s, TTL=%s", conf.Cache.Redis.Addr, conf.Cache.TTL)
		return NewRedisCacheProvider(conf.Cache.Redis, logger)
	}
	if conf.Cache.Size <= 0 {
		logger.Infof(TypeApp, "Cache disabled")
		return &noopCache{}
	}

	sizeBytes := conf.Cache.Size * 1024 * 1024
	logger.Infof(TypeApp, "Cache initialized: %dMB, TTL=%s", conf.Cache.Size, conf.Cache.TTL)
	return &CacheProvider{
		cache: freecache.NewCache(sizeBytes),
	}
}

// unsafeStringToBytes converts string to []byte without allocation.
// freecache copies keys internally, so the result is never written to.
func unsafeStringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func (c *CacheProvider) Get(key string) ([]byte, bool) {
	val, err := c.cache.Get(unsafeStringToBytes(key))
	if err != nil {
		return nil, false
	}
	return val, true
}

// Set stores value for ttl, rounded up to whole seconds. ttl <= 0 means no expiry.
func (c *CacheProvider) Set(key string, value []byte, ttl time.Duration) {
	seconds := 0
	if ttl > 0 {
		seconds = int((ttl + time.Second - 1) / time.Second)
	}
	_ = c.cache.Set(unsafeStringToBytes(key), value, seconds)
}

func (c *CacheProvider) EntryCount() int64 {
	return c.cache.EntryCount()
}

type noopCache struct{}

func (n *noopCache) Get(_ string) ([]byte, bool)             { return nil, false }
func (n *noopCache) Set(_ string, _ []byte, _ time.Duration) {}
