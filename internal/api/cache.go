package api

import (
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"
)

// MealCache caches meal query responses. Every Flush advances a generation
// counter so a load that overlapped a write can detect it and skip caching
// its result.
type MealCache struct {
	*cache.Cache
	generation atomic.Uint64
}

// NewMealCache creates the in-process cache for meal query responses.
// A ttl of zero or less uses DefaultCacheTTL.
func NewMealCache(ttl time.Duration) *MealCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &MealCache{Cache: cache.New(ttl, 2*ttl)}
}

// Generation returns the number of flushes so far.
func (mc *MealCache) Generation() uint64 {
	return mc.generation.Load()
}

// Flush drops all cached responses and invalidates loads in flight.
func (mc *MealCache) Flush() {
	mc.generation.Add(1)
	mc.Cache.Flush()
}

// SetIfCurrent stores v unless the cache was flushed after generation gen
// was observed. It reports whether v was stored.
func (mc *MealCache) SetIfCurrent(key string, v any, gen uint64) bool {
	if mc.generation.Load() != gen {
		return false
	}
	mc.Cache.Set(key, v, cache.DefaultExpiration)
	// a flush racing the Set above must not leave v behind
	if mc.generation.Load() != gen {
		mc.Cache.Delete(key)
		return false
	}
	return true
}
