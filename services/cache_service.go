package services

import (
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
	"github.com/sirupsen/logrus"
)

// CacheStats is a snapshot of cache counters
type CacheStats struct {
	Name       string `json:"name"`
	Size       int    `json:"size"`
	MaxSize    int    `json:"max_size"`
	TTLSeconds int64  `json:"ttl_seconds"`
	Hits       int64  `json:"hits"`
	Misses     int64  `json:"misses"`
	Evictions  int64  `json:"evictions"`
	Expired    int64  `json:"expired"`
}

type cacheEntry struct {
	data      interface{}
	expiresAt time.Time
}

func (e *cacheEntry) isExpired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// CacheService is a capacity-limited least-recently-used cache with per-entry TTL.
// It is safe for concurrent use. Concurrent misses for the same key are not coalesced.
type CacheService struct {
	name       string
	mutex      sync.Mutex
	lru        *lru.Cache
	expiries   map[string]time.Time
	defaultTTL time.Duration
	maxSize    int
	hits       int64
	misses     int64
	evictions  int64
	expired    int64
	now        func() time.Time
}

// NewCacheService creates a cache holding at most maxSize entries
func NewCacheService(name string, defaultTTL time.Duration, maxSize int) *CacheService {
	if maxSize <= 0 {
		maxSize = 1000
	}
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}

	cs := &CacheService{
		name:       name,
		expiries:   make(map[string]time.Time),
		defaultTTL: defaultTTL,
		maxSize:    maxSize,
		now:        time.Now,
	}
	cs.lru = lru.New(maxSize)
	cs.lru.OnEvicted = cs.onEvicted
	return cs
}

// onEvicted runs under cs.mutex for every removal, whether capacity eviction or explicit delete
func (cs *CacheService) onEvicted(key lru.Key, _ interface{}) {
	if k, ok := key.(string); ok {
		delete(cs.expiries, k)
	}
}

// Get retrieves a value and marks it most recently used
func (cs *CacheService) Get(key string) (interface{}, bool) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	value, ok := cs.lru.Get(key)
	if !ok {
		cs.misses++
		return nil, false
	}

	entry := value.(*cacheEntry)
	if entry.isExpired(cs.now()) {
		cs.lru.Remove(key)
		cs.expired++
		cs.misses++
		return nil, false
	}

	cs.hits++
	return entry.data, true
}

// Set stores a value with the default TTL
func (cs *CacheService) Set(key string, value interface{}) {
	cs.SetWithTTL(key, value, cs.defaultTTL)
}

// SetWithTTL stores a value with a custom TTL, evicting the least recently used entry when full
func (cs *CacheService) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	if _, exists := cs.expiries[key]; !exists && cs.lru.Len() >= cs.maxSize {
		cs.evictions++
	}

	expiresAt := cs.now().Add(ttl)
	cs.lru.Add(key, &cacheEntry{data: value, expiresAt: expiresAt})
	cs.expiries[key] = expiresAt
}

// Delete removes a value from cache
func (cs *CacheService) Delete(key string) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	cs.lru.Remove(key)
}

// Clear removes all values from cache
func (cs *CacheService) Clear() {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	cs.lru.Clear()
	cs.expiries = make(map[string]time.Time)
}

// Size returns the number of items in cache
func (cs *CacheService) Size() int {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	return cs.lru.Len()
}

// PurgeExpired removes every expired entry and returns how many were dropped
func (cs *CacheService) PurgeExpired() int {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	now := cs.now()
	var stale []string
	for key, expiresAt := range cs.expiries {
		if now.After(expiresAt) {
			stale = append(stale, key)
		}
	}
	for _, key := range stale {
		cs.lru.Remove(key)
	}
	cs.expired += int64(len(stale))

	if len(stale) > 0 {
		logrus.WithFields(logrus.Fields{
			"component": "CacheService",
			"cache":     cs.name,
			"purged":    len(stale),
			"remaining": cs.lru.Len(),
		}).Debug("Purged expired cache entries")
	}
	return len(stale)
}

// Stats returns the cache counters
func (cs *CacheService) Stats() CacheStats {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	return CacheStats{
		Name:       cs.name,
		Size:       cs.lru.Len(),
		MaxSize:    cs.maxSize,
		TTLSeconds: int64(cs.defaultTTL / time.Second),
		Hits:       cs.hits,
		Misses:     cs.misses,
		Evictions:  cs.evictions,
		Expired:    cs.expired,
	}
}
