// Package cache holds extracted portal data in memory for a bounded time so
// repeated reads within a request burst do not hit the portal again.
package cache

import (
	"regexp"
	"sync"
	"time"
	"vtopassist-backend/internal/components/assert"
	"vtopassist-backend/internal/components/chrono"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

const (
	TTLShort    = 5 * time.Minute
	TTLMedium   = 15 * time.Minute
	TTLLong     = time.Hour
	TTLExtended = 24 * time.Hour
)

// DefaultSize is the entry bound used when a cache is created with size <= 0.
const DefaultSize = 1000

type entry[V any] struct {
	value      V
	expiresAt  time.Time
	lastAccess time.Time
}

// Cache is a bounded key/value store where every entry expires on its own
// schedule. When full, expired entries are dropped first and then the least
// recently accessed one.
type Cache[V any] struct {
	mutex      sync.Mutex
	lru        *simplelru.LRU[string, *entry[V]]
	size       int
	defaultTTL time.Duration
	time       chrono.TimeAPI
}

// New creates a cache holding at most size entries whose entries live for
// defaultTTL unless Set says otherwise.
func New[V any](size int, defaultTTL time.Duration, time chrono.TimeAPI) *Cache[V] {
	assert.NotNil(time)
	if size <= 0 {
		size = DefaultSize
	}
	if defaultTTL <= 0 {
		defaultTTL = TTLMedium
	}
	// eviction is driven by Set, the lru's own eviction never triggers
	lru, err := simplelru.NewLRU[string, *entry[V]](size+1, nil)
	if err != nil {
		panic(err)
	}
	return &Cache[V]{
		lru:        lru,
		size:       size,
		defaultTTL: defaultTTL,
		time:       time,
	}
}

// Get returns the value under key. An expired entry is removed and reported
// as a miss.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var zero V
	e, ok := c.lru.Get(key)
	if !ok {
		return zero, false
	}
	now := c.time.Now()
	if !now.Before(e.expiresAt) {
		c.lru.Remove(key)
		return zero, false
	}
	e.lastAccess = now
	return e.value, true
}

// Set stores value under key for ttl, or the cache's default ttl when none
// is given.
func (c *Cache[V]) Set(key string, value V, ttl ...time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	lifetime := c.defaultTTL
	if len(ttl) > 0 && ttl[0] > 0 {
		lifetime = ttl[0]
	}
	now := c.time.Now()

	if !c.lru.Contains(key) && c.lru.Len() >= c.size {
		c.purgeExpired(now)
		for c.lru.Len() >= c.size {
			c.lru.RemoveOldest()
		}
	}
	c.lru.Add(key, &entry[V]{
		value:      value,
		expiresAt:  now.Add(lifetime),
		lastAccess: now,
	})
}

// purgeExpired must be called with the mutex held.
func (c *Cache[V]) purgeExpired(now time.Time) int {
	removed := 0
	for _, key := range c.lru.Keys() {
		e, ok := c.lru.Peek(key)
		if ok && !now.Before(e.expiresAt) {
			c.lru.Remove(key)
			removed++
		}
	}
	return removed
}

// Delete removes key, it reports whether the key was present.
func (c *Cache[V]) Delete(key string) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.lru.Remove(key)
}

// InvalidatePattern removes every key matching pattern and returns how many
// were removed.
func (c *Cache[V]) InvalidatePattern(pattern *regexp.Regexp) int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	removed := 0
	for _, key := range c.lru.Keys() {
		if pattern.MatchString(key) {
			c.lru.Remove(key)
			removed++
		}
	}
	return removed
}

// PurgeExpired drops every expired entry.
func (c *Cache[V]) PurgeExpired() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.purgeExpired(c.time.Now())
}

func (c *Cache[V]) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.lru.Purge()
}

// Len counts stored entries, expired ones that were not yet collected
// included.
func (c *Cache[V]) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.lru.Len()
}
