package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
	"vtopassist-backend/internal/components/chrono"

	"github.com/stretchr/testify/require"
)

func newTestCache(size int) (*Cache[string], *chrono.ManualTime) {
	clock := chrono.NewManualTime(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	return New[string](size, TTLMedium, clock), clock
}

func TestGetSet(t *testing.T) {
	c, _ := newTestCache(4)

	_, ok := c.Get("missing")
	require.False(t, ok)

	c.Set("a", "1")
	v, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, "1", v)

	c.Set("a", "2")
	v, _ = c.Get("a")
	require.Equal(t, "2", v)
	require.Equal(t, 1, c.Len())

	require.True(t, c.Delete("a"))
	require.False(t, c.Delete("a"))
}

func TestExpiry(t *testing.T) {
	c, clock := newTestCache(4)

	c.Set("short", "x", TTLShort)
	c.Set("default", "y")

	clock.Advance(TTLShort - time.Second)
	_, ok := c.Get("short")
	require.True(t, ok)

	clock.Advance(time.Second)
	_, ok = c.Get("short")
	require.False(t, ok)
	// expired entries are removed on read
	require.Equal(t, 1, c.Len())

	clock.Advance(TTLMedium)
	_, ok = c.Get("default")
	require.False(t, ok)
	require.Zero(t, c.Len())
}

func TestEvictionBound(t *testing.T) {
	c, _ := newTestCache(3)
	for i := 0; i < 10; i++ {
		c.Set(fmt.Sprint(i), "v")
		require.LessOrEqual(t, c.Len(), 3)
	}
	for _, key := range []string{"7", "8", "9"} {
		_, ok := c.Get(key)
		require.True(t, ok, key)
	}
}

func TestEvictsLeastRecentlyAccessed(t *testing.T) {
	c, _ := newTestCache(3)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("c", "3")

	_, ok := c.Get("a")
	require.True(t, ok)

	c.Set("d", "4")
	_, ok = c.Get("b")
	require.False(t, ok)
	for _, key := range []string{"a", "c", "d"} {
		_, ok := c.Get(key)
		require.True(t, ok, key)
	}
}

func TestFullCachePurgesExpiredFirst(t *testing.T) {
	c, clock := newTestCache(3)
	c.Set("old", "1")
	c.Set("expiring", "2", TTLShort)
	c.Set("fresh", "3")

	clock.Advance(TTLShort)
	c.Set("new", "4")

	// "old" was the least recently used entry but "expiring" was expired
	for _, key := range []string{"old", "fresh", "new"} {
		_, ok := c.Get(key)
		require.True(t, ok, key)
	}
	require.Equal(t, 3, c.Len())
}

func TestInvalidatePattern(t *testing.T) {
	c, _ := newTestCache(10)
	c.Set(UserKey("21BCE1234", "attendance", "VL1"), "a")
	c.Set(UserKey("21BCE1234", "profile"), "p")
	c.Set(UserKey("21BCE12345", "profile"), "other")

	removed := c.InvalidatePattern(UserPattern("21BCE1234"))
	require.Equal(t, 2, removed)

	_, ok := c.Get("21BCE12345:profile")
	require.True(t, ok)
}

func TestPurgeExpiredAndClear(t *testing.T) {
	c, clock := newTestCache(10)
	c.Set("a", "1", TTLShort)
	c.Set("b", "2", TTLLong)
	clock.Advance(TTLMedium)
	require.Equal(t, 1, c.PurgeExpired())
	require.Equal(t, 1, c.Len())
	c.Clear()
	require.Zero(t, c.Len())
}

func TestConcurrentAccess(t *testing.T) {
	c, _ := newTestCache(50)
	wg := sync.WaitGroup{}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := fmt.Sprintf("%d:%d", i, j%20)
				c.Set(key, "v")
				c.Get(key)
				if j%50 == 0 {
					c.InvalidatePattern(UserPattern(fmt.Sprint(i)))
				}
			}
		}()
	}
	wg.Wait()
	require.LessOrEqual(t, c.Len(), 50)
}

func TestUserKey(t *testing.T) {
	require.Equal(t, "21BCE1234:marks:VL1", UserKey("21BCE1234", "marks", "VL1"))
	require.Equal(t, "21BCE1234:profile", UserKey("21BCE1234", "profile"))
	require.True(t, UserPattern("a.b").MatchString("a.b:x"))
	require.False(t, UserPattern("a.b").MatchString("axb:x"))
}

func TestRegistry(t *testing.T) {
	attendance, _ := newTestCache(10)
	profiles := New[int](10, TTLLong, chrono.NewStandardTime())

	registry := NewRegistry()
	registry.Register("attendance", attendance)
	registry.Register("profile", profiles)

	attendance.Set(UserKey("u1", "attendance", "s"), "x")
	profiles.Set(UserKey("u1", "profile"), 1)
	profiles.Set(UserKey("u2", "profile"), 2)

	require.Equal(t, map[string]int{"attendance": 1, "profile": 2}, registry.Stats())
	require.Equal(t, 2, registry.InvalidatePattern(UserPattern("u1")))
	registry.Clear()
	require.Equal(t, map[string]int{"attendance": 0, "profile": 0}, registry.Stats())
}
