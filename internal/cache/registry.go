package cache

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Invalidator is the untyped side of a Cache.
type Invalidator interface {
	InvalidatePattern(pattern *regexp.Regexp) int
	Clear()
	Len() int
}

// Registry tracks the caches of a process by name so they can be
// invalidated together, typically on logout.
type Registry struct {
	mutex  sync.Mutex
	caches map[string]Invalidator
}

func NewRegistry() *Registry {
	return &Registry{caches: map[string]Invalidator{}}
}

// Register adds a cache under name, registering the same name twice
// replaces the previous cache.
func (r *Registry) Register(name string, cache Invalidator) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.caches[name] = cache
}

func (r *Registry) snapshot() []Invalidator {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	out := make([]Invalidator, 0, len(r.caches))
	for _, c := range r.caches {
		out = append(out, c)
	}
	return out
}

// InvalidatePattern invalidates pattern in every registered cache and
// returns the total number of removed entries.
func (r *Registry) InvalidatePattern(pattern *regexp.Regexp) int {
	removed := 0
	for _, c := range r.snapshot() {
		removed += c.InvalidatePattern(pattern)
	}
	return removed
}

func (r *Registry) Clear() {
	for _, c := range r.snapshot() {
		c.Clear()
	}
}

// Stats returns the entry count of every registered cache.
func (r *Registry) Stats() map[string]int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	out := make(map[string]int, len(r.caches))
	for name, c := range r.caches {
		out[name] = c.Len()
	}
	return out
}

// UserKey builds "<user>:<kind>[:<param>...]".
func UserKey(user, kind string, params ...string) string {
	parts := append([]string{user, kind}, params...)
	return strings.Join(parts, ":")
}

// UserPattern matches every key UserKey builds for user.
func UserPattern(user string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf("^%s:", regexp.QuoteMeta(user)))
}
