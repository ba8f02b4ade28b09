package session

import (
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// cache memoizes loader results for the lifetime of a session. Concurrent
// lookups of the same key share one loader call.
type cache struct {
	mu     sync.RWMutex
	values map[string]any
	group  singleflight.Group
}

// CacheKey builds a memoization key from a function name and its arguments.
func CacheKey(fn string, args ...string) string {
	if len(args) == 0 {
		return fn
	}
	return fn + "." + strings.Join(args, ".")
}

// Memoize returns the cached value for key, calling loader at most once per
// session lifetime to produce it. Loader errors are not cached.
func (s *Session) Memoize(key string, loader func() (any, error)) (any, error) {
	s.cache.mu.RLock()
	value, ok := s.cache.values[key]
	s.cache.mu.RUnlock()
	if ok {
		return value, nil
	}

	value, err, _ := s.cache.group.Do(key, func() (any, error) {
		s.cache.mu.RLock()
		value, ok := s.cache.values[key]
		s.cache.mu.RUnlock()
		if ok {
			return value, nil
		}
		value, err := loader()
		if err != nil {
			return nil, err
		}
		s.cache.mu.Lock()
		if s.cache.values == nil {
			s.cache.values = make(map[string]any)
		}
		s.cache.values[key] = value
		s.cache.mu.Unlock()
		return value, nil
	})
	return value, err
}

// Refresh drops every memoized value so the next lookups recompute.
func (s *Session) Refresh() {
	s.cache.clear()
}

func (c *cache) clear() {
	c.mu.Lock()
	c.values = nil
	c.mu.Unlock()
}
