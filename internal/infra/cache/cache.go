// Package cache provides a bounded in-memory TTL cache.
// Entries expire after the TTL and the least recently used entry is
// evicted once the size limit is reached.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// InMemory is a thread-safe in-memory cache with TTL and LRU eviction.
type InMemory[T any] struct {
	lru *expirable.LRU[string, T]
}

// New creates a new in-memory cache with the given TTL and max size.
// A size of 0 means unbounded.
func New[T any](ttl time.Duration, size int) *InMemory[T] {
	return &InMemory[T]{lru: expirable.NewLRU[string, T](size, nil, ttl)}
}

// Get retrieves a value from the cache. Returns false if not found or expired.
func (c *InMemory[T]) Get(key string) (T, bool) {
	return c.lru.Get(key)
}

// Set stores a value in the cache with the configured TTL.
func (c *InMemory[T]) Set(key string, value T) {
	c.lru.Add(key, value)
}

// Delete removes a value from the cache.
func (c *InMemory[T]) Delete(key string) {
	c.lru.Remove(key)
}

// Len returns the number of live entries.
func (c *InMemory[T]) Len() int {
	return c.lru.Len()
}
