// Package cache provides response caching for the recommendation API, with
// in-memory and Redis drivers.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// ErrCacheMiss indicates a cache miss.
var ErrCacheMiss = errors.New("cache miss")

// Client defines the cache interface.
type Client interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	Close() error
}

// RequestKey derives a deterministic cache key for a recommendation request.
func RequestKey(query, roadType, environment string, topK int, minScore float64) string {
	combined := strings.Join([]string{
		query,
		roadType,
		environment,
		fmt.Sprintf("k=%d", topK),
		fmt.Sprintf("m=%.4f", minScore),
	}, "|")
	sum := sha256.Sum256([]byte(combined))
	return "rec:" + hex.EncodeToString(sum[:16])
}

// MemoryClient implements an in-memory cache for development and tests.
type MemoryClient struct {
	mu      sync.RWMutex
	data    map[string]memoryEntry
	maxSize int
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryClient creates a new in-memory cache client.
func NewMemoryClient(maxSize int) *MemoryClient {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &MemoryClient{
		data:    make(map[string]memoryEntry),
		maxSize: maxSize,
	}
}

// Get retrieves a value from cache.
func (c *MemoryClient) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.data[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, ErrCacheMiss
	}
	return entry.value, nil
}

// Set stores a value with a TTL, evicting the entry closest to expiry when
// the cache is full.
func (c *MemoryClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.data) >= c.maxSize {
		c.evictOldest()
	}
	c.data[key] = memoryEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Delete removes a value from cache.
func (c *MemoryClient) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.data, key)
	return nil
}

// DeleteByPrefix removes all keys with the given prefix.
func (c *MemoryClient) DeleteByPrefix(ctx context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.data {
		if strings.HasPrefix(key, prefix) {
			delete(c.data, key)
		}
	}
	return nil
}

// Close is a no-op for memory cache.
func (c *MemoryClient) Close() error {
	return nil
}

func (c *MemoryClient) evictOldest() {
	var oldestKey string
	var oldestTime time.Time
	for key, entry := range c.data {
		if oldestKey == "" || entry.expiresAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.expiresAt
		}
	}
	if oldestKey != "" {
		delete(c.data, oldestKey)
	}
}
