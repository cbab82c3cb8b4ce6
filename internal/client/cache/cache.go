// Package cache tracks the last entity tag and payload the server returned
// for each resource key. Entries are only ever written from server
// responses, never from pending local edits.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/iudanet/garageboard/internal/client/storage"
)

// DefaultTTL is used when New receives a non-positive ttl.
const DefaultTTL = 10 * time.Minute

// Entry is the cached state of one resource.
type Entry struct {
	Timestamp time.Time       // Timestamp момент получения ответа сервера
	Token     string          // Token последний ETag, как его вернул сервер
	Payload   json.RawMessage // Payload тело последнего ответа
}

// Key builds the cache key of a resource, e.g. Key("vehicles", "v1").
func Key(resource, id string) string {
	return resource + "/" + id
}

// Cache is a process-wide map of resource key to Entry with TTL eviction.
// An optional storage backend makes entries survive restarts; backend
// failures are logged and otherwise ignored.
type Cache struct {
	backend storage.CacheStorage
	entries map[string]Entry
	logger  *slog.Logger
	now     func() time.Time
	ttl     time.Duration
	mu      sync.Mutex
}

// New creates a cache. backend may be nil.
func New(ttl time.Duration, backend storage.CacheStorage, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		backend: backend,
		entries: make(map[string]Entry),
		logger:  logger,
		now:     time.Now,
		ttl:     ttl,
	}
}

// Get returns the live entry for key. Expired entries are evicted and
// reported as missing.
func (c *Cache) Get(ctx context.Context, key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		if c.expired(e) {
			c.evictLocked(ctx, key)
			return Entry{}, false
		}
		return e, true
	}

	if c.backend == nil {
		return Entry{}, false
	}

	stored, err := c.backend.GetEntry(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrEntryNotFound) {
			c.logger.Warn("Failed to read cache entry", "key", key, "error", err)
		}
		return Entry{}, false
	}

	e := Entry{Timestamp: stored.Timestamp, Token: stored.Token, Payload: stored.Payload}
	if c.expired(e) {
		c.evictLocked(ctx, key)
		return Entry{}, false
	}
	c.entries[key] = e
	return e, true
}

// Token returns the cached entity tag for key or "" when none is known.
func (c *Cache) Token(ctx context.Context, key string) string {
	e, ok := c.Get(ctx, key)
	if !ok {
		return ""
	}
	return e.Token
}

// Observe records a server response for key. Call it only with values
// that came from the server.
func (c *Cache) Observe(ctx context.Context, key, token string, payload json.RawMessage) Entry {
	e := Entry{
		Timestamp: c.now(),
		Token:     token,
		Payload:   append(json.RawMessage(nil), payload...),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = e
	if c.backend != nil {
		stored := &storage.CacheEntry{Timestamp: e.Timestamp, Token: e.Token, Payload: e.Payload}
		if err := c.backend.SaveEntry(ctx, key, stored); err != nil {
			c.logger.Warn("Failed to persist cache entry", "key", key, "error", err)
		}
	}

	c.logger.Debug("Cache entry observed", "key", key, "token", token)
	return e
}

// Invalidate drops key from memory and from the backend.
func (c *Cache) Invalidate(ctx context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evictLocked(ctx, key)
}

// Purge evicts every expired entry and returns how many in-memory
// entries were removed.
func (c *Cache) Purge(ctx context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if c.expired(e) {
			delete(c.entries, key)
			removed++
		}
	}

	if c.backend != nil {
		n, err := c.backend.DeleteEntriesBefore(ctx, c.now().Add(-c.ttl))
		if err != nil {
			c.logger.Warn("Failed to purge persisted cache", "error", err)
		} else if n > 0 {
			c.logger.Debug("Persisted cache purged", "removed", n)
		}
	}

	return removed
}

// Len returns the number of entries held in memory.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) expired(e Entry) bool {
	return c.now().Sub(e.Timestamp) > c.ttl
}

func (c *Cache) evictLocked(ctx context.Context, key string) {
	delete(c.entries, key)
	if c.backend == nil {
		return
	}
	if err := c.backend.DeleteEntry(ctx, key); err != nil {
		c.logger.Warn("Failed to delete cache entry", "key", key, "error", err)
	}
}
