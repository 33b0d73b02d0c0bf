package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"luxetravel/metrics"
)

// UserScopedPrefix marks keys that hold user data. Entries under this prefix
// are dropped on session teardown; everything else is reference data and
// survives logout.
const UserScopedPrefix = "user:"

// Recommended TTLs for the reference-data key classes.
const (
	BusesTTL  = 2 * time.Hour
	CitiesTTL = 24 * time.Hour
)

type entry struct {
	payload  any
	storedAt time.Time
	ttl      time.Duration
}

func (e entry) stale(now time.Time) bool {
	return now.Sub(e.storedAt) >= e.ttl
}

// Cache is a read-through response cache. On miss or stale entry the fetch
// function is invoked and the result stored; fetch failures leave the cache
// unmodified. Writes replace whole entries, so concurrent reads are safe.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry

	group   singleflight.Group
	now     func() time.Time
	persist Persistence
	log     *logrus.Entry
}

type Option func(*Cache)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithPersistence snapshots reference-data entries to an external key-value
// store so they survive process restarts.
func WithPersistence(p Persistence) Option {
	return func(c *Cache) { c.persist = p }
}

func New(opts ...Option) *Cache {
	c := &Cache{
		entries: map[string]entry{},
		now:     time.Now,
		log:     logrus.WithField("component", "cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrFetch returns the cached payload for key when present and fresh,
// otherwise invokes fetch, stores the result and returns it. Concurrent
// callers for the same key share a single fetch.
func GetOrFetch[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	if payload, ok := c.lookup(key); ok {
		if typed, ok := payload.(T); ok {
			metrics.CacheRequests.WithLabelValues("hit").Inc()
			return typed, nil
		}
		var zero T
		return zero, fmt.Errorf("cache key %q holds %T, want %T", key, payload, zero)
	}

	metrics.CacheRequests.WithLabelValues("miss").Inc()

	v, err, _ := c.group.Do(key, func() (any, error) {
		// Re-check: another flight may have filled the entry while this
		// caller was waiting for the group lock.
		if payload, ok := c.lookup(key); ok {
			return payload, nil
		}

		payload, err := c.loadPersisted(ctx, key, ttl, func(data []byte) (any, error) {
			var v T
			err := json.Unmarshal(data, &v)
			return v, err
		})
		if err == nil {
			return payload, nil
		}

		fetched, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.store(ctx, key, fetched, ttl)
		return fetched, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cache key %q holds %T, want %T", key, v, zero)
	}
	return typed, nil
}

func (c *Cache) lookup(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || e.stale(c.now()) {
		return nil, false
	}
	return e.payload, true
}

func (c *Cache) store(ctx context.Context, key string, payload any, ttl time.Duration) {
	now := c.now()
	c.mu.Lock()
	c.entries[key] = entry{payload: payload, storedAt: now, ttl: ttl}
	c.mu.Unlock()

	if c.persist != nil && !strings.HasPrefix(key, UserScopedPrefix) {
		if err := c.persist.Store(ctx, key, payload, ttl); err != nil {
			c.log.WithError(err).WithField("key", key).Warn("failed to persist cache entry")
		}
	}
}

// loadPersisted restores a reference-data entry from the persistence layer.
// Returns ErrNoSnapshot-like error when nothing usable is stored.
func (c *Cache) loadPersisted(ctx context.Context, key string, ttl time.Duration, decode func([]byte) (any, error)) (any, error) {
	if c.persist == nil || strings.HasPrefix(key, UserScopedPrefix) {
		return nil, errNoSnapshot
	}
	data, err := c.persist.Load(ctx, key)
	if err != nil {
		return nil, errNoSnapshot
	}
	payload, err := decode(data)
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("discarding undecodable cache snapshot")
		return nil, errNoSnapshot
	}

	now := c.now()
	c.mu.Lock()
	c.entries[key] = entry{payload: payload, storedAt: now, ttl: ttl}
	c.mu.Unlock()
	return payload, nil
}

// Invalidate drops a single entry.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()

	if c.persist != nil {
		if err := c.persist.Delete(context.Background(), key); err != nil {
			c.log.WithError(err).WithField("key", key).Warn("failed to delete persisted cache entry")
		}
	}
}

// ClearUserScoped drops entries under the user-scoped prefix and keeps
// reference data. Used by the session lifecycle manager on teardown.
func (c *Cache) ClearUserScoped() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, UserScopedPrefix) {
			delete(c.entries, key)
		}
	}
}

// Clear drops everything, reference data included.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = map[string]entry{}
	c.mu.Unlock()
}
