package local

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("cache: key not found")

const defaultGCInterval = 30 * time.Second

// Config holds LocalCache settings. Now defaults to time.Now.
type Config struct {
	GCInterval time.Duration
	Now        func() time.Time
}

type entry struct {
	value    string
	expireAt time.Time // zero: never expires
}

func (e entry) expiredAt(now time.Time) bool {
	return !e.expireAt.IsZero() && !now.Before(e.expireAt)
}

// LocalCache keeps sessions in process memory. It is used when no Redis is
// configured and in tests; entries do not survive a restart.
type LocalCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time

	stop      chan struct{}
	closeOnce sync.Once
}

// NewCache creates a LocalCache and starts its expiry sweeper.
func NewCache(cfg Config) (*LocalCache, error) {
	interval := cfg.GCInterval
	if interval <= 0 {
		interval = defaultGCInterval
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	c := &LocalCache{
		entries: make(map[string]entry),
		now:     now,
		stop:    make(chan struct{}),
	}
	go c.sweepEvery(interval)
	return c, nil
}

// Close stops the sweeper. It is safe to call more than once.
func (c *LocalCache) Close() {
	c.closeOnce.Do(func() { close(c.stop) })
}

func (c *LocalCache) sweepEvery(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stop:
			return
		}
	}
}

// sweep drops every expired entry and reports how many went.
func (c *LocalCache) sweep() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, e := range c.entries {
		if e.expiredAt(now) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Len returns the number of stored entries, expired ones included until the
// next sweep.
func (c *LocalCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *LocalCache) lookup(key string) (entry, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || e.expiredAt(c.now()) {
		return entry{}, false
	}
	return e, true
}

func (c *LocalCache) Get(_ context.Context, key string) (string, error) {
	e, ok := c.lookup(key)
	if !ok {
		return "", ErrNotFound
	}
	return e.value, nil
}

// Set stores value; a non-positive ttl keeps the key until deleted.
func (c *LocalCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	e := entry{value: value}
	if ttl > 0 {
		e.expireAt = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

func (c *LocalCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	c.mu.Unlock()
	return nil
}

func (c *LocalCache) Exists(_ context.Context, key string) (bool, error) {
	_, ok := c.lookup(key)
	return ok, nil
}
