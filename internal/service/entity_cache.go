package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// =============================================================================
// Constants
// =============================================================================

const (
	entityCachePrefix = "cache:"

	// Cached entity kinds
	CacheKindDoctor          = "doctor"
	CacheKindVerifiedDoctors = "verified_doctors"
	CacheKindAvailability    = "availability"
	CacheKindRatingSummary   = "rating_summary"

	mutexCleanupInterval = 10 * time.Minute
	mutexStaleThreshold  = 10 * time.Minute
)

// =============================================================================
// Types
// =============================================================================

// EntityCache is a read-through JSON cache keyed by (kind, id).
type EntityCache interface {
	Fetch(ctx context.Context, kind, id string, load func(ctx context.Context) (interface{}, error)) ([]byte, error)
	Invalidate(ctx context.Context, kind string, ids ...string)
}

// RedisEntityCache implements EntityCache on Redis.
//
// A miss loads the value under a per-key mutex so concurrent readers of the
// same key hit the loader once. Writers call Invalidate after the database
// write commits. Redis failures degrade to direct loads.
type RedisEntityCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Logger

	keyMu sync.Map // map[string]*mutexWithTimestamp

	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

// mutexWithTimestamp tracks mutex usage for cleanup
type mutexWithTimestamp struct {
	mu       sync.Mutex
	lastUsed atomic.Int64 // Unix timestamp
}

// NewEntityCache starts the background mutex cleanup. Call Stop on shutdown.
func NewEntityCache(client *redis.Client, ttl time.Duration, log *logrus.Logger) *RedisEntityCache {
	c := &RedisEntityCache{
		client:   client,
		ttl:      ttl,
		log:      log,
		stopChan: make(chan struct{}),
	}

	c.wg.Add(1)
	go c.cleanupMutexMapLoop()

	return c
}

// Stop is safe to call multiple times.
func (c *RedisEntityCache) Stop() {
	if c.stopped.CompareAndSwap(false, true) {
		close(c.stopChan)
		c.wg.Wait()
		c.log.Info("RedisEntityCache stopped")
	}
}

// =============================================================================
// Public Methods
// =============================================================================

// Fetch returns the cached JSON for (kind, id), calling load on a miss and
// caching its result.
func (c *RedisEntityCache) Fetch(ctx context.Context, kind, id string, load func(ctx context.Context) (interface{}, error)) ([]byte, error) {
	key := cacheKey(kind, id)

	if raw, ok := c.get(ctx, key); ok {
		return raw, nil
	}

	mt := c.getKeyMutex(key)
	mt.mu.Lock()
	defer mt.mu.Unlock()

	// Another reader may have filled it while we waited
	if raw, ok := c.get(ctx, key); ok {
		return raw, nil
	}

	value, err := load(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warnf("Failed to cache %s: %+v", key, err)
	}

	return raw, nil
}

// Invalidate drops the cached entries for kind and each id.
func (c *RedisEntityCache) Invalidate(ctx context.Context, kind string, ids ...string) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, cacheKey(kind, id))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warnf("Failed to invalidate %v: %+v", keys, err)
	}
}

// CachedFetch is the typed form of EntityCache.Fetch.
func CachedFetch[T any](ctx context.Context, c EntityCache, kind, id string, load func(ctx context.Context) (T, error)) (T, error) {
	var out T
	raw, err := c.Fetch(ctx, kind, id, func(ctx context.Context) (interface{}, error) {
		return load(ctx)
	})
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", cacheKey(kind, id), err)
	}
	return out, nil
}

// =============================================================================
// Private Helper Methods
// =============================================================================

func cacheKey(kind, id string) string {
	return entityCachePrefix + kind + ":" + id
}

func (c *RedisEntityCache) get(ctx context.Context, key string) ([]byte, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warnf("Failed to read cache %s: %+v", key, err)
		}
		return nil, false
	}
	return raw, true
}

func (c *RedisEntityCache) getKeyMutex(key string) *mutexWithTimestamp {
	mt, _ := c.keyMu.LoadOrStore(key, &mutexWithTimestamp{})
	result := mt.(*mutexWithTimestamp)
	result.lastUsed.Store(time.Now().Unix())
	return result
}

func (c *RedisEntityCache) cleanupMutexMapLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(mutexCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanupStaleMutexes()
		}
	}
}

// cleanupStaleMutexes checks lastUsed while holding the lock so a concurrent
// getKeyMutex cannot be dropped mid-use.
func (c *RedisEntityCache) cleanupStaleMutexes() {
	cutoffTime := time.Now().Add(-mutexStaleThreshold).Unix()
	var cleaned int

	c.keyMu.Range(func(key, value any) bool {
		mt, ok := value.(*mutexWithTimestamp)
		if !ok {
			return true
		}

		if mt.mu.TryLock() {
			if mt.lastUsed.Load() < cutoffTime {
				c.keyMu.Delete(key)
				cleaned++
			}
			mt.mu.Unlock()
		}
		return true
	})

	if cleaned > 0 {
		c.log.Debugf("Cleaned up %d stale cache mutexes", cleaned)
	}
}
