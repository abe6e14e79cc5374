package rate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/redis/go-redis/v9"
)

// Counter is a fixed-window counter store.
type Counter interface {
	// Incr adds one to key and returns the new count. The first hit starts a window of ttl.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Get(ctx context.Context, key string) (int64, error)
	Del(ctx context.Context, keys ...string) error
}

// RedisCounter keeps counters in Redis.
type RedisCounter struct {
	redis  redis.UniversalClient
	prefix string
}

func NewRedisCounter(client redis.UniversalClient) *RedisCounter {
	return &RedisCounter{redis: client}
}

// WithPrefix namespaces every key under prefix.
func (c *RedisCounter) WithPrefix(prefix string) *RedisCounter {
	return &RedisCounter{redis: c.redis, prefix: prefix}
}

func (c *RedisCounter) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	key = c.prefix + key
	count, err := c.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if count == 1 {
		if err := c.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
	}
	return count, nil
}

func (c *RedisCounter) Get(ctx context.Context, key string) (int64, error) {
	count, err := c.redis.Get(ctx, c.prefix+key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return count, nil
}

func (c *RedisCounter) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = c.prefix + k
	}
	if err := c.redis.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}

type window struct {
	count   int64
	expires time.Time
}

// MemoryCounter keeps counters in a process-local ttlcache.
type MemoryCounter struct {
	mu    sync.Mutex
	cache *ttlcache.Cache[string, window]
	now   func() time.Time
}

// NewMemoryCounter starts the cache's expiry loop; call Close to stop it.
func NewMemoryCounter() *MemoryCounter {
	cache := ttlcache.New(
		ttlcache.WithDisableTouchOnHit[string, window](),
	)
	go cache.Start()

	return &MemoryCounter{cache: cache, now: time.Now}
}

func (c *MemoryCounter) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	w := window{count: 1, expires: now.Add(ttl)}
	if item := c.cache.Get(key); item != nil && item.Value().expires.After(now) {
		w = item.Value()
		w.count++
	}
	c.cache.Set(key, w, w.expires.Sub(now))
	return w.count, nil
}

func (c *MemoryCounter) Get(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := c.cache.Get(key)
	if item == nil || !item.Value().expires.After(c.now()) {
		return 0, nil
	}
	return item.Value().count, nil
}

func (c *MemoryCounter) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, k := range keys {
		c.cache.Delete(k)
	}
	return nil
}

// Close stops the expiry loop.
func (c *MemoryCounter) Close() error {
	c.cache.Stop()
	return nil
}
