// Package cache remembers which source digest produced each output so
// unchanged logos can be skipped on the next run.
package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// kv is the part of redis.UniversalClient the digest cache needs.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

type pingKV interface {
	kv
	Ping(ctx context.Context) *redis.StatusCmd
}

type DigestCache interface {
	Digest(ctx context.Context, key string) (string, bool, error)
	Remember(ctx context.Context, key, digest string) error
}

// Connect returns a redis-backed cache, or a MemoryDigestCache when client
// does not answer a ping.
func Connect(ctx context.Context, client redis.UniversalClient, keyPrefix string, ttl time.Duration, logger *log.Logger) (DigestCache, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return connect(ctx, client, keyPrefix, ttl, logger), nil
}

func connect(ctx context.Context, client pingKV, keyPrefix string, ttl time.Duration, logger *log.Logger) DigestCache {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Printf("digest cache unreachable, keeping digests in memory err=%v", err)
		return NewMemoryDigestCache()
	}
	return newRedisDigestCache(client, keyPrefix, ttl)
}

type RedisDigestCache struct {
	client    kv
	keyPrefix string
	ttl       time.Duration
}

// NewRedisDigestCache stores digests under keyPrefix. A ttl of zero keeps
// entries until they are overwritten.
func NewRedisDigestCache(client redis.UniversalClient, keyPrefix string, ttl time.Duration) (*RedisDigestCache, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return newRedisDigestCache(client, keyPrefix, ttl), nil
}

func newRedisDigestCache(client kv, keyPrefix string, ttl time.Duration) *RedisDigestCache {
	if strings.TrimSpace(keyPrefix) == "" {
		keyPrefix = "avatarforge:digest"
	}
	if ttl < 0 {
		ttl = 0
	}
	return &RedisDigestCache{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (c *RedisDigestCache) key(name string) string {
	return fmt.Sprintf("%s:%s", c.keyPrefix, name)
}

func (c *RedisDigestCache) Digest(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, c.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get digest: %w", err)
	}
	return value, true, nil
}

func (c *RedisDigestCache) Remember(ctx context.Context, key, digest string) error {
	if err := c.client.Set(ctx, c.key(key), digest, c.ttl).Err(); err != nil {
		return fmt.Errorf("set digest: %w", err)
	}
	return nil
}

// MemoryDigestCache keeps digests for the lifetime of the process. Connect
// falls back to it when redis is down.
type MemoryDigestCache struct {
	mu      sync.RWMutex
	digests map[string]string
}

func NewMemoryDigestCache() *MemoryDigestCache {
	return &MemoryDigestCache{digests: make(map[string]string)}
}

func (c *MemoryDigestCache) Digest(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	digest, ok := c.digests[key]
	return digest, ok, nil
}

func (c *MemoryDigestCache) Remember(_ context.Context, key, digest string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.digests[key] = digest
	return nil
}
