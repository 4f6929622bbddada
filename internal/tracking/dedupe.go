package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// DedupeStore remembers events for a while. Claim reports whether key was
// new, recording it if so. Release forgets a claim whose event was never
// delivered.
type DedupeStore interface {
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// MemoryStore keeps claims in process memory.
type MemoryStore struct {
	cache *cache.Cache
}

// NewMemoryStore returns a store whose claims expire after ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{cache: cache.New(ttl, 2*ttl)}
}

func (m *MemoryStore) Claim(_ context.Context, key string) (bool, error) {
	// Add fails if the key is already present and unexpired.
	return m.cache.Add(key, struct{}{}, cache.DefaultExpiration) == nil, nil
}

func (m *MemoryStore) Release(_ context.Context, key string) error {
	m.cache.Delete(key)
	return nil
}

// RedisStore shares claims between processes through Redis.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisStore connects to addr lazily; the first Claim dials.
func NewRedisStore(addr string, ttl time.Duration) *RedisStore {
	return NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: addr}), ttl)
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, prefix: "omnis:track:"}
}

func (r *RedisStore) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.prefix+key, time.Now().Unix(), r.ttl).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

func (r *RedisStore) Release(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close releases the Redis connection pool.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
