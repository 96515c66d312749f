package cache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps items as plain Redis strings. Expiration, when set, is
// applied to every write as a safety net; entry TTL is still decided by Store.
type RedisStorage struct {
	client     *redis.Client
	Expiration time.Duration
}

// RedisExpiration is the safety-net expiry for a Store TTL. It sits well past
// the TTL so expired entries stay visible to Stats and Get until removed.
func RedisExpiration(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}
	return 2 * ttl
}

// NewRedisStorage connects to addr (host:port).
func NewRedisStorage(addr, password string, db int) *RedisStorage {
	return &RedisStorage{client: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})}
}

// NewRedisStorageFromClient wraps an existing client.
func NewRedisStorageFromClient(c *redis.Client) *RedisStorage {
	return &RedisStorage{client: c}
}

func (s *RedisStorage) Close() error { return s.client.Close() }

const redisScanCount = 100

func (s *RedisStorage) Keys(ctx context.Context, prefix string) ([]string, error) {
	var (
		keys   []string
		seen   = map[string]bool{}
		cursor uint64
	)
	for {
		page, next, err := s.client.Scan(ctx, cursor, prefix+"*", redisScanCount).Result()
		if err != nil {
			return nil, fmt.Errorf("redis scan failure: %w", err)
		}
		// SCAN may return a key more than once.
		for _, k := range page {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
		if next == 0 {
			break
		}
		cursor = next
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *RedisStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get failure: %w", err)
	}
	return v, true, nil
}

func (s *RedisStorage) SetItem(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, s.Expiration).Err(); err != nil {
		return fmt.Errorf("redis set failure: %w", err)
	}
	return nil
}

func (s *RedisStorage) RemoveItem(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del failure: %w", err)
	}
	return nil
}
