package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"song-queue-bot/internal/infra/metrics"
)

// RedisCache реализует domain.Cache через Redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedis создаёт кэш.
func NewRedis(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// GetValue возвращает значение и признак наличия ключа.
func (c *RedisCache) GetValue(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.ObserveNetworkRequest("redis", "get", key, start, nil)
		return nil, false, nil
	}
	metrics.ObserveNetworkRequest("redis", "get", key, start, err)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// SetValue задаёт значение с TTL.
func (c *RedisCache) SetValue(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	start := time.Now()
	err := c.client.Set(ctx, key, value, ttl).Err()
	metrics.ObserveNetworkRequest("redis", "set", key, start, err)
	return err
}

// DelValue удаляет ключи. Отсутствующие ключи не считаются ошибкой.
func (c *RedisCache) DelValue(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	start := time.Now()
	err := c.client.Del(ctx, keys...).Err()
	metrics.ObserveNetworkRequest("redis", "del", keys[0], start, err)
	return err
}
